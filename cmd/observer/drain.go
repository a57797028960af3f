package main

import (
	"fmt"
	"os"

	"github.com/jt828/go-observer/internal/bootstrap"
	"github.com/jt828/go-observer/internal/config"
	obsImpl "github.com/jt828/go-observer/pkg/observability/implementation"
	queueImpl "github.com/jt828/go-observer/pkg/queue/implementation"
	"github.com/spf13/cobra"
)

func drainCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "drain",
		Short: "Remove queued critical frames from postgres and print them as JSON lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive, got %d", limit)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Queue.Driver != config.QueueDriverPostgres {
				return fmt.Errorf("drain needs QUEUE_DRIVER=%s", config.QueueDriverPostgres)
			}

			log, err := obsImpl.NewZapLoggerWithLevel(cfg.LogLevel)
			if err != nil {
				return err
			}

			q, closeQueue, err := bootstrap.InitializeQueue(cfg.Queue, obsImpl.NewPrometheusMeter(), log)
			if err != nil {
				return err
			}
			defer closeQueue()

			pq, ok := q.(*queueImpl.PostgresQueue)
			if !ok {
				return fmt.Errorf("queue %T does not support draining", q)
			}
			records, err := pq.Dequeue(cmd.Context(), limit)
			if err != nil {
				return err
			}
			for _, r := range records {
				fmt.Fprintln(cmd.OutOrStdout(), r.Payload)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d frames drained\n", len(records))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 100, "maximum number of frames to drain")
	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
