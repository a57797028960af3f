package main

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	var (
		direction string
		steps     int
		source    string
		dsn       string
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the critical frame queue migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dsn == "" {
				return fmt.Errorf("DATABASE_DSN or --dsn is required")
			}

			m, err := migrate.New(source, dsn)
			if err != nil {
				return fmt.Errorf("failed to create migrate instance: %w", err)
			}
			defer m.Close()

			switch direction {
			case "up":
				if steps > 0 {
					err = m.Steps(steps)
				} else {
					err = m.Up()
				}
			case "down":
				if steps > 0 {
					err = m.Steps(-steps)
				} else {
					err = m.Down()
				}
			default:
				return fmt.Errorf("unknown direction: %s", direction)
			}

			if err != nil && !errors.Is(err, migrate.ErrNoChange) {
				return fmt.Errorf("migration failed: %w", err)
			}

			cmd.Println("migration completed")
			return nil
		},
	}

	cmd.Flags().StringVar(&direction, "direction", "up", "migration direction: up or down")
	cmd.Flags().IntVar(&steps, "steps", 0, "number of steps to migrate (0 = all)")
	cmd.Flags().StringVar(&source, "source", "file://migrations", "migration source URL")
	cmd.Flags().StringVar(&dsn, "dsn", envOr("DATABASE_DSN", ""), "postgres connection string")

	return cmd
}
