package main

import (
	"fmt"
	"sort"

	"github.com/jt828/go-observer/pkg/event"
	"github.com/spf13/cobra"
)

func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the event catalog",
	}
	cmd.AddCommand(catalogValidateCmd())
	return cmd
}

func catalogValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <events.json|events.yaml>",
		Short: "Parse an event catalog and list its events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := event.Load(args[0])
			if err != nil {
				return err
			}

			for _, name := range c.Names() {
				ev, _ := c.Lookup(name)
				fields := make([]string, 0, len(ev.Fields))
				for f := range ev.Fields {
					fields = append(fields, f)
				}
				sort.Strings(fields)
				fmt.Fprintf(cmd.OutOrStdout(), "%s critical=%t fields=%v\n", name, ev.Critical, fields)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Catalog valid: %d events\n", len(c.Names()))
			return nil
		},
	}
}
