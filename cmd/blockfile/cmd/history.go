/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"

	"github.com/ssargent/blockfile/pkg/catalog"
)

func newHistoryCmd(c *cli) *cobra.Command {
	var (
		format string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded packing runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withCatalog(func(cat *catalog.Catalog) error {
				runs, err := cat.List(limit)
				if err != nil {
					return err
				}
				return printRuns(cmd.OutOrStdout(), format, runs)
			})
		},
	}

	cmd.PersistentFlags().StringVar(&format, "format", "table", "Output format: table or json")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list (0 lists all)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show <id>",
			Short: "Show the report of a recorded run",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.withCatalog(func(cat *catalog.Catalog) error {
					run, err := cat.GetString(args[0])
					if err != nil {
						return err
					}
					return printSummary(cmd.OutOrStdout(), format, runSummary{
						RunID:     run.ID.String(),
						Layout:    run.Layout,
						BlockSize: run.BlockSize,
						Records:   run.Records,
						Splits:    run.Splits,
						Output:    run.Output,
						Report:    run.Report,
					})
				})
			},
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a recorded run",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := ksuid.Parse(args[0])
				if err != nil {
					return fmt.Errorf("invalid run id %q: %w", args[0], err)
				}
				return c.withCatalog(func(cat *catalog.Catalog) error {
					if err := cat.Delete(id); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", id)
					return nil
				})
			},
		},
	)

	return cmd
}

// withCatalog runs fn against the open catalog and closes it afterwards
func (c *cli) withCatalog(fn func(cat *catalog.Catalog) error) error {
	cat, closeCatalog, err := c.openCatalog()
	if err != nil {
		return err
	}
	defer closeCatalog()
	if cat == nil {
		return fmt.Errorf("run catalog is disabled (set catalog.enabled in the config)")
	}
	return fn(cat)
}
