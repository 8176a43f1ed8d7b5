/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ssargent/blockfile/pkg/block"
	"github.com/ssargent/blockfile/pkg/catalog"
	"github.com/ssargent/blockfile/pkg/container"
	"github.com/ssargent/blockfile/pkg/generator"
	"github.com/ssargent/blockfile/pkg/pipeline"
)

// packParams is one fully resolved packing request
type packParams struct {
	Records     int
	Seed        int64
	BlockSize   int
	Layout      block.Mode
	Output      string
	Format      string
	Concurrency int
	Source      string
}

func newPackCmd(c *cli) *cobra.Command {
	var (
		records     int
		seed        int64
		blockSize   int
		layout      string
		output      string
		format      string
		concurrency int
		noCatalog   bool
	)

	cmd := &cobra.Command{
		Use:   "pack",
		Short: "Generate student records and pack them into a block file",
		Long: `Generate synthetic student records, encode them, pack the payloads into
blocks of the configured size and write the container file.

Layouts:
  fixed       169-byte records, never split
  contiguous  variable records, never split
  spanned     variable records split across blocks with a continuation byte

Examples:
  blockfile pack -n 100 --block-size 512 --layout spanned
  blockfile pack -n 3 --block-size 169 --layout fixed --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}

			p := packParams{
				Records:     c.cfg.Generator.Records,
				Seed:        c.cfg.Generator.Seed,
				BlockSize:   c.cfg.Storage.BlockSize,
				Layout:      c.cfg.Storage.Layout,
				Output:      c.cfg.Storage.Output,
				Format:      format,
				Concurrency: concurrency,
				Source:      "cli",
			}

			flags := cmd.Flags()
			if flags.Changed("records") {
				p.Records = records
			}
			if flags.Changed("seed") {
				p.Seed = seed
			}
			if flags.Changed("block-size") {
				p.BlockSize = blockSize
			}
			if flags.Changed("layout") {
				mode, err := block.ParseMode(layout)
				if err != nil {
					return err
				}
				p.Layout = mode
			}
			if flags.Changed("output") {
				p.Output = output
			}
			if noCatalog {
				c.cfg.Catalog.Enabled = false
			}

			return c.runPack(cmd.Context(), cmd.OutOrStdout(), p)
		},
	}

	cmd.Flags().IntVarP(&records, "records", "n", 0, "Number of records to generate")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Generator seed (0 picks a random seed)")
	cmd.Flags().IntVarP(&blockSize, "block-size", "b", 0, "Block capacity in bytes")
	cmd.Flags().StringVarP(&layout, "layout", "l", "", "Packing layout: fixed, contiguous or spanned")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Container file to write")
	cmd.Flags().StringVar(&format, "format", "table", "Report format: table or json")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Encoder goroutines (0 uses every CPU)")
	cmd.Flags().BoolVar(&noCatalog, "no-catalog", false, "Do not record the run in the catalog")

	return cmd
}

// runPack generates, packs and writes one container, then records and
// prints the run.
func (c *cli) runPack(ctx context.Context, out io.Writer, p packParams) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if p.Records < 0 {
		return fmt.Errorf("record count must not be negative: %d", p.Records)
	}

	records := generator.New(p.Seed).Generate(p.Records)
	res, err := pipeline.Run(ctx, records, pipeline.Options{
		Capacity:    p.BlockSize,
		Layout:      p.Layout,
		Concurrency: p.Concurrency,
		Logger:      c.logger,
	})
	if err != nil {
		return err
	}

	written, err := container.WriteFile(p.Output, res.Header, res.Blocks)
	if err != nil {
		return err
	}
	c.logger.Info("container written", "path", p.Output, "bytes", written)

	summary := runSummary{
		Layout:    res.Layout,
		BlockSize: res.Header.BlockSize,
		Records:   res.Records,
		Splits:    res.Splits,
		Output:    p.Output,
		Bytes:     written,
		Report:    res.Report,
	}

	cat, closeCatalog, err := c.openCatalog()
	if err != nil {
		return err
	}
	defer closeCatalog()
	if cat != nil {
		id, err := cat.Save(catalog.NewRun(res, p.Source, p.Output))
		if err != nil {
			return err
		}
		summary.RunID = id.String()
	}

	return printSummary(out, p.Format, summary)
}
