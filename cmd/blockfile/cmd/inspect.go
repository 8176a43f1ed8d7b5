/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/blockfile/pkg/codec"
	"github.com/ssargent/blockfile/pkg/container"
	"github.com/ssargent/blockfile/pkg/pipeline"
)

func newInspectCmd(c *cli) *cobra.Command {
	var (
		format      string
		showRecords int
	)

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Read a block file and report on its blocks",
		Long: `Read a container file, recover its records and pack them again with the
block size from the header to rebuild the block boundaries. The layout is
fixed for MODO:1 and, for MODO:2, spanned when the body holds continuation
bytes and contiguous otherwise.

Examples:
  blockfile inspect alunos.dat
  blockfile inspect alunos.dat --show-records 10`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}

			path := args[0]
			f, err := container.ReadFile(path)
			if err != nil {
				return err
			}

			payloads, err := f.Payloads()
			if err != nil {
				return err
			}

			rc := codec.NewRecordCodec(f.Header.Encoding)
			records := make([]codec.Record, 0, len(payloads))
			for i, p := range payloads {
				r, err := rc.Decode(p)
				if err != nil {
					return fmt.Errorf("record %d: %w", i, err)
				}
				records = append(records, r)
			}

			layout := f.Layout()
			c.logger.Debug("container read", "path", path, "layout", layout, "payloads", len(payloads))

			res, err := pipeline.RunPayloads(cmd.Context(), payloads, pipeline.Options{
				Capacity: f.Header.BlockSize,
				Layout:   layout,
				Logger:   c.logger,
			})
			if err != nil {
				return err
			}

			original := append(f.Header.Bytes(), f.Body...)
			identical := bytes.Equal(original, res.Stream)
			if !identical {
				c.logger.Warn("repacked stream differs from file", "path", path)
			}

			out := cmd.OutOrStdout()
			err = printSummary(out, format, runSummary{
				Layout:    layout,
				BlockSize: f.Header.BlockSize,
				Records:   res.Records,
				Splits:    res.Splits,
				Output:    path,
				Bytes:     int64(len(original)),
				RoundTrip: &identical,
				Report:    res.Report,
			})
			if err != nil {
				return err
			}

			if format == formatTable && showRecords > 0 {
				if showRecords < len(records) {
					records = records[:showRecords]
				}
				printRecords(out, records)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Report format: table or json")
	cmd.Flags().IntVar(&showRecords, "show-records", 0, "Print the first N decoded records")
	return cmd
}
