/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/ssargent/blockfile/pkg/block"
)

var errAborted = errors.New("aborted")

// lineReader is the part of readline the prompts need
type lineReader interface {
	SetPrompt(prompt string)
	Readline() (string, error)
}

func newInteractiveCmd(c *cli) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "Prompt for packing parameters and run a pack",
		Long: `Ask for the number of records, the storage mode, the block size and,
for variable records, whether records may span blocks. Then generate,
pack and report exactly like the pack command.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}

			rl, err := readline.NewEx(&readline.Config{
				Prompt:          "> ",
				HistoryFile:     filepath.Join(os.TempDir(), ".blockfile_history"),
				InterruptPrompt: "^C",
				EOFPrompt:       "exit",
			})
			if err != nil {
				return fmt.Errorf("failed to initialize readline: %w", err)
			}
			defer rl.Close()

			p, err := askPackParams(rl, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			p.Seed = c.cfg.Generator.Seed
			p.Output = c.cfg.Storage.Output
			p.Format = format
			p.Source = "interactive"

			return c.runPack(cmd.Context(), cmd.OutOrStdout(), p)
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Report format: table or json")
	return cmd
}

// askPackParams prompts until every answer is valid. An interrupt or EOF
// aborts.
func askPackParams(rl lineReader, out io.Writer) (packParams, error) {
	var p packParams

	records, err := askInt(rl, out, "Number of records: ", func(n int) error {
		if n < 0 {
			return errors.New("must not be negative")
		}
		return nil
	})
	if err != nil {
		return p, err
	}

	storage, err := askChoice(rl, out, "Storage mode (1 = fixed, 2 = variable): ")
	if err != nil {
		return p, err
	}

	blockSize, err := askInt(rl, out, "Block size in bytes: ", func(n int) error {
		if n <= 0 {
			return errors.New("must be positive")
		}
		return nil
	})
	if err != nil {
		return p, err
	}

	layout := block.FixedBlocks
	if storage == 2 {
		spanning, err := askChoice(rl, out, "Variable layout (1 = contiguous, 2 = spanned): ")
		if err != nil {
			return p, err
		}
		layout = block.VariableContiguous
		if spanning == 2 {
			layout = block.VariableSpanned
		}
	}

	p.Records = records
	p.BlockSize = blockSize
	p.Layout = layout
	return p, nil
}

func askChoice(rl lineReader, out io.Writer, prompt string) (int, error) {
	return askInt(rl, out, prompt, func(n int) error {
		if n != 1 && n != 2 {
			return errors.New("answer 1 or 2")
		}
		return nil
	})
}

func askInt(rl lineReader, out io.Writer, prompt string, check func(int) error) (int, error) {
	rl.SetPrompt(prompt)
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			return 0, errAborted
		}
		if err != nil {
			return 0, fmt.Errorf("failed to read input: %w", err)
		}

		n, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			fmt.Fprintf(out, "Not a number: %q\n", strings.TrimSpace(line))
			continue
		}
		if err := check(n); err != nil {
			fmt.Fprintf(out, "Invalid value %d: %v\n", n, err)
			continue
		}
		return n, nil
	}
}
