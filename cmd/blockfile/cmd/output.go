package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/ssargent/blockfile/pkg/analyzer"
	"github.com/ssargent/blockfile/pkg/block"
	"github.com/ssargent/blockfile/pkg/catalog"
	"github.com/ssargent/blockfile/pkg/codec"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

// headerRow is the row index lipgloss passes to a StyleFunc for the header;
// data rows follow from 1.
const headerRow = 0

var (
	accentColor = lipgloss.Color("#8B5CF6")
	mutedColor  = lipgloss.Color("#94A3B8")
	warnColor   = lipgloss.Color("#F59E0B")

	titleStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true).
			MarginTop(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Width(18)

	headerStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().
			Padding(0, 1)

	partialStyle = cellStyle.Copy().
			Foreground(warnColor)
)

// runSummary is what pack, interactive and inspect print
type runSummary struct {
	RunID     string          `json:"run_id,omitempty"`
	Layout    block.Mode      `json:"layout"`
	BlockSize int             `json:"block_size"`
	Records   int             `json:"records"`
	Splits    int             `json:"splits"`
	Output    string          `json:"output,omitempty"`
	Bytes     int64           `json:"bytes,omitempty"`
	RoundTrip *bool           `json:"round_trip,omitempty"`
	Report    analyzer.Report `json:"report"`
}

func checkFormat(format string) error {
	switch format {
	case formatTable, formatJSON:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (use table or json)", format)
	}
}

// printSummary displays a run in the requested format
func printSummary(w io.Writer, format string, s runSummary) error {
	if err := checkFormat(format); err != nil {
		return err
	}
	if format == formatJSON {
		return writeJSON(w, s)
	}

	fmt.Fprintln(w, titleStyle.Render("Storage report"))
	if s.RunID != "" {
		printField(w, "Run", s.RunID)
	}
	printField(w, "Layout", s.Layout.String())
	printField(w, "Block size", fmt.Sprintf("%d bytes", s.BlockSize))
	printField(w, "Records", strconv.Itoa(s.Records))
	if s.Layout == block.VariableSpanned {
		printField(w, "Split records", strconv.Itoa(s.Splits))
	}
	if s.Output != "" {
		printField(w, "Output", fmt.Sprintf("%s (%d bytes)", s.Output, s.Bytes))
	}
	if s.RoundTrip != nil {
		verdict := "identical"
		if !*s.RoundTrip {
			verdict = "differs from file"
		}
		printField(w, "Repacked stream", verdict)
	}

	printReport(w, s.Report)
	return nil
}

func printReport(w io.Writer, r analyzer.Report) {
	printField(w, "Blocks", strconv.Itoa(r.BlockCount))
	printField(w, "Partial blocks", strconv.Itoa(r.PartialBlocks))
	printField(w, "Mean occupancy", formatPercent(r.MeanOccupancy))
	printField(w, "Efficiency", formatPercent(r.Efficiency))
	printField(w, "Useful bytes", fmt.Sprintf("%d of %d allocated", r.UsefulBytes, r.AllocatedBytes))
	printField(w, "Checksum", fmt.Sprintf("%016x", r.Checksum))

	if len(r.Blocks) == 0 {
		return
	}

	rows := make([][]string, 0, len(r.Blocks))
	for _, b := range r.Blocks {
		rows = append(rows, []string{strconv.Itoa(b.Index), strconv.Itoa(b.Bytes), formatPercent(b.Occupancy)})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(mutedColor)).
		Headers("BLOCK", "BYTES", "OCCUPANCY").
		Rows(rows...).
		StyleFunc(blockRowStyle(r))

	fmt.Fprintln(w, t.String())
}

// blockRowStyle highlights blocks that are not completely filled
func blockRowStyle(r analyzer.Report) table.StyleFunc {
	return func(row, col int) lipgloss.Style {
		if row == headerRow {
			return headerStyle
		}
		if idx := row - 1; idx >= 0 && idx < len(r.Blocks) && r.Blocks[idx].Bytes < r.BlockSize {
			return partialStyle
		}
		return cellStyle
	}
}

func plainRowStyle(row, col int) lipgloss.Style {
	if row == headerRow {
		return headerStyle
	}
	return cellStyle
}

// printRuns lists recorded runs
func printRuns(w io.Writer, format string, runs []*catalog.Run) error {
	if err := checkFormat(format); err != nil {
		return err
	}
	if format == formatJSON {
		return writeJSON(w, runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID.String(),
			run.CreatedAt.Local().Format(time.DateTime),
			run.Source,
			run.Layout.String(),
			strconv.Itoa(run.BlockSize),
			strconv.Itoa(run.Records),
			strconv.Itoa(run.Report.BlockCount),
			formatPercent(run.Report.Efficiency),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(mutedColor)).
		Headers("ID", "CREATED", "SOURCE", "LAYOUT", "BLOCK SIZE", "RECORDS", "BLOCKS", "EFFICIENCY").
		Rows(rows...).
		StyleFunc(plainRowStyle)

	fmt.Fprintln(w, t.String())
	return nil
}

// printRecords shows decoded records, as recovered by inspect
func printRecords(w io.Writer, records []codec.Record) {
	if len(records) == 0 {
		return
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			r.Name,
			r.CPF,
			r.Course,
			strconv.Itoa(r.EnrollmentYear),
			strconv.FormatFloat(r.GPA, 'f', 2, 64),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(mutedColor)).
		Headers("ID", "NAME", "CPF", "COURSE", "YEAR", "GPA").
		Rows(rows...).
		StyleFunc(plainRowStyle)

	fmt.Fprintln(w, titleStyle.Render("Records"))
	fmt.Fprintln(w, t.String())
}

func printField(w io.Writer, label, value string) {
	fmt.Fprintln(w, labelStyle.Render(label)+value)
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
