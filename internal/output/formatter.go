// Package output renders scan and apply results for the terminal.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/junovhs/slopchop/pkg/models"
)

// Format represents an output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat converts a string to Format, defaulting to text.
func ParseFormat(s string) Format {
	if strings.EqualFold(s, "json") {
		return FormatJSON
	}
	return FormatText
}

// Formatter writes results in the configured format.
type Formatter struct {
	format  Format
	writer  io.Writer
	colored bool
}

// NewFormatter creates a formatter.
func NewFormatter(format Format, w io.Writer, colored bool) *Formatter {
	return &Formatter{format: format, writer: w, colored: colored}
}

// ScanReport renders an analysis report.
func (f *Formatter) ScanReport(report *models.ScanReport) error {
	if f.format == FormatJSON {
		return f.writeJSON(report)
	}

	if report.Clean() {
		if f.colored {
			color.New(color.FgGreen).Fprintln(f.writer, "All checks passed.")
		} else {
			fmt.Fprintln(f.writer, "All checks passed.")
		}
		return nil
	}

	for i := range report.Files {
		file := &report.Files[i]
		if file.Clean() {
			continue
		}

		if f.colored {
			color.New(color.Bold).Fprintln(f.writer, file.Path)
		} else {
			fmt.Fprintln(f.writer, file.Path)
		}
		for _, v := range file.Violations {
			fmt.Fprintf(f.writer, "  %4d  %-18s %s\n", v.Row, v.Law, v.Message)
		}
	}

	fmt.Fprintf(f.writer, "\n%d violation(s) across %d file(s)\n",
		report.TotalViolations(), len(report.Files))
	return nil
}

// RankTable renders ranked files as a table.
func (f *Formatter) RankTable(rows [][]string) error {
	if f.format == FormatJSON {
		return f.writeJSON(rows)
	}
	return f.table([]string{"Rank", "File", "Score"}, rows)
}

// LocalityReport renders locality edges and the topological entropy.
func (f *Formatter) LocalityReport(edges []models.LocalityEdge, entropy float64) error {
	if f.format == FormatJSON {
		return f.writeJSON(map[string]any{"edges": edges, "entropy": entropy})
	}

	rows := make([][]string, 0, len(edges))
	for i := range edges {
		e := &edges[i]
		rows = append(rows, []string{
			string(e.Verdict), e.From, e.To,
			fmt.Sprintf("%d", e.Distance), string(e.Identity),
			fmt.Sprintf("%.2f", e.Skew),
		})
	}
	if err := f.table([]string{"Verdict", "From", "To", "Dist", "Identity", "Skew"}, rows); err != nil {
		return err
	}
	fmt.Fprintf(f.writer, "Topological entropy: %.1f%%\n", entropy*100)
	return nil
}

// ApplyOutcome renders an apply result.
func (f *Formatter) ApplyOutcome(outcome models.ApplyOutcome) error {
	if f.format == FormatJSON {
		return f.writeJSON(outcome)
	}

	switch outcome.Status {
	case models.ApplySuccess:
		if f.colored {
			color.New(color.FgGreen).Fprintf(f.writer, "Applied: %d written, %d deleted\n",
				len(outcome.Written), len(outcome.Deleted))
		} else {
			fmt.Fprintf(f.writer, "Applied: %d written, %d deleted\n",
				len(outcome.Written), len(outcome.Deleted))
		}
		for _, path := range outcome.Written {
			fmt.Fprintf(f.writer, "  + %s\n", path)
		}
		for _, path := range outcome.Deleted {
			fmt.Fprintf(f.writer, "  - %s\n", path)
		}

	case models.ApplyValidationFailure:
		header := fmt.Sprintf("Validation failed: %d error(s), %d missing file(s)",
			len(outcome.Errors), len(outcome.Missing))
		if f.colored {
			color.New(color.FgRed).Fprintln(f.writer, header)
		} else {
			fmt.Fprintln(f.writer, header)
		}
		for _, e := range outcome.Errors {
			fmt.Fprintf(f.writer, "  ! %s\n", e)
		}
		for _, m := range outcome.Missing {
			fmt.Fprintf(f.writer, "  ? missing: %s\n", m)
		}

	default:
		if f.colored {
			color.New(color.FgRed).Fprintf(f.writer, "%s: %s\n", outcome.Status, outcome.Message)
		} else {
			fmt.Fprintf(f.writer, "%s: %s\n", outcome.Status, outcome.Message)
		}
	}
	return nil
}

// table renders rows with the house table style.
func (f *Formatter) table(headers []string, rows [][]string) error {
	table := tablewriter.NewTable(f.writer,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
			},
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.Border{Left: tw.Off, Right: tw.Off, Top: tw.Off, Bottom: tw.Off},
			Settings: tw.Settings{
				Separators: tw.Separators{BetweenColumns: tw.Off},
			},
		}),
	)

	table.Header(headers)
	for _, row := range rows {
		table.Append(row)
	}
	table.Render()
	return nil
}

func (f *Formatter) writeJSON(data any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
