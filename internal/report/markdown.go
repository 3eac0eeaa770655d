package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/hiroakis/scanledger/internal/model"
)

// MarkdownWriter outputs ledger snapshots in GitHub Flavored Markdown.
type MarkdownWriter struct {
	baseWriter

	// titler title-cases store identifiers and statuses for display.
	titler cases.Caser
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given
// writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		titler:     cases.Title(language.English),
	}
}

// Write outputs the snapshot in Markdown format.
func (w *MarkdownWriter) Write(snapshot *Snapshot) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Scan Ledger Report")
	md.PlainText("")

	w.writeStats(md, snapshot.Stats)
	w.writeSessions(md, snapshot.Sessions)
	w.writeStores(md, snapshot)

	md.PlainTextf("Generated at %s", time.Now().Format(time.RFC3339))

	return len(md.String()), md.Build()
}

// writeStats writes the database diagnostics table.
func (w *MarkdownWriter) writeStats(md *markdown.Markdown, stats *model.DatabaseStats) {
	md.H2("Database")
	md.PlainText("")

	rows := [][]string{
		{"Sessions", strconv.Itoa(stats.SessionCount)},
		{"Results", strconv.Itoa(stats.ResultCount)},
		{"Size", fmt.Sprintf("%.2f MB (%d bytes)", stats.SizeMB, stats.SizeBytes)},
		{"Oldest session", formatOptionalTime(stats.OldestSession)},
		{"Newest session", formatOptionalTime(stats.NewestSession)},
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeSessions writes the session list table.
func (w *MarkdownWriter) writeSessions(md *markdown.Markdown, sessions []*model.ScanSession) {
	md.H2("Sessions")
	md.PlainText("")

	if len(sessions) == 0 {
		md.PlainText("No sessions recorded.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, []string{
			s.ID,
			s.StartTime.Format(time.RFC3339),
			formatOptionalTime(s.EndTime),
			strconv.Itoa(s.TotalItems),
			w.titler.String(string(s.Status)),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Session", "Started", "Completed", "Items", "Status"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeStores writes per-store result counts.
func (w *MarkdownWriter) writeStores(md *markdown.Markdown, snapshot *Snapshot) {
	if len(snapshot.Stores) == 0 {
		return
	}

	md.H2("Results by Store")
	md.PlainText("")

	rows := make([][]string, 0, len(snapshot.Stores))
	for _, sc := range snapshot.Stores {
		rows = append(rows, []string{
			w.titler.String(sc.Store),
			strconv.Itoa(sc.Results),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Store", "Results"},
		Rows:   rows,
	})
	md.PlainText("")
}

// formatOptionalTime renders a nullable timestamp, "-" when absent.
func formatOptionalTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Format(time.RFC3339)
}
