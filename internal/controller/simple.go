package controller

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "keepgen.dev/pkg/keepgen/internal/model"
	"keepgen.dev/pkg/keepgen/internal/section"
)

var (
	writtenColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	failedColor  = color.New(color.FgRed, color.Bold)
	faintColor   = color.New(color.Faint)
)

// SimpleUI implements UI using cobra Command's output writer.
type SimpleUI struct {
	cmd  *cobra.Command
	mu   sync.Mutex
	mode StartMode
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cfg := newStartConfig(options)
	s.mode = cfg.mode

	if cfg.mode == ModeBatch {
		s.printf("Generating %d job(s)\n", len(cfg.jobs))
	}

	return nil
}

// Close finalizes the UI.
func (s *SimpleUI) Close(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// Wait blocks until the UI is closed (no-op for SimpleUI).
func (s *SimpleUI) Wait(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// DisplayJobStarted announces a batch job.
func (s *SimpleUI) DisplayJobStarted(_ context.Context, label string) {
	s.printf("%s %s\n", faintColor.Sprint("->"), label)
}

// DisplayResult prints the outcome of one generation with its anomalies and diff.
func (s *SimpleUI) DisplayResult(_ context.Context, result m.Result) {
	var b bytes.Buffer

	if result.Err != nil {
		fmt.Fprintf(&b, "%s %s: %v\n", failedColor.Sprint("failed"), result.Label(), result.Err)
	} else {
		fmt.Fprintf(&b, "%s %s (%d protected section(s))\n",
			statusColor(result.Status).Sprint(result.Status.String()), result.Destination, result.Sections)
	}

	for _, anomaly := range result.Anomalies {
		fmt.Fprintf(&b, "  %s %s\n", warnColor.Sprint("warning:"), anomaly)
	}

	if result.Diff != "" {
		b.WriteString(result.Diff)
	}

	s.printf("%s", b.String())
}

// DisplaySummary prints a table of batch results.
func (s *SimpleUI) DisplaySummary(_ context.Context, results []m.Result) {
	if len(results) == 0 {
		return
	}

	s.printf("\n%s", renderSummaryTable(results))
}

// DisplaySections prints the protected sections found in path.
func (s *SimpleUI) DisplaySections(_ context.Context, path m.Path, store *section.Store) {
	var b bytes.Buffer

	fmt.Fprintf(&b, "%s\n", path)

	if store.Len() == 0 {
		b.WriteString("no protected sections\n")
	} else {
		b.WriteString(renderSectionsTable(store))
	}

	for _, anomaly := range store.Anomalies() {
		fmt.Fprintf(&b, "%s %s\n", warnColor.Sprint("warning:"), anomaly)
	}

	s.printf("%s", b.String())
}

// DisplayTags prints the comment leaders per file type.
func (s *SimpleUI) DisplayTags(_ context.Context, entries []section.Entry) {
	if len(entries) == 0 {
		s.printf("no comment tags registered\n")
		return
	}

	s.printf("%s", renderTagsTable(entries))
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

func statusColor(status m.Status) *color.Color {
	switch status {
	case m.StatusWritten:
		return writtenColor
	case m.StatusFailed:
		return failedColor
	case m.StatusDryRun:
		return warnColor
	default:
		return faintColor
	}
}

// summary counts results per status.
type summary struct {
	written, unchanged, dryRun, failed int
}

func summarize(results []m.Result) summary {
	var sum summary

	for _, result := range results {
		switch result.Status {
		case m.StatusWritten:
			sum.written++
		case m.StatusUnchanged:
			sum.unchanged++
		case m.StatusDryRun:
			sum.dryRun++
		case m.StatusFailed:
			sum.failed++
		}
	}

	return sum
}

func (s summary) String() string {
	return fmt.Sprintf("%d written, %d unchanged, %d dry-run, %d failed", s.written, s.unchanged, s.dryRun, s.failed)
}

func renderSummaryTable(results []m.Result) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Job", "Destination", "Status", "Sections"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_CENTER, tablewriter.ALIGN_CENTER,
	})

	for _, result := range results {
		table.Append([]string{
			result.Label(),
			string(result.Destination),
			result.Status.String(),
			fmt.Sprintf("%d", result.Sections),
		})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Jobs %d", len(results)),
		"",
		summarize(results).String(),
		"",
	})

	table.Render()

	return tableBuffer.String()
}

func renderSectionsTable(store *section.Store) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Section", "Lines", "Leader", "Content Lines"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)

	for _, sect := range store.Sections() {
		table.Append([]string{
			sect.Name,
			fmt.Sprintf("%d-%d", sect.FirstLine+1, sect.LastLine+1),
			sect.Leader,
			fmt.Sprintf("%d", len(sect.Inner())),
		})
	}

	table.Render()

	return tableBuffer.String()
}

func renderTagsTable(entries []section.Entry) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"File Type", "Leader"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)

	for _, entry := range entries {
		table.Append([]string{entry.FileType, entry.Leader})
	}

	table.Render()

	return tableBuffer.String()
}
