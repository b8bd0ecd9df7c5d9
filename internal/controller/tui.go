package controller

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	m "keepgen.dev/pkg/keepgen/internal/model"
	"keepgen.dev/pkg/keepgen/internal/section"
)

const (
	statusQueued     = "queued"
	statusGenerating = "generating"
	defaultWidth     = 80
	statusWidth      = 12
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	workingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
)

// TUI implements UI using Bubble Tea. Progress is rendered inline while jobs
// run; section and tag listings are printed as static views.
type TUI struct {
	output io.Writer

	mu      sync.Mutex
	program *tea.Program
	done    chan struct{}
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// Start launches the Bubble Tea program for the given mode.
func (t *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cfg := newStartConfig(options)

	t.mu.Lock()
	defer t.mu.Unlock()

	// Input stays detached so Ctrl+C reaches the command as SIGINT.
	t.program = tea.NewProgram(newProgressModel(cfg), tea.WithOutput(t.output), tea.WithInput(nil))
	t.done = make(chan struct{})

	program, done := t.program, t.done

	go func() {
		defer close(done)

		if _, err := program.Run(); err != nil {
			slog.Error("tui stopped", "error", err)
		}
	}()

	return nil
}

// Close stops the program and waits for the final frame.
func (t *TUI) Close(_ context.Context) {
	program, done := t.current()
	if program == nil {
		return
	}

	program.Quit()
	<-done
}

// Wait blocks until the program has finished on its own, which happens once
// a batch summary or single result has been shown.
func (t *TUI) Wait(ctx context.Context) {
	_, done := t.current()
	if done == nil {
		return
	}

	select {
	case <-ctx.Done():
	case <-done:
	}
}

// DisplayJobStarted marks a job as running.
func (t *TUI) DisplayJobStarted(_ context.Context, label string) {
	t.send(jobStartedMsg{label: label})
}

// DisplayResult records the outcome of a job.
func (t *TUI) DisplayResult(_ context.Context, result m.Result) {
	t.send(resultMsg{result: result})
}

// DisplaySummary finishes a batch.
func (t *TUI) DisplaySummary(_ context.Context, results []m.Result) {
	t.send(summaryMsg{summary: summarize(results)})
}

// DisplaySections prints the protected sections found in path.
func (t *TUI) DisplaySections(_ context.Context, path m.Path, store *section.Store) {
	_, _ = fmt.Fprint(t.output, sectionsView(path, store))
}

// DisplayTags prints the comment leaders per file type.
func (t *TUI) DisplayTags(_ context.Context, entries []section.Entry) {
	_, _ = fmt.Fprint(t.output, tagsView(entries))
}

func (t *TUI) current() (*tea.Program, chan struct{}) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.program, t.done
}

func (t *TUI) send(msg tea.Msg) {
	program, _ := t.current()
	if program == nil {
		return
	}

	program.Send(msg)
}

type jobStartedMsg struct{ label string }

type resultMsg struct{ result m.Result }

type summaryMsg struct{ summary summary }

type jobItem struct {
	label  string
	status string
	result *m.Result
}

// progressModel is the Bubble Tea model shared by all run modes.
type progressModel struct {
	mode    StartMode
	spinner spinner.Model
	prog    progress.Model
	items   []jobItem
	index   map[string]int
	summary *summary
	batches int
	width   int
	done    bool
}

func newProgressModel(cfg StartConfig) *progressModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = workingStyle

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = defaultWidth - 4

	model := &progressModel{
		mode:    cfg.mode,
		spinner: sp,
		prog:    prog,
		index:   make(map[string]int, len(cfg.jobs)),
		width:   defaultWidth,
	}

	for _, label := range cfg.jobs {
		model.item(label).status = statusQueued
	}

	return model
}

func (pm *progressModel) Init() tea.Cmd {
	return pm.spinner.Tick
}

func (pm *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case jobStartedMsg:
		if pm.mode == ModeWatch && pm.summary != nil {
			pm.summary = nil
		}

		pm.item(msg.label).status = statusGenerating

		return pm, nil

	case resultMsg:
		result := msg.result
		item := pm.item(result.Label())
		item.status = result.Status.String()
		item.result = &result

		if pm.mode == ModeGenerate {
			pm.done = true
			return pm, tea.Quit
		}

		return pm, pm.prog.SetPercent(pm.percent())

	case summaryMsg:
		sum := msg.summary
		pm.summary = &sum
		pm.batches++

		if pm.mode == ModeBatch {
			pm.done = true
			return pm, tea.Quit
		}

		return pm, nil

	case spinner.TickMsg:
		if pm.done {
			return pm, nil
		}

		var cmd tea.Cmd
		pm.spinner, cmd = pm.spinner.Update(msg)

		return pm, cmd

	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			pm.width = msg.Width
			pm.prog.Width = msg.Width - 4
		}

		return pm, nil

	case progress.FrameMsg:
		progressModel, cmd := pm.prog.Update(msg)
		pm.prog = progressModel.(progress.Model)

		return pm, cmd
	}

	return pm, nil
}

func (pm *progressModel) View() string {
	var b strings.Builder

	header := pm.title()
	if pm.done {
		header = "done: " + header
	} else {
		header = pm.spinner.View() + " " + header
	}

	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	nameWidth := pm.width - statusWidth - 4
	if nameWidth < 20 {
		nameWidth = 20
	}

	for _, item := range pm.items {
		status := styleStatus(item.status).Render(fmt.Sprintf("%*s", statusWidth, item.status))
		fmt.Fprintf(&b, "  %s %s\n", status, runewidth.Truncate(itemTarget(item), nameWidth, "…"))

		if item.result == nil {
			continue
		}

		if item.result.Err != nil {
			fmt.Fprintf(&b, "  %*s %s\n", statusWidth, "", errorStyle.Render(item.result.Err.Error()))
		}

		for _, anomaly := range item.result.Anomalies {
			fmt.Fprintf(&b, "  %*s %s\n", statusWidth, "", warnStyle.Render("warning: "+anomaly.String()))
		}
	}

	if pm.mode != ModeGenerate {
		b.WriteString("\n")

		if pm.done {
			b.WriteString(pm.prog.ViewAs(1.0))
		} else {
			b.WriteString(pm.prog.View())
		}

		b.WriteString("\n")
	}

	if pm.summary != nil {
		fmt.Fprintf(&b, "\n%s\n", pm.summary)
	}

	if pm.done {
		for _, item := range pm.items {
			if item.result != nil && item.result.Diff != "" {
				b.WriteString("\n")
				b.WriteString(item.result.Diff)
			}
		}
	}

	return b.String()
}

func (pm *progressModel) title() string {
	switch pm.mode {
	case ModeBatch:
		return fmt.Sprintf("keepgen: %d job(s)", len(pm.items))
	case ModeWatch:
		return fmt.Sprintf("keepgen: watching, %d run(s)", pm.batches)
	default:
		return "keepgen"
	}
}

func (pm *progressModel) item(label string) *jobItem {
	idx, ok := pm.index[label]
	if !ok {
		idx = len(pm.items)
		pm.index[label] = idx
		pm.items = append(pm.items, jobItem{label: label, status: statusQueued})
	}

	return &pm.items[idx]
}

func (pm *progressModel) percent() float64 {
	if len(pm.items) == 0 {
		return 0
	}

	finished := 0

	for _, item := range pm.items {
		if item.status != statusQueued && item.status != statusGenerating {
			finished++
		}
	}

	return float64(finished) / float64(len(pm.items))
}

func itemTarget(item jobItem) string {
	if item.result == nil || item.result.Destination == "" {
		return item.label
	}

	if item.result.Job == "" {
		return string(item.result.Destination)
	}

	return item.label + " -> " + string(item.result.Destination)
}

func styleStatus(status string) lipgloss.Style {
	switch status {
	case m.StatusWritten.String():
		return okStyle
	case m.StatusFailed.String():
		return errorStyle
	case m.StatusDryRun.String():
		return warnStyle
	case statusGenerating:
		return workingStyle
	default:
		return faintStyle
	}
}

func sectionsView(path m.Path, store *section.Store) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(string(path)))
	b.WriteString("\n")

	if store.Len() == 0 {
		b.WriteString(faintStyle.Render("  no protected sections"))
		b.WriteString("\n")
	}

	for _, sect := range store.Sections() {
		fmt.Fprintf(&b, "  %s %s %s\n",
			okStyle.Render(sect.Name),
			faintStyle.Render(fmt.Sprintf("lines %d-%d", sect.FirstLine+1, sect.LastLine+1)),
			faintStyle.Render(fmt.Sprintf("(%s, %d content line(s))", sect.Leader, len(sect.Inner()))))
	}

	for _, anomaly := range store.Anomalies() {
		fmt.Fprintf(&b, "  %s\n", warnStyle.Render("warning: "+anomaly.String()))
	}

	return b.String()
}

func tagsView(entries []section.Entry) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("comment tags"))
	b.WriteString("\n")

	for _, entry := range entries {
		fmt.Fprintf(&b, "  %-8s %s\n", entry.FileType, entry.Leader)
	}

	return b.String()
}
