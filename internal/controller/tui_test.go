package controller

import (
	"bytes"
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "keepgen.dev/pkg/keepgen/internal/model"
	"keepgen.dev/pkg/keepgen/internal/section"
)

func update(t *testing.T, model *progressModel, msg tea.Msg) (*progressModel, tea.Cmd) {
	t.Helper()

	next, cmd := model.Update(msg)
	pm, ok := next.(*progressModel)
	require.True(t, ok)

	return pm, cmd
}

func TestProgressModel_Batch(t *testing.T) {
	cfg := newStartConfig([]StartOption{WithBatchMode([]string{"a.json", "b.json"})})
	model := newProgressModel(cfg)

	view := model.View()
	assert.Contains(t, view, "keepgen: 2 job(s)")
	assert.Contains(t, view, "queued")
	assert.Contains(t, view, "a.json")

	model, _ = update(t, model, jobStartedMsg{label: "a.json"})
	assert.Equal(t, statusGenerating, model.items[0].status)
	assert.Equal(t, 0.0, model.percent())

	model, cmd := update(t, model, resultMsg{result: m.Result{
		Job: "a.json", Destination: "/out/a.py", Status: m.StatusWritten,
		Anomalies: []section.Anomaly{{Kind: section.StrayCloseTag, Line: 2}},
	}})
	assert.NotNil(t, cmd)
	assert.Equal(t, 0.5, model.percent())

	model, _ = update(t, model, resultMsg{result: m.Result{
		Job: "b.json", Status: m.StatusFailed, Err: errors.New("template not found"),
	}})
	assert.Equal(t, 1.0, model.percent())

	model, cmd = update(t, model, summaryMsg{summary: summary{written: 1, failed: 1}})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.True(t, model.done)

	view = model.View()
	assert.Contains(t, view, "done: keepgen: 2 job(s)")
	assert.Contains(t, view, "a.json -> /out/a.py")
	assert.Contains(t, view, "line 3: stray close tag")
	assert.Contains(t, view, "template not found")
	assert.Contains(t, view, "1 written, 0 unchanged, 0 dry-run, 1 failed")
}

func TestProgressModel_GenerateQuitsAfterResult(t *testing.T) {
	model := newProgressModel(newStartConfig([]StartOption{WithGenerateMode()}))

	model, cmd := update(t, model, resultMsg{result: m.Result{
		Template: "main.py.tmpl", Destination: "/out/main.py", Status: m.StatusDryRun,
		Diff: "@@ -1 +1 @@\n-old\n+new\n",
	}})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	view := model.View()
	assert.Contains(t, view, "/out/main.py")
	assert.Contains(t, view, "+new")
	assert.NotContains(t, view, "main.py.tmpl ->")
}

func TestProgressModel_WatchKeepsRunning(t *testing.T) {
	model := newProgressModel(newStartConfig([]StartOption{WithWatchMode()}))

	model, _ = update(t, model, jobStartedMsg{label: "a.json"})
	model, _ = update(t, model, resultMsg{result: m.Result{Job: "a.json", Status: m.StatusUnchanged}})
	model, cmd := update(t, model, summaryMsg{summary: summary{unchanged: 1}})

	assert.Nil(t, cmd)
	assert.False(t, model.done)
	assert.Equal(t, 1, model.batches)
	assert.Contains(t, model.View(), "watching, 1 run(s)")

	model, _ = update(t, model, jobStartedMsg{label: "a.json"})
	assert.Nil(t, model.summary)
	assert.Len(t, model.items, 1)
}

func TestProgressModel_WindowSize(t *testing.T) {
	model := newProgressModel(StartConfig{})

	model, _ = update(t, model, tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Equal(t, 120, model.width)
	assert.Equal(t, 116, model.prog.Width)
}

func TestTUI_StaticViews(t *testing.T) {
	var buf bytes.Buffer

	tui := NewTUI(&buf)

	store, err := section.NewScanner(section.DefaultMarkers()).Scan(
		section.SplitLines("// >>> imports <<<\nimport x\n// >>> <<<\n"),
		[]string{"//"},
	)
	require.NoError(t, err)

	tui.DisplaySections(context.Background(), "main.go", store)
	tui.DisplayTags(context.Background(), []section.Entry{{FileType: ".go", Leader: "//"}})

	out := buf.String()
	assert.Contains(t, out, "main.go")
	assert.Contains(t, out, "imports")
	assert.Contains(t, out, "lines 1-3")
	assert.Contains(t, out, ".go")
}

func TestTUI_CloseWithoutStart(t *testing.T) {
	tui := NewTUI(&bytes.Buffer{})

	tui.DisplayResult(context.Background(), m.Result{})
	tui.Wait(context.Background())
	tui.Close(context.Background())
}
