package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func chdirTemp(t *testing.T) string {
	t.Helper()

	tempDir := t.TempDir()
	originalWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tempDir))
	t.Cleanup(func() { require.NoError(t, os.Chdir(originalWD)) })

	return tempDir
}

func executeInit(t *testing.T, args ...string) (string, error) {
	t.Helper()

	useMockWorkflow(t)

	cmd := newRootCmd()
	cmd.AddCommand(newInitCmd())

	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"init", "--" + logFileFlagName, filepath.Join(t.TempDir(), "test.log")}, args...))
	t.Cleanup(func() { initForceFlag = false })

	err := cmd.Execute()

	return out.String(), err
}

func TestInitCmd_WritesConfigFile(t *testing.T) {
	tempDir := chdirTemp(t)

	out, err := executeInit(t)
	require.NoError(t, err)
	assert.Contains(t, out, configFileName)

	contents, err := os.ReadFile(filepath.Join(tempDir, configFileName))
	require.NoError(t, err)

	var config map[string]any
	require.NoError(t, yaml.Unmarshal(contents, &config))
	assert.Contains(t, config, "markers")
	assert.Contains(t, config, "run")
	assert.Contains(t, config, "templates")
}

func TestInitCmd_ErrorsWhenFileExists(t *testing.T) {
	tempDir := chdirTemp(t)

	targetPath := filepath.Join(tempDir, configFileName)
	require.NoError(t, os.WriteFile(targetPath, []byte("existing: true\n"), 0o644))

	_, err := executeInit(t)
	require.Error(t, err)

	contents, err := os.ReadFile(targetPath)
	require.NoError(t, err)
	assert.Equal(t, "existing: true\n", string(contents))
}

func TestInitCmd_ForceOverwrites(t *testing.T) {
	tempDir := chdirTemp(t)

	targetPath := filepath.Join(tempDir, configFileName)
	require.NoError(t, os.WriteFile(targetPath, []byte("existing: true\n"), 0o644))

	_, err := executeInit(t, "--force")
	require.NoError(t, err)

	contents, err := os.ReadFile(targetPath)
	require.NoError(t, err)
	assert.Contains(t, string(contents), "markers")
}
