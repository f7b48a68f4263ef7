package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ErrorLSC/QMS/pkg/interfaces/cli/output"
)

const sampleScenario = "../../../../scenarios/sample"

func TestETACommand_CSVOutput(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	cmd := NewETACommand(Config{
		ScenarioDir: sampleScenario,
		OutputDir:   dir,
		Format:      "csv",
		Stdout:      &out,
	})
	require.NoError(t, cmd.Execute(context.Background()))

	data, err := os.ReadFile(filepath.Join(dir, output.RecommendationsFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), "PO1")
}

func TestETACommand_TextOutput(t *testing.T) {
	var out bytes.Buffer
	cmd := NewETACommand(Config{ScenarioDir: sampleScenario, Format: "text", Stdout: &out})
	require.NoError(t, cmd.Execute(context.Background()))
	assert.NotEmpty(t, out.String())
}

func TestETACommand_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"missing scenario", Config{Format: "text"}, "must specify"},
		{"scenario not found", Config{ScenarioDir: "does-not-exist", Format: "text"}, "not found"},
		{"bad format", Config{ScenarioDir: sampleScenario, Format: "xml"}, "unsupported output format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.Stdout = &bytes.Buffer{}
			err := NewETACommand(tt.cfg).Execute(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestETACommand_Help(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewETACommand(Config{Help: true, Stdout: &out}).Execute(context.Background()))
	assert.Contains(t, out.String(), "-scenario")
	assert.Contains(t, out.String(), "/api/runs")
}
