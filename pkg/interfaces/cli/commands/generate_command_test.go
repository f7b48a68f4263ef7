package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ErrorLSC/QMS/pkg/application/services/eta"
	"github.com/ErrorLSC/QMS/pkg/domain/entities"
	loader "github.com/ErrorLSC/QMS/pkg/infrastructure/repositories/csv"
)

var genAsOf = time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)

func generate(t *testing.T, cfg GenerateConfig) string {
	t.Helper()
	cfg.OutputDir = t.TempDir()
	cfg.AsOf = genAsOf
	cfg.Stdout = &bytes.Buffer{}
	require.NoError(t, NewGenerateCommand(cfg).Execute(context.Background()))
	return cfg.OutputDir
}

func TestGenerateCommand_ScenarioRunsThroughEngine(t *testing.T) {
	dir := generate(t, GenerateConfig{Items: 20, Vendors: 5, OpenPOs: 120, HistoryPerItem: 8, Mislabeled: 0.1, Seed: 7})

	sc, err := loader.NewLoader().LoadScenario(dir)
	require.NoError(t, err)
	assert.Len(t, sc.InTransit, 120)
	assert.NotEmpty(t, sc.History)
	assert.NotEmpty(t, sc.TransportStats)
	assert.Len(t, sc.InventoryLeadTimes, 20)

	in, err := sc.Inputs()
	require.NoError(t, err)

	opts := eta.DefaultOptions()
	opts.Now = func() time.Time { return genAsOf }
	engine, err := eta.NewEngine(nil, opts, nil)
	require.NoError(t, err)

	result, err := engine.Run(context.Background(), in)
	require.NoError(t, err)

	total := 0
	for _, n := range result.CaseCounts {
		total += n
	}
	assert.Equal(t, 120, total)
	assert.Positive(t, result.CaseCounts[entities.CaseConfirmed])
	assert.Positive(t, result.CaseCounts[entities.CaseShipped])
	assert.Positive(t, result.CaseCounts[entities.CaseSplitInProgress])
	assert.Less(t, len(result.Skips), 120)
	assert.GreaterOrEqual(t, len(result.Recommendations), 120)
}

func TestGenerateCommand_SameSeedSameOutput(t *testing.T) {
	cfg := GenerateConfig{Items: 10, Vendors: 3, OpenPOs: 30, HistoryPerItem: 4, Mislabeled: 0.1, Seed: 42}
	a := generate(t, cfg)
	b := generate(t, cfg)

	for _, name := range []string{loader.InTransitFile, loader.HistoryFile, loader.VendorTransportFile} {
		x, err := os.ReadFile(filepath.Join(a, name))
		require.NoError(t, err)
		y, err := os.ReadFile(filepath.Join(b, name))
		require.NoError(t, err)
		assert.Equal(t, x, y, name)
	}
}

func TestGenerateCommand_NoHistory(t *testing.T) {
	dir := generate(t, GenerateConfig{Items: 3, Vendors: 1, OpenPOs: 5, Seed: 1})

	sc, err := loader.NewLoader().LoadScenario(dir)
	require.NoError(t, err)
	assert.Empty(t, sc.TransportStats)
	assert.Empty(t, sc.SmartLeadTimes)
	assert.Len(t, sc.InTransit, 5)
}

func TestGenerateCommand_Validation(t *testing.T) {
	cases := []GenerateConfig{
		{Items: 0, Vendors: 1, OutputDir: "x"},
		{Items: 1, Vendors: 0, OutputDir: "x"},
		{Items: 1, Vendors: 1, OpenPOs: -1, OutputDir: "x"},
		{Items: 1, Vendors: 1, Mislabeled: 2, OutputDir: "x"},
		{Items: 1, Vendors: 1},
	}
	for _, cfg := range cases {
		cfg.Stdout = &bytes.Buffer{}
		assert.Error(t, NewGenerateCommand(cfg).Execute(context.Background()))
	}
}

func TestGenerateCommand_Help(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewGenerateCommand(GenerateConfig{Help: true, Stdout: &out}).Execute(context.Background()))
	assert.Contains(t, out.String(), "eta generate")
}

func TestSampleStats(t *testing.T) {
	s := newSampleStats([]float64{5, 3, 5, 9, 8})
	assert.Equal(t, 5, s.n)
	assert.InDelta(t, 6.0, s.mean, 1e-9)
	assert.Equal(t, 5.0, s.modal)
	assert.Equal(t, 5.0, s.quantile(0.6))
	assert.Equal(t, 9.0, s.quantile(0.9))
}
