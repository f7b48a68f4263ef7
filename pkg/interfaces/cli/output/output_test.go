package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ErrorLSC/QMS/pkg/application/dto"
	"github.com/ErrorLSC/QMS/pkg/domain/entities"
)

func sampleResult() *dto.ETAResult {
	eta := time.Date(2025, 6, 21, 0, 0, 0, 0, time.UTC)
	return &dto.ETAResult{
		RunID:       "run-1",
		GeneratedAt: time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC),
		Recommendations: []*entities.ETARecommendation{
			{
				ItemCode: "ITEM-B", Warehouse: "WH1", PONumber: "PO3", POLine: "1-1", VendorCode: "V1",
				TransportMode: entities.ModeVessel, Quantity: decimal.NewFromInt(16),
				ETADate: eta, ETAWeek: entities.YearWeek(eta), Flag: entities.FlagTailBatch,
				BatchIndex: 1, IsFinalBatch: entities.Bool(false),
			},
			{
				ItemCode: "ITEM-1", Warehouse: "WH1", PONumber: "PO1", POLine: "1", VendorCode: "V1",
				TransportMode: entities.ModeAir, Quantity: decimal.NewFromInt(10),
				ETADate: eta.AddDate(0, 0, -24), ETAWeek: "2025-22W", Flag: entities.FlagConfirmedDate,
				Comment: entities.OverdueComment, Overdue: true,
			},
		},
		Skips: []dto.Skip{
			{PONumber: "PO6", POLine: "1", Case: entities.CaseSingleDelivery, Reason: "missing total lead time"},
		},
		CaseCounts: map[entities.CaseLabel]int{entities.CaseSplitInProgress: 1, entities.CaseConfirmed: 1},
		Corrections: map[string]dto.ModeCorrectionCounts{
			dto.CorrectionDelivery: {Accepted: 3, Reassigned: 1},
		},
	}
}

func TestGenerate_UnsupportedFormat(t *testing.T) {
	err := Generate(sampleResult(), Config{Format: "xml"})
	assert.EqualError(t, err, "unsupported output format: xml")
}

func TestGenerate_Text(t *testing.T) {
	var buf bytes.Buffer
	changes := &entities.ChangeSummary{Inserted: 2}
	require.NoError(t, Generate(sampleResult(), Config{Format: "text", Stdout: &buf, Changes: changes}))

	out := buf.String()
	assert.Contains(t, out, "Recommendations: 2")
	assert.Contains(t, out, "Skipped Lines: 1")
	assert.Contains(t, out, "SplitInProgress")
	assert.Contains(t, out, "delivery_records")
	assert.Contains(t, out, "(overdue)")
	assert.Contains(t, out, "2 inserted")
	assert.Contains(t, out, "missing total lead time")
}

func TestGenerate_TextToFile(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	require.NoError(t, Generate(sampleResult(), Config{Format: "text", OutputDir: dir, Stdout: &buf, Verbose: true}))

	saved, err := os.ReadFile(filepath.Join(dir, TextFile))
	require.NoError(t, err)
	assert.Contains(t, string(saved), "ETA Results Summary")
	assert.Contains(t, buf.String(), "Results saved to")
}

func TestGenerate_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Generate(sampleResult(), Config{Format: "json", Stdout: &buf}))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "run-1", decoded["run_id"])
	counts := decoded["case_counts"].(map[string]any)
	assert.Equal(t, 1.0, counts["SplitInProgress"])

	dir := t.TempDir()
	require.NoError(t, Generate(sampleResult(), Config{Format: "json", OutputDir: dir}))
	_, err := os.Stat(filepath.Join(dir, JSONFile))
	assert.NoError(t, err)
}

func TestGenerate_CSV(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Generate(sampleResult(), Config{Format: "csv", OutputDir: dir}))

	f, err := os.Open(filepath.Join(dir, RecommendationsFile))
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, recommendationHeader, rows[0])
	assert.Equal(t, []string{
		"ITEM-B", "WH1", "PO3", "1-1", "V1", "Vessel", "16", "2025-06-21", "2025-25W",
		"TailBatchSimulated", "", "1", "N", "N", "N", "N",
	}, rows[1])
	assert.Equal(t, "Y", rows[2][15])
	assert.Equal(t, "", rows[2][12])

	skips, err := os.ReadFile(filepath.Join(dir, SkipsFile))
	require.NoError(t, err)
	assert.Contains(t, string(skips), "PO6,1,SingleDelivery,missing total lead time")
}

func TestGenerate_CSVToStdout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Generate(sampleResult(), Config{Format: "csv", Stdout: &buf}))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "item_code,warehouse"))
}
