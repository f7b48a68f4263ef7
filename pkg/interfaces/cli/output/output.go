package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ErrorLSC/QMS/pkg/application/dto"
	"github.com/ErrorLSC/QMS/pkg/application/services/snapshot"
	"github.com/ErrorLSC/QMS/pkg/domain/entities"
)

// File names written under Config.OutputDir
const (
	TextFile            = "eta_results.txt"
	JSONFile            = "eta_results.json"
	RecommendationsFile = "eta_recommendations.csv"
	SkipsFile           = "eta_skips.csv"
)

// Config holds configuration for output generation
type Config struct {
	Format    string
	OutputDir string
	Verbose   bool
	RunTime   time.Duration
	Changes   *entities.ChangeSummary

	// Stdout receives console output; nil means os.Stdout
	Stdout io.Writer
}

func (c Config) stdout() io.Writer {
	if c.Stdout == nil {
		return os.Stdout
	}
	return c.Stdout
}

// Generate creates output in the specified format
func Generate(result *dto.ETAResult, config Config) error {
	switch config.Format {
	case "text":
		return generateTextOutput(result, config)
	case "json":
		return generateJSONOutput(result, config)
	case "csv":
		return generateCSVOutput(result, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// generateTextOutput creates human-readable text output
func generateTextOutput(result *dto.ETAResult, config Config) error {
	out := config.stdout()
	var file *os.File
	if config.OutputDir != "" {
		if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		filename := filepath.Join(config.OutputDir, TextFile)
		f, err := os.Create(filename)
		if err != nil {
			return fmt.Errorf("failed to create text file: %w", err)
		}
		defer f.Close()
		file = f
		out = io.MultiWriter(out, f)
	}

	writeText(out, result, config)

	if file != nil && config.Verbose {
		fmt.Fprintf(config.stdout(), "💾 Results saved to: %s\n", file.Name())
	}
	return nil
}

func writeText(w io.Writer, result *dto.ETAResult, config Config) {
	fmt.Fprintf(w, "📊 ETA Results Summary\n")
	fmt.Fprintf(w, "======================\n\n")

	fmt.Fprintf(w, "Run: %s\n", result.RunID)
	fmt.Fprintf(w, "Generated: %s\n", result.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Recommendations: %d\n", len(result.Recommendations))
	fmt.Fprintf(w, "Skipped Lines: %d\n", result.SkipCount())
	if config.RunTime > 0 {
		fmt.Fprintf(w, "Run Time: %v\n", config.RunTime)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "📦 Open Lines by Case:\n")
	for _, c := range entities.AllCases {
		fmt.Fprintf(w, "  %-16s %d\n", c, result.CaseCounts[c])
	}
	fmt.Fprintln(w)

	if len(result.Corrections) > 0 {
		fmt.Fprintf(w, "🚚 Transport Mode Corrections:\n")
		fmt.Fprintf(w, "%-18s %-10s %-10s %-10s %-10s\n", "Stage", "Accepted", "Reassigned", "Unresolved", "NoEvidence")
		for _, stage := range []string{dto.CorrectionDelivery, dto.CorrectionShipped} {
			c, ok := result.Corrections[stage]
			if !ok {
				continue
			}
			fmt.Fprintf(w, "%-18s %-10d %-10d %-10d %-10d\n", stage, c.Accepted, c.Reassigned, c.Unresolved, c.NoEvidence)
		}
		fmt.Fprintln(w)
	}

	if config.Changes != nil {
		fmt.Fprintf(w, "🗄  Snapshot: %d inserted, %d updated, %d unchanged, %d deleted\n\n",
			config.Changes.Inserted, config.Changes.Updated, config.Changes.Unchanged, config.Changes.Deleted)
	}

	if len(result.Recommendations) > 0 {
		fmt.Fprintf(w, "📋 Recommendations:\n")
		fmt.Fprintf(w, "%-12s %-6s %-10s %-7s %-10s %-8s %-11s %-9s %-30s\n",
			"Item", "WH", "PO", "Line", "Mode", "Qty", "ETA", "Week", "Flag")
		fmt.Fprintf(w, "%-12s %-6s %-10s %-7s %-10s %-8s %-11s %-9s %-30s\n",
			"------------", "------", "----------", "-------", "----------", "--------", "-----------", "---------", "------------------------------")
		for _, r := range result.Recommendations {
			flag := string(r.Flag)
			if r.Overdue {
				flag += " (overdue)"
			}
			fmt.Fprintf(w, "%-12s %-6s %-10s %-7s %-10s %-8s %-11s %-9s %-30s\n",
				r.ItemCode,
				r.Warehouse,
				r.PONumber,
				r.POLine,
				r.TransportMode,
				r.Quantity.String(),
				snapshot.FormatDate(r.ETADate),
				r.ETAWeek,
				flag)
		}
		fmt.Fprintln(w)
	}

	if len(result.Skips) > 0 {
		fmt.Fprintf(w, "⚠️  Skipped Lines:\n")
		fmt.Fprintf(w, "%-10s %-7s %-16s %s\n", "PO", "Line", "Case", "Reason")
		for _, s := range result.Skips {
			fmt.Fprintf(w, "%-10s %-7s %-16s %s\n", s.PONumber, s.POLine, s.Case, s.Reason)
		}
		fmt.Fprintln(w)
	}
}

// generateJSONOutput creates JSON output
func generateJSONOutput(result *dto.ETAResult, config Config) error {
	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if config.OutputDir == "" {
		fmt.Fprintln(config.stdout(), string(jsonData))
		return nil
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := filepath.Join(config.OutputDir, JSONFile)
	if err := os.WriteFile(filename, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}

	if config.Verbose {
		fmt.Fprintf(config.stdout(), "💾 JSON results saved to: %s\n", filename)
	}
	return nil
}

// generateCSVOutput creates CSV output
func generateCSVOutput(result *dto.ETAResult, config Config) error {
	if config.OutputDir == "" {
		return WriteRecommendationsCSV(config.stdout(), result.Recommendations)
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	recsFile := filepath.Join(config.OutputDir, RecommendationsFile)
	if err := writeFile(recsFile, func(w io.Writer) error {
		return WriteRecommendationsCSV(w, result.Recommendations)
	}); err != nil {
		return fmt.Errorf("failed to write recommendations CSV: %w", err)
	}

	skipsFile := filepath.Join(config.OutputDir, SkipsFile)
	if err := writeFile(skipsFile, func(w io.Writer) error {
		return WriteSkipsCSV(w, result.Skips)
	}); err != nil {
		return fmt.Errorf("failed to write skips CSV: %w", err)
	}

	if config.Verbose {
		fmt.Fprintf(config.stdout(), "💾 CSV results saved to:\n")
		fmt.Fprintf(config.stdout(), "  Recommendations: %s\n", recsFile)
		fmt.Fprintf(config.stdout(), "  Skips: %s\n", skipsFile)
	}
	return nil
}

var recommendationHeader = []string{
	"item_code", "warehouse", "po_number", "po_line", "vendor_code", "transport_mode",
	"quantity", "eta_date", "eta_week", "eta_flag", "comment", "batch_index",
	"is_final_batch", "fallback_transport_used", "fallback_total_lead_used", "overdue",
}

// WriteRecommendationsCSV writes one row per recommendation. Flags use Y/N.
func WriteRecommendationsCSV(w io.Writer, recs []*entities.ETARecommendation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(recommendationHeader); err != nil {
		return err
	}
	for _, r := range recs {
		row := []string{
			r.ItemCode,
			r.Warehouse,
			r.PONumber,
			r.POLine,
			r.VendorCode,
			string(r.TransportMode),
			r.Quantity.String(),
			snapshot.FormatDate(r.ETADate),
			r.ETAWeek,
			string(r.Flag),
			r.Comment,
			strconv.Itoa(r.BatchIndex),
			snapshot.FormatOptionalFlag(r.IsFinalBatch),
			snapshot.FormatFlag(r.FallbackTransportUsed),
			snapshot.FormatFlag(r.FallbackTotalLeadUsed),
			snapshot.FormatFlag(r.Overdue),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSkipsCSV writes one row per skipped line
func WriteSkipsCSV(w io.Writer, skips []dto.Skip) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"po_number", "po_line", "case", "reason"}); err != nil {
		return err
	}
	for _, s := range skips {
		if err := cw.Write([]string{s.PONumber, s.POLine, s.Case.String(), s.Reason}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeFile(filename string, write func(io.Writer) error) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
