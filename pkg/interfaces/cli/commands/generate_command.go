package commands

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/ErrorLSC/QMS/pkg/domain/entities"
	loader "github.com/ErrorLSC/QMS/pkg/infrastructure/repositories/csv"
)

// GenerateConfig holds configuration for scenario generation
type GenerateConfig struct {
	Items          int       // Number of items to generate
	Vendors        int       // Number of vendors
	OpenPOs        int       // Number of open PO lines
	HistoryPerItem int       // Closed shipments per item
	Mislabeled     float64   // Share of history rows recorded with the wrong mode
	AsOf           time.Time // Reference date; zero means today
	OutputDir      string    // Output directory for generated files
	Seed           int64     // Random seed for reproducible generation
	Help           bool      // Show help
	Verbose        bool      // Verbose output

	Stdout io.Writer
}

// GenerateCommand writes a synthetic scenario directory
type GenerateCommand struct {
	config GenerateConfig
	rand   *rand.Rand
	out    io.Writer
	asOf   time.Time
}

// NewGenerateCommand creates a new generate command
func NewGenerateCommand(config GenerateConfig) *GenerateCommand {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	out := config.Stdout
	if out == nil {
		out = os.Stdout
	}
	asOf := config.AsOf
	if asOf.IsZero() {
		asOf = time.Now()
	}

	return &GenerateCommand{
		config: config,
		rand:   rand.New(rand.NewSource(seed)),
		out:    out,
		asOf:   entities.Day(asOf),
	}
}

// laneProfile is the true transit behaviour of a transport mode
type laneProfile struct {
	mode    entities.TransportMode
	minDays int
	maxDays int
}

var laneProfiles = []laneProfile{
	{entities.ModeAir, 4, 10},
	{entities.ModeVessel, 24, 42},
	{entities.ModeTruck, 1, 5},
	{entities.ModeCourier, 2, 6},
}

type genVendor struct {
	code      string
	warehouse string
	profile   laneProfile
}

type genItem struct {
	code       string
	vendor     *genVendor
	prepDays   int
	batchProne bool
	batchCount int
	interval   int
	tailShare  float64
	samples    []float64
}

type scenarioData struct {
	vendors   []*genVendor
	items     []*genItem
	history   [][]string
	inTransit [][]string
}

// Execute runs the generate command
func (cmd *GenerateCommand) Execute(ctx context.Context) error {
	if cmd.config.Help {
		cmd.printHelp()
		return nil
	}
	if err := cmd.validate(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if cmd.config.Verbose {
		fmt.Fprintf(cmd.out,
			"🔧 Generating scenario with %d items, %d vendors, %d open lines as of %s\n",
			cmd.config.Items, cmd.config.Vendors, cmd.config.OpenPOs, cmd.asOf.Format("2006-01-02"))
		fmt.Fprintf(cmd.out, "📁 Output directory: %s\n", cmd.config.OutputDir)
	}

	if err := os.MkdirAll(cmd.config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	data := &scenarioData{}
	cmd.generateMasterData(data)
	cmd.generateHistory(data)
	if err := ctx.Err(); err != nil {
		return err
	}
	cmd.generateOpenLines(data)

	tables := []struct {
		name   string
		header []string
		rows   [][]string
	}{
		{loader.HistoryFile, loader.ShipmentHeader, data.history},
		{loader.InTransitFile, loader.ShipmentHeader, data.inTransit},
		{loader.VendorTransportFile, loader.VendorTransportHeader, cmd.transportStatRows(data)},
		{loader.VendorMasterFile, loader.VendorMasterHeader, cmd.vendorMasterRows(data)},
		{loader.BatchProfileFile, loader.BatchProfileHeader, cmd.batchProfileRows(data)},
		{loader.DeliveryBehaviorFile, loader.DeliveryBehaviorHeader, cmd.deliveryBehaviorRows(data)},
		{loader.SmartLeadTimeFile, loader.SmartLeadTimeHeader, cmd.smartLeadTimeRows(data)},
		{loader.InventoryLeadTimeFile, loader.InventoryLeadTimeHeader, cmd.inventoryLeadTimeRows(data)},
	}
	for _, t := range tables {
		if cmd.config.Verbose {
			fmt.Fprintf(cmd.out, "📦 Writing %s (%d rows)...\n", t.name, len(t.rows))
		}
		if err := writeTable(filepath.Join(cmd.config.OutputDir, t.name), t.header, t.rows); err != nil {
			return fmt.Errorf("failed to write %s: %w", t.name, err)
		}
	}

	if cmd.config.Verbose {
		fmt.Fprintf(cmd.out, "✅ Scenario generated successfully in %s\n", cmd.config.OutputDir)
	}
	return nil
}

func (cmd *GenerateCommand) validate() error {
	switch {
	case cmd.config.Items < 1:
		return fmt.Errorf("items must be positive")
	case cmd.config.Vendors < 1:
		return fmt.Errorf("vendors must be positive")
	case cmd.config.OpenPOs < 0:
		return fmt.Errorf("open POs cannot be negative")
	case cmd.config.HistoryPerItem < 0:
		return fmt.Errorf("history per item cannot be negative")
	case cmd.config.Mislabeled < 0 || cmd.config.Mislabeled > 1:
		return fmt.Errorf("mislabeled share must be between 0 and 1")
	case cmd.config.OutputDir == "":
		return fmt.Errorf("output directory is required")
	}
	return nil
}

func (cmd *GenerateCommand) generateMasterData(data *scenarioData) {
	warehouses := []string{"WH1", "WH2"}
	for i := 0; i < cmd.config.Vendors; i++ {
		data.vendors = append(data.vendors, &genVendor{
			code:      fmt.Sprintf("V%03d", i+1),
			warehouse: warehouses[cmd.rand.Intn(len(warehouses))],
			profile:   laneProfiles[cmd.rand.Intn(len(laneProfiles))],
		})
	}

	for i := 0; i < cmd.config.Items; i++ {
		item := &genItem{
			code:     fmt.Sprintf("ITEM-%05d", i+1),
			vendor:   data.vendors[cmd.rand.Intn(len(data.vendors))],
			prepDays: 2 + cmd.rand.Intn(20),
		}
		if cmd.rand.Float64() < 0.25 {
			item.batchProne = true
			item.batchCount = 2 + cmd.rand.Intn(3)
			item.interval = 5 + cmd.rand.Intn(10)
			item.tailShare = 0.3 + 0.4*cmd.rand.Float64()
		}
		data.items = append(data.items, item)
	}
}

func (cmd *GenerateCommand) transitDays(p laneProfile) int {
	return p.minDays + cmd.rand.Intn(p.maxDays-p.minDays+1)
}

// generateHistory writes closed shipments. Mislabeled rows keep their true
// transit time under another mode's label.
func (cmd *GenerateCommand) generateHistory(data *scenarioData) {
	po := 0
	for _, item := range data.items {
		for k := 0; k < cmd.config.HistoryPerItem; k++ {
			po++
			qty := 1 + cmd.rand.Intn(100)
			entry := cmd.asOf.AddDate(0, 0, -(60 + cmd.rand.Intn(340)))
			invoice := entry.AddDate(0, 0, item.prepDays)
			transit := cmd.transitDays(item.vendor.profile)

			mode := item.vendor.profile.mode
			if cmd.rand.Float64() < cmd.config.Mislabeled {
				mode = cmd.otherMode(mode)
			} else {
				item.samples = append(item.samples, float64(transit))
			}

			data.history = append(data.history, shipmentRow(
				fmt.Sprintf("H%06d", po), "1", item, mode,
				qty, 0, 0, qty, entry, invoice, invoice.AddDate(0, 0, transit), strconv.Itoa(transit), true, "",
			))
		}
	}
}

func (cmd *GenerateCommand) otherMode(m entities.TransportMode) entities.TransportMode {
	for {
		p := laneProfiles[cmd.rand.Intn(len(laneProfiles))]
		if p.mode != m {
			return p.mode
		}
	}
}

// generateOpenLines spreads open lines over the five delivery states
func (cmd *GenerateCommand) generateOpenLines(data *scenarioData) {
	for i := 0; i < cmd.config.OpenPOs; i++ {
		item := data.items[cmd.rand.Intn(len(data.items))]
		po := fmt.Sprintf("PO%06d", i+1)
		mode := item.vendor.profile.mode
		qty := 10 + cmd.rand.Intn(190)
		entry := cmd.asOf.AddDate(0, 0, -(5 + cmd.rand.Intn(40)))
		var zero time.Time

		switch r := cmd.rand.Float64(); {
		case r < 0.15:
			invoice := cmd.asOf.AddDate(0, 0, cmd.rand.Intn(30)-10)
			data.inTransit = append(data.inTransit, shipmentRow(po, "1", item, mode,
				qty, qty, 0, 0, entry, invoice, zero, "", false, "Delivery Date Confirmed"))
		case r < 0.40:
			invoice := cmd.asOf.AddDate(0, 0, -cmd.rand.Intn(item.vendor.profile.maxDays+1))
			data.inTransit = append(data.inTransit, shipmentRow(po, "1", item, mode,
				qty, qty, qty, 0, entry, invoice, zero, "", false, ""))
		case r < 0.60:
			received := qty / 2
			invoice := entry.AddDate(0, 0, item.prepDays)
			transit := cmd.transitDays(item.vendor.profile)
			data.history = append(data.history, shipmentRow(po, "1", item, mode,
				qty, 0, 0, received, entry, invoice, invoice.AddDate(0, 0, transit), strconv.Itoa(transit), true, ""))
			data.inTransit = append(data.inTransit, shipmentRow(po, "1", item, mode,
				qty, qty-received, 0, received, entry, zero, zero, "", false, ""))
		default:
			data.inTransit = append(data.inTransit, shipmentRow(po, "1", item, mode,
				qty, qty, 0, 0, entry, zero, zero, "", false, ""))
		}
	}
}

func shipmentRow(
	po, line string,
	item *genItem,
	mode entities.TransportMode,
	ordered, remaining, inTransit, received int,
	entry, invoice, delivered time.Time,
	transit string,
	closed bool,
	comment string,
) []string {
	shipped := inTransit
	if closed {
		shipped = received
	}
	return []string{
		po, line, item.code, item.vendor.warehouse, item.vendor.code, string(mode),
		strconv.Itoa(ordered), strconv.Itoa(remaining), strconv.Itoa(inTransit),
		strconv.Itoa(received), strconv.Itoa(shipped),
		formatDay(entry), formatDay(invoice), formatDay(delivered), transit,
		yesNo(closed), comment, "NB",
	}
}

// transportStatRows aggregates correctly labelled history per vendor lane
func (cmd *GenerateCommand) transportStatRows(data *scenarioData) [][]string {
	byVendor := make(map[string][]float64)
	for _, item := range data.items {
		byVendor[item.vendor.code] = append(byVendor[item.vendor.code], item.samples...)
	}

	var rows [][]string
	for _, v := range data.vendors {
		s := newSampleStats(byVendor[v.code])
		if s.n == 0 {
			continue
		}
		rows = append(rows, []string{
			v.code, v.warehouse, string(v.profile.mode),
			formatNum(s.mean), formatNum(s.std), formatNum(s.modal),
			formatNum(s.quantile(0.6)), formatNum(s.quantile(0.9)), formatNum(s.mean),
			strconv.Itoa(s.n),
		})
	}
	return rows
}

func (cmd *GenerateCommand) vendorMasterRows(data *scenarioData) [][]string {
	rows := make([][]string, 0, len(data.vendors))
	for _, v := range data.vendors {
		lead := (v.profile.minDays + v.profile.maxDays) / 2
		rows = append(rows, []string{
			v.code, "Vendor " + v.code, string(v.profile.mode), strconv.Itoa(lead), "External", "Y",
		})
	}
	return rows
}

func (cmd *GenerateCommand) batchProfileRows(data *scenarioData) [][]string {
	var rows [][]string
	for _, item := range data.items {
		if !item.batchProne {
			continue
		}
		rows = append(rows, []string{
			item.code, item.vendor.warehouse, item.vendor.code, string(item.vendor.profile.mode),
			"Y", "50", strconv.Itoa(item.batchCount), "",
			strconv.Itoa(item.interval), formatNum(item.tailShare),
		})
	}
	return rows
}

func (cmd *GenerateCommand) deliveryBehaviorRows(data *scenarioData) [][]string {
	var rows [][]string
	for _, item := range data.items {
		splitRate, batches, tail, interval := 0.0, 1.0, 0.0, 0.0
		if item.batchProne {
			splitRate, batches, tail, interval = 0.6, float64(item.batchCount), item.tailShare, float64(item.interval)
		}
		rows = append(rows, []string{
			item.code, item.vendor.warehouse, item.vendor.code, string(item.vendor.profile.mode),
			strconv.Itoa(cmd.config.HistoryPerItem), formatNum(splitRate), formatNum(batches),
			formatNum(tail), formatNum(interval), "20", "",
		})
	}
	return rows
}

func (cmd *GenerateCommand) smartLeadTimeRows(data *scenarioData) [][]string {
	var rows [][]string
	for _, item := range data.items {
		s := newSampleStats(item.samples)
		if s.n == 0 {
			continue
		}
		prep := float64(item.prepDays)
		rows = append(rows, []string{
			item.code, item.vendor.warehouse, item.vendor.code, string(item.vendor.profile.mode),
			formatNum(prep + s.mean), formatNum(prep + s.modal),
			formatNum(prep + s.quantile(0.6)), formatNum(prep + s.quantile(0.9)), formatNum(prep + s.mean),
			formatNum(prep), strconv.Itoa(s.n),
		})
	}
	return rows
}

func (cmd *GenerateCommand) inventoryLeadTimeRows(data *scenarioData) [][]string {
	rows := make([][]string, 0, len(data.items))
	for _, item := range data.items {
		lead := item.prepDays + item.vendor.profile.maxDays
		rows = append(rows, []string{item.code, item.vendor.warehouse, strconv.Itoa(lead)})
	}
	return rows
}

type sampleStats struct {
	sorted []float64
	n      int
	mean   float64
	std    float64
	modal  float64
}

func newSampleStats(samples []float64) sampleStats {
	s := sampleStats{sorted: append([]float64(nil), samples...), n: len(samples)}
	if s.n == 0 {
		return s
	}
	sort.Float64s(s.sorted)

	counts := make(map[float64]int)
	sum := 0.0
	for _, v := range s.sorted {
		sum += v
		counts[v]++
		if counts[v] > counts[s.modal] || (counts[v] == counts[s.modal] && v < s.modal) {
			s.modal = v
		}
	}
	s.mean = sum / float64(s.n)
	for _, v := range s.sorted {
		s.std += (v - s.mean) * (v - s.mean)
	}
	s.std = math.Sqrt(s.std / float64(s.n))
	return s
}

func (s sampleStats) quantile(q float64) float64 {
	idx := int(math.Ceil(q*float64(s.n))) - 1
	if idx < 0 {
		idx = 0
	}
	return s.sorted[idx]
}

func writeTable(filename string, header []string, rows [][]string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}

	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		file.Close()
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatNum(f float64) string {
	return strconv.FormatFloat(math.Round(f*100)/100, 'f', -1, 64)
}

func yesNo(b bool) string {
	if b {
		return "Y"
	}
	return "N"
}

// printHelp shows usage information
func (cmd *GenerateCommand) printHelp() {
	fmt.Fprintln(cmd.out, `ETA Scenario Generator

USAGE:
    eta generate [OPTIONS]

OPTIONS:
    -items <N>          Number of items to generate (default: 50)
    -vendors <N>        Number of vendors (default: 10)
    -open <N>           Number of open PO lines (default: 200)
    -history <N>        Closed shipments per item (default: 12)
    -mislabeled <F>     Share of history recorded with the wrong mode (default: 0.1)
    -as-of <DATE>       Reference date YYYY-MM-DD (default: today)
    -output <DIR>       Output directory for generated files (required)
    -seed <N>           Random seed for reproducible generation (optional)
    -verbose            Enable verbose output
    -help               Show this help message

EXAMPLES:
    # Generate a small scenario and estimate it
    eta generate -output ./gen -seed 42
    eta -scenario ./gen

    # Generate a large performance scenario
    eta generate -items 5000 -vendors 300 -open 50000 -output ./large -verbose`)
}
