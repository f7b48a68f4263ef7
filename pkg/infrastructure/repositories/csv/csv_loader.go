package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ErrorLSC/QMS/pkg/domain/entities"
)

const dateLayout = "2006-01-02"

// Loader handles loading ETA input tables from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// Column headers of the input tables
var (
	ShipmentHeader = []string{
		"po_number", "po_line", "item_code", "warehouse", "vendor_code", "transport_mode",
		"ordered_qty", "remaining_qty", "in_transit_qty", "received_qty", "shipped_qty",
		"po_entry_date", "invoice_date", "actual_delivery_date", "transport_time",
		"closed", "comment", "order_type",
	}

	VendorTransportHeader = []string{"vendor_code", "warehouse", "transport_mode", "mean", "std", "modal", "q60", "q90", "smoothed", "sample_count"}

	VendorMasterHeader = []string{"vendor_code", "vendor_name", "transport_mode", "lead_time_days", "vendor_type", "active"}

	InventoryLeadTimeHeader = []string{"item_code", "warehouse", "lead_time_days"}

	BatchProfileHeader = []string{
		"item_code", "warehouse", "vendor_code", "transport_mode", "batch_prone", "batch_trigger_qty",
		"predicted_batch_count", "predicted_batch_qty", "predicted_interval_days", "predicted_tail_qty_rate",
	}

	DeliveryBehaviorHeader = []string{
		"item_code", "warehouse", "vendor_code", "transport_mode", "total_pos", "split_rate",
		"avg_batch_count", "tail_qty_rate", "interval_days", "typical_single_batch_qty", "max_single_batch_qty",
	}

	SmartLeadTimeHeader = []string{
		"item_code", "warehouse", "vendor_code", "transport_mode",
		"mean", "modal", "q60", "q90", "smoothed", "q60_prep", "sample_count",
	}
)

// LoadHistory loads closed purchase-order shipments
func (l *Loader) LoadHistory(filename string) ([]*entities.ShipmentRecord, error) {
	return l.loadShipments(filename, "history", entities.SourceHistory)
}

// LoadInTransit loads open purchase-order lines
func (l *Loader) LoadInTransit(filename string) ([]*entities.ShipmentRecord, error) {
	return l.loadShipments(filename, "in-transit", entities.SourceInTransit)
}

func (l *Loader) loadShipments(filename, name string, source entities.SourceTag) ([]*entities.ShipmentRecord, error) {
	records, err := readTable(filename, name, ShipmentHeader)
	if err != nil {
		return nil, err
	}

	out := make([]*entities.ShipmentRecord, 0, len(records))
	for i, record := range records {
		rec, err := parseShipment(record, source)
		if err != nil {
			return nil, fmt.Errorf("%s CSV row %d: %w", name, i+2, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// LoadVendorTransportStats loads per-lane transit statistics
func (l *Loader) LoadVendorTransportStats(filename string) ([]*entities.VendorTransportStat, error) {
	expectedHeader := VendorTransportHeader
	records, err := readTable(filename, "vendor transport stats", expectedHeader)
	if err != nil {
		return nil, err
	}

	out := make([]*entities.VendorTransportStat, 0, len(records))
	for i, record := range records {
		p := fieldParser{record: record, header: expectedHeader}
		stat := &entities.VendorTransportStat{
			VendorCode:  p.text(0),
			Warehouse:   p.text(1),
			Mode:        entities.ParseTransportMode(record[2]),
			Mean:        p.optFloat(3),
			Std:         p.optFloat(4),
			Modal:       p.optFloat(5),
			Q60:         p.optFloat(6),
			Q90:         p.optFloat(7),
			Smoothed:    p.optFloat(8),
			SampleCount: p.integer(9),
		}
		if p.err != nil {
			return nil, fmt.Errorf("vendor transport stats CSV row %d: %w", i+2, p.err)
		}
		out = append(out, stat)
	}
	return out, nil
}

// LoadVendorMaster loads static vendor lead times
func (l *Loader) LoadVendorMaster(filename string) ([]*entities.VendorMasterEntry, error) {
	expectedHeader := VendorMasterHeader
	records, err := readTable(filename, "vendor master", expectedHeader)
	if err != nil {
		return nil, err
	}

	out := make([]*entities.VendorMasterEntry, 0, len(records))
	for i, record := range records {
		p := fieldParser{record: record, header: expectedHeader}
		entry := &entities.VendorMasterEntry{
			VendorCode:   p.text(0),
			VendorName:   p.text(1),
			Mode:         entities.ParseTransportMode(record[2]),
			LeadTimeDays: p.integer(3),
			VendorType:   p.text(4),
			Active:       p.flag(5),
		}
		if p.err != nil {
			return nil, fmt.Errorf("vendor master CSV row %d: %w", i+2, p.err)
		}
		out = append(out, entry)
	}
	return out, nil
}

// LoadBatchProfiles loads predicted batching behaviour per item lane
func (l *Loader) LoadBatchProfiles(filename string) ([]*entities.BatchProfile, error) {
	expectedHeader := BatchProfileHeader
	records, err := readTable(filename, "batch profile", expectedHeader)
	if err != nil {
		return nil, err
	}

	out := make([]*entities.BatchProfile, 0, len(records))
	for i, record := range records {
		p := fieldParser{record: record, header: expectedHeader}
		profile := &entities.BatchProfile{
			ItemCode:              p.text(0),
			Warehouse:             p.text(1),
			VendorCode:            p.text(2),
			Mode:                  entities.ParseTransportMode(record[3]),
			BatchProne:            p.flag(4),
			BatchTriggerQty:       p.optFloat(5),
			PredictedBatchCount:   p.optInt(6),
			PredictedBatchQty:     p.optFloat(7),
			PredictedIntervalDays: p.optFloat(8),
			PredictedTailQtyRate:  p.optFloat(9),
		}
		if p.err != nil {
			return nil, fmt.Errorf("batch profile CSV row %d: %w", i+2, p.err)
		}
		out = append(out, profile)
	}
	return out, nil
}

// LoadDeliveryBehavior loads historical delivery behaviour per item lane
func (l *Loader) LoadDeliveryBehavior(filename string) ([]*entities.DeliveryBehaviorStat, error) {
	expectedHeader := DeliveryBehaviorHeader
	records, err := readTable(filename, "delivery behavior", expectedHeader)
	if err != nil {
		return nil, err
	}

	out := make([]*entities.DeliveryBehaviorStat, 0, len(records))
	for i, record := range records {
		p := fieldParser{record: record, header: expectedHeader}
		stat := &entities.DeliveryBehaviorStat{
			ItemCode:              p.text(0),
			Warehouse:             p.text(1),
			VendorCode:            p.text(2),
			Mode:                  entities.ParseTransportMode(record[3]),
			TotalPOs:              p.integer(4),
			SplitRate:             p.float(5),
			AvgBatchCount:         p.float(6),
			TailQtyRate:           p.float(7),
			IntervalDays:          p.float(8),
			TypicalSingleBatchQty: p.float(9),
			MaxSingleBatchQty:     p.optFloat(10),
		}
		if p.err != nil {
			return nil, fmt.Errorf("delivery behavior CSV row %d: %w", i+2, p.err)
		}
		out = append(out, stat)
	}
	return out, nil
}

// LoadSmartLeadTimes loads combined prepare+transport lead-time estimates
func (l *Loader) LoadSmartLeadTimes(filename string) ([]*entities.SmartLeadTime, error) {
	expectedHeader := SmartLeadTimeHeader
	records, err := readTable(filename, "smart lead time", expectedHeader)
	if err != nil {
		return nil, err
	}

	out := make([]*entities.SmartLeadTime, 0, len(records))
	for i, record := range records {
		p := fieldParser{record: record, header: expectedHeader}
		est := &entities.SmartLeadTime{
			ItemCode:    p.text(0),
			Warehouse:   p.text(1),
			VendorCode:  p.text(2),
			Mode:        entities.ParseTransportMode(record[3]),
			Mean:        p.optFloat(4),
			Modal:       p.optFloat(5),
			Q60:         p.optFloat(6),
			Q90:         p.optFloat(7),
			Smoothed:    p.optFloat(8),
			Q60Prep:     p.optFloat(9),
			SampleCount: p.integer(10),
		}
		if p.err != nil {
			return nil, fmt.Errorf("smart lead time CSV row %d: %w", i+2, p.err)
		}
		out = append(out, est)
	}
	return out, nil
}

// LoadInventoryLeadTimes loads item master lead times
func (l *Loader) LoadInventoryLeadTimes(filename string) ([]*entities.InventoryLeadTime, error) {
	expectedHeader := InventoryLeadTimeHeader
	records, err := readTable(filename, "inventory lead time", expectedHeader)
	if err != nil {
		return nil, err
	}

	out := make([]*entities.InventoryLeadTime, 0, len(records))
	for i, record := range records {
		p := fieldParser{record: record, header: expectedHeader}
		row := &entities.InventoryLeadTime{
			ItemCode:     p.text(0),
			Warehouse:    p.text(1),
			LeadTimeDays: p.float(2),
		}
		if p.err != nil {
			return nil, fmt.Errorf("inventory lead time CSV row %d: %w", i+2, p.err)
		}
		out = append(out, row)
	}
	return out, nil
}

// readTable opens filename, validates the header and returns the data rows.
// A header-only file yields no rows.
func readTable(filename, name string, expectedHeader []string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file %s: %w", name, filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", name, err)
	}

	if len(records) < 1 {
		return nil, fmt.Errorf("%s CSV must have a header row", name)
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("%s CSV header mismatch. Expected: %v, Got: %v", name, expectedHeader, header)
	}

	rows := records[1:]
	for i, record := range rows {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("%s CSV row %d: expected %d columns, got %d", name, i+2, len(expectedHeader), len(record))
		}
	}
	return rows, nil
}

// Helper functions for parsing CSV records

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}

func parseShipment(record []string, source entities.SourceTag) (*entities.ShipmentRecord, error) {
	p := fieldParser{record: record, header: ShipmentHeader}
	ordered := p.decimal(6)
	remaining := p.decimal(7)
	inTransit := p.decimal(8)
	received := p.decimal(9)
	shipped := p.decimal(10)
	entry := p.date(11)
	invoice := p.date(12)
	delivered := p.date(13)
	transit := p.optFloat(14)
	closed := p.flag(15)
	if p.err != nil {
		return nil, p.err
	}

	rec, err := entities.NewShipmentRecord(
		p.text(0), p.text(1), p.text(2), p.text(3), p.text(4),
		entities.ParseTransportMode(record[5]),
		ordered, remaining, source,
	)
	if err != nil {
		return nil, err
	}
	rec.OriginalTransportMode = rec.TransportMode
	rec.InTransitQty = inTransit
	rec.ReceivedQty = received
	rec.ShippedQty = shipped
	rec.POEntryDate = entry
	rec.InvoiceDate = invoice
	rec.ActualDeliveryDate = delivered
	rec.TransportTime = transit
	rec.Closed = closed
	rec.Comment = strings.TrimSpace(record[16])
	rec.OrderType = strings.TrimSpace(record[17])
	return rec, nil
}

// fieldParser converts the columns of one record and keeps the first error
type fieldParser struct {
	record []string
	header []string
	err    error
}

func (p *fieldParser) fail(i int, kind string) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid %s: %q (expected %s)", p.header[i], p.record[i], kind)
	}
}

func (p *fieldParser) text(i int) string {
	return strings.TrimSpace(p.record[i])
}

func (p *fieldParser) float(i int) float64 {
	v := p.optFloat(i)
	if v == nil {
		return 0
	}
	return *v
}

func (p *fieldParser) optFloat(i int) *float64 {
	s := p.text(i)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		p.fail(i, "a number")
		return nil
	}
	return &v
}

func (p *fieldParser) integer(i int) int {
	v := p.optInt(i)
	if v == nil {
		return 0
	}
	return *v
}

func (p *fieldParser) optInt(i int) *int {
	s := p.text(i)
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		// exports sometimes write whole numbers as 3.0
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int(f)) {
			p.fail(i, "an integer")
			return nil
		}
		v = int(f)
	}
	return &v
}

func (p *fieldParser) decimal(i int) decimal.Decimal {
	s := p.text(i)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		p.fail(i, "a decimal")
		return decimal.Zero
	}
	return d
}

func (p *fieldParser) date(i int) time.Time {
	s := p.text(i)
	if s == "" {
		return time.Time{}
	}
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		p.fail(i, "YYYY-MM-DD")
		return time.Time{}
	}
	return t
}

func (p *fieldParser) flag(i int) bool {
	switch strings.ToLower(p.text(i)) {
	case "y", "yes", "true", "1":
		return true
	case "", "n", "no", "false", "0":
		return false
	default:
		p.fail(i, "Y or N")
		return false
	}
}
