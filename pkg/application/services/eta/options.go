package eta

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ErrorLSC/QMS/pkg/domain/entities"
)

// ErrUnknownLeadMetric is returned for lead metric names the engine cannot read
var ErrUnknownLeadMetric = errors.New("unknown lead metric")

// LeadMetric selects which statistic is read from lead-time tables
type LeadMetric string

const (
	MetricQ60      LeadMetric = "Q60"
	MetricQ90      LeadMetric = "Q90"
	MetricMean     LeadMetric = "Mean"
	MetricMode     LeadMetric = "Mode"
	MetricSmoothed LeadMetric = "Smoothed"
)

// ParseLeadMetric maps a configured name onto a LeadMetric, case-insensitively
func ParseLeadMetric(s string) (LeadMetric, error) {
	for _, m := range []LeadMetric{MetricQ60, MetricQ90, MetricMean, MetricMode, MetricSmoothed} {
		if strings.EqualFold(strings.TrimSpace(s), string(m)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLeadMetric, s)
}

// FromTransportStat reads the metric from a vendor transit statistic
func (m LeadMetric) FromTransportStat(s *entities.VendorTransportStat) *float64 {
	if s == nil {
		return nil
	}
	switch m {
	case MetricQ60:
		return s.Q60
	case MetricQ90:
		return s.Q90
	case MetricMean:
		return s.Mean
	case MetricMode:
		return s.Modal
	case MetricSmoothed:
		return s.Smoothed
	}
	return nil
}

// FromSmartLeadTime reads the metric from a combined lead-time estimate
func (m LeadMetric) FromSmartLeadTime(s *entities.SmartLeadTime) *float64 {
	if s == nil {
		return nil
	}
	switch m {
	case MetricQ60:
		return s.Q60
	case MetricQ90:
		return s.Q90
	case MetricMean:
		return s.Mean
	case MetricMode:
		return s.Modal
	case MetricSmoothed:
		return s.Smoothed
	}
	return nil
}

// Options tunes one engine
type Options struct {
	LeadMetric LeadMetric

	// Corrector tolerances in days
	ShippedToleranceDays  float64
	DeliveryToleranceDays float64

	// DefaultPrepDays is used by LikelySplit when no prepare-time estimate exists
	DefaultPrepDays int

	// Tail batch defaults used when no behaviour evidence exists
	TailIntervalDays    int
	TailBatchCount      int
	TailMinBatchQty     int64
	TailDefaultLeadDays int

	// AbortOnPrecondition makes a SingleDelivery line without total lead
	// time fail the run. When false only the offending lines are skipped.
	AbortOnPrecondition bool

	// Now is the reference clock; nil means time.Now
	Now func() time.Time
}

// DefaultOptions returns the production defaults
func DefaultOptions() Options {
	return Options{
		LeadMetric:            MetricQ60,
		ShippedToleranceDays:  0,
		DeliveryToleranceDays: 2,
		DefaultPrepDays:       0,
		TailIntervalDays:      7,
		TailBatchCount:        1,
		TailMinBatchQty:       10,
		TailDefaultLeadDays:   14,
		AbortOnPrecondition:   true,
		Now:                   time.Now,
	}
}

// Validate checks option values that would make estimates meaningless
func (o Options) Validate() error {
	if _, err := ParseLeadMetric(string(o.LeadMetric)); err != nil {
		return err
	}
	if o.TailIntervalDays < 0 {
		return fmt.Errorf("tail interval days cannot be negative, got %d", o.TailIntervalDays)
	}
	if o.TailBatchCount < 1 {
		return fmt.Errorf("tail batch count must be positive, got %d", o.TailBatchCount)
	}
	if o.TailMinBatchQty < 0 {
		return fmt.Errorf("tail min batch quantity cannot be negative, got %d", o.TailMinBatchQty)
	}
	if o.ShippedToleranceDays < 0 || o.DeliveryToleranceDays < 0 {
		return fmt.Errorf("tolerances cannot be negative")
	}
	return nil
}

func (o Options) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}
