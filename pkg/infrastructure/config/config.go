package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/ErrorLSC/QMS/pkg/application/services/eta"
)

type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	ETA      ETAConfig      `mapstructure:"eta"`
	Input    InputConfig    `mapstructure:"input"`
	Store    StoreConfig    `mapstructure:"store"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	HTTP     HTTPConfig     `mapstructure:"http"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type ETAConfig struct {
	LeadMetric            string     `mapstructure:"lead_metric"`
	ShippedToleranceDays  float64    `mapstructure:"shipped_tolerance_days"`
	DeliveryToleranceDays float64    `mapstructure:"delivery_tolerance_days"`
	DefaultPrepDays       int        `mapstructure:"default_prep_days"`
	AbortOnPrecondition   bool       `mapstructure:"abort_on_precondition"`
	Tail                  TailConfig `mapstructure:"tail"`
}

type TailConfig struct {
	IntervalDays    int   `mapstructure:"interval_days"`
	BatchCount      int   `mapstructure:"batch_count"`
	MinBatchQty     int64 `mapstructure:"min_batch_qty"`
	DefaultLeadDays int   `mapstructure:"default_lead_days"`
}

type InputConfig struct {
	Dir string `mapstructure:"dir"`
}

type StoreConfig struct {
	// Driver is sqlite, postgres or none
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type ScheduleConfig struct {
	Spec string `mapstructure:"spec"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// Options converts the eta section into engine options
func (c ETAConfig) Options() (eta.Options, error) {
	metric, err := eta.ParseLeadMetric(c.LeadMetric)
	if err != nil {
		return eta.Options{}, err
	}
	opts := eta.DefaultOptions()
	opts.LeadMetric = metric
	opts.ShippedToleranceDays = c.ShippedToleranceDays
	opts.DeliveryToleranceDays = c.DeliveryToleranceDays
	opts.DefaultPrepDays = c.DefaultPrepDays
	opts.AbortOnPrecondition = c.AbortOnPrecondition
	opts.TailIntervalDays = c.Tail.IntervalDays
	opts.TailBatchCount = c.Tail.BatchCount
	opts.TailMinBatchQty = c.Tail.MinBatchQty
	opts.TailDefaultLeadDays = c.Tail.DefaultLeadDays
	if err := opts.Validate(); err != nil {
		return eta.Options{}, fmt.Errorf("eta config: %w", err)
	}
	return opts, nil
}

// Load reads path (YAML) on top of defaults and ETA_* environment variables.
// With envOnly the file is not read.
func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ETA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", false)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", true)

	v.SetDefault("eta.lead_metric", "Q60")
	v.SetDefault("eta.shipped_tolerance_days", 0)
	v.SetDefault("eta.delivery_tolerance_days", 2)
	v.SetDefault("eta.default_prep_days", 0)
	v.SetDefault("eta.abort_on_precondition", true)
	v.SetDefault("eta.tail.interval_days", 7)
	v.SetDefault("eta.tail.batch_count", 1)
	v.SetDefault("eta.tail.min_batch_qty", 10)
	v.SetDefault("eta.tail.default_lead_days", 14)

	v.SetDefault("input.dir", "")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.dsn", "eta.db")
	v.SetDefault("schedule.spec", "")
	v.SetDefault("http.addr", ":8080")

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
