// Package config loads the dashboard configuration from YAML.
package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/reoring/immjson"
	"github.com/reoring/immjson/forecast"
	"github.com/reoring/immjson/internal/ringbuf"
	"github.com/reoring/immjson/sensor"
	"github.com/reoring/immjson/source"
)

// Config is the whole dashboard configuration.
type Config struct {
	Forecast Forecast `yaml:"forecast"`
	Decode   Decode   `yaml:"decode"`
	Sensor   Sensor   `yaml:"sensor"`
	Log      Log      `yaml:"log"`
}

// Forecast selects what to fetch and how.
type Forecast struct {
	Endpoint  string  `yaml:"endpoint"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	Days      int     `yaml:"days"`
	Timezone  string  `yaml:"timezone"`
	ChunkSize int     `yaml:"chunk_size"`
	// Timeout bounds one fetch; 0 means no limit.
	Timeout time.Duration `yaml:"timeout"`
}

// Decode carries the decoder limits.
type Decode struct {
	MaxDepth     int  `yaml:"max_depth"`
	ReuseStrings bool `yaml:"reuse_strings"`
	// MaxStringBytes caps the string buffer; 0 means no cap.
	MaxStringBytes int   `yaml:"max_string_bytes"`
	MaxBytes       int64 `yaml:"max_bytes"`
}

// Sensor sizes the sample store.
type Sensor struct {
	Capacity int `yaml:"capacity"`
}

// Log configures the zap logger.
type Log struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Forecast: Forecast{
			Endpoint:  forecast.DefaultBaseURL,
			Latitude:  48.8534,
			Longitude: 2.3488,
			Days:      forecast.Days,
			Timezone:  "auto",
			ChunkSize: source.DefaultChunkSize,
			Timeout:   10 * time.Second,
		},
		Decode: Decode{MaxDepth: immjson.DefaultMaxDepth},
		Sensor: Sensor{Capacity: sensor.DefaultCapacity},
		Log:    Log{Level: "info"},
	}
}

// Load reads path over Default. Unknown and repeated keys are errors.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return Parse(data)
}

// Parse is Load for in-memory YAML.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := checkDuplicateKeys(data); err != nil {
		return Config{}, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every section and reports all problems at once.
func (c Config) Validate() error {
	var errs []error
	f := c.Forecast
	if f.Days < 1 || f.Days > forecast.Days {
		errs = append(errs, fmt.Errorf("forecast.days: %d not in 1..%d", f.Days, forecast.Days))
	}
	if f.Latitude < -90 || f.Latitude > 90 {
		errs = append(errs, fmt.Errorf("forecast.latitude: %g out of range", f.Latitude))
	}
	if f.Longitude < -180 || f.Longitude > 180 {
		errs = append(errs, fmt.Errorf("forecast.longitude: %g out of range", f.Longitude))
	}
	if f.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("forecast.chunk_size: must be positive"))
	}
	if f.Timeout < 0 {
		errs = append(errs, fmt.Errorf("forecast.timeout: must not be negative"))
	}
	if c.Decode.MaxDepth < 0 || c.Decode.MaxStringBytes < 0 || c.Decode.MaxBytes < 0 {
		errs = append(errs, fmt.Errorf("decode: limits must not be negative"))
	}
	if !ringbuf.IsPowerOfTwo(c.Sensor.Capacity) {
		errs = append(errs, fmt.Errorf("sensor.capacity: %d is not a power of two", c.Sensor.Capacity))
	}
	if _, err := zap.ParseAtomicLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	return errors.Join(errs...)
}

// ParseOpt converts the decode section.
func (d Decode) ParseOpt() immjson.ParseOpt {
	opt := immjson.ParseOpt{MaxDepth: d.MaxDepth, MaxBytes: d.MaxBytes}
	if d.ReuseStrings {
		opt.Strings = immjson.StringsReuse
	}
	if d.MaxStringBytes > 0 {
		opt.Grow = immjson.LimitGrow(d.MaxStringBytes)
	}
	return opt
}

// Request converts the forecast section.
func (f Forecast) Request() forecast.Request {
	return forecast.Request{
		BaseURL:   f.Endpoint,
		Latitude:  f.Latitude,
		Longitude: f.Longitude,
		Days:      f.Days,
		Timezone:  f.Timezone,
	}
}

// WithTimeout derives the context for one fetch. A zero Timeout adds no
// deadline, as with http.Client.
func (f Forecast) WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if f.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, f.Timeout)
}

// Logger builds the zap logger. verbose forces debug level.
func (l Log) Logger(verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if l.Development {
		zc = zap.NewDevelopmentConfig()
	}
	lvl, err := zap.ParseAtomicLevel(l.Level)
	if err != nil {
		return nil, err
	}
	if verbose {
		lvl = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	zc.Level = lvl
	return zc.Build()
}
