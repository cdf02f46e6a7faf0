package sensor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/reoring/immjson/internal/ringbuf"
)

// DefaultCapacity is the ring size of a Store, one sample per 45 minutes
// over a day.
const DefaultCapacity = 32

// Sampler reads both sensors once. Bus errors that only affect one sensor
// are reported through the sample's Flags; an error return means no sample
// was taken.
type Sampler interface {
	Sample(ctx context.Context) (Sample, error)
}

// SamplerFunc adapts a function to Sampler.
type SamplerFunc func(ctx context.Context) (Sample, error)

func (f SamplerFunc) Sample(ctx context.Context) (Sample, error) { return f(ctx) }

var now = time.Now

// Store is a goroutine-safe ring of samples.
type Store struct {
	mu   sync.Mutex
	ring *ringbuf.Ring[Sample]
}

// NewStore returns an empty store. capacity must be a power of two.
func NewStore(capacity int) (*Store, error) {
	r, err := ringbuf.New[Sample](capacity)
	if err != nil {
		return nil, err
	}
	return &Store{ring: r}, nil
}

// Add stores s, evicting the oldest sample when full.
func (s *Store) Add(smp Sample) {
	s.mu.Lock()
	s.ring.Push(smp)
	s.mu.Unlock()
}

// Record takes one sample from src and stores it. A sample without a
// timestamp is stamped with the current time.
func (s *Store) Record(ctx context.Context, src Sampler) (Sample, error) {
	smp, err := src.Sample(ctx)
	if err != nil {
		Logger().Warn("sensor sample failed", zap.Error(err))
		return Sample{}, err
	}
	if smp.Flags.Timestamp() == 0 {
		smp.Flags = smp.Flags.WithTimestamp(uint64(now().Unix()))
	}
	if !smp.ClimateOK() {
		Logger().Warn("sht4x reading invalid", zap.Uint8("code", smp.Flags.SHT4xErr()))
	}
	if !smp.CO2OK() {
		Logger().Warn("scd4x reading invalid", zap.Uint8("code", smp.Flags.SCD4xErr()))
	}
	s.Add(smp)
	Logger().Debug("sensor sample stored",
		zap.Float32("temperature", smp.TemperatureC),
		zap.Float32("humidity", smp.RelHumidity),
		zap.Uint16("co2", smp.CO2ppm),
	)
	return smp, nil
}

// Latest returns the newest sample.
func (s *Store) Latest() (Sample, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ring.Newest(0)
}

// History returns up to n samples, newest first. n < 0 returns all.
func (s *Store) History(n int) []Sample {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ring.AppendNewest(nil, n)
}

// Len returns the number of samples held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ring.Len()
}

// Cap returns the store capacity.
func (s *Store) Cap() int { return s.ring.Cap() }
