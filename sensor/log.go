package sensor

import (
	"context"
	"io"

	gojson "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/reoring/immjson"
	"github.com/reoring/immjson/dsl"
	"github.com/reoring/immjson/internal/ringbuf"
)

// A sample log is a JSON array, oldest first:
//
//	[{"ts":1760500000,"temperature":21.4,"humidity":45.2,"co2":612}, ...]
//
// "sht4x_err" and "scd4x_err" carry nonzero sensor error codes.

func errHook(set func(f Flags, code uint8) Flags) dsl.Target[Sample] {
	return dsl.Hook(func(d *immjson.Decoder, s *Sample) error {
		code, err := d.ExpectUint(8)
		if err != nil {
			return err
		}
		s.Flags = set(s.Flags, uint8(code))
		return nil
	})
}

// SampleSchema decodes one log entry into a Sample.
var SampleSchema = dsl.ObjectOf[Sample]().
	Field("ts", dsl.Hook(func(d *immjson.Decoder, s *Sample) error {
		ts, err := d.ExpectUint(timestampBits)
		if err != nil {
			return err
		}
		s.Flags = s.Flags.WithTimestamp(ts)
		return nil
	})).
	Field("temperature", dsl.Into(func(s *Sample) *float32 { return &s.TemperatureC }, dsl.Float32())).
	Field("humidity", dsl.Into(func(s *Sample) *float32 { return &s.RelHumidity }, dsl.Float32())).
	Field("co2", dsl.Into(func(s *Sample) *uint16 { return &s.CO2ppm }, dsl.Uint[uint16]())).
	Field("sht4x_err", errHook(func(f Flags, c uint8) Flags { return PackFlags(f.Timestamp(), c, f.SCD4xErr()) })).
	Field("scd4x_err", errHook(func(f Flags, c uint8) Flags { return PackFlags(f.Timestamp(), f.SHT4xErr(), c) })).
	MustBind()

// LoadLog decodes a sample log from src and appends its samples to the
// store. Only the newest Cap() samples of a longer log are kept. On failure
// the store is unchanged.
func (s *Store) LoadLog(ctx context.Context, src immjson.ChunkSource, opts ...immjson.ParseOpt) (int, error) {
	scratch, err := ringbuf.New[Sample](s.ring.Cap())
	if err != nil {
		return 0, err
	}
	n := 0
	desc := immjson.ArrayDescriptor[Sample]{
		Reserve: func(int) *Sample {
			n++
			p := scratch.Emplace()
			*p = Sample{}
			return p
		},
		Elem: SampleSchema,
	}
	if err := immjson.DeserializeArray(ctx, src, desc, opts...); err != nil {
		Logger().Warn("sample log rejected", zap.Int("entries", n), zap.Error(err))
		return 0, err
	}
	s.mu.Lock()
	for _, smp := range scratch.All() {
		s.ring.Push(smp)
	}
	s.mu.Unlock()
	Logger().Debug("sample log loaded", zap.Int("entries", n), zap.Int("kept", scratch.Len()))
	return n, nil
}

type logEntry struct {
	TS          uint64  `json:"ts"`
	Temperature float32 `json:"temperature"`
	Humidity    float32 `json:"humidity"`
	CO2         uint16  `json:"co2"`
	SHT4xErr    uint8   `json:"sht4x_err,omitempty"`
	SCD4xErr    uint8   `json:"scd4x_err,omitempty"`
}

// WriteLog writes the stored samples to w as a sample log.
func (s *Store) WriteLog(w io.Writer) error {
	hist := s.History(-1)
	out := make([]logEntry, len(hist))
	for i, smp := range hist {
		out[len(hist)-1-i] = logEntry{
			TS:          smp.Flags.Timestamp(),
			Temperature: smp.TemperatureC,
			Humidity:    smp.RelHumidity,
			CO2:         smp.CO2ppm,
			SHT4xErr:    smp.Flags.SHT4xErr(),
			SCD4xErr:    smp.Flags.SCD4xErr(),
		}
	}
	return gojson.NewEncoder(w).Encode(out)
}
