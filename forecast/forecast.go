// Package forecast holds the open-meteo forecast model shown by the
// dashboard, its immjson schema, and the client that fetches it.
package forecast

import (
	"context"
	"time"
	"unsafe"

	"github.com/reoring/immjson"
	"github.com/reoring/immjson/dsl"
)

const (
	// Days is the number of forecast days the model has room for.
	Days = 2
	// HourlyPoints is the number of hourly samples, 24 per day.
	HourlyPoints = Days * 24
)

// Hourly holds the hourly series, indexed alike.
type Hourly struct {
	Time          [HourlyPoints]int64 // unix seconds
	Temperature2m [HourlyPoints]float32
	WeatherCode   [HourlyPoints]uint8 // WMO code
}

// Daily holds one entry per forecast day.
type Daily struct {
	Time    [Days]int64 // local midnight, unix seconds
	Sunrise [Days]int64
	Sunset  [Days]int64
}

// Forecast is decoded in place from the API response.
type Forecast struct {
	Latitude  float32
	Longitude float32
	Hourly    Hourly
	Daily     Daily
	// UpdatedAt is stamped after a successful decode; it is not on the wire.
	UpdatedAt time.Time
}

// Loaded reports whether a forecast has been decoded.
func (f *Forecast) Loaded() bool { return !f.UpdatedAt.IsZero() }

// Schema maps the open-meteo response onto Forecast. Unknown members such
// as "hourly_units" or "elevation" are skipped.
var Schema = dsl.ObjectOf[Forecast]().
	Field("latitude", dsl.Into(func(f *Forecast) *float32 { return &f.Latitude }, dsl.Float32())).
	Field("longitude", dsl.Into(func(f *Forecast) *float32 { return &f.Longitude }, dsl.Float32())).
	Inline("hourly").
	Field("time", dsl.Fixed(func(f *Forecast) []int64 { return f.Hourly.Time[:] }, dsl.Int[int64]())).
	Field("temperature_2m", dsl.Fixed(func(f *Forecast) []float32 { return f.Hourly.Temperature2m[:] }, dsl.Float32())).
	Field("weather_code", dsl.Fixed(func(f *Forecast) []uint8 { return f.Hourly.WeatherCode[:] }, dsl.Uint[uint8]())).
	End().
	Inline("daily").
	Field("time", dsl.Fixed(func(f *Forecast) []int64 { return f.Daily.Time[:] }, dsl.Int[int64]())).
	Field("sunrise", dsl.Fixed(func(f *Forecast) []int64 { return f.Daily.Sunrise[:] }, dsl.Int[int64]())).
	Field("sunset", dsl.Fixed(func(f *Forecast) []int64 { return f.Daily.Sunset[:] }, dsl.Int[int64]())).
	End().
	Pad(unsafe.Sizeof(time.Time{})).
	CheckLayout().
	MustBind()

var now = time.Now

// Decode decodes a forecast document from src into f and stamps
// UpdatedAt. On failure f keeps whatever was decoded before the error and
// UpdatedAt is left unchanged.
func Decode(ctx context.Context, src immjson.ChunkSource, f *Forecast, opts ...immjson.ParseOpt) error {
	if err := immjson.DeserializeObject(ctx, src, f, Schema, opts...); err != nil {
		return err
	}
	f.UpdatedAt = now()
	return nil
}

// HourIndex returns the index of the first hourly sample at or after t,
// or HourlyPoints when every sample is earlier.
func (f *Forecast) HourIndex(t time.Time) int {
	return firstAtOrAfter(f.Hourly.Time[:], t.Unix())
}

// DayIndex returns the index of the forecast day containing t, or -1 when
// t precedes the first day.
func (f *Forecast) DayIndex(t time.Time) int {
	return firstAtOrAfter(f.Daily.Time[:], t.Unix()+1) - 1
}

func firstAtOrAfter(ts []int64, v int64) int {
	lo, hi := 0, len(ts)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if ts[mid] < v {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// IsDay reports whether t falls between sunrise and sunset of its day,
// and returns the sun event that bounds the current period: sunrise
// during the day, sunset at night.
func (f *Forecast) IsDay(t time.Time) (day bool, event time.Time, ok bool) {
	i := f.DayIndex(t)
	if i < 0 || i >= Days {
		return false, time.Time{}, false
	}
	sinceRise := t.Unix() - f.Daily.Sunrise[i]
	sinceSet := t.Unix() - f.Daily.Sunset[i]
	// Opposite signs only between sunrise and sunset.
	day = (sinceRise ^ sinceSet) < 0
	if day {
		return true, time.Unix(f.Daily.Sunrise[i], 0), true
	}
	return false, time.Unix(f.Daily.Sunset[i], 0), true
}
