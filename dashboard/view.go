// Package dashboard turns the latest forecast and the indoor sample history
// into a View: everything the renderer draws, already laid out in columns
// and bars, with no further decisions left to it.
package dashboard

import (
	"fmt"
	"time"

	"github.com/reoring/immjson/forecast"
	"github.com/reoring/immjson/sensor"
)

const (
	// DefaultHours is the number of weather columns on screen.
	DefaultHours = 11
	// DefaultBars is the number of history bars per indoor widget.
	DefaultBars = 30
	// labelInterval labels every other hour column.
	labelInterval = 2
)

// Status is the state of the weather widget.
type Status int

const (
	Loading Status = iota
	Failed
	Ready
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Failed:
		return "error"
	case Ready:
		return "ready"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// ColumnKind tells hour columns from sunrise/sunset markers.
type ColumnKind int

const (
	HourColumn ColumnKind = iota
	SunColumn
)

// Column is one slot of the weather strip.
type Column struct {
	Kind ColumnKind
	Time time.Time
	// Label is the text above the column; hour columns are labelled every
	// other hour and carry "" otherwise.
	Label        string
	TemperatureC float32
	WeatherCode  uint8
	Condition    forecast.Condition
	Day          bool
}

// Series is one indoor widget: the newest value and a bar graph of the
// history.
type Series struct {
	Name    string
	Unit    string
	Current string // "21.4 C", or "? C" without data
	// Bars holds bar heights in [0,1], oldest first.
	Bars     []float64
	Min, Max float64
}

// View is the whole home screen.
type View struct {
	Title   string // e.g. "Wednesday 15 Oct, 14:05"
	Status  Status
	Error   string
	Columns []Column
	Indoor  []Series
	// Updated is when the forecast was decoded; zero while loading.
	Updated time.Time
}

// Input gathers what Build needs.
type Input struct {
	Forecast *forecast.Forecast
	// FetchErr is the last fetch failure, shown while no forecast is loaded.
	FetchErr error
	Samples  *sensor.Store
	Now      time.Time
	Hours    int // DefaultHours when zero
	Bars     int // DefaultBars when zero
}

// Build computes the View.
func Build(in Input) View {
	if in.Hours <= 0 {
		in.Hours = DefaultHours
	}
	if in.Hours > forecast.HourlyPoints {
		in.Hours = forecast.HourlyPoints
	}
	if in.Bars <= 0 {
		in.Bars = DefaultBars
	}
	v := View{Title: in.Now.Format("Monday 02 Jan, 15:04")}

	switch f := in.Forecast; {
	case f != nil && f.Loaded():
		v.Status = Ready
		v.Updated = f.UpdatedAt
		v.Columns = columns(f, in.Now, in.Hours)
	case in.FetchErr != nil:
		v.Status = Failed
		v.Error = in.FetchErr.Error()
	default:
		v.Status = Loading
	}

	var hist []sensor.Sample
	if in.Samples != nil {
		hist = in.Samples.History(-1)
	}
	v.Indoor = []Series{
		series("TEMP", "C", hist, in.Bars, sensor.Sample.ClimateOK, func(s sensor.Sample) float64 { return float64(s.TemperatureC) }),
		series("RH", "%", hist, in.Bars, sensor.Sample.ClimateOK, func(s sensor.Sample) float64 { return float64(s.RelHumidity) }),
		series("CO2", "ppm", hist, in.Bars, sensor.Sample.CO2OK, func(s sensor.Sample) float64 { return float64(s.CO2ppm) }),
	}
	return v
}

func isDay(f *forecast.Forecast, t time.Time) (bool, time.Time) {
	day, ev, ok := f.IsDay(t)
	return ok && day, ev
}

// columns lays out hours from the first one at or after now, inserting a
// sun column wherever day turns to night or back. A sun column takes the
// place of an hour column.
func columns(f *forecast.Forecast, now time.Time, hours int) []Column {
	loc := now.Location()
	start := min(f.HourIndex(now), forecast.HourlyPoints-hours)
	at := func(i int) time.Time { return time.Unix(f.Hourly.Time[i], 0).In(loc) }

	// Shift hour labels so the first sun column does not sit between two
	// labelled hours.
	labelOffset := 0
	prev, _ := isDay(f, at(start))
	for i := 0; i < hours; i++ {
		cur, _ := isDay(f, at(start+i))
		if cur != prev {
			labelOffset = labelInterval - i%labelInterval
			break
		}
		prev = cur
	}

	out := make([]Column, 0, hours)
	prev, _ = isDay(f, at(start))
	for i, h := 0, start; i < hours && h < forecast.HourlyPoints; i, h = i+1, h+1 {
		cur, ev := isDay(f, at(h))
		if cur != prev {
			ev = ev.In(loc)
			out = append(out, Column{Kind: SunColumn, Time: ev, Label: ev.Format("15:04"), Day: cur})
			i++
			if i >= hours {
				break
			}
		}
		prev = cur
		c := Column{
			Kind:         HourColumn,
			Time:         at(h),
			TemperatureC: f.Hourly.Temperature2m[h],
			WeatherCode:  f.Hourly.WeatherCode[h],
			Condition:    forecast.ConditionOf(f.Hourly.WeatherCode[h]),
			Day:          cur,
		}
		if (i+labelOffset)%labelInterval == 0 {
			c.Label = c.Time.Format("15:00")
		}
		out = append(out, c)
	}
	return out
}

// series graphs the newest bars samples for which ok holds. A single value
// is drawn at half height; a flat history at full height.
func series(name, unit string, hist []sensor.Sample, bars int, ok func(sensor.Sample) bool, val func(sensor.Sample) float64) Series {
	s := Series{Name: name, Unit: unit, Current: "? " + unit}
	var vals []float64
	for i := len(hist) - 1; i >= 0; i-- {
		if ok(hist[i]) {
			vals = append(vals, val(hist[i]))
		}
	}
	if len(vals) == 0 {
		return s
	}
	s.Current = fmt.Sprintf("%.1f %s", vals[len(vals)-1], unit)
	if len(vals) > bars {
		vals = vals[len(vals)-bars:]
	}
	if len(vals) == 1 {
		s.Min, s.Max = 0, vals[0]*2
	} else {
		s.Min, s.Max = vals[0], vals[0]
		for _, x := range vals[1:] {
			s.Min = min(s.Min, x)
			s.Max = max(s.Max, x)
		}
	}
	s.Bars = make([]float64, len(vals))
	for i, x := range vals {
		if s.Max == s.Min {
			s.Bars[i] = 1
			continue
		}
		s.Bars[i] = (x - s.Min) / (s.Max - s.Min)
	}
	return s
}
