// Package sensor keeps the indoor samples shown next to the forecast:
// temperature and humidity from an SHT4x, CO2 from an SCD4x. Samples live
// in a fixed ring so memory stays bounded however long the device runs.
package sensor

import "time"

// Flags packs a sample's 48-bit timestamp (unix seconds) with the error
// code of each sensor: SHT4x in bits 48-55, SCD4x in bits 56-63. A zero
// error code means the sensor's readings are valid.
type Flags uint64

const timestampBits = 48

// MaxTimestamp is the largest timestamp Flags can hold.
const MaxTimestamp = 1<<timestampBits - 1

// PackFlags builds Flags. ts is truncated to 48 bits.
func PackFlags(ts uint64, sht4xErr, scd4xErr uint8) Flags {
	return Flags(uint64(scd4xErr)<<56 | uint64(sht4xErr)<<48 | ts&MaxTimestamp)
}

// Timestamp returns the unix seconds stored in f.
func (f Flags) Timestamp() uint64 { return uint64(f) & MaxTimestamp }

// Time returns the timestamp as a time.Time.
func (f Flags) Time() time.Time { return time.Unix(int64(f.Timestamp()), 0) }

// SHT4xErr returns the temperature/humidity sensor error code.
func (f Flags) SHT4xErr() uint8 { return uint8(f >> 48) }

// SCD4xErr returns the CO2 sensor error code.
func (f Flags) SCD4xErr() uint8 { return uint8(f >> 56) }

// WithTimestamp returns f with its timestamp replaced.
func (f Flags) WithTimestamp(ts uint64) Flags {
	return PackFlags(ts, f.SHT4xErr(), f.SCD4xErr())
}

// Sample is one reading of both sensors.
type Sample struct {
	Flags        Flags
	TemperatureC float32
	RelHumidity  float32 // percent
	CO2ppm       uint16
}

// ClimateOK reports whether temperature and humidity are valid.
func (s Sample) ClimateOK() bool { return s.Flags.SHT4xErr() == 0 }

// CO2OK reports whether the CO2 reading is valid.
func (s Sample) CO2OK() bool { return s.Flags.SCD4xErr() == 0 }
