package forecast

// Condition is a coarse weather class derived from a WMO weather code,
// one per dashboard icon family.
type Condition int

const (
	Unknown Condition = iota
	Clear
	PartlyCloudy
	Overcast
	Fog
	Drizzle
	Rain
	FreezingRain
	Snow
	Showers
	SnowShowers
	Thunderstorm
)

var conditionNames = [...]string{
	Unknown:      "unknown",
	Clear:        "clear",
	PartlyCloudy: "partly cloudy",
	Overcast:     "overcast",
	Fog:          "fog",
	Drizzle:      "drizzle",
	Rain:         "rain",
	FreezingRain: "freezing rain",
	Snow:         "snow",
	Showers:      "showers",
	SnowShowers:  "snow showers",
	Thunderstorm: "thunderstorm",
}

func (c Condition) String() string {
	if c >= 0 && int(c) < len(conditionNames) {
		return conditionNames[c]
	}
	return conditionNames[Unknown]
}

// ConditionOf classifies a WMO code (WMO 4677 subset used by open-meteo).
func ConditionOf(code uint8) Condition {
	switch code {
	case 0:
		return Clear
	case 1, 2:
		return PartlyCloudy
	case 3:
		return Overcast
	case 45, 48:
		return Fog
	case 51, 53, 55:
		return Drizzle
	case 56, 57, 66, 67:
		return FreezingRain
	case 61, 63, 65:
		return Rain
	case 71, 73, 75, 77:
		return Snow
	case 80, 81, 82:
		return Showers
	case 85, 86:
		return SnowShowers
	case 95, 96, 99:
		return Thunderstorm
	}
	return Unknown
}
