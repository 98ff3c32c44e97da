package types

// WeatherCode represents a WMO weather interpretation code.
type WeatherCode int

const (
	ClearSky                     WeatherCode = 0
	MainlyClear                  WeatherCode = 1
	PartlyCloudy                 WeatherCode = 2
	Overcast                     WeatherCode = 3
	Fog                          WeatherCode = 45
	DepositingRimeFog            WeatherCode = 48
	DrizzleLight                 WeatherCode = 51
	DrizzleModerate              WeatherCode = 53
	DrizzleDense                 WeatherCode = 55
	FreezingDrizzleLight         WeatherCode = 56
	FreezingDrizzleDense         WeatherCode = 57
	RainSlight                   WeatherCode = 61
	RainModerate                 WeatherCode = 63
	RainHeavy                    WeatherCode = 65
	FreezingRainLight            WeatherCode = 66
	FreezingRainHeavy            WeatherCode = 67
	SnowFallSlight               WeatherCode = 71
	SnowFallModerate             WeatherCode = 73
	SnowFallHeavy                WeatherCode = 75
	SnowGrains                   WeatherCode = 77
	RainShowersSlight            WeatherCode = 80
	RainShowersModerate          WeatherCode = 81
	RainShowersViolent           WeatherCode = 82
	SnowShowersSlight            WeatherCode = 85
	SnowShowersHeavy             WeatherCode = 86
	ThunderstormSlightOrModerate WeatherCode = 95
	ThunderstormWithSlightHail   WeatherCode = 96
	ThunderstormWithHeavyHail    WeatherCode = 99
)

var weatherDescriptions = map[WeatherCode]string{
	ClearSky:                     "Clear sky",
	MainlyClear:                  "Mainly clear",
	PartlyCloudy:                 "Partly cloudy",
	Overcast:                     "Overcast",
	Fog:                          "Fog",
	DepositingRimeFog:            "Depositing rime fog",
	DrizzleLight:                 "Drizzle: Light intensity",
	DrizzleModerate:              "Drizzle: Moderate intensity",
	DrizzleDense:                 "Drizzle: Dense intensity",
	FreezingDrizzleLight:         "Freezing Drizzle: Light intensity",
	FreezingDrizzleDense:         "Freezing Drizzle: Dense intensity",
	RainSlight:                   "Rain: Slight intensity",
	RainModerate:                 "Rain: Moderate intensity",
	RainHeavy:                    "Rain: Heavy intensity",
	FreezingRainLight:            "Freezing Rain: Light intensity",
	FreezingRainHeavy:            "Freezing Rain: Heavy intensity",
	SnowFallSlight:               "Snowfall: Slight intensity",
	SnowFallModerate:             "Snowfall: Moderate intensity",
	SnowFallHeavy:                "Snowfall: Heavy intensity",
	SnowGrains:                   "Snow grains",
	RainShowersSlight:            "Rain showers: Slight",
	RainShowersModerate:          "Rain showers: Moderate",
	RainShowersViolent:           "Rain showers: Violent",
	SnowShowersSlight:            "Snow showers: Slight",
	SnowShowersHeavy:             "Snow showers: Heavy",
	ThunderstormSlightOrModerate: "Thunderstorm: Slight or moderate",
	ThunderstormWithSlightHail:   "Thunderstorm with slight hail",
	ThunderstormWithHeavyHail:    "Thunderstorm with heavy hail",
}

func (c WeatherCode) Description() string {
	if desc, ok := weatherDescriptions[c]; ok {
		return desc
	}
	return "Unknown"
}

// IsSnow reports whether the code describes frozen precipitation.
func (c WeatherCode) IsSnow() bool {
	switch c {
	case SnowFallSlight, SnowFallModerate, SnowFallHeavy, SnowGrains,
		SnowShowersSlight, SnowShowersHeavy:
		return true
	}
	return false
}

// IsRain reports whether the code describes liquid precipitation.
func (c WeatherCode) IsRain() bool {
	switch c {
	case DrizzleLight, DrizzleModerate, DrizzleDense,
		RainSlight, RainModerate, RainHeavy,
		RainShowersSlight, RainShowersModerate, RainShowersViolent,
		ThunderstormSlightOrModerate, ThunderstormWithSlightHail, ThunderstormWithHeavyHail:
		return true
	}
	return false
}

// IsFreezing reports mixed freezing rain or drizzle.
func (c WeatherCode) IsFreezing() bool {
	switch c {
	case FreezingDrizzleLight, FreezingDrizzleDense, FreezingRainLight, FreezingRainHeavy:
		return true
	}
	return false
}
