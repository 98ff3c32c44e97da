package types

type Temperature struct {
	Fahrenheit float64 `json:"fahrenheit"`
	Celsius    float64 `json:"celsius"`
}

func NewTemperatureFromFahrenheit(fahrenheit float64) Temperature {
	return Temperature{
		Fahrenheit: fahrenheit,
		Celsius:    (fahrenheit - 32) * 5 / 9,
	}
}

func NewTemperatureFromCelsius(celsius float64) Temperature {
	return Temperature{
		Fahrenheit: celsius*9/5 + 32,
		Celsius:    celsius,
	}
}
