package sysfs

import (
	"periph.io/x/periph/conn/physic"

	"github.com/alepar/airbeacon/beacon"
)

// Environment reads a pressure/humidity/temperature sensor through its IIO
// processed attributes:
//
//	in_temp_input             milli degrees Celsius
//	in_humidityrelative_input milli percent
//	in_pressure_input         kilopascal
//
// PressurePath is optional.
type Environment struct {
	TemperaturePath string
	HumidityPath    string
	PressurePath    string
}

func (e *Environment) Init() error {
	if err := checkAttr(e.TemperaturePath); err != nil {
		return err
	}
	return checkAttr(e.HumidityPath)
}

func (e *Environment) Sense() (beacon.Environment, error) {
	var env beacon.Environment

	t, err := readFloat(e.TemperaturePath)
	if err != nil {
		return env, err
	}
	env.Temperature = physic.ZeroCelsius + physic.Temperature(t*float64(physic.MilliKelvin))

	h, err := readFloat(e.HumidityPath)
	if err != nil {
		return env, err
	}
	env.Humidity = physic.RelativeHumidity(h / 1000 * float64(physic.PercentRH))

	if e.PressurePath != "" {
		p, err := readFloat(e.PressurePath)
		if err != nil {
			return env, err
		}
		env.Pressure = physic.Pressure(p * float64(physic.KiloPascal))
	}
	return env, nil
}

var _ beacon.EnvSensor = (*Environment)(nil)
