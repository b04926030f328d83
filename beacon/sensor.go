package beacon

import (
	"math"

	"github.com/pkg/errors"
	"periph.io/x/periph/conn/physic"
)

// ErrNoData means the sensor had no valid reading this cycle. It is not
// fatal: the previous value keeps being broadcast.
var ErrNoData = errors.New("no sensor data available")

// Source produces one raw sample per poll, in sensor units
// (volts, air quality level, ppm CO2).
type Source interface {
	Read() (float64, error)
}

// Initializer is implemented by sources needing bring-up at boot.
type Initializer interface {
	Init() error
}

// noDataError keeps the sensor failure behind a "no data" outcome:
// errors.Cause yields ErrNoData, Unwrap yields the failure.
type noDataError struct {
	err error
}

// NoData marks err as "no sample this cycle". It returns nil for nil.
func NoData(err error) error {
	if err == nil {
		return nil
	}
	return &noDataError{err: err}
}

func (e *noDataError) Error() string {
	return e.err.Error() + ": " + ErrNoData.Error()
}

func (e *noDataError) Cause() error {
	return ErrNoData
}

func (e *noDataError) Unwrap() error {
	return e.err
}

// IsNoData reports whether err means "no sample this cycle".
func IsNoData(err error) bool {
	return errors.Cause(err) == ErrNoData
}

type Environment struct {
	Temperature physic.Temperature
	Humidity    physic.RelativeHumidity
	Pressure    physic.Pressure
}

// Celsius returns the temperature in degrees Celsius.
func (e Environment) Celsius() float64 {
	return float64(e.Temperature-physic.ZeroCelsius) / float64(physic.Kelvin)
}

// RelativeHumidity returns the humidity in percent.
func (e Environment) RelativeHumidity() float64 {
	return float64(e.Humidity) / float64(physic.PercentRH)
}

// AbsoluteHumidity returns water vapour density in g/m3, derived from the
// relative humidity and temperature with the Magnus formula.
func (e Environment) AbsoluteHumidity() float64 {
	t := e.Celsius()
	saturation := 6.112 * math.Exp(17.62*t/(243.12+t))
	return 216.7 * (e.RelativeHumidity() / 100 * saturation) / (273.15 + t)
}

// EnvSensor is the pressure/humidity/temperature companion sensor.
type EnvSensor interface {
	Sense() (Environment, error)
}

// CompensatedSensor is a sensor whose reading depends on ambient conditions,
// like a VOC sensor reporting CO2 equivalent.
type CompensatedSensor interface {
	SetEnvironment(env Environment) error
	Read() (float64, error)
}

// ConditionedSource feeds live environment readings into a compensated
// sensor before each read. A failed environment read yields no sample.
type ConditionedSource struct {
	Env    EnvSensor
	Sensor CompensatedSensor
}

func (s *ConditionedSource) Init() error {
	var err error
	if i, ok := s.Env.(Initializer); ok {
		err = errors.Wrap(i.Init(), "environment sensor init failed")
	}
	if i, ok := s.Sensor.(Initializer); ok {
		if sensorErr := i.Init(); sensorErr != nil && err == nil {
			err = errors.Wrap(sensorErr, "compensated sensor init failed")
		}
	}
	return err
}

func (s *ConditionedSource) Read() (float64, error) {
	env, err := s.Env.Sense()
	if err != nil {
		return 0, NoData(errors.Wrap(err, "environment read failed"))
	}
	if err := s.Sensor.SetEnvironment(env); err != nil {
		return 0, NoData(errors.Wrap(err, "compensation failed"))
	}
	return s.Sensor.Read()
}
