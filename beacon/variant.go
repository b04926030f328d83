package beacon

import (
	"time"

	"github.com/pkg/errors"
)

// Variant holds the compile-time parameters of one hardware build.
type Variant struct {
	Name string

	// Smoothed runs samples through the EWMA filter and reports its ceiling
	// as uint32. Otherwise the raw sample is reported verbatim as float32.
	Smoothed bool

	AdvertisingInterval time.Duration
	SleepDuration       time.Duration
}

var (
	// BatteryVariant broadcasts the battery voltage in volts.
	BatteryVariant = Variant{
		Name:                "battery",
		Smoothed:            false,
		AdvertisingInterval: 250 * time.Millisecond,
		SleepDuration:       15000 * time.Millisecond,
	}

	// GasVariant broadcasts a smoothed air quality level.
	GasVariant = Variant{
		Name:                "gas",
		Smoothed:            true,
		AdvertisingInterval: 500 * time.Millisecond,
		SleepDuration:       5000 * time.Millisecond,
	}

	// CO2Variant broadcasts smoothed CO2 ppm from a humidity/temperature
	// compensated VOC sensor.
	CO2Variant = Variant{
		Name:                "co2",
		Smoothed:            true,
		AdvertisingInterval: 500 * time.Millisecond,
		SleepDuration:       15000 * time.Millisecond,
	}
)

var variants = []Variant{BatteryVariant, GasVariant, CO2Variant}

func VariantByName(name string) (Variant, error) {
	for _, v := range variants {
		if v.Name == name {
			return v, nil
		}
	}
	return Variant{}, errors.Errorf("unknown variant %q", name)
}

func (v Variant) Format() Format {
	if v.Smoothed {
		return FormatUint32
	}
	return FormatFloat32
}

func (v Variant) IntervalUnits() uint16 {
	return IntervalUnits(v.AdvertisingInterval)
}
