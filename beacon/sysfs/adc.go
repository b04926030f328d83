package sysfs

import (
	log "github.com/sirupsen/logrus"
	"periph.io/x/periph/conn/physic"

	"github.com/alepar/airbeacon/beacon"
)

// BatteryScale converts the battery ADC count to volts.
const BatteryScale = 0.0011224

// ADC reads a raw converter count and scales it, e.g. in_voltage0_raw.
type ADC struct {
	Path  string
	Scale float64
}

func (a *ADC) Init() error {
	return checkAttr(a.Path)
}

func (a *ADC) Read() (float64, error) {
	count, err := readFloat(a.Path)
	if err != nil {
		return 0, err
	}
	return count * a.Scale, nil
}

// Battery reads the battery voltage divider. Read reports volts.
type Battery struct {
	ADC
}

func NewBattery(path string) *Battery {
	return &Battery{ADC{Path: path, Scale: BatteryScale}}
}

func (b *Battery) Voltage() (physic.ElectricPotential, error) {
	v, err := b.ADC.Read()
	if err != nil {
		return 0, err
	}
	return physic.ElectricPotential(v * float64(physic.Volt)), nil
}

func (b *Battery) Read() (float64, error) {
	v, err := b.Voltage()
	if err != nil {
		return 0, err
	}
	log.WithField("voltage", v).Debug("battery read")
	return float64(v) / float64(physic.Volt), nil
}

var (
	_ beacon.Source = (*ADC)(nil)
	_ beacon.Source = (*Battery)(nil)
)
