package sysfs

import (
	"math"
	"os"
	"strconv"

	"github.com/pkg/errors"

	"github.com/alepar/airbeacon/beacon"
)

// VOC reads a gas concentration from a VOC sensor that accepts humidity
// compensation, such as the CO2 equivalent of an SGP30.
type VOC struct {
	// Path holds the concentration; multiplied by Scale to get ppm.
	Path  string
	Scale float64

	// CompensationPath, when set, receives the absolute humidity in mg/m3
	// before every read.
	CompensationPath string
}

func (v *VOC) Init() error {
	return checkAttr(v.Path)
}

func (v *VOC) SetEnvironment(env beacon.Environment) error {
	if v.CompensationPath == "" {
		return nil
	}
	ah := math.Round(env.AbsoluteHumidity() * 1000)
	if math.IsNaN(ah) || ah < 0 {
		return errors.Errorf("invalid absolute humidity for %s", v.CompensationPath)
	}
	err := os.WriteFile(v.CompensationPath, []byte(strconv.FormatInt(int64(ah), 10)), 0644)
	return errors.Wrap(err, "failed to write humidity compensation")
}

func (v *VOC) Read() (float64, error) {
	c, err := readFloat(v.Path)
	if err != nil {
		return 0, err
	}
	scale := v.Scale
	if scale == 0 {
		scale = 1
	}
	return c * scale, nil
}

var _ beacon.CompensatedSensor = (*VOC)(nil)
