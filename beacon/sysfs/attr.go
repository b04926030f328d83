// Package sysfs reads sensors exposed by the Linux industrial I/O (IIO)
// subsystem as attribute files, e.g. /sys/bus/iio/devices/iio:device0.
package sysfs

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/alepar/airbeacon/beacon"
)

// readFloat parses the single number held by an attribute file. Any failure
// means the sensor has nothing to report this time.
func readFloat(path string) (float64, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, beacon.NoData(err)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(string(b)), 64)
	if err != nil {
		return 0, beacon.NoData(errors.Wrap(err, path))
	}
	return v, nil
}

// checkAttr is the init-time probe shared by all sources.
func checkAttr(path string) error {
	if path == "" {
		return errors.New("attribute path not set")
	}
	if _, err := os.Stat(path); err != nil {
		return errors.Wrap(err, "sensor attribute not available")
	}
	return nil
}
