package sysfs

import (
	"github.com/pkg/errors"

	"github.com/alepar/airbeacon/beacon"
)

// Level reads a processed level from a sensor that flags when a fresh
// measurement is ready, like a gas sensor's air quality index.
type Level struct {
	Path string

	// ReadyPath, when set, must read non-zero for Path to be trusted.
	ReadyPath string
}

func (l *Level) Init() error {
	if err := checkAttr(l.Path); err != nil {
		return err
	}
	if l.ReadyPath != "" {
		return checkAttr(l.ReadyPath)
	}
	return nil
}

func (l *Level) Read() (float64, error) {
	if l.ReadyPath != "" {
		ready, err := readFloat(l.ReadyPath)
		if err != nil {
			return 0, err
		}
		if ready == 0 {
			return 0, errors.Wrap(beacon.ErrNoData, "measurement not ready")
		}
	}
	return readFloat(l.Path)
}

var _ beacon.Source = (*Level)(nil)
