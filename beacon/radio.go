package beacon

import (
	"time"

	"github.com/pkg/errors"
)

// IntervalUnit is the granularity of BLE advertising intervals.
const IntervalUnit = 625 * time.Microsecond

// IntervalUnits converts an advertising interval into radio units,
// e.g. 250ms is 400 units.
func IntervalUnits(d time.Duration) uint16 {
	return uint16(d / IntervalUnit)
}

// Radio is the broadcast-only radio stack.
type Radio interface {
	Enable() error
	SetAdvertisingIntervalUnits(n uint16) error

	// Advertise replaces the advertised bytes and keeps advertising them
	// until called again. It must not block for the advertising lifetime.
	Advertise(p Payload) error
}

// Controller owns the broadcast channel. Its last payload outlives sleep:
// the radio keeps advertising it while the processor is halted.
type Controller struct {
	radio    Radio
	interval uint16
	enabled  bool
	last     Payload
}

func NewController(radio Radio, intervalUnits uint16) *Controller {
	return &Controller{radio: radio, interval: intervalUnits}
}

// Configure enables the radio once and publishes the first payload.
// Calling it again only republishes.
func (c *Controller) Configure(p Payload) error {
	if !c.enabled {
		if err := c.radio.Enable(); err != nil {
			return errors.Wrap(err, "failed to enable radio")
		}
		c.enabled = true
	}
	return c.Republish(p)
}

// Republish re-arms advertising with p. Safe to call every cycle, including
// right after a wake-up, since some sleep modes lose the advertising setup.
func (c *Controller) Republish(p Payload) error {
	c.last = p
	if err := c.radio.SetAdvertisingIntervalUnits(c.interval); err != nil {
		return errors.Wrap(err, "failed to set advertising interval")
	}
	if err := c.radio.Advertise(p); err != nil {
		return errors.Wrap(err, "failed to advertise")
	}
	return nil
}

// Payload returns the bytes last handed to the radio.
func (c *Controller) Payload() Payload {
	return c.last
}

func (c *Controller) Enabled() bool {
	return c.enabled
}
