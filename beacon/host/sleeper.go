package host

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/alepar/airbeacon/beacon"
)

// WakeCodeInterrupted is reported with beacon.WakeOther when the process was
// asked to stop while asleep.
const WakeCodeInterrupted uint16 = 0xff

// Sleeper stands in for the low-power sleep of a microcontroller: it blocks
// on a timer and returns early on a hardware wake source.
//
// The radio is owned by its own goroutine on a host, so it keeps advertising
// whatever KeepRadioActive says.
type Sleeper struct {
	// Pins delivers the number of a pin that changed state.
	Pins <-chan uint16

	// Network signals activity of the network stack.
	Network <-chan struct{}

	// Interrupt wakes the sleeper with WakeCodeInterrupted.
	Interrupt <-chan struct{}

	now func() time.Time
}

func (s *Sleeper) Sleep(req beacon.SleepRequest) beacon.WakeOutcome {
	now := s.now
	if now == nil {
		now = time.Now
	}
	if !req.KeepRadioActive {
		log.Debugf("radio stays on while sleeping on a host")
	}

	start := now()
	timer := time.NewTimer(req.Duration)
	defer timer.Stop()

	outcome := beacon.WakeOutcome{}
	select {
	case <-timer.C:
		outcome.Cause = beacon.WakeTimer
	case pin := <-s.Pins:
		outcome.Cause = beacon.WakeExternalPin
		outcome.Pin = pin
	case <-s.Network:
		outcome.Cause = beacon.WakeNetwork
	case <-s.Interrupt:
		outcome.Cause = beacon.WakeOther
		outcome.Code = WakeCodeInterrupted
	}
	outcome.Elapsed = now().Sub(start)
	return outcome
}

var _ beacon.Sleeper = (*Sleeper)(nil)
