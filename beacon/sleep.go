package beacon

import (
	"fmt"
	"time"
)

type SleepRequest struct {
	Duration time.Duration

	// KeepRadioActive keeps advertising the last payload while asleep.
	KeepRadioActive bool
}

type WakeCause int

const (
	WakeTimer WakeCause = iota
	WakeExternalPin
	WakeNetwork
	WakeOther
)

func (c WakeCause) String() string {
	switch c {
	case WakeTimer:
		return "timer"
	case WakeExternalPin:
		return "pin"
	case WakeNetwork:
		return "network"
	default:
		return "other"
	}
}

type WakeOutcome struct {
	Elapsed time.Duration
	Cause   WakeCause

	// Pin is set for WakeExternalPin.
	Pin uint16

	// Code is the platform wake reason, kept for WakeOther diagnostics.
	Code uint16
}

func (o WakeOutcome) String() string {
	switch o.Cause {
	case WakeExternalPin:
		return fmt.Sprintf("pin %d after %s", o.Pin, o.Elapsed)
	case WakeOther:
		return fmt.Sprintf("other(%d) after %s", o.Code, o.Elapsed)
	default:
		return fmt.Sprintf("%s after %s", o.Cause, o.Elapsed)
	}
}

// Sleeper blocks the caller for the requested duration or until a hardware
// wake source fires, whichever comes first.
type Sleeper interface {
	Sleep(req SleepRequest) WakeOutcome
}
