package beacon_test

import (
	"github.com/pkg/errors"

	"github.com/alepar/airbeacon/beacon"
)

type reading struct {
	value float64
	err   error
}

type fakeSource struct {
	readings []reading
	polls    int
	initErr  error
	inits    int
}

func (s *fakeSource) Init() error {
	s.inits++
	return s.initErr
}

func (s *fakeSource) Read() (float64, error) {
	if s.polls >= len(s.readings) {
		s.polls++
		return 0, beacon.ErrNoData
	}
	r := s.readings[s.polls]
	s.polls++
	return r.value, r.err
}

type fakeRadio struct {
	events    []string
	intervals []uint16
	adverts   []beacon.Payload

	enableErr    error
	advertiseErr error
}

func (r *fakeRadio) Enable() error {
	r.events = append(r.events, "enable")
	return r.enableErr
}

func (r *fakeRadio) SetAdvertisingIntervalUnits(n uint16) error {
	r.events = append(r.events, "interval")
	r.intervals = append(r.intervals, n)
	return nil
}

func (r *fakeRadio) Advertise(p beacon.Payload) error {
	r.events = append(r.events, "advertise")
	r.adverts = append(r.adverts, p)
	return r.advertiseErr
}

func (r *fakeRadio) last() beacon.Payload {
	return r.adverts[len(r.adverts)-1]
}

type fakeSleeper struct {
	requests []beacon.SleepRequest
	outcomes []beacon.WakeOutcome
	onSleep  func(n int)
}

func (s *fakeSleeper) Sleep(req beacon.SleepRequest) beacon.WakeOutcome {
	s.requests = append(s.requests, req)
	n := len(s.requests)
	if s.onSleep != nil {
		s.onSleep(n)
	}
	if n <= len(s.outcomes) {
		return s.outcomes[n-1]
	}
	return beacon.WakeOutcome{Elapsed: req.Duration, Cause: beacon.WakeTimer}
}

var errBus = errors.New("i2c bus error")
