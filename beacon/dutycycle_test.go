package beacon_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alepar/airbeacon/beacon"
)

type recorded struct {
	samples []beacon.Value
	skipped int
	wakes   []beacon.WakeOutcome
}

func (r *recorded) RecordSample(v beacon.Value, ok bool) {
	r.samples = append(r.samples, v)
	if !ok {
		r.skipped++
	}
}

func (r *recorded) RecordWake(o beacon.WakeOutcome) {
	r.wakes = append(r.wakes, o)
}

func newTestManager(variant beacon.Variant, source *fakeSource) (*beacon.Manager, *fakeRadio, *fakeSleeper, *test.Hook) {
	radio := &fakeRadio{}
	sleeper := &fakeSleeper{}
	m := beacon.NewManager(variant, source, radio, sleeper)
	logger, hook := test.NewNullLogger()
	m.Log = logger
	return m, radio, sleeper, hook
}

func TestManagerBoot(t *testing.T) {
	source := &fakeSource{}
	m, radio, _, _ := newTestManager(beacon.GasVariant, source)
	assert.Equal(t, beacon.Booting, m.State())

	m.Boot()

	assert.Equal(t, beacon.Advertising, m.State())
	assert.Equal(t, 1, source.inits)
	assert.Equal(t, 0, source.polls, "boot must not poll")
	assert.Equal(t, []string{"enable", "interval", "advertise"}, radio.events)
	assert.Equal(t, []uint16{800}, radio.intervals)
	assert.Equal(t, beacon.Encode(beacon.Uint32Value(0)), radio.last())
}

func TestManagerBootSurvivesInitFailure(t *testing.T) {
	source := &fakeSource{initErr: errBus, readings: []reading{{value: 42}}}
	m, radio, _, hook := newTestManager(beacon.GasVariant, source)

	m.Boot()
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, beacon.Advertising, m.State())
	require.Len(t, radio.adverts, 1)

	m.Cycle()
	assert.Equal(t, beacon.Uint32Value(42), m.Reported())
}

func TestManagerCycleOrdering(t *testing.T) {
	source := &fakeSource{readings: []reading{{value: 512}, {value: 0}}}
	m, radio, sleeper, _ := newTestManager(beacon.GasVariant, source)
	m.Boot()

	var atSleep []beacon.Payload
	sleeper.onSleep = func(n int) {
		assert.Equal(t, beacon.Sleeping, m.State())
		assert.Equal(t, n, source.polls, "poll must complete before sleeping")
		atSleep = append(atSleep, radio.last())
	}

	m.Cycle()
	m.Cycle()

	assert.Equal(t, beacon.Advertising, m.State())
	assert.Equal(t, []beacon.Payload{
		beacon.Encode(beacon.Uint32Value(512)),
		beacon.Encode(beacon.Uint32Value(507)),
	}, atSleep)
	for _, req := range sleeper.requests {
		assert.Equal(t, beacon.SleepRequest{Duration: 5000 * time.Millisecond, KeepRadioActive: true}, req)
	}
	// boot + one republish per cycle, interval re-applied every time
	assert.Equal(t, []uint16{800, 800, 800}, radio.intervals)
}

func TestManagerSkipsInvalidRead(t *testing.T) {
	source := &fakeSource{readings: []reading{{value: 512}, {value: 0}, {err: beacon.ErrNoData}}}
	m, radio, _, hook := newTestManager(beacon.GasVariant, source)
	m.Boot()

	m.Cycle()
	m.Cycle()
	before := radio.last()
	assert.Equal(t, beacon.Uint32Value(507), m.Reported())

	hook.Reset()
	m.Cycle()
	assert.Equal(t, beacon.Uint32Value(507), m.Reported())
	assert.Equal(t, before, radio.last())
	assert.Equal(t, uint64(2), m.Filter().Count())

	var warned bool
	for _, e := range hook.AllEntries() {
		warned = warned || e.Level == logrus.WarnLevel
	}
	assert.True(t, warned)
}

func TestManagerSkippedReadsDoNotSeed(t *testing.T) {
	source := &fakeSource{readings: []reading{{err: errBus}, {value: math.NaN()}, {err: beacon.ErrNoData}, {value: 40}}}
	m, radio, sleeper, _ := newTestManager(beacon.CO2Variant, source)
	rec := &recorded{}
	m.Recorder = rec
	m.Boot()

	for i := 0; i < 3; i++ {
		m.Cycle()
		assert.Equal(t, beacon.Uint32Value(0), m.Reported())
	}
	assert.False(t, m.Filter().Seeded())

	m.Cycle()
	assert.Equal(t, beacon.Uint32Value(40), m.Reported(), "first valid read seeds")
	assert.Equal(t, beacon.Encode(beacon.Uint32Value(40)), radio.last())
	assert.Len(t, sleeper.requests, 4, "every cycle sleeps, even without data")
	assert.Equal(t, 3, rec.skipped)
	assert.Len(t, rec.samples, 4)
}

func TestManagerBatteryPassthrough(t *testing.T) {
	source := &fakeSource{readings: []reading{{value: 3.7}, {value: 3.1}}}
	m, radio, sleeper, _ := newTestManager(beacon.BatteryVariant, source)
	m.Boot()

	m.Cycle()
	assert.Equal(t, beacon.Float32Value(3.7), m.Reported())
	m.Cycle()
	assert.Equal(t, beacon.Float32Value(3.1), m.Reported())

	last := radio.last()
	value, err := beacon.Decode(last[:], beacon.FormatFloat32)
	require.NoError(t, err)
	assert.Equal(t, float32(3.1), value.Float32())
	assert.False(t, m.Filter().Seeded())
	assert.Equal(t, []uint16{400, 400, 400}, radio.intervals)
	assert.Equal(t, 15*time.Second, sleeper.requests[0].Duration)
}

func TestManagerWakeCauseDoesNotChangeBehaviour(t *testing.T) {
	source := &fakeSource{readings: []reading{{value: 10}, {value: 10}, {value: 10}, {value: 10}}}
	m, radio, sleeper, hook := newTestManager(beacon.GasVariant, source)
	rec := &recorded{}
	m.Recorder = rec
	sleeper.outcomes = []beacon.WakeOutcome{
		{Cause: beacon.WakeTimer, Elapsed: 5 * time.Second},
		{Cause: beacon.WakeExternalPin, Pin: 7, Elapsed: time.Second},
		{Cause: beacon.WakeNetwork, Elapsed: 2 * time.Second},
		{Cause: beacon.WakeOther, Code: 9, Elapsed: 3 * time.Second},
	}
	m.Boot()

	for i, want := range sleeper.outcomes {
		hook.Reset()
		got := m.Cycle()
		assert.Equal(t, want, got)
		assert.Equal(t, i+1, source.polls)
		assert.Equal(t, beacon.Advertising, m.State())

		entry := hook.LastEntry()
		require.NotNil(t, entry)
		switch want.Cause {
		case beacon.WakeExternalPin:
			assert.Equal(t, uint16(7), entry.Data["pin"])
		case beacon.WakeOther:
			assert.Equal(t, logrus.WarnLevel, entry.Level)
			assert.Equal(t, uint16(9), entry.Data["code"])
		default:
			assert.Equal(t, logrus.InfoLevel, entry.Level)
		}
	}

	assert.Equal(t, sleeper.outcomes, rec.wakes)
	for _, req := range sleeper.requests {
		assert.Equal(t, beacon.GasVariant.SleepDuration, req.Duration)
		assert.True(t, req.KeepRadioActive)
	}
	assert.Len(t, radio.adverts, 5)
}

func TestManagerRadioFailureStillSleeps(t *testing.T) {
	source := &fakeSource{readings: []reading{{value: 1}}}
	m, radio, sleeper, hook := newTestManager(beacon.GasVariant, source)
	radio.advertiseErr = errBus
	m.Boot()

	m.Cycle()
	assert.Len(t, sleeper.requests, 1)
	assert.Equal(t, beacon.Uint32Value(1), m.Reported())

	var errored bool
	for _, e := range hook.AllEntries() {
		errored = errored || e.Level == logrus.ErrorLevel
	}
	assert.True(t, errored)
}

func TestManagerRunStopsBetweenCycles(t *testing.T) {
	source := &fakeSource{}
	m, radio, sleeper, _ := newTestManager(beacon.GasVariant, source)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sleeper.onSleep = func(n int) {
		if n == 3 {
			cancel()
		}
	}

	m.Run(ctx)

	assert.Len(t, sleeper.requests, 3)
	assert.Equal(t, 3, source.polls)
	assert.Equal(t, "enable", radio.events[0])
}
