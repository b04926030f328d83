package beacon

import (
	"context"
	"math"

	log "github.com/sirupsen/logrus"
)

type State int

const (
	Booting State = iota
	Advertising
	Sleeping
)

func (s State) String() string {
	switch s {
	case Booting:
		return "booting"
	case Advertising:
		return "advertising"
	case Sleeping:
		return "sleeping"
	default:
		return "unknown"
	}
}

// Recorder observes the duty cycle, e.g. to export metrics.
type Recorder interface {
	// RecordSample is called once per poll. ok is false when the read was
	// skipped, in which case value is the previous one.
	RecordSample(value Value, ok bool)
	RecordWake(outcome WakeOutcome)
}

type nopRecorder struct{}

func (nopRecorder) RecordSample(Value, bool) {}
func (nopRecorder) RecordWake(WakeOutcome)   {}

// Manager runs the poll, smooth, encode, republish, sleep loop.
// It is not safe for concurrent use; a single goroutine drives it.
type Manager struct {
	Variant  Variant
	Source   Source
	Beacon   *Controller
	Sleeper  Sleeper
	Recorder Recorder
	Log      log.FieldLogger

	filter   *Filter
	reported Value
	state    State
	misses   int
}

func NewManager(variant Variant, source Source, radio Radio, sleeper Sleeper) *Manager {
	return &Manager{
		Variant:  variant,
		Source:   source,
		Beacon:   NewController(radio, variant.IntervalUnits()),
		Sleeper:  sleeper,
		Recorder: nopRecorder{},
		Log:      log.StandardLogger(),
		filter:   NewFilter(),
		reported: Value{Format: variant.Format()},
		state:    Booting,
	}
}

func (m *Manager) State() State {
	return m.state
}

// Reported returns the value currently being broadcast.
func (m *Manager) Reported() Value {
	return m.reported
}

func (m *Manager) Filter() *Filter {
	return m.filter
}

// Boot brings up the sensor and the radio and starts advertising the default
// value. Failures are logged: a beacon reporting a stale value beats one that
// stopped.
func (m *Manager) Boot() {
	m.state = Booting
	m.Log.WithField("variant", m.Variant.Name).Info("=== begin ===")

	if i, ok := m.Source.(Initializer); ok {
		if err := i.Init(); err != nil {
			m.Log.Errorf("sensor init failed: %s", err)
		}
	}
	if err := m.Beacon.Configure(Encode(m.reported)); err != nil {
		m.Log.Errorf("failed to configure advertising: %s", err)
	}
	m.state = Advertising
}

// Poll takes one sample, updates the reported value and republishes it.
// It returns whether a new sample was taken.
func (m *Manager) Poll() bool {
	raw, err := m.Source.Read()
	if err == nil && (math.IsNaN(raw) || math.IsInf(raw, 0)) {
		err = ErrNoData
	}

	ok := err == nil
	if ok {
		m.misses = 0
		if m.Variant.Smoothed {
			m.reported = Uint32Value(m.filter.Update(raw))
		} else {
			m.reported = Float32Value(float32(raw))
		}
	} else {
		m.misses++
		entry := m.Log.WithField("misses", m.misses)
		if !m.filter.Seeded() && m.Variant.Smoothed {
			entry = entry.WithField("seeded", false)
		}
		entry.Warnf("sensor read skipped: %s", err)
	}

	p := Encode(m.reported)
	if err := m.Beacon.Republish(p); err != nil {
		m.Log.Errorf("republish failed: %s", err)
	}
	m.Log.WithField("payload", p).Infof("adv: %s", m.reported)
	m.Recorder.RecordSample(m.reported, ok)
	return ok
}

// Cycle runs one Advertising step followed by one sleep.
func (m *Manager) Cycle() WakeOutcome {
	m.state = Advertising
	m.Poll()

	req := SleepRequest{Duration: m.Variant.SleepDuration, KeepRadioActive: true}
	m.Log.Infof("sleep %d ms", req.Duration.Milliseconds())
	m.state = Sleeping
	outcome := m.Sleeper.Sleep(req)
	m.state = Advertising

	m.logWake(outcome)
	m.Recorder.RecordWake(outcome)
	return outcome
}

func (m *Manager) logWake(o WakeOutcome) {
	entry := m.Log.WithField("elapsed", o.Elapsed)
	switch o.Cause {
	case WakeTimer:
		entry.Info("wakeup on timer")
	case WakeExternalPin:
		entry.WithField("pin", o.Pin).Info("wakeup on pin")
	case WakeNetwork:
		entry.Info("wakeup on network")
	default:
		entry.WithField("code", o.Code).Warn("wakeup for unclassified reason")
	}
}

// Run boots and cycles until ctx is done. Cancellation is checked between
// cycles; a sleep in progress is never cut short from here.
func (m *Manager) Run(ctx context.Context) {
	m.Boot()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		m.Cycle()
	}
}
