package main

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/alepar/airbeacon/beacon"
)

// metrics to expose to Prometheus
var (
	gaugeReported = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "beacon_reported_value",
		Help: "Value currently advertised (units depend on variant)",
	})
	counterSamples = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "beacon_samples_total",
		Help: "Sensor polls by result (ok, skipped)",
	}, []string{"result"})
	counterWakeups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "beacon_wakeups_total",
		Help: "Wake-ups by cause",
	}, []string{"cause"})
	gaugeSleepActual = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "beacon_sleep_actual_seconds",
		Help: "Duration of the last sleep",
	})
)

func registerCycleMetrics() {
	prometheus.MustRegister(gaugeReported)
	prometheus.MustRegister(counterSamples)
	prometheus.MustRegister(counterWakeups)
	prometheus.MustRegister(gaugeSleepActual)
}

type promRecorder struct{}

func (promRecorder) RecordSample(value beacon.Value, ok bool) {
	gaugeReported.Set(value.Float64())
	if ok {
		counterSamples.WithLabelValues("ok").Inc()
	} else {
		counterSamples.WithLabelValues("skipped").Inc()
	}
}

func (promRecorder) RecordWake(outcome beacon.WakeOutcome) {
	counterWakeups.WithLabelValues(outcome.Cause.String()).Inc()
	gaugeSleepActual.Set(outcome.Elapsed.Seconds())
}
