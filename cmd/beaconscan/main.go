package main

import (
	"flag"
	"net/http"
	"time"

	"github.com/go-ble/ble"
	"github.com/go-ble/ble/linux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/alepar/airbeacon/beacon"
	"github.com/alepar/airbeacon/beacon/linuxble"
)

// CLI args
var (
	listenAddr   = flag.String("listen-address", ":8080", "The address to listen on for HTTP requests.")
	readInterval = flag.Duration("read-int", 30*time.Second, "time interval between scans")
	scanDuration = flag.Duration("scan-dur", 5000*time.Millisecond, "scan duration")
	retries      = flag.Int("retries", 5, "max number of tries in case of BLE errors")
	valueFormat  = flag.String("format", beacon.FormatUint32.String(), "value format of the scanned beacons: uint32 or float32")
)

// metrics to expose to Prometheus
var (
	gaugeValue    = newGauge("beacon_value", "Value advertised by the beacon (units depend on variant)")
	gaugeRssi     = newGauge("beacon_rssi", "Received signal strength (units: dBm)")
	gaugeLastSeen = newGauge("beacon_last_seen_timestamp_seconds", "Time the beacon was last seen (units: unix seconds)")
)

func newGauge(name string, help string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: name,
			Help: help,
		},
		[]string{"addr"},
	)
}

func init() {
	prometheus.MustRegister(gaugeValue)
	prometheus.MustRegister(gaugeRssi)
	prometheus.MustRegister(gaugeLastSeen)

	// Add Go module build info.
	prometheus.MustRegister(prometheus.NewBuildInfoCollector())

	//logging
	formatter := &log.TextFormatter{
		FullTimestamp: true,
	}
	log.SetFormatter(formatter)
}

func main() {
	flag.Parse()

	format, err := beacon.ParseFormat(*valueFormat)
	if err != nil {
		log.Fatalf("bad format: %s", err)
	}

	go func() {
		// Expose the registered metrics via HTTP.
		http.Handle("/metrics", promhttp.HandlerFor(
			prometheus.DefaultGatherer,
			promhttp.HandlerOpts{
				// Opt into OpenMetrics to support exemplars.
				EnableOpenMetrics: true,
			},
		))
		log.Panic(http.ListenAndServe(*listenAddr, nil))
	}()

	log.Infof("scanning every %s, metrics on %s", *readInterval, *listenAddr)
	for {
		scanAndExport(format)
		time.Sleep(*readInterval)
	}
}

func scanAndExport(format beacon.Format) {
	// open BLE
	d, err := linux.NewDevice()
	if err != nil {
		log.Errorf("failed to open ble: %s", err)
		return
	}
	ble.SetDefaultDevice(d)
	defer ble.Stop()

	var scanner beacon.Scanner = &linuxble.BleScanner{
		ScanDuration: *scanDuration,
		Retries:      *retries,
		Format:       format,
	}
	observations, err := scanner.Scan()
	if err != nil {
		log.Errorf("failed to scan for beacons: %s", err)
		return
	}

	now := time.Now()
	for addr, o := range observations {
		log.WithFields(log.Fields{
			"addr":  addr,
			"rssi":  o.RSSI,
			"value": o.Value,
		}).Info("Received")

		export(o, now)
	}
}

func export(o beacon.Observation, seen time.Time) {
	gaugeValue.WithLabelValues(o.Addr).Set(o.Value.Float64())
	gaugeRssi.WithLabelValues(o.Addr).Set(float64(o.RSSI))
	gaugeLastSeen.WithLabelValues(o.Addr).Set(float64(seen.Unix()))
}
