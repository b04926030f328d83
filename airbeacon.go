package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/version"
	log "github.com/sirupsen/logrus"

	"github.com/alepar/airbeacon/beacon"
	"github.com/alepar/airbeacon/beacon/host"
	"github.com/alepar/airbeacon/beacon/linuxble"
	"github.com/alepar/airbeacon/beacon/sysfs"
)

const program = "airbeacon"

// CLI args
var (
	variantName = flag.String("variant", beacon.BatteryVariant.Name, "hardware variant: battery, gas or co2")
	hciDevice   = flag.Int("hci", 0, "index of the hci device to advertise on")
	listenAddr  = flag.String("listen-address", "", "The address to listen on for HTTP requests. Metrics are off when empty.")
	logLevel    = flag.String("log-level", "info", "log level")
	wakePin     = flag.Uint("wake-pin", 0, "pin number reported when SIGUSR1 wakes the beacon")
	showVersion = flag.Bool("version", false, "print version and exit")

	adcPath = flag.String("adc", "/sys/bus/iio/devices/iio:device0/in_voltage0_raw", "battery ADC count attribute")

	gasLevelPath = flag.String("gas-level", "/sys/bus/iio/devices/iio:device1/in_concentration_input", "gas level attribute")
	gasReadyPath = flag.String("gas-ready", "", "gas data-ready attribute, if the sensor has one")

	co2Path         = flag.String("co2", "/sys/bus/iio/devices/iio:device1/in_concentration_co2_input", "CO2 concentration attribute")
	co2Scale        = flag.Float64("co2-scale", 1, "factor turning the CO2 attribute into ppm")
	co2CompPath     = flag.String("co2-compensation", "", "attribute receiving absolute humidity in mg/m3")
	temperaturePath = flag.String("temp", "/sys/bus/iio/devices/iio:device2/in_temp_input", "temperature attribute, milli degrees Celsius")
	humidityPath    = flag.String("humidity", "/sys/bus/iio/devices/iio:device2/in_humidityrelative_input", "relative humidity attribute, milli percent")
	pressurePath    = flag.String("pressure", "", "pressure attribute in kPa, optional")
)

func init() {
	prometheus.MustRegister(version.NewCollector(program))

	//logging
	formatter := &log.TextFormatter{
		FullTimestamp: true,
	}
	log.SetFormatter(formatter)
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Print(program))
		return
	}

	level, err := log.ParseLevel(*logLevel)
	if err != nil {
		log.Fatalf("bad log level: %s", err)
	}
	log.SetLevel(level)

	variant, err := beacon.VariantByName(*variantName)
	if err != nil {
		log.Fatalf("bad variant: %s", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pins := make(chan uint16, 1)
	network := make(chan struct{}, 1)
	go forwardSignals(cancel, pins, network)

	radio := &linuxble.Radio{DeviceID: *hciDevice}
	defer func() {
		if err := radio.Close(); err != nil {
			log.Errorf("failed to close radio: %s", err)
		}
	}()

	manager := beacon.NewManager(variant, newSource(variant), radio, &host.Sleeper{
		Pins:      pins,
		Network:   network,
		Interrupt: ctx.Done(),
	})

	if *listenAddr != "" {
		registerCycleMetrics()
		manager.Recorder = promRecorder{}
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			log.Panic(http.ListenAndServe(*listenAddr, nil))
		}()
	}

	manager.Run(ctx)
	log.Info("=== end ===")
}

func newSource(variant beacon.Variant) beacon.Source {
	switch variant.Name {
	case beacon.GasVariant.Name:
		return &sysfs.Level{Path: *gasLevelPath, ReadyPath: *gasReadyPath}
	case beacon.CO2Variant.Name:
		return &beacon.ConditionedSource{
			Env: &sysfs.Environment{
				TemperaturePath: *temperaturePath,
				HumidityPath:    *humidityPath,
				PressurePath:    *pressurePath,
			},
			Sensor: &sysfs.VOC{Path: *co2Path, Scale: *co2Scale, CompensationPath: *co2CompPath},
		}
	default:
		return sysfs.NewBattery(*adcPath)
	}
}

// forwardSignals maps process signals onto the wake sources of a board:
// SIGUSR1 is the wake pin, SIGUSR2 the network stack. After the first
// SIGINT/SIGTERM the default handlers are restored.
func forwardSignals(cancel context.CancelFunc, pins chan<- uint16, network chan<- struct{}) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR1, syscall.SIGUSR2)
	defer signal.Stop(sigs)

	handleSignals(sigs, cancel, pins, network)
}

func handleSignals(sigs <-chan os.Signal, cancel context.CancelFunc, pins chan<- uint16, network chan<- struct{}) {
	for sig := range sigs {
		switch sig {
		case syscall.SIGUSR1:
			select {
			case pins <- uint16(*wakePin):
			default:
			}
		case syscall.SIGUSR2:
			select {
			case network <- struct{}{}:
			default:
			}
		default:
			log.Infof("got %s, stopping after this cycle", sig)
			cancel()
			return
		}
	}
}
