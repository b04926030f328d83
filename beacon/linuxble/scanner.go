package linuxble

import (
	"context"
	"time"

	"github.com/go-ble/ble"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/alepar/airbeacon/beacon"
)

type BleScanner struct {
	ScanDuration time.Duration
	Retries      int

	// Format the scanned beacons report their value in.
	Format beacon.Format
}

func (scanner *BleScanner) Scan() (map[string]beacon.Observation, error) {
	var lastErr error
	var observations map[string]beacon.Observation
	for i := 0; i < scanner.Retries; i++ {
		observations, lastErr = scanner.scan()
		if lastErr == nil {
			return observations, nil
		}
		if i < scanner.Retries-1 {
			log.Errorf("retrying error in scan: %s", lastErr)
		}
	}

	return map[string]beacon.Observation{}, errors.Wrap(lastErr, "all retries to scan failed")
}

func (scanner *BleScanner) scan() (map[string]beacon.Observation, error) {
	ctx := ble.WithSigHandler(context.WithTimeout(context.Background(), scanner.ScanDuration))
	ads, err := ble.Find(ctx, false, beaconOnlyFilter)
	if err != nil {
		switch errors.Cause(err) {
		case nil:
		case context.DeadlineExceeded:
		case context.Canceled:
			return map[string]beacon.Observation{}, errors.Wrap(err, "scan for beacons cancelled")
		default:
			return map[string]beacon.Observation{}, errors.Wrap(err, "failed to scan for beacons")
		}
	}

	return scanner.observe(ads), nil
}

func (scanner *BleScanner) observe(ads []ble.Advertisement) map[string]beacon.Observation {
	observations := map[string]beacon.Observation{}
	for _, a := range ads {
		addr := a.Addr().String()
		value, err := beacon.Decode(a.ManufacturerData(), scanner.Format)
		if err != nil {
			log.Debugf("skipping advertisement from %s: %s", addr, err)
			continue
		}
		observations[addr] = beacon.Observation{
			Addr:  addr,
			RSSI:  a.RSSI(),
			Value: value,
		}
	}
	return observations
}

func beaconOnlyFilter(a ble.Advertisement) bool {
	return beacon.IsPayload(a.ManufacturerData())
}

var _ beacon.Scanner = (*BleScanner)(nil)
