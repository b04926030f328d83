package linuxble

import (
	"context"
	"sync"

	"github.com/go-ble/ble"
	"github.com/go-ble/ble/linux"
	"github.com/go-ble/ble/linux/hci/cmd"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/alepar/airbeacon/beacon"
)

// Parameters of the HCI LE Set Advertising Parameters command.
const (
	advNonConnInd = 0x03

	allChannels = 0x07
)

type advertiser interface {
	AdvertiseMfgData(ctx context.Context, id uint16, b []byte) error
	Stop() error
}

// Radio advertises beacon payloads as manufacturer data on the local HCI
// controller. Advertising runs in the background and survives until the
// next Advertise or Close.
type Radio struct {
	// DeviceID selects hciN.
	DeviceID int

	dev     advertiser
	options func(opts ...ble.Option) error

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func (r *Radio) Enable() error {
	if r.dev != nil {
		return nil
	}
	d, err := linux.NewDevice(ble.OptDeviceID(r.DeviceID))
	if err != nil {
		return errors.Wrap(err, "failed to open ble")
	}
	ble.SetDefaultDevice(d)
	r.dev = d
	r.options = d.HCI.Option
	return nil
}

func (r *Radio) SetAdvertisingIntervalUnits(n uint16) error {
	if r.options == nil {
		return errors.New("radio is not enabled")
	}
	return r.options(ble.OptAdvParams(cmd.LESetAdvertisingParameters{
		AdvertisingIntervalMin: n,
		AdvertisingIntervalMax: n,
		AdvertisingType:        advNonConnInd,
		AdvertisingChannelMap:  allChannels,
	}))
}

func (r *Radio) Advertise(p beacon.Payload) error {
	if r.dev == nil {
		return errors.New("radio is not enabled")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	r.cancel = cancel
	r.done = done

	go func() {
		defer close(done)
		err := r.dev.AdvertiseMfgData(ctx, p.CompanyID(), p.Data())
		switch errors.Cause(err) {
		case nil, context.Canceled:
		default:
			log.Errorf("advertising stopped: %s", err)
		}
	}()
	return nil
}

// Close stops advertising and releases the device.
func (r *Radio) Close() error {
	r.mu.Lock()
	r.stopLocked()
	r.mu.Unlock()

	if r.dev == nil {
		return nil
	}
	err := r.dev.Stop()
	r.dev = nil
	r.options = nil
	return errors.Wrap(err, "failed to stop ble")
}

func (r *Radio) stopLocked() {
	if r.cancel == nil {
		return
	}
	r.cancel()
	<-r.done
	r.cancel = nil
	r.done = nil
}

var _ beacon.Radio = (*Radio)(nil)
