package ptp

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/gousb"
	"go.uber.org/atomic"

	"github.com/camkit/shuttercount/log"
)

// Pipe is the half-duplex bulk pipe a session runs over. One handle, one
// transfer in flight at a time.
type Pipe interface {
	Send(p []byte) error
	Recv(p []byte) (int, error)
	MaxPacketSize() int
	Close() error
}

// Transport is a Pipe over a claimed USB still-image interface, via
// libusb through gousb.
type Transport struct {
	usbCtx *gousb.Context
	dev    *gousb.Device
	cfg    *gousb.Config
	iface  *gousb.Interface

	sendEP  *gousb.OutEndpoint
	fetchEP *gousb.InEndpoint

	timeout time.Duration
	closed  *atomic.Bool
	log     *log.Children
}

// DefaultTimeout bounds every bulk transfer. EOS bodies answer a
// property query well inside this; a stall this long means the session
// is gone.
const DefaultTimeout = 5 * time.Second

type endpointPick struct {
	config  int
	iface   int
	alt     int
	sendEP  int
	fetchEP int
}

// findStillImageInterface walks the configuration descriptors for an
// imaging-class interface with the PTP endpoint triple: bulk in, bulk
// out, interrupt in.
func findStillImageInterface(desc *gousb.DeviceDesc) (endpointPick, error) {
	for cfgNum, cfg := range desc.Configs {
		for _, iface := range cfg.Interfaces {
			for _, alt := range iface.AltSettings {
				if alt.Class != gousb.ClassPTP {
					continue
				}
				pick := endpointPick{config: cfgNum, iface: iface.Number, alt: alt.Alternate,
					sendEP: -1, fetchEP: -1}
				var haveEvent bool
				for _, ep := range alt.Endpoints {
					switch {
					case ep.Direction == gousb.EndpointDirectionIn && ep.TransferType == gousb.TransferTypeBulk:
						pick.fetchEP = ep.Number
					case ep.Direction == gousb.EndpointDirectionOut && ep.TransferType == gousb.TransferTypeBulk:
						pick.sendEP = ep.Number
					case ep.Direction == gousb.EndpointDirectionIn && ep.TransferType == gousb.TransferTypeInterrupt:
						haveEvent = true
					}
				}
				if pick.sendEP >= 0 && pick.fetchEP >= 0 && haveEvent {
					return pick, nil
				}
			}
		}
	}
	return endpointPick{}, fmt.Errorf("no still-image interface on device")
}

// OpenTransport opens the camera matching the vendor/product pair and
// claims its still-image interface. The caller owns the returned
// transport and must Close it on every path.
func OpenTransport(vid, pid uint16, timeout time.Duration, lg *log.Children) (*Transport, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	usbCtx := gousb.NewContext()
	dev, err := usbCtx.OpenDeviceWithVIDPID(gousb.ID(vid), gousb.ID(pid))
	if err != nil {
		usbCtx.Close()
		return nil, fmt.Errorf("%w: open %04x:%04x: %v", ErrIO, vid, pid, err)
	}
	if dev == nil {
		usbCtx.Close()
		return nil, fmt.Errorf("%w (%04x:%04x)", ErrDeviceNotFound, vid, pid)
	}

	t := &Transport{
		usbCtx:  usbCtx,
		dev:     dev,
		timeout: timeout,
		closed:  atomic.NewBool(false),
		log:     lg,
	}

	if err := dev.SetAutoDetach(true); err != nil {
		lg.USB.Warningf("SetAutoDetach: %v", err)
	}

	pick, err := findStillImageInterface(dev.Desc)
	if err != nil {
		t.Close()
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}

	t.cfg, err = dev.Config(pick.config)
	if err != nil {
		t.Close()
		return nil, fmt.Errorf("%w: claim configuration %d: %v", ErrIO, pick.config, err)
	}
	t.iface, err = t.cfg.Interface(pick.iface, pick.alt)
	if err != nil {
		t.Close()
		return nil, fmt.Errorf("%w: claim interface %d: %v", ErrIO, pick.iface, err)
	}
	t.sendEP, err = t.iface.OutEndpoint(pick.sendEP)
	if err != nil {
		t.Close()
		return nil, fmt.Errorf("%w: open send EP %d: %v", ErrIO, pick.sendEP, err)
	}
	t.fetchEP, err = t.iface.InEndpoint(pick.fetchEP)
	if err != nil {
		t.Close()
		return nil, fmt.Errorf("%w: open fetch EP %d: %v", ErrIO, pick.fetchEP, err)
	}

	lg.USB.Debugf("claimed %04x:%04x config %d iface %d alt %d, send EP %d fetch EP %d",
		vid, pid, pick.config, pick.iface, pick.alt, pick.sendEP, pick.fetchEP)
	return t, nil
}

// Send writes one buffer to the bulk out endpoint.
func (t *Transport) Send(p []byte) error {
	t.dataPrint("send", p)
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	_, err := t.sendEP.WriteContext(ctx, p)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: bulk write: %v", ErrTimeout, err)
		}
		return fmt.Errorf("%w: bulk write: %v", ErrIO, err)
	}
	return nil
}

// Recv reads one transfer from the bulk in endpoint into p.
func (t *Transport) Recv(p []byte) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	n, err := t.fetchEP.ReadContext(ctx, p)
	if n > 0 {
		t.dataPrint("recv", p[:n])
	}
	if err != nil {
		if ctx.Err() != nil {
			return n, fmt.Errorf("%w: bulk read: %v", ErrTimeout, err)
		}
		return n, fmt.Errorf("%w: bulk read: %v", ErrIO, err)
	}
	return n, nil
}

func (t *Transport) MaxPacketSize() int {
	return t.fetchEP.Desc.MaxPacketSize
}

// Close releases the interface and the device. It is idempotent, and
// release failures are logged rather than propagated: by then the
// primary error, if any, is the one the caller cares about.
func (t *Transport) Close() error {
	if !t.closed.CAS(false, true) {
		return nil
	}

	if t.iface != nil {
		t.iface.Close()
	}
	if t.cfg != nil {
		if err := t.cfg.Close(); err != nil {
			t.log.USB.Warningf("release configuration: %v", err)
		}
	}
	if err := t.dev.Close(); err != nil {
		t.log.USB.Warningf("close device: %v", err)
	}
	if err := t.usbCtx.Close(); err != nil {
		t.log.USB.Warningf("close USB context: %v", err)
	}
	t.log.USB.Debug("device released")
	return nil
}

// Prints data going over the USB connection.
func (t *Transport) dataPrint(dir string, data []byte) {
	if !t.log.Data.IsDebug() {
		return
	}
	fmt.Fprintf(os.Stderr, "%s: 0x%x bytes:\n", dir, len(data))
	hexDump(os.Stderr, data)
}
