// Package canon speaks the Canon EOS vendor extension to PTP, narrowly:
// the remote/event mode handshake and the shutter release counter
// property.
package canon

import (
	"errors"
	"fmt"

	"github.com/camkit/shuttercount/ptp"
)

// ShutterCounters are the camera-reported actuation counts. Both are
// lifetime-monotonic; R-series firmware reports them in increments of
// 1000.
type ShutterCounters struct {
	Mechanical uint32
	Total      uint32
}

var (
	// ErrShortCounterPayload means the counter property arrived but
	// its payload is too small to hold both counts.
	ErrShortCounterPayload = errors.New("canon: shutter counter payload too short")

	// ErrCounterUnsupported means this camera or firmware does not
	// expose the shutter counter property on any known path.
	ErrCounterUnsupported = errors.New("canon: shutter counter not supported by this camera")
)

// counterBlockLen is the minimum counter block: two UINT32 counters.
const counterBlockLen = 8

// The raw 0xD167 value leads with 8 bytes of format/flags before the
// counter block when delivered through the event stream.
const eventValueHeaderLen = 8

// DecodeShutterCounters reads the counter block: mechanical count at
// offset 0, total count at offset 4, both little-endian UINT32.
// Trailing bytes are ignored.
func DecodeShutterCounters(p []byte) (ShutterCounters, error) {
	if len(p) < counterBlockLen {
		return ShutterCounters{}, fmt.Errorf("%w: 0x%x bytes, need 0x%x",
			ErrShortCounterPayload, len(p), counterBlockLen)
	}
	return ShutterCounters{
		Mechanical: byteOrder.Uint32(p),
		Total:      byteOrder.Uint32(p[4:]),
	}, nil
}

// QueryShutterCounters reads the shutter counter from an open session.
// The direct property read is tried first; R-series bodies that only
// publish the counter through the event stream get the EOS handshake
// instead. Anything else fails as unsupported, never as a generic
// decode.
func QueryShutterCounters(s *ptp.Session) (ShutterCounters, error) {
	payload, err := s.GetDevicePropValue(DPC_EOS_ShutterCounter)
	if err == nil {
		return DecodeShutterCounters(payload)
	}
	if !ptp.IsUnsupported(err) {
		return ShutterCounters{}, err
	}
	return queryViaEventStream(s)
}

// queryViaEventStream performs the EOS session handshake and pulls the
// counter property out of the initial event dump, which carries every
// current property value on the first GetEvent.
func queryViaEventStream(s *ptp.Session) (ShutterCounters, error) {
	if _, err := s.Run(OC_EOS_SetRemoteMode, 1); err != nil {
		if ptp.IsUnsupported(err) {
			return ShutterCounters{}, ErrCounterUnsupported
		}
		return ShutterCounters{}, fmt.Errorf("canon: set remote mode: %w", err)
	}
	if _, err := s.Run(OC_EOS_SetEventMode, 1); err != nil {
		return ShutterCounters{}, fmt.Errorf("canon: set event mode: %w", err)
	}

	data, err := s.RunData(OC_EOS_GetEvent)
	if err != nil {
		return ShutterCounters{}, fmt.Errorf("canon: get event: %w", err)
	}

	for _, pv := range DecodeEventStream(data) {
		if pv.Prop != DPC_EOS_ShutterCounter {
			continue
		}
		if len(pv.Data) < eventValueHeaderLen+counterBlockLen {
			return ShutterCounters{}, fmt.Errorf("%w: event value 0x%x bytes",
				ErrShortCounterPayload, len(pv.Data))
		}
		return DecodeShutterCounters(pv.Data[eventValueHeaderLen:])
	}
	return ShutterCounters{}, ErrCounterUnsupported
}
