package ptp

import (
	"bytes"
	"fmt"

	"github.com/camkit/shuttercount/log"
)

// SessionID is the fixed session id sent with OpenSession. One query,
// one session; there is nothing to distinguish.
const SessionID = 1

// Session sequences PTP transactions over a Pipe. The protocol is
// strictly half-duplex: command out, optional data in, response in.
// Transaction ids start at 0 for OpenSession and then increment by
// exactly 1 per command. Any fault aborts the whole invocation; the
// session state after a failed exchange is ambiguous and a retry can
// desynchronize the camera.
type Session struct {
	pipe Pipe
	log  *log.Children

	tid  uint32
	open bool
}

func NewSession(pipe Pipe, lg *log.Children) *Session {
	return &Session{pipe: pipe, log: lg}
}

// Open opens the PTP session. It is an error to open a session twice.
func (s *Session) Open() error {
	if s.open {
		return fmt.Errorf("ptp: session already open")
	}
	if _, _, err := s.transact(OC_OpenSession, []uint32{SessionID}, false); err != nil {
		return fmt.Errorf("ptp: open session: %w", err)
	}
	s.open = true
	s.tid = 0
	return nil
}

// Close sends CloseSession. It is attempted at most once per opened
// session, regardless of whether earlier commands failed: cameras
// refuse a new session while a stale one is half-open. Calling Close on
// a session that never opened is a no-op.
func (s *Session) Close() error {
	if !s.open {
		return nil
	}
	_, _, err := s.transact(OC_CloseSession, nil, false)
	s.open = false
	if err != nil {
		s.log.PTP.Warningf("close session: %v", err)
		return fmt.Errorf("ptp: close session: %w", err)
	}
	return nil
}

// Run executes an operation with no data phase and returns the response
// container.
func (s *Session) Run(code uint16, params ...uint32) (*Container, error) {
	rep, _, err := s.transact(code, params, false)
	return rep, err
}

// RunData executes an operation whose result arrives in a data phase
// and returns the reassembled payload.
func (s *Session) RunData(code uint16, params ...uint32) ([]byte, error) {
	_, data, err := s.transact(code, params, true)
	return data, err
}

// GetDeviceInfo fetches and decodes the device info data set.
func (s *Session) GetDeviceInfo() (*DeviceInfo, error) {
	data, err := s.RunData(OC_GetDeviceInfo)
	if err != nil {
		return nil, err
	}
	info := &DeviceInfo{}
	if err := Decode(bytes.NewReader(data), info); err != nil {
		return nil, FormatError(fmt.Sprintf("ptp: device info: %v", err))
	}
	if s.log.PTP.IsDebug() {
		s.log.PTP.Debugf("device info: %v", info)
	}
	return info, nil
}

// GetDevicePropValue reads a device property and returns the raw value
// payload. Interpretation is the caller's business; vendor properties
// have vendor layouts.
func (s *Session) GetDevicePropValue(prop uint32) ([]byte, error) {
	return s.RunData(OC_GetDevicePropValue, prop)
}

func (s *Session) nextTID() uint32 {
	if !s.open {
		// 0 is reserved for the session handshake.
		return 0
	}
	s.tid++
	return s.tid
}

func (s *Session) packetSize() int {
	if n := s.pipe.MaxPacketSize(); n >= hdrLen {
		return n
	}
	return 512
}

// transact runs one command/data/response exchange.
func (s *Session) transact(code uint16, params []uint32, wantData bool) (*Container, []byte, error) {
	tid := s.nextTID()
	req := &Container{
		Type:          USB_CONTAINER_COMMAND,
		Code:          code,
		TransactionID: tid,
		Param:         params,
	}
	s.log.PTP.Debugf("request %s %v tid %d", getName(OC_names, int(code)), params, tid)

	wire, err := EncodeContainer(req)
	if err != nil {
		return nil, nil, err
	}
	if err := s.pipe.Send(wire); err != nil {
		return nil, nil, err
	}

	buf := make([]byte, s.packetSize())
	h, rest, err := s.fetchPacket(buf)
	if err != nil {
		return nil, nil, err
	}

	var payload []byte
	var sawData bool
	if h.Type == USB_CONTAINER_DATA {
		if !wantData {
			return nil, nil, SyncError(fmt.Sprintf("unexpected data for code %s", getName(OC_names, int(code))))
		}
		if h.TransactionID != tid {
			return nil, nil, SyncError(fmt.Sprintf("transaction ID mismatch got %x want %x",
				h.TransactionID, tid))
		}
		payload, err = s.readDataPhase(h, rest, buf)
		if err != nil {
			return nil, nil, err
		}
		sawData = true

		h, rest, err = s.fetchPacket(buf)
		if err != nil {
			return nil, nil, err
		}
	}

	rep, err := s.decodeRep(h, rest)
	if err != nil {
		return nil, nil, err
	}
	s.log.PTP.Debugf("response %s %v", getName(RC_names, int(rep.Code)), rep.Param)

	if rep.TransactionID != tid {
		return nil, nil, SyncError(fmt.Sprintf("transaction ID mismatch got %x want %x",
			rep.TransactionID, tid))
	}
	if rep.Code != RC_OK {
		return rep, payload, RCError(rep.Code)
	}
	if wantData && !sawData {
		return rep, nil, SyncError(fmt.Sprintf("no data phase for code %s", getName(OC_names, int(code))))
	}
	return rep, payload, nil
}

// readDataPhase reassembles a data container that may span several USB
// packets, until the declared container length is satisfied.
func (s *Session) readDataPhase(h bulkHeader, first []byte, buf []byte) ([]byte, error) {
	want := int(h.Length) - hdrLen
	if want < len(first) {
		return nil, FormatError(fmt.Sprintf("ptp: data header declares 0x%x bytes, first packet has 0x%x",
			want, len(first)))
	}
	payload := append([]byte(nil), first...)
	for len(payload) < want {
		n, err := s.pipe.Recv(buf)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, FormatError(fmt.Sprintf("ptp: data phase short: 0x%x of 0x%x bytes",
				len(payload), want))
		}
		payload = append(payload, buf[:n]...)
	}
	// Trailing alignment bytes on the final packet are not data.
	payload = payload[:want]
	s.log.PTP.Debugf("data 0x%x bytes", h.Length)
	return payload, nil
}

// Fetches one USB packet. The header is split off, and the remainder is
// returned.
func (s *Session) fetchPacket(buf []byte) (bulkHeader, []byte, error) {
	n, err := s.pipe.Recv(buf)
	if err != nil {
		return bulkHeader{}, nil, err
	}
	return splitHeader(buf[:n])
}

func (s *Session) decodeRep(h bulkHeader, rest []byte) (*Container, error) {
	if h.Type != USB_CONTAINER_RESPONSE {
		return nil, SyncError(fmt.Sprintf("got type %d (%s) in response, want CONTAINER_RESPONSE",
			h.Type, getName(USB_names, int(h.Type))))
	}

	restLen := int(h.Length) - hdrLen
	if restLen != len(rest) {
		return nil, FormatError(fmt.Sprintf("ptp: header specified 0x%x bytes, but have 0x%x",
			restLen, len(rest)))
	}
	if restLen/4 > maxParams {
		return nil, FormatError(fmt.Sprintf("ptp: response with %d parameters", restLen/4))
	}

	rep := &Container{
		Type:          h.Type,
		Code:          h.Code,
		TransactionID: h.TransactionID,
	}
	for i := 0; i < restLen/4; i++ {
		rep.Param = append(rep.Param, byteOrder.Uint32(rest[4*i:]))
	}
	return rep, nil
}
