package canon

import (
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camkit/shuttercount/log"
	"github.com/camkit/shuttercount/ptp"
)

func counterBlock(mechanical, total uint32) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint32(b, mechanical)
	binary.LittleEndian.PutUint32(b[4:], total)
	return b
}

func TestDecodeShutterCounters(t *testing.T) {
	c, err := DecodeShutterCounters(counterBlock(6000, 19000))
	require.NoError(t, err)
	assert.Equal(t, uint32(6000), c.Mechanical)
	assert.Equal(t, uint32(19000), c.Total)
}

func TestDecodeShutterCountersTrailingIgnored(t *testing.T) {
	payload := append(counterBlock(6000, 19000), 0xde, 0xad, 0xbe, 0xef)
	c, err := DecodeShutterCounters(payload)
	require.NoError(t, err)
	assert.Equal(t, uint32(6000), c.Mechanical)
	assert.Equal(t, uint32(19000), c.Total)
}

func TestDecodeShutterCountersShort(t *testing.T) {
	for n := 0; n < 8; n++ {
		_, err := DecodeShutterCounters(make([]byte, n))
		assert.ErrorIs(t, err, ErrShortCounterPayload, "length %d", n)
	}
}

// scriptPipe plays back reply packets in order.
type scriptPipe struct {
	sent    [][]byte
	replies [][]byte
}

func (p *scriptPipe) Send(b []byte) error {
	p.sent = append(p.sent, append([]byte(nil), b...))
	return nil
}

func (p *scriptPipe) Recv(b []byte) (int, error) {
	if len(p.replies) == 0 {
		return 0, fmt.Errorf("%w: script exhausted", ptp.ErrIO)
	}
	r := p.replies[0]
	p.replies = p.replies[1:]
	return copy(b, r), nil
}

func (p *scriptPipe) MaxPacketSize() int { return 512 }
func (p *scriptPipe) Close() error       { return nil }

func (p *scriptPipe) resp(t *testing.T, code uint16, tid uint32) {
	t.Helper()
	wire, err := ptp.EncodeContainer(&ptp.Container{
		Type: ptp.USB_CONTAINER_RESPONSE, Code: code, TransactionID: tid,
	})
	require.NoError(t, err)
	p.replies = append(p.replies, wire)
}

func (p *scriptPipe) data(t *testing.T, code uint16, tid uint32, payload []byte) {
	t.Helper()
	wire, err := ptp.EncodeContainer(&ptp.Container{
		Type: ptp.USB_CONTAINER_DATA, Code: code, TransactionID: tid, Payload: payload,
	})
	require.NoError(t, err)
	p.replies = append(p.replies, wire)
}

func openSession(t *testing.T, p *scriptPipe) *ptp.Session {
	t.Helper()
	p.resp(t, ptp.RC_OK, 0)
	s := ptp.NewSession(p, log.PrepareChildren(log.Root, false, false, false))
	require.NoError(t, s.Open())
	return s
}

func TestQueryShutterCountersDirect(t *testing.T) {
	p := &scriptPipe{}
	s := openSession(t, p)
	p.data(t, ptp.OC_GetDevicePropValue, 1, counterBlock(6000, 19000))
	p.resp(t, ptp.RC_OK, 1)

	c, err := QueryShutterCounters(s)
	require.NoError(t, err)
	assert.Equal(t, ShutterCounters{Mechanical: 6000, Total: 19000}, c)
}

func TestQueryShutterCountersEventFallback(t *testing.T) {
	value := append(make([]byte, eventValueHeaderLen), counterBlock(6000, 19000)...)
	var stream []byte
	stream = append(stream, propRecord(0xD116, []byte{1, 0, 0, 0})...)
	stream = append(stream, propRecord(DPC_EOS_ShutterCounter, value)...)
	stream = append(stream, 0, 0, 0, 0, 0, 0, 0, 0)

	p := &scriptPipe{}
	s := openSession(t, p)
	p.resp(t, ptp.RC_DevicePropNotSupported, 1) // direct read refused
	p.resp(t, ptp.RC_OK, 2)                     // SetRemoteMode
	p.resp(t, ptp.RC_OK, 3)                     // SetEventMode
	p.data(t, OC_EOS_GetEvent, 4, stream)
	p.resp(t, ptp.RC_OK, 4)

	c, err := QueryShutterCounters(s)
	require.NoError(t, err)
	assert.Equal(t, ShutterCounters{Mechanical: 6000, Total: 19000}, c)
}

func TestQueryShutterCountersUnsupported(t *testing.T) {
	p := &scriptPipe{}
	s := openSession(t, p)
	p.resp(t, ptp.RC_DevicePropNotSupported, 1)
	p.resp(t, ptp.RC_OperationNotSupported, 2) // no EOS extension either

	_, err := QueryShutterCounters(s)
	assert.ErrorIs(t, err, ErrCounterUnsupported)
}

func TestQueryShutterCountersEventMissingProperty(t *testing.T) {
	var stream []byte
	stream = append(stream, propRecord(0xD116, []byte{1, 0, 0, 0})...)
	stream = append(stream, 0, 0, 0, 0, 0, 0, 0, 0)

	p := &scriptPipe{}
	s := openSession(t, p)
	p.resp(t, ptp.RC_DevicePropNotSupported, 1)
	p.resp(t, ptp.RC_OK, 2)
	p.resp(t, ptp.RC_OK, 3)
	p.data(t, OC_EOS_GetEvent, 4, stream)
	p.resp(t, ptp.RC_OK, 4)

	_, err := QueryShutterCounters(s)
	assert.ErrorIs(t, err, ErrCounterUnsupported)
}

func TestQueryShutterCountersTransportFault(t *testing.T) {
	p := &scriptPipe{}
	s := openSession(t, p)
	// Script exhausted: the next read fails as an I/O error, which must
	// surface as-is rather than turning into "unsupported".
	_, err := QueryShutterCounters(s)
	assert.ErrorIs(t, err, ptp.ErrIO)
	assert.NotErrorIs(t, err, ErrCounterUnsupported)
}
