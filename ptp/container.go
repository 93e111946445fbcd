package ptp

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

var byteOrder = binary.LittleEndian

// Container is the framed unit of PTP communication over the USB bulk
// pipe. Command and response containers carry up to five uint32
// parameters; data containers carry an opaque payload.
type Container struct {
	Type          uint16
	Code          uint16
	TransactionID uint32
	Param         []uint32
	Payload       []byte
}

type bulkHeader struct {
	Length        uint32
	Type          uint16
	Code          uint16
	TransactionID uint32
}

const hdrLen = 2*2 + 2*4
const maxParams = 5

// EncodeContainer serializes c: little-endian header followed by the
// parameter list, or the payload for data containers.
func EncodeContainer(c *Container) ([]byte, error) {
	if len(c.Param) > maxParams {
		return nil, FormatError(fmt.Sprintf("ptp: %d parameters, max %d", len(c.Param), maxParams))
	}
	if len(c.Param) > 0 && len(c.Payload) > 0 {
		return nil, FormatError("ptp: container cannot carry both parameters and payload")
	}

	h := bulkHeader{
		Length:        uint32(hdrLen + 4*len(c.Param) + len(c.Payload)),
		Type:          c.Type,
		Code:          c.Code,
		TransactionID: c.TransactionID,
	}

	buf := bytes.NewBuffer(make([]byte, 0, h.Length))
	binary.Write(buf, byteOrder, &h)
	if err := binary.Write(buf, byteOrder, c.Param); err != nil {
		return nil, err
	}
	buf.Write(c.Payload)
	return buf.Bytes(), nil
}

// DecodeContainer parses a complete container from data. It is total
// over arbitrary input: truncated buffers, length mismatches and unknown
// container types come back as FormatError, never a panic.
func DecodeContainer(data []byte) (*Container, error) {
	h, rest, err := splitHeader(data)
	if err != nil {
		return nil, err
	}
	if int(h.Length) != len(data) {
		return nil, FormatError(fmt.Sprintf("ptp: header declares 0x%x bytes, buffer has 0x%x",
			h.Length, len(data)))
	}

	c := &Container{
		Type:          h.Type,
		Code:          h.Code,
		TransactionID: h.TransactionID,
	}

	switch h.Type {
	case USB_CONTAINER_DATA:
		if len(rest) > 0 {
			c.Payload = append([]byte(nil), rest...)
		}
	case USB_CONTAINER_COMMAND, USB_CONTAINER_RESPONSE, USB_CONTAINER_EVENT:
		if len(rest)%4 != 0 {
			return nil, FormatError(fmt.Sprintf("ptp: parameter block of 0x%x bytes is not a multiple of 4", len(rest)))
		}
		n := len(rest) / 4
		if n > maxParams {
			return nil, FormatError(fmt.Sprintf("ptp: %d parameters, max %d", n, maxParams))
		}
		for i := 0; i < n; i++ {
			c.Param = append(c.Param, byteOrder.Uint32(rest[4*i:]))
		}
	default:
		return nil, FormatError(fmt.Sprintf("ptp: unknown container type %d", h.Type))
	}
	return c, nil
}

// splitHeader peels the 12-byte bulk header off data. The remainder may
// be shorter than the declared length when the container spans several
// USB packets; the caller is responsible for reassembly before a full
// DecodeContainer.
func splitHeader(data []byte) (bulkHeader, []byte, error) {
	var h bulkHeader
	if len(data) < hdrLen {
		return h, nil, FormatError(fmt.Sprintf("ptp: container of 0x%x bytes, need 0x%x header", len(data), hdrLen))
	}
	if err := binary.Read(bytes.NewReader(data[:hdrLen]), byteOrder, &h); err != nil {
		return h, nil, err
	}
	if h.Length < hdrLen {
		return h, nil, FormatError(fmt.Sprintf("ptp: declared length 0x%x below header size", h.Length))
	}
	return h, data[hdrLen:], nil
}
