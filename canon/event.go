package canon

import "encoding/binary"

var byteOrder = binary.LittleEndian

// PropValue is one property announcement from the EOS event stream.
type PropValue struct {
	Prop uint32
	Data []byte
}

// DecodeEventStream walks a GetEvent payload. Records are laid out as
// len:u32 | event:u32 | data, back to back; a zero length or event code
// terminates the stream. Only PropValueChanged records are surfaced,
// as prop:u32 followed by the raw value bytes.
//
// The walk is total over arbitrary input: malformed records end the
// stream instead of faulting, since firmware regularly pads the tail
// with garbage.
func DecodeEventStream(data []byte) []PropValue {
	var out []PropValue
	off := 0
	for off+8 <= len(data) {
		recLen := int(byteOrder.Uint32(data[off:]))
		event := byteOrder.Uint32(data[off+4:])
		if recLen == 0 || event == 0 {
			break
		}
		if recLen < 8 || off+recLen > len(data) {
			break
		}

		if event == EC_EOS_PropValueChanged {
			rec := data[off+8 : off+recLen]
			if len(rec) >= 4 {
				out = append(out, PropValue{
					Prop: byteOrder.Uint32(rec),
					Data: rec[4:],
				})
			}
		}
		off += recLen
	}
	return out
}
