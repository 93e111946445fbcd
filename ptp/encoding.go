package ptp

import (
	"fmt"
	"io"
	"reflect"
	"unicode/utf8"
)

// PTP data sets are flat sequences of little-endian integers,
// length-prefixed UTF-16LE strings and counted arrays. Decode and Encode
// walk a struct's fields in order; the field types determine the wire
// representation.

func decodeStr(r io.Reader) (string, error) {
	var szSlice [1]byte
	if _, err := io.ReadFull(r, szSlice[:]); err != nil {
		return "", err
	}
	sz := int(szSlice[0])
	if sz == 0 {
		return "", nil
	}
	utfStr := make([]byte, 4*sz)
	data := make([]byte, 2*sz)
	if _, err := io.ReadFull(r, data); err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return "", FormatError("ptp: string underflow")
		}
		return "", err
	}
	w := 0
	for i := 0; i < 2*sz; i += 2 {
		cp := byteOrder.Uint16(data[i:])
		w += utf8.EncodeRune(utfStr[w:], rune(cp))
	}
	if utfStr[w-1] == 0 {
		w--
	}
	return string(utfStr[:w]), nil
}

func encodeStr(buf []byte, s string) ([]byte, error) {
	if s == "" {
		buf[0] = 0
		return buf[:1], nil
	}

	codepoints := 0
	buf = append(buf[:0], 0)

	var char [2]byte
	for _, r := range s {
		byteOrder.PutUint16(char[:], uint16(r))
		buf = append(buf, char[0], char[1])
		codepoints++
	}
	buf = append(buf, 0, 0)
	codepoints++
	if codepoints > 254 {
		return nil, FormatError("ptp: string too long")
	}

	buf[0] = byte(codepoints)
	return buf, nil
}

func encodeStrField(w io.Writer, f reflect.Value) error {
	out := make([]byte, 2*f.Len()+4)
	enc, err := encodeStr(out, f.Interface().(string))
	if err != nil {
		return err
	}
	_, err = w.Write(enc)
	return err
}

func kindSize(k reflect.Kind) int {
	switch k {
	case reflect.Uint8:
		return 1
	case reflect.Uint16:
		return 2
	case reflect.Uint32:
		return 4
	case reflect.Uint64:
		return 8
	}
	return 0
}

var nullValue reflect.Value

// A device info data set tops out well below this; a count beyond it is
// firmware garbage, not data.
const maxArrayElems = 1 << 20

func decodeArray(r io.Reader, t reflect.Type) (reflect.Value, error) {
	var szb [4]byte
	if _, err := io.ReadFull(r, szb[:]); err != nil {
		return nullValue, err
	}
	sz := int(byteOrder.Uint32(szb[:]))
	if sz > maxArrayElems {
		return nullValue, FormatError(fmt.Sprintf("ptp: array of %d elements", sz))
	}

	ksz := kindSize(t.Elem().Kind())
	if ksz == 0 {
		return nullValue, fmt.Errorf("ptp: cannot decode array of %v", t.Elem().Kind())
	}

	data := make([]byte, sz*ksz)
	n, err := io.ReadFull(r, data)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nullValue, err
	}
	if n < len(data) {
		// Devices round short on the final array; take what arrived.
		data = data[:n]
		sz = n / ksz
	}

	slice := reflect.MakeSlice(t, sz, sz)
	for i := 0; i < sz; i++ {
		from := data[i*ksz:]
		var val uint64
		switch ksz {
		case 1:
			val = uint64(from[0])
		case 2:
			val = uint64(byteOrder.Uint16(from))
		case 4:
			val = uint64(byteOrder.Uint32(from))
		case 8:
			val = byteOrder.Uint64(from)
		}
		slice.Index(i).SetUint(val)
	}
	return slice, nil
}

func encodeArray(w io.Writer, val reflect.Value) error {
	var szb [4]byte
	byteOrder.PutUint32(szb[:], uint32(val.Len()))
	if _, err := w.Write(szb[:]); err != nil {
		return err
	}

	ksz := kindSize(val.Type().Elem().Kind())
	if ksz == 0 {
		return fmt.Errorf("ptp: cannot encode array of %v", val.Type().Elem().Kind())
	}
	data := make([]byte, val.Len()*ksz)
	for i := 0; i < val.Len(); i++ {
		to := data[i*ksz:]
		switch ksz {
		case 1:
			to[0] = byte(val.Index(i).Uint())
		case 2:
			byteOrder.PutUint16(to, uint16(val.Index(i).Uint()))
		case 4:
			byteOrder.PutUint32(to, uint32(val.Index(i).Uint()))
		case 8:
			byteOrder.PutUint64(to, val.Index(i).Uint())
		}
	}
	_, err := w.Write(data)
	return err
}

func decodeField(r io.Reader, f reflect.Value) error {
	if !f.CanAddr() {
		return fmt.Errorf("ptp: field not addressable")
	}

	switch f.Kind() {
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		sz := kindSize(f.Kind())
		var b [8]byte
		if _, err := io.ReadFull(r, b[:sz]); err != nil {
			return err
		}
		var val uint64
		switch sz {
		case 1:
			val = uint64(b[0])
		case 2:
			val = uint64(byteOrder.Uint16(b[:]))
		case 4:
			val = uint64(byteOrder.Uint32(b[:]))
		case 8:
			val = byteOrder.Uint64(b[:])
		}
		f.SetUint(val)
	case reflect.String:
		s, err := decodeStr(r)
		if err != nil {
			return err
		}
		f.SetString(s)
	case reflect.Slice:
		sl, err := decodeArray(r, f.Type())
		if err != nil {
			return err
		}
		f.Set(sl)
	default:
		return fmt.Errorf("ptp: cannot decode kind %v", f.Kind())
	}
	return nil
}

func encodeField(w io.Writer, f reflect.Value) error {
	switch f.Kind() {
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		sz := kindSize(f.Kind())
		var b [8]byte
		switch sz {
		case 1:
			b[0] = byte(f.Uint())
		case 2:
			byteOrder.PutUint16(b[:], uint16(f.Uint()))
		case 4:
			byteOrder.PutUint32(b[:], uint32(f.Uint()))
		case 8:
			byteOrder.PutUint64(b[:], f.Uint())
		}
		_, err := w.Write(b[:sz])
		return err
	case reflect.String:
		return encodeStrField(w, f)
	case reflect.Slice:
		return encodeArray(w, f)
	default:
		return fmt.Errorf("ptp: cannot encode kind %v", f.Kind())
	}
}

// Decode reads a PTP data set from r into the struct pointed to by
// iface.
func Decode(r io.Reader, iface interface{}) error {
	val := reflect.ValueOf(iface)
	if val.Kind() != reflect.Ptr {
		return fmt.Errorf("ptp: need ptr argument: %T", iface)
	}
	val = val.Elem()
	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		if err := decodeField(r, val.Field(i)); err != nil {
			return err
		}
	}
	return nil
}

// Encode writes the struct pointed to by iface as a PTP data set.
func Encode(w io.Writer, iface interface{}) error {
	val := reflect.ValueOf(iface)
	if val.Kind() != reflect.Ptr {
		return fmt.Errorf("ptp: need ptr argument: %T", iface)
	}
	val = val.Elem()
	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		if err := encodeField(w, val.Field(i)); err != nil {
			return err
		}
	}
	return nil
}
