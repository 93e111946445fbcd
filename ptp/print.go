package ptp

import (
	"fmt"
	"io"
	"strings"
)

func getName(m map[int]string, code int) string {
	if n, ok := m[code]; ok {
		return n
	}
	return fmt.Sprintf("0x%x", code)
}

func getNames(m map[int]string, vals []uint16) string {
	r := []string{}
	for _, v := range vals {
		r = append(r, getName(m, int(v)))
	}
	return strings.Join(r, ", ")
}

func (i *DeviceInfo) String() string {
	return fmt.Sprintf("stdv: %x, ext: %x, mtp: v%x, mtp ext: %q fmod: %x ops: %s "+
		"dprops: %s manu: %q model: %q devv: %q serno: %q",
		i.StandardVersion,
		i.MTPVendorExtensionID,
		i.MTPVersion,
		i.MTPExtension,
		i.FunctionalMode,
		getNames(OC_names, i.OperationsSupported),
		getNames(DPC_names, i.DevicePropertiesSupported),
		i.Manufacturer,
		i.Model,
		i.DeviceVersion,
		i.SerialNumber)
}

func hexDump(w io.Writer, data []byte) {
	for off := 0; off < len(data); off += 16 {
		end := off + 16
		if end > len(data) {
			end = len(data)
		}
		row := data[off:end]

		var hex, asc strings.Builder
		for i, b := range row {
			if i == 8 {
				hex.WriteByte(' ')
			}
			fmt.Fprintf(&hex, "%02x ", b)
			if b >= 0x20 && b < 0x7f {
				asc.WriteByte(b)
			} else {
				asc.WriteByte('.')
			}
		}
		fmt.Fprintf(w, "%08x  %-49s %s\n", off, hex.String(), asc.String())
	}
}
