// Package ptp implements the subset of the Picture Transfer Protocol
// needed to read vendor device properties from a camera over USB: the
// container wire codec, a gousb bulk transport, and a session manager
// that sequences transactions.
package ptp

// DeviceInfo is the standard PTP device info data set.
type DeviceInfo struct {
	StandardVersion           uint16
	MTPVendorExtensionID      uint32
	MTPVersion                uint16
	MTPExtension              string
	FunctionalMode            uint16
	OperationsSupported       []uint16
	EventsSupported           []uint16
	DevicePropertiesSupported []uint16
	CaptureFormats            []uint16
	PlaybackFormats           []uint16
	Manufacturer              string
	Model                     string
	DeviceVersion             string
	SerialNumber              string
}

// SupportsOperation reports whether the device advertises the operation
// code in its device info.
func (i *DeviceInfo) SupportsOperation(code uint16) bool {
	for _, c := range i.OperationsSupported {
		if c == code {
			return true
		}
	}
	return false
}
