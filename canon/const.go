package canon

// Canon EOS PTP extensions. These opcodes are reverse-engineered; only
// the ones the shutter counter query needs are listed.

// operation code
const OC_EOS_SetRemoteMode = 0x9114
const OC_EOS_SetEventMode = 0x9115
const OC_EOS_GetEvent = 0x9116

var OC_names = map[int]string{
	0x9114: "EOS_SetRemoteMode",
	0x9115: "EOS_SetEventMode",
	0x9116: "EOS_GetEvent",
}

// event code, as found in GetEvent records
const EC_EOS_PropValueChanged = 0xC189

// device property code
//
// 0xD167 carries the shutter release counter block on R-series bodies.
// The camera reports it in increments of 1000.
const DPC_EOS_ShutterCounter = 0xD167

// USB identity of the bodies this tool was verified against.
const (
	VendorID    = 0x04A9
	R7ProductID = 0x32F7
)
