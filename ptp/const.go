package ptp

// Operation, response and container type codes from the PTP standard,
// restricted to the subset a shutter counter query touches.

// operation code
const OC_GetDeviceInfo = 0x1001
const OC_OpenSession = 0x1002
const OC_CloseSession = 0x1003
const OC_GetDevicePropDesc = 0x1014
const OC_GetDevicePropValue = 0x1015

var OC_names = map[int]string{
	0x1001: "GetDeviceInfo",
	0x1002: "OpenSession",
	0x1003: "CloseSession",
	0x1014: "GetDevicePropDesc",
	0x1015: "GetDevicePropValue",
}

// response code
const RC_OK = 0x2001
const RC_GeneralError = 0x2002
const RC_SessionNotOpen = 0x2003
const RC_InvalidTransactionID = 0x2004
const RC_OperationNotSupported = 0x2005
const RC_ParameterNotSupported = 0x2006
const RC_IncompleteTransfer = 0x2007
const RC_DevicePropNotSupported = 0x200A
const RC_InvalidDevicePropFormat = 0x200B
const RC_DeviceBusy = 0x2019
const RC_SessionAlreadyOpened = 0x201E

var RC_names = map[int]string{
	0x2001: "OK",
	0x2002: "GeneralError",
	0x2003: "SessionNotOpen",
	0x2004: "InvalidTransactionID",
	0x2005: "OperationNotSupported",
	0x2006: "ParameterNotSupported",
	0x2007: "IncompleteTransfer",
	0x200A: "DevicePropNotSupported",
	0x200B: "InvalidDevicePropFormat",
	0x2019: "DeviceBusy",
	0x201E: "SessionAlreadyOpened",
}

// device property code
const DPC_Undefined = 0x5000
const DPC_BatteryLevel = 0x5001
const DPC_FunctionalMode = 0x5002
const DPC_DateTime = 0x5011

var DPC_names = map[int]string{
	0x5000: "Undefined",
	0x5001: "BatteryLevel",
	0x5002: "FunctionalMode",
	0x5011: "DateTime",
}

// USB container type
const USB_CONTAINER_UNDEFINED = 0x0000
const USB_CONTAINER_COMMAND = 0x0001
const USB_CONTAINER_DATA = 0x0002
const USB_CONTAINER_RESPONSE = 0x0003
const USB_CONTAINER_EVENT = 0x0004

var USB_names = map[int]string{
	0x0000: "UNDEFINED",
	0x0001: "COMMAND",
	0x0002: "DATA",
	0x0003: "RESPONSE",
	0x0004: "EVENT",
}

// data type code, as found in device property descriptors
const DTC_UNDEF = 0x0000
const DTC_INT8 = 0x0001
const DTC_UINT8 = 0x0002
const DTC_INT16 = 0x0003
const DTC_UINT16 = 0x0004
const DTC_INT32 = 0x0005
const DTC_UINT32 = 0x0006
const DTC_INT64 = 0x0007
const DTC_UINT64 = 0x0008
const DTC_STR = 0xFFFF

var DTC_names = map[int]string{
	0x0000: "UNDEF",
	0x0001: "INT8",
	0x0002: "UINT8",
	0x0003: "INT16",
	0x0004: "UINT16",
	0x0005: "INT32",
	0x0006: "UINT32",
	0x0007: "INT64",
	0x0008: "UINT64",
	0xFFFF: "STR",
}
