package ptp

import (
	"errors"
	"fmt"
)

// Transport failures. The session treats every one of them as fatal for
// the invocation; PTP session state after a failed transfer is ambiguous
// and a blind retry can desynchronize the transaction sequence.
var (
	// ErrDeviceNotFound means no attached USB device matched the
	// requested vendor/product pair.
	ErrDeviceNotFound = errors.New("ptp: no matching USB device")

	// ErrTimeout is a bulk transfer that did not complete within the
	// transport timeout.
	ErrTimeout = errors.New("ptp: transfer timed out")

	// ErrIO is any other bulk transfer failure.
	ErrIO = errors.New("ptp: transfer failed")
)

// RCError are return codes from the Container.Code field.
type RCError uint16

func (e RCError) Error() string {
	n, ok := RC_names[int(e)]
	if ok {
		return n
	}
	return fmt.Sprintf("RetCode %x", uint16(e))
}

// SyncError is an error type that indicates lost transaction
// synchronization in the protocol: a mismatched transaction ID, a data
// phase where none was expected, or a container out of phase order.
type SyncError string

func (s SyncError) Error() string {
	return string(s)
}

// FormatError indicates a container or data set that does not obey the
// wire format.
type FormatError string

func (e FormatError) Error() string {
	return string(e)
}

// IsUnsupported reports whether err means the device does not implement
// the requested operation or property, as opposed to a transport or
// protocol fault.
func IsUnsupported(err error) bool {
	var rc RCError
	if !errors.As(err, &rc) {
		return false
	}
	switch uint16(rc) {
	case RC_OperationNotSupported, RC_ParameterNotSupported, RC_DevicePropNotSupported:
		return true
	}
	return false
}
