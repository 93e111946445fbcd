// Package camera ties the transport, session and vendor layers into the
// one query this tool performs: read the camera's identity and shutter
// counters, then derive a usage report.
package camera

import (
	"context"
	"fmt"
	"time"

	"github.com/camkit/shuttercount/canon"
	"github.com/camkit/shuttercount/log"
	"github.com/camkit/shuttercount/ptp"
)

// Info is the subset of the PTP device info the report cares about.
type Info struct {
	Manufacturer    string `json:"manufacturer"`
	Model           string `json:"model"`
	FirmwareVersion string `json:"firmware_version"`
}

// QueryResult is what one camera exchange yields.
type QueryResult struct {
	Info     Info
	Counters canon.ShutterCounters
}

// QueryOptions selects the device and bounds the exchange.
type QueryOptions struct {
	VendorID  uint16
	ProductID uint16
	Timeout   time.Duration
	Log       *log.Children
}

// Query opens the camera, runs the session and releases the device on
// every path. Cancellation of ctx takes the same close-and-release path
// as any failure.
func Query(ctx context.Context, opts QueryOptions) (*QueryResult, error) {
	t, err := ptp.OpenTransport(opts.VendorID, opts.ProductID, opts.Timeout, opts.Log)
	if err != nil {
		return nil, err
	}
	return queryPipe(ctx, t, opts.Log)
}

// queryPipe runs the session over an already-open pipe and owns it: the
// pipe is closed before return, whatever happened.
func queryPipe(ctx context.Context, pipe ptp.Pipe, lg *log.Children) (res *QueryResult, err error) {
	defer pipe.Close()

	s := ptp.NewSession(pipe, lg)
	if err := s.Open(); err != nil {
		return nil, err
	}
	// Best-effort; the primary error, if any, takes precedence.
	defer s.Close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := s.GetDeviceInfo()
	if err != nil {
		return nil, fmt.Errorf("device info: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	counters, err := canon.QueryShutterCounters(s)
	if err != nil {
		return nil, err
	}

	lg.PTP.Debugf("counters: mechanical %d total %d", counters.Mechanical, counters.Total)
	return &QueryResult{
		Info: Info{
			Manufacturer:    info.Manufacturer,
			Model:           info.Model,
			FirmwareVersion: info.DeviceVersion,
		},
		Counters: counters,
	}, nil
}
