// shuttercount reads the shutter actuation counters from a Canon EOS
// camera over USB and reports usage against the model's rated shutter
// life.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/camkit/shuttercount/camera"
	"github.com/camkit/shuttercount/canon"
	"github.com/camkit/shuttercount/log"
	"github.com/camkit/shuttercount/ptp"
)

// Exit codes, one per failure class, so scripts can tell "not plugged
// in" from "camera we cannot read".
const (
	exitOK          = 0
	exitFailure     = 1 // transport or protocol fault
	exitNotFound    = 2
	exitUnsupported = 3
	exitBadInput    = 4
)

func main() {
	jsonOut := flag.Bool("json", false, "output in JSON format")
	vendorID := flag.String("vendor-id", "", "USB vendor ID (hex, default Canon)")
	productID := flag.String("product-id", "", "USB product ID (hex, default EOS R7)")
	life := flag.Uint("life", 0, "override rated shutter life")
	lifeTable := flag.String("life-table", "", "YAML file with model: rated-life entries, merged over the built-in table")
	timeout := flag.Duration("timeout", ptp.DefaultTimeout, "USB transfer timeout")
	debug := flag.String("debug", "", "comma-separated debug channels: usb,ptp,data")
	flag.Parse()

	os.Exit(run(*jsonOut, *vendorID, *productID, uint32(*life), *lifeTable, *timeout, *debug))
}

func run(jsonOut bool, vendorID, productID string, life uint32, lifeTable string, timeout time.Duration, debug string) int {
	lg := prepareLogging(debug)

	vid, err := parseID(vendorID, canon.VendorID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -vendor-id: %v\n", err)
		return exitBadInput
	}
	pid, err := parseID(productID, canon.R7ProductID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -product-id: %v\n", err)
		return exitBadInput
	}
	if lifeTable != "" {
		if err := camera.LoadLifeTable(lifeTable); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return exitBadInput
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := camera.Query(ctx, camera.QueryOptions{
		VendorID:  vid,
		ProductID: pid,
		Timeout:   timeout,
		Log:       lg,
	})
	if err != nil {
		return reportError(err)
	}

	if life == 0 {
		var ok bool
		life, ok = camera.LookupLife(res.Info.Model)
		if !ok {
			fmt.Fprintf(os.Stderr, "no rated shutter life known for %q; pass -life or -life-table\n", res.Info.Model)
			return exitBadInput
		}
	}

	rep, err := camera.Compute(res.Info, res.Counters, life)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return exitBadInput
	}

	if jsonOut {
		printJSON(rep)
	} else {
		printText(rep)
	}
	return exitOK
}

func prepareLogging(debug string) *log.Children {
	var usb, ptpDbg, data bool
	for _, ch := range strings.Split(debug, ",") {
		switch strings.TrimSpace(ch) {
		case "usb":
			usb = true
		case "ptp":
			ptpDbg = true
		case "data":
			data = true
		}
	}
	return log.PrepareChildren(log.Root, usb, ptpDbg, data)
}

func parseID(s string, def uint16) (uint16, error) {
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(s), "0x"), 16, 16)
	if err != nil {
		return 0, err
	}
	return uint16(v), nil
}

func reportError(err error) int {
	var sync ptp.SyncError
	var format ptp.FormatError
	var rc ptp.RCError

	switch {
	case errors.Is(err, ptp.ErrDeviceNotFound):
		fmt.Fprintf(os.Stderr, "camera not found: %v\n", err)
		fmt.Fprintln(os.Stderr, "check that the camera is connected, powered on and in PTP mode, and that you have USB permissions")
		return exitNotFound
	case errors.Is(err, canon.ErrCounterUnsupported) || ptp.IsUnsupported(err):
		fmt.Fprintf(os.Stderr, "unsupported camera: %v\n", err)
		return exitUnsupported
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(os.Stderr, "interrupted")
		return exitFailure
	case errors.Is(err, ptp.ErrTimeout):
		fmt.Fprintf(os.Stderr, "camera did not answer in time: %v\n", err)
		fmt.Fprintln(os.Stderr, "close other applications using the camera (EOS Utility, gphoto2) and try again")
		return exitFailure
	case errors.As(err, &sync) || errors.As(err, &format) || errors.As(err, &rc):
		fmt.Fprintf(os.Stderr, "protocol fault: %v\n", err)
		return exitFailure
	default:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitFailure
	}
}

func printJSON(rep *camera.Report) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(rep)
}

func printText(rep *camera.Report) {
	fmt.Printf("Camera: %s %s\n", rep.Camera.Manufacturer, rep.Camera.Model)
	fmt.Printf("Firmware: %s\n\n", rep.Camera.FirmwareVersion)

	fmt.Printf("Mechanical Shutter: <= %d\n", rep.Shutter.MechanicalCount)
	fmt.Printf("Total Actuations:   <= %d\n\n", rep.Shutter.TotalCount)

	fmt.Printf("Life Expectancy: %d\n", rep.Shutter.LifeExpectancy)
	fmt.Printf("Remaining: ~%d (%.1f%%)\n", rep.Shutter.Remaining, rep.Shutter.PercentageRemaining())
	fmt.Printf("Usage: [%s] %.1f%%\n", usageBar(rep.Shutter.PercentageUsed, 40), rep.Shutter.PercentageUsed)
}

func usageBar(pct float64, width int) string {
	filled := int(float64(width) * pct / 100)
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return strings.Repeat("#", filled) + strings.Repeat("-", width-filled)
}
