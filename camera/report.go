package camera

import (
	"errors"

	"github.com/camkit/shuttercount/canon"
)

// ErrInvalidLifeExpectancy rejects a zero rated life before it turns
// into Inf/NaN percentages downstream.
var ErrInvalidLifeExpectancy = errors.New("camera: life expectancy must be positive")

// Report is the derived usage summary. The wear arithmetic runs on the
// mechanical count: the rated life is a mechanical-shutter rating, and
// electronic actuations do not consume it. Remaining is not clamped; a
// camera past its rated life shows a negative remainder.
type Report struct {
	Camera  Info          `json:"camera"`
	Shutter ShutterReport `json:"shutter"`
}

type ShutterReport struct {
	MechanicalCount uint32  `json:"mechanical_count"`
	TotalCount      uint32  `json:"total_count"`
	LifeExpectancy  uint32  `json:"life_expectancy"`
	Remaining       int64   `json:"remaining"`
	PercentageUsed  float64 `json:"percentage_used"`
}

// PercentageRemaining is the complement of PercentageUsed, full
// precision. Rounding is the renderer's business.
func (s ShutterReport) PercentageRemaining() float64 {
	return 100.0 - s.PercentageUsed
}

// Compute derives the usage report. Pure; no I/O.
func Compute(info Info, counters canon.ShutterCounters, life uint32) (*Report, error) {
	if life == 0 {
		return nil, ErrInvalidLifeExpectancy
	}
	return &Report{
		Camera: info,
		Shutter: ShutterReport{
			MechanicalCount: counters.Mechanical,
			TotalCount:      counters.Total,
			LifeExpectancy:  life,
			Remaining:       int64(life) - int64(counters.Mechanical),
			PercentageUsed:  float64(counters.Mechanical) / float64(life) * 100.0,
		},
	}, nil
}
