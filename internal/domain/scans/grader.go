package scans

import (
	"time"
	"unicode/utf8"
)

const (
	minVINLength = 5

	// DefaultAnalysisDelay is the simulated cost of grading a damaged vehicle.
	DefaultAnalysisDelay = 150 * time.Millisecond
)

// Grader maps a VIN to a condition grade using a fixed decision table keyed on
// the VIN's final character. It holds no mutable state.
type Grader struct {
	AnalysisDelay time.Duration
	sleep         func(time.Duration)
}

func NewGrader() *Grader {
	return &Grader{AnalysisDelay: DefaultAnalysisDelay}
}

// Grade returns the inspection outcome for vin. mileage does not affect the
// result yet. Invalid input yields an "N/A" result rather than an error.
func (g *Grader) Grade(vin string, mileage int) InspectionResult {
	if vin == "" || utf8.RuneCountInString(vin) < minVINLength {
		return InspectionResult{
			Grade:          "N/A",
			EstimatedValue: 0,
			Notes:          []string{"Invalid VIN"},
		}
	}

	last, _ := utf8.DecodeLastRuneInString(vin)
	switch last {
	case '0', '1', '2':
		// economy sedan
		return InspectionResult{
			Grade:          "4.2",
			EstimatedValue: 18500,
			Notes:          []string{"Clean CarFax", "Minor rock chips on hood", "Ready for Retail"},
		}
	case '3', '4', '5':
		// work truck, heavier damage analysis
		g.wait()
		return InspectionResult{
			Grade:          "2.1",
			EstimatedValue: 12000,
			Notes:          []string{"Heavy bed damage", "Odometer discrepancy", "Check Engine Light: P0420"},
		}
	default:
		return InspectionResult{
			Grade:          "4.9",
			EstimatedValue: 42000,
			Notes:          []string{"One owner", "Panorama sunroof verified", "Factory Warranty Active"},
		}
	}
}

func (g *Grader) wait() {
	if g.AnalysisDelay <= 0 {
		return
	}
	if g.sleep != nil {
		g.sleep(g.AnalysisDelay)
		return
	}
	time.Sleep(g.AnalysisDelay)
}
