package scans

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJoinNotes(t *testing.T) {
	assert.Equal(t, "Clean CarFax, Minor rock chips on hood, Ready for Retail", JoinNotes(sedanNotes))
	assert.Equal(t, "Invalid VIN", JoinNotes([]string{"Invalid VIN"}))
	assert.Equal(t, "", JoinNotes(nil))
}

func TestNewScanRecord(t *testing.T) {
	at := time.Date(2026, 1, 16, 22, 38, 0, 0, time.UTC)
	res := InspectionResult{Grade: "2.1", EstimatedValue: 12000, Notes: truckNotes}

	rec := NewScanRecord("1FTFW1ET5DFC10313", res, at, 152500*time.Microsecond)

	assert.Equal(t, &ScanRecord{
		Vin:                 "1FTFW1ET5DFC10313",
		ScannedAt:           at,
		Grade:               "2.1",
		EstimatedValue:      12000,
		Notes:               "Heavy bed damage, Odometer discrepancy, Check Engine Light: P0420",
		ProcessingLatencyMs: 152.5,
	}, rec)
}

func TestScanRecordValidate(t *testing.T) {
	assert.NoError(t, (&ScanRecord{Vin: "abc"}).Validate())
	assert.ErrorIs(t, (&ScanRecord{}).Validate(), ErrEmptyVIN)
	assert.ErrorIs(t, (&ScanRecord{Vin: "abc", EstimatedValue: -1}).Validate(), ErrNegativeValue)
}
