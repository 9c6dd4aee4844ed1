package scans

import (
	"strings"
	"time"
)

// NotesSeparator joins grading notes into the persisted Notes column.
const NotesSeparator = ", "

// InspectionResult value object, produced fresh per Grade call
type InspectionResult struct {
	Grade          string   `json:"grade"`
	EstimatedValue float64  `json:"estimatedValue"`
	Notes          []string `json:"notes"`
}

// Aggregate Root: ScanRecord
//
// One intake submission and its outcome. Created once per successful intake,
// never updated.
type ScanRecord struct {
	ID                  int64     `json:"id"`
	Vin                 string    `json:"vin"`
	ScannedAt           time.Time `json:"scannedAt"`
	Grade               string    `json:"grade"`
	EstimatedValue      float64   `json:"estimatedValue"`
	Notes               string    `json:"notes"`
	ProcessingLatencyMs float64   `json:"processingLatencyMs"`
}

// NewScanRecord builds the persisted form of a grading outcome.
func NewScanRecord(vin string, res InspectionResult, scannedAt time.Time, latency time.Duration) *ScanRecord {
	return &ScanRecord{
		Vin:                 vin,
		ScannedAt:           scannedAt,
		Grade:               res.Grade,
		EstimatedValue:      res.EstimatedValue,
		Notes:               JoinNotes(res.Notes),
		ProcessingLatencyMs: float64(latency) / float64(time.Millisecond),
	}
}

// JoinNotes flattens notes in order. Notes containing the separator cannot be
// split back exactly.
func JoinNotes(notes []string) string {
	return strings.Join(notes, NotesSeparator)
}

// Validate checks the invariants every persisted record must hold.
func (r *ScanRecord) Validate() error {
	if r.Vin == "" {
		return ErrEmptyVIN
	}
	if r.EstimatedValue < 0 {
		return ErrNegativeValue
	}
	return nil
}
