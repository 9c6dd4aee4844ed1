package postgres

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/bryanwahyu/automarket-intake/internal/domain/scans"
)

type ScanRepository struct{ db *sql.DB }

func NewScanRepository(db *sql.DB) *ScanRepository { return &ScanRepository{db: db} }

// Append inserts a new scan row and writes the assigned Id back to rec.
func (r *ScanRepository) Append(ctx context.Context, rec *domain.ScanRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	const q = `
INSERT INTO "Scans"
 ("Vin", "ScannedAt", "Grade", "EstimatedValue", "Notes", "ProcessingLatencyMs")
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING "Id";`

	scannedAt := rec.ScannedAt
	if scannedAt.IsZero() {
		scannedAt = time.Now()
	}
	// timestamptz keeps microseconds
	scannedAt = scannedAt.UTC().Truncate(time.Microsecond)

	var id int64
	err := r.db.QueryRowContext(ctx, q,
		rec.Vin, scannedAt, nullIfBlank(rec.Grade), rec.EstimatedValue,
		nullIfBlank(rec.Notes), rec.ProcessingLatencyMs,
	).Scan(&id)
	if err != nil {
		return classify("append scan", err)
	}
	rec.ID = id
	rec.ScannedAt = scannedAt
	return nil
}

// ListRecent newest scans first, Id breaks timestamp ties
func (r *ScanRepository) ListRecent(ctx context.Context, limit int) ([]*domain.ScanRecord, error) {
	const q = `
SELECT "Id", "Vin", "ScannedAt", "Grade", "EstimatedValue", "Notes", "ProcessingLatencyMs"
FROM "Scans"
ORDER BY "ScannedAt" DESC, "Id" DESC
LIMIT $1;`
	rows, err := r.db.QueryContext(ctx, q, clampLimit(limit))
	if err != nil {
		return nil, classify("list recent scans", err)
	}
	defer rows.Close()

	out := make([]*domain.ScanRecord, 0, clampLimit(limit))
	for rows.Next() {
		var s domain.ScanRecord
		var grade, notes sql.NullString
		if err := rows.Scan(
			&s.ID, &s.Vin, &s.ScannedAt, &grade, &s.EstimatedValue, &notes, &s.ProcessingLatencyMs,
		); err != nil {
			return nil, classify("scan row", err)
		}
		s.Grade = grade.String
		s.Notes = notes.String
		s.ScannedAt = s.ScannedAt.UTC()
		out = append(out, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate scans", err)
	}
	return out, nil
}
