package scans

import "context"

// Repository port (persistence of scan records)
//
// Implementations must be safe for concurrent use.
type Repository interface {
	// Append stores rec, assigning rec.ID. A zero ScannedAt is set to now.
	Append(ctx context.Context, rec *ScanRecord) error
	// ListRecent returns at most limit records, ScannedAt desc then ID desc.
	ListRecent(ctx context.Context, limit int) ([]*ScanRecord, error)
}

// SchemaInitializer creates the persisted structure if it is missing.
type SchemaInitializer interface {
	EnsureSchema(ctx context.Context) error
}

// Pinger reports whether the store answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Sink receives every record after it has been persisted (archive, event bus).
type Sink interface {
	Name() string
	Publish(ctx context.Context, rec *ScanRecord) error
}
