package postgres

import "context"

const schemaDDL = `
CREATE TABLE IF NOT EXISTS "Scans" (
  "Id"                  integer GENERATED BY DEFAULT AS IDENTITY,
  "Vin"                 text             NOT NULL,
  "ScannedAt"           timestamptz      NOT NULL DEFAULT now(),
  "Grade"               text             NULL,
  "EstimatedValue"      numeric          NOT NULL CHECK ("EstimatedValue" >= 0),
  "Notes"               text             NULL,
  "ProcessingLatencyMs" double precision NOT NULL,
  CONSTRAINT "PK_Scans" PRIMARY KEY ("Id")
);

CREATE INDEX IF NOT EXISTS "IX_Scans_ScannedAt_Id" ON "Scans" ("ScannedAt" DESC, "Id" DESC);
`

// EnsureSchema creates the Scans table and its recency index when missing.
func (r *ScanRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schemaDDL)
	return classify("ensure schema", err)
}

// Ping checks the connection pool can reach the server.
func (r *ScanRepository) Ping(ctx context.Context) error {
	return classify("ping", r.db.PingContext(ctx))
}
