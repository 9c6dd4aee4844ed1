package mysql

import "context"

// multiStatements is not assumed on the DSN, so each statement runs on its own.
var schemaDDL = []string{`
CREATE TABLE IF NOT EXISTS Scans (
  Id                  INT            NOT NULL AUTO_INCREMENT,
  Vin                 TEXT           NOT NULL,
  ScannedAt           DATETIME(6)    NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
  Grade               TEXT           NULL,
  EstimatedValue      DECIMAL(12,2)  NOT NULL,
  Notes               TEXT           NULL,
  ProcessingLatencyMs DOUBLE         NOT NULL,
  PRIMARY KEY (Id),
  KEY IX_Scans_ScannedAt_Id (ScannedAt, Id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
}

func (r *ScanRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaDDL {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return classify("ensure schema", err)
		}
	}
	return nil
}

func (r *ScanRepository) Ping(ctx context.Context) error {
	return classify("ping", r.db.PingContext(ctx))
}
