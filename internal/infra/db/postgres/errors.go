package postgres

import (
	"errors"
	"fmt"

	"github.com/lib/pq"

	domain "github.com/bryanwahyu/automarket-intake/internal/domain/scans"
	"github.com/bryanwahyu/automarket-intake/internal/infra/db"
)

// classify tags driver errors with the domain taxonomy so callers can use errors.Is.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == "42P01":
			return fmt.Errorf("%s: %w: %v", op, domain.ErrSchemaMissing, err)
		case pqErr.Code.Class() == "08",
			pqErr.Code == "57P01", // admin_shutdown
			pqErr.Code == "57P02", // crash_shutdown
			pqErr.Code == "57P03", // cannot_connect_now
			pqErr.Code == "53300": // too_many_connections
			return fmt.Errorf("%s: %w: %v", op, domain.ErrStoreUnavailable, err)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if db.IsConnectivity(err) {
		return fmt.Errorf("%s: %w: %v", op, domain.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
