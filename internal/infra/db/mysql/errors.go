package mysql

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	domain "github.com/bryanwahyu/automarket-intake/internal/domain/scans"
	"github.com/bryanwahyu/automarket-intake/internal/infra/db"
)

func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1146: // ER_NO_SUCH_TABLE
			return fmt.Errorf("%s: %w: %v", op, domain.ErrSchemaMissing, err)
		case 1040, 1053, 2002, 2003, 2006, 2013:
			return fmt.Errorf("%s: %w: %v", op, domain.ErrStoreUnavailable, err)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if errors.Is(err, mysql.ErrInvalidConn) || db.IsConnectivity(err) {
		return fmt.Errorf("%s: %w: %v", op, domain.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
