package postgres

import (
	"database/sql"
	"time"

	_ "github.com/lib/pq"
)

// Open prepares a pool without dialing; the bootstrapper owns the first
// round-trip so a database that is still starting up can be retried.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}
