package db

import (
	"database/sql"

	_ "github.com/lib/pq"
)

// Connect opens a postgres connection pool for the given DSN and verifies it
// with a ping. maxOpen/maxIdle bound the pool.
func Connect(dsn string, maxOpen, maxIdle int) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}
