package db

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5"
	_ "github.com/lib/pq"
)

// New opens a database/sql handle on the lib/pq driver. The pool connects
// lazily, so call PingContext to find out whether the server is there.
func New(url string) (*sql.DB, error) {
	return sql.Open("postgres", url)
}

// NewPgx opens a single dedicated connection. The caller must Close it.
func NewPgx(ctx context.Context, url string) (*pgx.Conn, error) {
	return pgx.Connect(ctx, url)
}
