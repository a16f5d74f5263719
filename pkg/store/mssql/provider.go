package mssql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/microsoft/go-mssqldb"
)

// ErrConnection marks failures to establish or acquire a database
// connection. These are fatal for a run and never retried.
var ErrConnection = errors.New("database connection failed")

// Provider hands out scoped connections from a shared pool. Callers close
// the connection as soon as one executor invocation finishes; nothing is
// held across periods.
type Provider struct {
	db *sql.DB
}

func NewProvider(cfg Config) (*Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlserver", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return &Provider{db: db}, nil
}

// NewProviderWithDB wraps an existing pool, used by tests.
func NewProviderWithDB(db *sql.DB) *Provider {
	return &Provider{db: db}
}

// Acquire returns a dedicated connection from the pool. The caller must
// Close it on every exit path.
func (p *Provider) Acquire(ctx context.Context) (*sql.Conn, error) {
	conn, err := p.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return conn, nil
}

// Ping verifies connectivity with a trivial query.
func (p *Provider) Ping(ctx context.Context) error {
	var one int
	if err := p.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return nil
}

func (p *Provider) Close() error {
	return p.db.Close()
}
