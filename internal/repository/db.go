package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

//go:embed schema.sql
var schemaSQL string

// ErrNotFound is returned when a row lookup matches nothing.
var ErrNotFound = errors.New("not found")

// DB wraps the sql connection pool.
type DB struct {
	*sql.DB
}

// NewDB opens a postgres connection pool and verifies it.
func NewDB(databaseURL string) (*DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}

// ApplySchema creates the tables and indexes if they do not exist yet.
func (db *DB) ApplySchema(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// dbtx is the query surface shared by *sql.DB and *sql.Conn, letting the same
// repository code run on the shared pool or on a run-scoped connection.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store bundles the repositories over the shared pool.
type Store struct {
	db          *DB
	Submissions *SubmissionRepository
	Events      *EventRepository
	Results     *ResultRepository
	Problems    *ProblemRepository
}

// NewStore creates the repository set backed by the shared pool.
func NewStore(db *DB) *Store {
	return &Store{
		db:          db,
		Submissions: NewSubmissionRepository(db),
		Events:      NewEventRepository(db),
		Results:     NewResultRepository(db),
		Problems:    NewProblemRepository(db),
	}
}

// RunStore is the repository set bound to one dedicated connection for the
// lifetime of a single grading run. Release returns the connection to the
// pool.
type RunStore struct {
	conn        *sql.Conn
	Submissions *SubmissionRepository
	Events      *EventRepository
	Results     *ResultRepository
	Problems    *ProblemRepository
}

// Acquire checks a dedicated connection out of the pool and binds a
// repository set to it.
func (s *Store) Acquire(ctx context.Context) (*RunStore, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	return &RunStore{
		conn:        conn,
		Submissions: NewSubmissionRepository(conn),
		Events:      NewEventRepository(conn),
		Results:     NewResultRepository(conn),
		Problems:    NewProblemRepository(conn),
	}, nil
}

// Release returns the run's connection to the pool.
func (rs *RunStore) Release() error {
	return rs.conn.Close()
}
