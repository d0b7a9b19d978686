// Package sqlite implements the gravity domain store and the regex rule
// source on top of a Pi-hole gravity database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/bft-labs/gravityopt/internal/batch"
	"github.com/bft-labs/gravityopt/internal/domain"
	"github.com/bft-labs/gravityopt/internal/ports"
	"github.com/bft-labs/gravityopt/pkg/log"
)

// BackendName identifies this store in reports.
const BackendName = "sqlite"

// DefaultChunkSize is the number of domains deleted per statement. It keeps
// each DELETE below SQLite's bound-parameter limit.
const DefaultChunkSize = 1000

// RegexBlockType is the domainlist.type value of regex blocklist entries.
const RegexBlockType = 3

var (
	_ ports.DomainStore   = (*Store)(nil)
	_ ports.PatternSource = (*Store)(nil)
)

// Store is a gravity database opened for one reconciliation pass.
// A single connection is held from Open until Close.
type Store struct {
	db        *sql.DB
	path      string
	chunkSize int
	logger    log.Logger
	recount   func(context.Context) (int, error)
}

// Open connects to the gravity database at path.
func Open(ctx context.Context, path string, chunkSize int, logger log.Logger) (*Store, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}

	dsn, err := dataSourceName(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPrecondition, err)
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", domain.ErrPrecondition, path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: connect %s: %v", domain.ErrPrecondition, path, err)
	}

	logger.Info("connected to gravity database", log.String("path", path))
	s := &Store{db: db, path: path, chunkSize: chunkSize, logger: logger}
	s.recount = s.Count
	return s, nil
}

// dataSourceName builds a file: URI for path. The database must already
// exist; mode=rw keeps SQLite from creating it.
func dataSourceName(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	u := url.URL{
		Scheme:   "file",
		Path:     filepath.ToSlash(abs),
		RawQuery: "mode=rw&_busy_timeout=5000",
	}
	return u.String(), nil
}

// Name implements ports.DomainStore.
func (s *Store) Name() string { return BackendName }

// Load returns the distinct domains of the gravity table.
func (s *Store) Load(ctx context.Context) (domain.Set, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT domain FROM gravity`)
	if err != nil {
		return nil, fmt.Errorf("%w: query gravity: %v", domain.ErrPrecondition, err)
	}
	defer rows.Close()

	set := domain.NewSet()
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan gravity row: %w", err)
		}
		set.Add(d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read gravity rows: %w", err)
	}
	return set, nil
}

// Patterns returns the regex blocklist entries of the domainlist table.
func (s *Store) Patterns(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT domain FROM domainlist WHERE type = ?`, RegexBlockType)
	if err != nil {
		return nil, fmt.Errorf("query regex rules: %w", err)
	}
	defer rows.Close()

	var patterns []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan regex rule: %w", err)
		}
		if p != "" {
			patterns = append(patterns, p)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read regex rules: %w", err)
	}
	return patterns, nil
}

// Commit deletes removal from the gravity table in chunks inside a single
// transaction, then re-counts the distinct domains left. Any chunk failure
// rolls the whole transaction back. A failed recount does not fail the
// commit; the size of retained is reported instead.
func (s *Store) Commit(ctx context.Context, removal, retained domain.Set) (ports.CommitResult, error) {
	if removal.Len() > 0 {
		if err := s.deleteChunked(ctx, removal.Sorted()); err != nil {
			return ports.CommitResult{}, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
		}
	}

	remaining, err := s.recount(ctx)
	if err != nil {
		remaining = retained.Len()
		s.logger.Warn("recount after commit failed, reporting computed remainder",
			log.Int("remaining", remaining),
			log.Err(err),
		)
	}
	return ports.CommitResult{Remaining: remaining}, nil
}

func (s *Store) deleteChunked(ctx context.Context, domains []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	chunks := batch.Split(domains, s.chunkSize)
	for i, chunk := range chunks {
		args := make([]interface{}, len(chunk))
		for j, d := range chunk {
			args[j] = d
		}
		query := `DELETE FROM gravity WHERE domain IN (` + placeholders(len(chunk)) + `)`
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("delete chunk %d/%d: %w", i+1, len(chunks), err)
		}
		s.logger.Debug("deleted chunk", log.Int("chunk", i+1), log.Int("size", len(chunk)))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Count returns the number of distinct domains in the gravity table.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT domain) FROM gravity`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count gravity domains: %w", err)
	}
	return n, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
