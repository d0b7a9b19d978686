package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/gravityopt/internal/domain"
)

const schema = `
CREATE TABLE gravity (domain TEXT NOT NULL, adlist_id INTEGER NOT NULL DEFAULT 0);
CREATE TABLE domainlist (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	type INTEGER NOT NULL DEFAULT 0,
	domain TEXT NOT NULL,
	enabled BOOLEAN NOT NULL DEFAULT 1
);
`

// newGravityDB creates a gravity database seeded with the given rows and
// returns its path.
func newGravityDB(t *testing.T, gravity []string, rules map[string]int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "gravity.db")
	db, err := sql.Open("sqlite3", "file:"+path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(schema)
	require.NoError(t, err)

	for i, d := range gravity {
		_, err := db.Exec(`INSERT INTO gravity (domain, adlist_id) VALUES (?, ?)`, d, i%3)
		require.NoError(t, err)
	}
	for d, typ := range rules {
		_, err := db.Exec(`INSERT INTO domainlist (type, domain) VALUES (?, ?)`, typ, d)
		require.NoError(t, err)
	}
	return path
}

func openStore(t *testing.T, path string, chunkSize int) *Store {
	t.Helper()
	s, err := Open(context.Background(), path, chunkSize, nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_MissingDatabase(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "absent.db"), 0, nil)
	assert.ErrorIs(t, err, domain.ErrPrecondition)
}

func TestStore_Load(t *testing.T) {
	// The same domain may be listed by several adlists.
	path := newGravityDB(t, []string{"a.com", "b.com", "a.com", "c.net"}, nil)
	s := openStore(t, path, 0)

	got, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.com", "b.com", "c.net"}, got.Sorted())
	assert.Equal(t, BackendName, s.Name())
}

func TestStore_LoadWithoutGravityTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gravity.db")
	db, err := sql.Open("sqlite3", "file:"+path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE unrelated (x INTEGER)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	s := openStore(t, path, 0)
	_, err = s.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrPrecondition)
}

func TestStore_Patterns(t *testing.T) {
	path := newGravityDB(t, []string{"a.com"}, map[string]int{
		`^ads\.`:      RegexBlockType,
		`tracker`:     RegexBlockType,
		"exact.com":   1,
		`^allowed\.`:  2,
		"whitelisted": 0,
		" spaced$ ":   RegexBlockType,
		"":            RegexBlockType,
	})
	s := openStore(t, path, 0)

	// Rules are returned as authored; only empty rows are dropped.
	got, err := s.Patterns(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{`^ads\.`, `tracker`, " spaced$ "}, got)
}

func TestOpen_PathWithURIDelimiters(t *testing.T) {
	src := newGravityDB(t, []string{"a.com", "b.com"}, nil)

	dir := filepath.Join(t.TempDir(), "pi?hole#1 %20")
	require.NoError(t, os.Mkdir(dir, 0o755))
	path := filepath.Join(dir, "gravity.db")
	require.NoError(t, os.Rename(src, path))

	s := openStore(t, path, 0)
	got, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.com", "b.com"}, got.Sorted())
}

func TestStore_Commit(t *testing.T) {
	var gravity []string
	for i := 0; i < 25; i++ {
		gravity = append(gravity, fmt.Sprintf("host%02d.example", i))
	}
	// Duplicate rows of a removed domain must all go.
	gravity = append(gravity, "host00.example")

	path := newGravityDB(t, gravity, nil)
	s := openStore(t, path, 4)

	removal := domain.NewSet()
	for i := 0; i < 10; i++ {
		removal.Add(fmt.Sprintf("host%02d.example", i))
	}

	res, err := s.Commit(context.Background(), removal, nil)
	require.NoError(t, err)
	assert.Equal(t, 15, res.Remaining)

	left, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, left.Intersect(removal).Sorted())
	assert.Equal(t, 15, left.Len())
}

func TestStore_CommitNothingStillCounts(t *testing.T) {
	path := newGravityDB(t, []string{"a.com", "b.com", "b.com"}, nil)
	s := openStore(t, path, 0)

	res, err := s.Commit(context.Background(), domain.NewSet(), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Remaining)
}

func TestStore_CommitSurvivesFailedRecount(t *testing.T) {
	gravity := []string{"a.com", "b.com", "c.com"}
	path := newGravityDB(t, gravity, nil)
	s := openStore(t, path, 0)
	s.recount = func(context.Context) (int, error) {
		return 0, context.DeadlineExceeded
	}

	removal := domain.NewSet("a.com")
	retained := domain.NewSet("b.com", "c.com")
	res, err := s.Commit(context.Background(), removal, retained)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Remaining)

	left, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"b.com", "c.com"}, left.Sorted())
}

func TestStore_CommitRollsBackOnChunkFailure(t *testing.T) {
	gravity := []string{"a.com", "b.com", "c.com", "d.com", "e.com", "f.com"}
	path := newGravityDB(t, gravity, nil)

	db, err := sql.Open("sqlite3", "file:"+path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TRIGGER fail_delete BEFORE DELETE ON gravity
		WHEN old.domain = 'e.com'
		BEGIN SELECT RAISE(ABORT, 'injected failure'); END`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Chunks of two put e.com in the third statement, after two succeeded.
	s := openStore(t, path, 2)
	_, err = s.Commit(context.Background(), domain.NewSet(gravity...), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPersistence)

	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(gravity), n)
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?,?,?", placeholders(3))
}
