package fs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bft-labs/gravityopt/internal/domain"
	"github.com/bft-labs/gravityopt/internal/ports"
)

// BackendName identifies the flat-file store in reports.
const BackendName = "file"

var _ ports.DomainStore = (*GravityList)(nil)

// GravityList is a domain store backed by a newline-separated gravity.list.
type GravityList struct {
	path string
}

// NewGravityList creates a store for the list at path.
func NewGravityList(path string) *GravityList {
	return &GravityList{path: path}
}

// Name implements ports.DomainStore.
func (g *GravityList) Name() string { return BackendName }

// Load reads the list. Duplicate lines collapse.
func (g *GravityList) Load(ctx context.Context) (domain.Set, error) {
	lines, err := readFileLines(ctx, g.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s does not exist", domain.ErrPrecondition, g.path)
		}
		return nil, fmt.Errorf("read %s: %w", g.path, err)
	}
	return domain.NewSet(lines...), nil
}

// Commit rewrites the list with retained, one domain per line in sorted
// order. The new content is written to a temporary file in the same
// directory and renamed over the list, so readers see either the old or the
// new list.
func (g *GravityList) Commit(ctx context.Context, _, retained domain.Set) (ports.CommitResult, error) {
	if err := g.writeAtomic(ctx, retained.Sorted()); err != nil {
		return ports.CommitResult{}, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return ports.CommitResult{Remaining: retained.Len()}, nil
}

func (g *GravityList) writeAtomic(ctx context.Context, domains []string) error {
	mode := os.FileMode(0o644)
	if fi, err := os.Stat(g.path); err == nil {
		mode = fi.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(g.path), "."+filepath.Base(g.path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	w := bufio.NewWriterSize(tmp, 256*1024)
	for i, d := range domains {
		if i%65536 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(d); err != nil {
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmpPath, g.path); err != nil {
		return err
	}
	committed = true
	return nil
}
