package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bft-labs/gravityopt/internal/ports"
)

// DefaultReservedConf is the dnsmasq file managed by Pi-hole itself.
const DefaultReservedConf = "01-pihole.conf"

var _ ports.LineSource = (*ConfDir)(nil)

// ConfDir yields the configuration lines of every *.conf file of a dnsmasq
// directory, except the reserved one.
type ConfDir struct {
	dir      string
	reserved string
}

// NewConfDir creates a line source for dir. An empty reserved name means
// DefaultReservedConf.
func NewConfDir(dir, reserved string) *ConfDir {
	if reserved == "" {
		reserved = DefaultReservedConf
	}
	return &ConfDir{dir: dir, reserved: reserved}
}

// Files returns the configuration files that are scanned, sorted by name.
// A missing directory yields none.
func (c *ConfDir) Files() ([]string, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list %s: %w", c.dir, err)
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".conf") || name == c.reserved {
			continue
		}
		files = append(files, filepath.Join(c.dir, name))
	}
	sort.Strings(files)
	return files, nil
}

// Lines implements ports.LineSource.
func (c *ConfDir) Lines(ctx context.Context) ([]string, error) {
	files, err := c.Files()
	if err != nil {
		return nil, err
	}

	var out []string
	for _, f := range files {
		lines, err := readFileLines(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f, err)
		}
		out = append(out, lines...)
	}
	return out, nil
}
