package fs

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/bft-labs/gravityopt/internal/ports"
)

var _ ports.PatternSource = (*RuleFile)(nil)

// RuleFile reads regex rules from a regex.list, one pattern per line.
// A missing file yields no rules.
type RuleFile struct {
	path string
}

// NewRuleFile creates a rule source for the file at path.
func NewRuleFile(path string) *RuleFile {
	return &RuleFile{path: path}
}

// Patterns implements ports.PatternSource.
func (r *RuleFile) Patterns(ctx context.Context) ([]string, error) {
	lines, err := readFileLines(ctx, r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}
	return lines, nil
}
