// Package regex finds gravity domains matched by regex blocklist rules.
//
// Rules are grouped into fixed-size batches and each batch is compiled as
// one alternation, (p1)|(p2)|..., so every domain is scanned once per batch
// rather than once per rule. Matching is an unanchored search: a rule hits
// when it matches anywhere in the domain.
package regex

import (
	"context"
	"regexp"
	"regexp/syntax"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/bft-labs/gravityopt/internal/batch"
	"github.com/bft-labs/gravityopt/internal/domain"
)

// DefaultBatchSize is the number of rules compiled into one alternation.
const DefaultBatchSize = 10

// Options tunes the matcher.
type Options struct {
	// BatchSize bounds the number of rules per alternation. Zero means DefaultBatchSize.
	BatchSize int

	// Workers bounds the number of batches scanned concurrently.
	// Zero means GOMAXPROCS.
	Workers int
}

// Matcher holds the compiled batches of a rule list.
type Matcher struct {
	exprs   []*regexp.Regexp
	invalid []string
	skipped []domain.SkippedBatch
	workers int
}

// Compile batches patterns in order and validates them. Patterns that do not
// parse on their own are reported by Invalid and left out of their batch. A batch whose
// alternation fails to compile is reported by Skipped and its valid patterns
// are kept as individual expressions.
func Compile(patterns []string, opts Options) *Matcher {
	size := opts.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	m := &Matcher{workers: workers}

	// Batch indexes count over the rule list as loaded.
	for i, group := range batch.Split(patterns, size) {
		valid := make([]string, 0, len(group))
		for _, p := range group {
			if _, err := syntax.Parse(p, syntax.Perl); err != nil {
				m.invalid = append(m.invalid, p)
				continue
			}
			valid = append(valid, p)
		}
		if len(valid) == 0 {
			continue
		}

		re, err := regexp.Compile(alternation(valid))
		if err == nil {
			m.exprs = append(m.exprs, re)
			continue
		}

		sb := domain.SkippedBatch{Index: i, Patterns: valid, Err: err}
		for _, p := range valid {
			single, serr := regexp.Compile(p)
			if serr != nil {
				sb.Invalid = append(sb.Invalid, p)
				continue
			}
			m.exprs = append(m.exprs, single)
		}
		m.skipped = append(m.skipped, sb)
	}

	return m
}

// alternation joins patterns as (p1)|(p2)|...
func alternation(patterns []string) string {
	var b strings.Builder
	for i, p := range patterns {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteByte('(')
		b.WriteString(p)
		b.WriteByte(')')
	}
	return b.String()
}

// Invalid returns the patterns that failed to parse.
func (m *Matcher) Invalid() []string {
	return m.invalid
}

// Skipped returns the batches whose alternation failed to compile.
func (m *Matcher) Skipped() []domain.SkippedBatch {
	return m.skipped
}

// Len returns the number of compiled expressions scanned per domain.
func (m *Matcher) Len() int {
	return len(m.exprs)
}

// Match returns the domains of gravity matched by at least one rule.
// Batches are scanned concurrently; each collects its own hits and merges
// them once it is done.
func (m *Matcher) Match(ctx context.Context, gravity domain.Set) (domain.Set, error) {
	out := domain.NewSet()
	if len(m.exprs) == 0 || gravity.Len() == 0 {
		return out, nil
	}

	domains := gravity.Sorted()

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)

	for _, re := range m.exprs {
		re := re
		g.Go(func() error {
			var hits []string
			for i, d := range domains {
				if i%4096 == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				if re.MatchString(d) {
					hits = append(hits, d)
				}
			}

			mu.Lock()
			for _, d := range hits {
				out.Add(d)
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
