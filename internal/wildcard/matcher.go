package wildcard

import (
	ahocorasick "github.com/BobuSumisu/aho-corasick"

	"github.com/bft-labs/gravityopt/internal/domain"
)

// Domains are wrapped in these markers before scanning so that a rule
// pattern "." + base + "$" can only hit at the very end of a domain.
const (
	startMarker = "^"
	endMarker   = "$"
)

// Conflicts holds the gravity domains covered by wildcard rules.
type Conflicts struct {
	// Exact are domains equal to a wildcard base.
	Exact domain.Set

	// Subdomain are domains strictly below a wildcard base.
	Subdomain domain.Set
}

// All returns Exact ∪ Subdomain.
func (c Conflicts) All() domain.Set {
	return domain.Union(c.Exact, c.Subdomain)
}

// Len returns the total number of conflicting domains.
func (c Conflicts) Len() int {
	return c.Exact.Len() + c.Subdomain.Len()
}

// Matcher tests domains against a fixed set of wildcard bases in one pass
// per domain, independent of the number of rules.
type Matcher struct {
	bases domain.Set
	trie  *ahocorasick.Trie
}

// NewMatcher builds the automaton for bases. No automaton is built for an
// empty rule set.
func NewMatcher(bases domain.Set) *Matcher {
	m := &Matcher{bases: bases}
	if bases.Len() == 0 {
		return m
	}

	patterns := make([]string, 0, bases.Len())
	for _, b := range bases.Sorted() {
		patterns = append(patterns, "."+b+endMarker)
	}
	m.trie = ahocorasick.NewTrieBuilder().AddStrings(patterns).Build()
	return m
}

// Match returns the domains of gravity covered by the wildcard bases.
// Exact matches are found by set intersection; subdomains by the automaton.
func (m *Matcher) Match(gravity domain.Set) Conflicts {
	c := Conflicts{Exact: domain.NewSet(), Subdomain: domain.NewSet()}
	if m.trie == nil {
		return c
	}

	c.Exact = gravity.Intersect(m.bases)
	for d := range gravity {
		if c.Exact.Has(d) {
			continue
		}
		if len(m.trie.MatchString(startMarker+d+endMarker)) > 0 {
			c.Subdomain.Add(d)
		}
	}
	return c
}
