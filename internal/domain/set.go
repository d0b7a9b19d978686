package domain

import "sort"

// Set is a set of domain names.
// The zero value is not usable; create one with NewSet.
type Set map[string]struct{}

// NewSet returns a set holding the given domains.
func NewSet(domains ...string) Set {
	s := make(Set, len(domains))
	for _, d := range domains {
		s[d] = struct{}{}
	}
	return s
}

// Add inserts a domain.
func (s Set) Add(d string) {
	s[d] = struct{}{}
}

// Has reports whether d is in the set.
func (s Set) Has(d string) bool {
	_, ok := s[d]
	return ok
}

// Len returns the number of domains.
func (s Set) Len() int {
	return len(s)
}

// Merge adds every domain of o to s.
func (s Set) Merge(o Set) {
	for d := range o {
		s[d] = struct{}{}
	}
}

// Union returns a new set holding the domains of all sets.
func Union(sets ...Set) Set {
	n := 0
	for _, s := range sets {
		n += len(s)
	}
	out := make(Set, n)
	for _, s := range sets {
		out.Merge(s)
	}
	return out
}

// Difference returns a new set of domains in s that are not in o.
func (s Set) Difference(o Set) Set {
	out := make(Set, len(s))
	for d := range s {
		if _, ok := o[d]; !ok {
			out[d] = struct{}{}
		}
	}
	return out
}

// Intersect returns a new set of domains present in both s and o.
func (s Set) Intersect(o Set) Set {
	small, large := s, o
	if len(small) > len(large) {
		small, large = large, small
	}
	out := make(Set)
	for d := range small {
		if _, ok := large[d]; ok {
			out[d] = struct{}{}
		}
	}
	return out
}

// Sorted returns the domains in lexicographic order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}
