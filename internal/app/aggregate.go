package app

import "github.com/bft-labs/gravityopt/internal/domain"

// Aggregate unions the conflict sets into the removal set and returns it
// together with the gravity domains that survive. Conflicts outside gravity
// are dropped, so removal is always a subset of gravity.
func Aggregate(gravity domain.Set, conflicts ...domain.Set) (removal, retained domain.Set) {
	removal = domain.NewSet()
	for _, c := range conflicts {
		for d := range c {
			if gravity.Has(d) {
				removal.Add(d)
			}
		}
	}
	return removal, gravity.Difference(removal)
}
