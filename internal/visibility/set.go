package visibility

import "sort"

// Set is an unordered collection of user identities.
type Set map[string]struct{}

// NewSet builds a set from the given IDs.
func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Contains reports whether id is in the set.
func (s Set) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of identities.
func (s Set) Len() int {
	return len(s)
}

// Slice returns the identities in sorted order.
func (s Set) Slice() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Predicate returns a membership test suitable for filtering.
func (s Set) Predicate() func(string) bool {
	return s.Contains
}
