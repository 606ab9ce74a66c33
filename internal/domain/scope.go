package domain

import "sort"

// Scope bounds the departments a report may see. The zero value is an empty
// scoped scope and grants no visibility; only Unscoped sees everything.
type Scope struct {
	unscoped      bool
	RootIDs       []string
	DescendantIDs []string
}

// Unscoped returns the scope used for admins and system callers.
func Unscoped() Scope {
	return Scope{unscoped: true}
}

// NewScope builds a bounded scope. Inputs are copied, sorted and deduplicated.
func NewScope(rootIDs, descendantIDs []string) Scope {
	return Scope{
		RootIDs:       uniqueSorted(rootIDs),
		DescendantIDs: uniqueSorted(descendantIDs),
	}
}

// IsUnscoped reports whether no department predicate applies.
func (s Scope) IsUnscoped() bool {
	return s.unscoped
}

// AllIDs returns RootIDs ∪ DescendantIDs, sorted.
func (s Scope) AllIDs() []string {
	all := make([]string, 0, len(s.RootIDs)+len(s.DescendantIDs))
	all = append(all, s.RootIDs...)
	all = append(all, s.DescendantIDs...)
	return uniqueSorted(all)
}

// HasRoot reports whether id is one of the scope roots.
func (s Scope) HasRoot(id string) bool {
	return s.unscoped || contains(s.RootIDs, id)
}

// HasDescendant reports whether id is one of the scope descendants.
func (s Scope) HasDescendant(id string) bool {
	return s.unscoped || contains(s.DescendantIDs, id)
}

// Contains reports whether id is visible in the scope.
func (s Scope) Contains(id string) bool {
	return s.HasRoot(id) || s.HasDescendant(id)
}

func contains(sorted []string, id string) bool {
	i := sort.SearchStrings(sorted, id)
	return i < len(sorted) && sorted[i] == id
}

func uniqueSorted(ids []string) []string {
	if len(ids) == 0 {
		return []string{}
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
