package service

import (
	"context"
	"sort"

	"github.com/spec-kit/ops-analytics/internal/repository"
	apperrors "github.com/spec-kit/ops-analytics/pkg/util/errorutil"
)

// DepartmentHierarchy expands root departments into their full subtree. It is
// the single place the department forest is traversed.
type DepartmentHierarchy struct {
	departments repository.DepartmentRepository
}

// NewDepartmentHierarchy constructs the resolver.
func NewDepartmentHierarchy(departments repository.DepartmentRepository) *DepartmentHierarchy {
	return &DepartmentHierarchy{departments: departments}
}

// Descendants returns every department reachable from rootIDs, excluding the
// roots themselves, sorted. Ids are visited at most once, so a cyclic store
// still terminates. The store is queried once per depth level.
func (h *DepartmentHierarchy) Descendants(ctx context.Context, rootIDs []string) ([]string, error) {
	visited := make(map[string]struct{}, len(rootIDs))
	frontier := make([]string, 0, len(rootIDs))
	for _, id := range rootIDs {
		if _, seen := visited[id]; seen {
			continue
		}
		visited[id] = struct{}{}
		frontier = append(frontier, id)
	}

	descendants := []string{}
	for len(frontier) > 0 {
		children, err := h.departments.ChildrenOf(ctx, frontier)
		if err != nil {
			return nil, apperrors.NewUpstreamUnavailable("department store", err)
		}
		next := make([]string, 0, len(children))
		for _, child := range children {
			if _, seen := visited[child.ID]; seen {
				continue
			}
			visited[child.ID] = struct{}{}
			descendants = append(descendants, child.ID)
			next = append(next, child.ID)
		}
		frontier = next
	}

	sort.Strings(descendants)
	return descendants, nil
}
