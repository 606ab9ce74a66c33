package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/ops-analytics/pkg/util/errorutil"
)

func TestDescendants_FullClosureExcludesRoots(t *testing.T) {
	f := newOrgFixture()
	h := NewDepartmentHierarchy(f)

	got, err := h.Descendants(context.Background(), []string{"D1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"D2", "D4"}, got)
	assert.Equal(t, 2, f.callCount("ChildrenOf"), "one call per level until the frontier is empty")

	got, err = h.Descendants(context.Background(), []string{"D1", "D3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"D2", "D4", "D5"}, got)
}

func TestDescendants_NestedRootIsNotReported(t *testing.T) {
	h := NewDepartmentHierarchy(newOrgFixture())

	got, err := h.Descendants(context.Background(), []string{"D1", "D2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"D4"}, got)
}

func TestDescendants_EmptyInputSkipsStore(t *testing.T) {
	f := newOrgFixture()
	h := NewDepartmentHierarchy(f)

	got, err := h.Descendants(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Zero(t, f.callCount("ChildrenOf"))
}

func TestDescendants_TerminatesOnCycle(t *testing.T) {
	f := newFakeStore()
	f.addDepartment("A", "A", "C")
	f.addDepartment("B", "B", "A")
	f.addDepartment("C", "C", "B")
	h := NewDepartmentHierarchy(f)

	got, err := h.Descendants(context.Background(), []string{"A"})
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C"}, got)
}

func TestDescendants_StoreFailure(t *testing.T) {
	f := newOrgFixture()
	cause := errors.New("connection reset")
	f.failOn("ChildrenOf", cause)

	_, err := NewDepartmentHierarchy(f).Descendants(context.Background(), []string{"D1"})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUpstreamUnavailable))
	assert.ErrorIs(t, err, cause)
}
