package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/ops-analytics/internal/domain"
	"github.com/spec-kit/ops-analytics/internal/repository"
	apperrors "github.com/spec-kit/ops-analytics/pkg/util/errorutil"
)

// ScopeService turns a requesting identity into the department scope its
// reports are bounded by.
type ScopeService struct {
	identities repository.IdentityRepository
	hierarchy  *DepartmentHierarchy
	logger     *zap.Logger
}

// NewScopeService constructs the service.
func NewScopeService(identities repository.IdentityRepository, hierarchy *DepartmentHierarchy, logger *zap.Logger) *ScopeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScopeService{identities: identities, hierarchy: hierarchy, logger: logger}
}

// Resolve computes the scope for identity. A nil identity is a system caller
// and sees everything, as do admins. Supervisors and employees always get a
// bounded scope, possibly empty, and never fall back to Unscoped.
func (s *ScopeService) Resolve(ctx context.Context, identity *domain.Identity) (domain.Scope, error) {
	if identity == nil {
		return domain.Unscoped(), nil
	}

	var (
		roots []string
		err   error
	)
	switch identity.Role {
	case domain.RoleAdmin:
		return domain.Unscoped(), nil
	case domain.RoleSupervisor:
		roots, err = s.supervisorRoots(ctx, identity.SubjectID)
	case domain.RoleEmployee:
		roots, err = s.employeeRoots(ctx, identity.SubjectID)
	default:
		return domain.Scope{}, apperrors.NewValidationError("unknown role", map[string]any{"role": identity.Role})
	}
	if err != nil {
		return domain.Scope{}, err
	}

	descendants, err := s.hierarchy.Descendants(ctx, roots)
	if err != nil {
		return domain.Scope{}, err
	}

	scope := domain.NewScope(roots, descendants)
	s.logger.Debug("scope resolved",
		zap.String("role", string(identity.Role)),
		zap.String("subject_id", identity.SubjectID),
		zap.Int("root_count", len(scope.RootIDs)),
		zap.Int("descendant_count", len(scope.DescendantIDs)),
	)
	return scope, nil
}

func (s *ScopeService) supervisorRoots(ctx context.Context, supervisorID string) ([]string, error) {
	roots, err := s.identities.SupervisorRootDepartments(ctx, supervisorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("supervisor", map[string]any{"supervisor_id": supervisorID})
		}
		return nil, apperrors.NewUpstreamUnavailable("identity store", err)
	}
	return roots, nil
}

// employeeRoots uses the employee's sub-departments, inheriting the
// supervisor's root departments when the employee has none.
func (s *ScopeService) employeeRoots(ctx context.Context, employeeID string) ([]string, error) {
	linkage, err := s.identities.EmployeeLinkage(ctx, employeeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("employee", map[string]any{"employee_id": employeeID})
		}
		return nil, apperrors.NewUpstreamUnavailable("identity store", err)
	}
	if len(linkage.SubDepartmentIDs) > 0 {
		return linkage.SubDepartmentIDs, nil
	}
	if linkage.SupervisorID == nil || *linkage.SupervisorID == "" {
		return []string{}, nil
	}
	return s.supervisorRoots(ctx, *linkage.SupervisorID)
}
