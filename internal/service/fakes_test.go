package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ops-analytics/internal/domain"
)

type fakeTicket struct {
	ID              string
	DepartmentID    string
	Status          domain.TicketStatus
	CreatedAt       time.Time
	FirstAnsweredAt *time.Time
}

type fakeTask struct {
	ID          string
	Assignment  domain.AssignmentType
	TargetDept  string
	TargetSub   string
	AssigneeID  string
	Status      domain.TaskStatus
	CompletedAt *time.Time
}

type fakeFaq struct {
	DepartmentID    string
	Satisfaction    int64
	Dissatisfaction int64
}

// fakeStore is an in-memory implementation of every collaborator store. Its
// filtering mirrors the SQL predicates in the repository package.
type fakeStore struct {
	mu sync.Mutex

	departments     []domain.Department
	admins          int
	supervisorRoots map[string][]string
	employees       map[string]*domain.EmployeeLinkage
	tickets         []fakeTicket
	tasks           []fakeTask
	faqs            []fakeFaq
	activeUsers     int64

	failures map[string]error
	calls    map[string]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		supervisorRoots: map[string][]string{},
		employees:       map[string]*domain.EmployeeLinkage{},
		failures:        map[string]error{},
		calls:           map[string]int{},
	}
}

func (f *fakeStore) addDepartment(id, name, parent string) {
	d := domain.Department{ID: id, Name: name}
	if parent != "" {
		p := parent
		d.ParentID = &p
	}
	f.departments = append(f.departments, d)
}

func (f *fakeStore) failOn(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method] = err
}

func (f *fakeStore) callCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeStore) enter(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[method]++
	return f.failures[method]
}

func inScope(scope domain.Scope, ids []string, id string) bool {
	if scope.IsUnscoped() {
		return true
	}
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// DepartmentRepository

func (f *fakeStore) ChildrenOf(_ context.Context, ids []string) ([]domain.Department, error) {
	if err := f.enter("ChildrenOf"); err != nil {
		return nil, err
	}
	parents := map[string]struct{}{}
	for _, id := range ids {
		parents[id] = struct{}{}
	}
	var out []domain.Department
	for _, d := range f.departments {
		if d.ParentID == nil {
			continue
		}
		if _, ok := parents[*d.ParentID]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeStore) ListByIDs(_ context.Context, ids []string) ([]domain.Department, error) {
	if err := f.enter("ListByIDs"); err != nil {
		return nil, err
	}
	var out []domain.Department
	for _, d := range f.departments {
		for _, id := range ids {
			if d.ID == id {
				out = append(out, d)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeStore) ListAll(_ context.Context) ([]domain.Department, error) {
	if err := f.enter("ListAll"); err != nil {
		return nil, err
	}
	return append([]domain.Department(nil), f.departments...), nil
}

// IdentityRepository

func (f *fakeStore) SupervisorRootDepartments(_ context.Context, supervisorID string) ([]string, error) {
	if err := f.enter("SupervisorRootDepartments"); err != nil {
		return nil, err
	}
	roots, ok := f.supervisorRoots[supervisorID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return append([]string{}, roots...), nil
}

func (f *fakeStore) EmployeeLinkage(_ context.Context, employeeID string) (*domain.EmployeeLinkage, error) {
	if err := f.enter("EmployeeLinkage"); err != nil {
		return nil, err
	}
	linkage, ok := f.employees[employeeID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *linkage
	return &cp, nil
}

// UserRepository

func (f *fakeStore) CountByRole(_ context.Context, role domain.UserRole, scope domain.Scope) (int64, error) {
	if err := f.enter("CountByRole:" + string(role)); err != nil {
		return 0, err
	}
	var n int64
	switch role {
	case domain.UserRoleAdmin:
		if scope.IsUnscoped() {
			n = int64(f.admins)
		}
	case domain.UserRoleSupervisor:
		for _, roots := range f.supervisorRoots {
			for _, root := range roots {
				if inScope(scope, scope.RootIDs, root) {
					n++
					break
				}
			}
		}
	case domain.UserRoleEmployee:
		if scope.IsUnscoped() {
			n = int64(len(f.employees))
			break
		}
		all := scope.AllIDs()
		for _, e := range f.employees {
			for _, sub := range e.SubDepartmentIDs {
				if inScope(scope, all, sub) {
					n++
					break
				}
			}
		}
	}
	return n, nil
}

// TicketRepository

func ticketStatusIn(status domain.TicketStatus, statuses []domain.TicketStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func (f *fakeStore) CountByStatus(_ context.Context, statuses []domain.TicketStatus, scope domain.Scope) (int64, error) {
	if err := f.enter("Tickets.CountByStatus"); err != nil {
		return 0, err
	}
	all := scope.AllIDs()
	var n int64
	for _, t := range f.tickets {
		if ticketStatusIn(t.Status, statuses) && inScope(scope, all, t.DepartmentID) {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) FirstResponseTimesInWindow(_ context.Context, window domain.TimeWindow, scope domain.Scope) ([]domain.FirstResponse, error) {
	if err := f.enter("FirstResponseTimesInWindow"); err != nil {
		return nil, err
	}
	all := scope.AllIDs()
	var out []domain.FirstResponse
	for _, t := range f.tickets {
		if t.FirstAnsweredAt == nil || !window.Includes(*t.FirstAnsweredAt) || !inScope(scope, all, t.DepartmentID) {
			continue
		}
		out = append(out, domain.FirstResponse{
			TicketID:        t.ID,
			DepartmentID:    t.DepartmentID,
			CreatedAt:       t.CreatedAt,
			FirstAnsweredAt: *t.FirstAnsweredAt,
		})
	}
	return out, nil
}

// fakeTasks adapts fakeStore to TaskRepository, whose CountByStatus collides
// with the ticket store's.
type fakeTasks struct{ *fakeStore }

func taskStatusIn(status domain.TaskStatus, statuses []domain.TaskStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func (f fakeTasks) CountByStatus(_ context.Context, statuses []domain.TaskStatus) (int64, error) {
	if err := f.enter("Tasks.CountByStatus"); err != nil {
		return 0, err
	}
	var n int64
	for _, t := range f.tasks {
		if taskStatusIn(t.Status, statuses) {
			n++
		}
	}
	return n, nil
}

func (f fakeTasks) CountByStatusAndAssignment(_ context.Context, statuses []domain.TaskStatus, assignment domain.AssignmentType, scope domain.Scope) (int64, error) {
	if err := f.enter("Tasks.CountByStatusAndAssignment"); err != nil {
		return 0, err
	}
	var n int64
	for _, t := range f.tasks {
		if t.Assignment != assignment || !taskStatusIn(t.Status, statuses) {
			continue
		}
		switch assignment {
		case domain.AssignmentDepartment:
			if scope.HasRoot(t.TargetDept) {
				n++
			}
		case domain.AssignmentSubDepartment:
			if scope.HasDescendant(t.TargetSub) {
				n++
			}
		case domain.AssignmentIndividual:
			if e, ok := f.employees[t.AssigneeID]; ok {
				for _, sub := range e.SubDepartmentIDs {
					if scope.HasDescendant(sub) {
						n++
						break
					}
				}
			}
		}
	}
	return n, nil
}

func (f fakeTasks) CompletedInWindow(_ context.Context, window domain.TimeWindow, scope domain.Scope) ([]domain.TaskCompletion, error) {
	if err := f.enter("CompletedInWindow"); err != nil {
		return nil, err
	}
	all := scope.AllIDs()
	var out []domain.TaskCompletion
	for _, t := range f.tasks {
		if t.CompletedAt == nil || !window.Includes(*t.CompletedAt) {
			continue
		}
		key := t.TargetDept
		if key == "" {
			key = t.TargetSub
		}
		if key == "" {
			key = f.assigneeKey(t.AssigneeID, scope)
		}
		if !inScope(scope, all, key) {
			continue
		}
		out = append(out, domain.TaskCompletion{TaskID: t.ID, DepartmentKey: key, CompletedAt: *t.CompletedAt})
	}
	return out, nil
}

// assigneeKey files an individual task under the assignee's lowest
// sub-department, restricted to the scope's descendants when scoped.
func (f fakeTasks) assigneeKey(assigneeID string, scope domain.Scope) string {
	e, ok := f.employees[assigneeID]
	if !ok {
		return ""
	}
	var subs []string
	for _, sub := range e.SubDepartmentIDs {
		if scope.IsUnscoped() || scope.HasDescendant(sub) {
			subs = append(subs, sub)
		}
	}
	if len(subs) == 0 {
		return ""
	}
	sort.Strings(subs)
	return subs[0]
}

// FaqRepository

func (f *fakeStore) SatisfactionTotals(_ context.Context, scope domain.Scope) (domain.SatisfactionTotals, error) {
	if err := f.enter("SatisfactionTotals"); err != nil {
		return domain.SatisfactionTotals{}, err
	}
	all := scope.AllIDs()
	var totals domain.SatisfactionTotals
	for _, q := range f.faqs {
		if inScope(scope, all, q.DepartmentID) {
			totals.Satisfaction += q.Satisfaction
			totals.Dissatisfaction += q.Dissatisfaction
		}
	}
	return totals, nil
}

// ActivityRepository

func (f *fakeStore) RecordActivity(_ context.Context, _ string, _ time.Time) error {
	return f.enter("RecordActivity")
}

func (f *fakeStore) DistinctActiveUsers(_ context.Context, _ domain.TimeWindow) (int64, error) {
	if err := f.enter("DistinctActiveUsers"); err != nil {
		return 0, err
	}
	return f.activeUsers, nil
}

func ptrTime(t time.Time) *time.Time {
	return &t
}

func ptrString(s string) *string {
	return &s
}

// fixedNow is a Wednesday afternoon in UTC.
var fixedNow = time.Date(2024, time.March, 13, 15, 30, 0, 0, time.UTC)

// newOrgFixture builds:
//
//	D1 Operations (s1)        D3 Finance (s2)
//	└── D2 Support            └── D5 Billing
//	    └── D4 Escalations
func newOrgFixture() *fakeStore {
	f := newFakeStore()
	f.addDepartment("D1", "Operations", "")
	f.addDepartment("D2", "Support", "D1")
	f.addDepartment("D3", "Finance", "")
	f.addDepartment("D4", "Escalations", "D2")
	f.addDepartment("D5", "Billing", "D3")
	f.admins = 2
	f.supervisorRoots["s1"] = []string{"D1"}
	f.supervisorRoots["s2"] = []string{"D3"}
	f.employees["e1"] = &domain.EmployeeLinkage{EmployeeID: "e1", SubDepartmentIDs: []string{"D2"}, SupervisorID: ptrString("s1")}
	f.employees["e2"] = &domain.EmployeeLinkage{EmployeeID: "e2", SupervisorID: ptrString("s1")}
	f.employees["e3"] = &domain.EmployeeLinkage{EmployeeID: "e3"}
	f.employees["e5"] = &domain.EmployeeLinkage{EmployeeID: "e5", SubDepartmentIDs: []string{"D5"}, SupervisorID: ptrString("s2")}
	return f
}

func newTestDashboard(f *fakeStore) *DashboardService {
	return NewDashboardService(DashboardDependencies{
		DepartmentRepo: f,
		IdentityRepo:   f,
		UserRepo:       f,
		TicketRepo:     f,
		TaskRepo:       fakeTasks{f},
		FaqRepo:        f,
		ActivityRepo:   f,
		Location:       time.UTC,
		Now:            func() time.Time { return fixedNow },
	})
}
