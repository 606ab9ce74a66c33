package domain

// Role enumerates the identities that can request reports.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleSupervisor Role = "SUPERVISOR"
	RoleEmployee   Role = "EMPLOYEE"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSupervisor, RoleEmployee:
		return true
	}
	return false
}

// Identity is the caller a report is computed for. Role specific linkage
// (supervisor root departments, employee sub-departments) lives in the
// identity store and is looked up by SubjectID.
type Identity struct {
	Role      Role
	SubjectID string
}

func AdminIdentity() *Identity {
	return &Identity{Role: RoleAdmin}
}

func SupervisorIdentity(supervisorID string) *Identity {
	return &Identity{Role: RoleSupervisor, SubjectID: supervisorID}
}

func EmployeeIdentity(employeeID string) *Identity {
	return &Identity{Role: RoleEmployee, SubjectID: employeeID}
}

// EmployeeLinkage describes where an employee sits in the department forest.
type EmployeeLinkage struct {
	EmployeeID       string
	SubDepartmentIDs []string
	SupervisorID     *string
}
