package domain

// UserRole is the role column of the users table.
type UserRole string

const (
	UserRoleAdmin      UserRole = "admin"
	UserRoleSupervisor UserRole = "supervisor"
	UserRoleEmployee   UserRole = "employee"
)
