package domain

import "time"

// Role enumerates the closed set of account roles.
type Role string

const (
	RoleAdministrator Role = "ADMINISTRATOR"
	RoleManager       Role = "MANAGER"
	RoleOperator      Role = "OPERATOR"
	RoleTechnician    Role = "TECHNICIAN"
	RoleClient        Role = "CLIENT"
)

// IsBackOffice reports whether the role has full list scope and may
// edit any request or assign technicians.
func (r Role) IsBackOffice() bool {
	return r == RoleAdministrator || r == RoleManager || r == RoleOperator
}

// User is an authentication record. Users are created at seed time and
// immutable afterwards.
type User struct {
	ID           int64
	Login        string
	PasswordHash string
	FullName     string
	Phone        string
	Role         Role
	CreatedAt    time.Time
}
