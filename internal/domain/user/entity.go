package user

type Role string

const (
	RoleOwner    Role = "owner"    // Store owner - full access
	RoleManager  Role = "manager"  // Runs payroll and the ledger
	RoleEmployee Role = "employee" // Checks in and out
)

// Principal is the authenticated caller as read from the access token.
type Principal struct {
	UserID     string
	EmployeeID string
	StoreID    string
	Role       Role
}

// IsManager checks if the caller is manager or owner
func (p Principal) IsManager() bool {
	return p.Role == RoleManager || p.Role == RoleOwner
}

// HasEmployeeProfile reports whether the caller is linked to an employee record.
func (p Principal) HasEmployeeProfile() bool {
	return p.EmployeeID != ""
}
