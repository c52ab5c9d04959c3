package domain

// PrincipalRole is the capacity in which a caller acts.
type PrincipalRole string

const (
	RoleBankOperator PrincipalRole = "BANK_OPERATOR"
	RoleSeller       PrincipalRole = "SELLER"
	RoleBuyer        PrincipalRole = "BUYER"
	RoleSystem       PrincipalRole = "SYSTEM"
)

// Principal identifies who invoked an operation. Authentication happens upstream;
// the core only records the principal on what it writes.
type Principal struct {
	UserID         string        `json:"userID"`
	OrganizationID string        `json:"organizationID"`
	Role           PrincipalRole `json:"role"`
}

// SystemPrincipal is used by scheduled jobs.
var SystemPrincipal = Principal{UserID: "system", Role: RoleSystem}
