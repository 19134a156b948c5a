package models

import (
	"fmt"
	"strings"
)

// Role is the access level attached to a user and carried in its tokens.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// Capability names an action that only some roles may perform.
type Capability int

const (
	CapManageCatalog Capability = iota + 1 // create, update, delete products
	CapManageUsers                         // register accounts, list users
	CapManageOrders                        // delete orders
)

var roleCapabilities = map[Role]map[Capability]bool{
	RoleAdmin: {
		CapManageCatalog: true,
		CapManageUsers:   true,
		CapManageOrders:  true,
	},
	RoleCustomer: {},
}

// Can reports whether the role grants the capability. Unknown roles grant nothing.
func (r Role) Can(c Capability) bool {
	return roleCapabilities[r][c]
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleCapabilities[r]
	return ok
}

// ParseRole converts user input into a Role. An empty string means customer.
func ParseRole(s string) (Role, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return RoleCustomer, nil
	}
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

func (c Capability) String() string {
	switch c {
	case CapManageCatalog:
		return "manage_catalog"
	case CapManageUsers:
		return "manage_users"
	case CapManageOrders:
		return "manage_orders"
	default:
		return fmt.Sprintf("capability(%d)", int(c))
	}
}
