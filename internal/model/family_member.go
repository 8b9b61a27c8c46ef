package model

import "fmt"

type Role string

const (
	RoleParent Role = "parent"
	RoleTeen   Role = "teen"
	RoleChild  Role = "child"
)

// Roles lists every role in roster display order.
var Roles = []Role{RoleParent, RoleTeen, RoleChild}

// ParseRole accepts the canonical role names, case-sensitive.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleParent, RoleTeen, RoleChild:
		return Role(s), nil
	}
	return "", &ValidationError{Field: "role", Message: fmt.Sprintf("unknown role %q", s)}
}

// BucketLabel is the prefix used for generated member names.
func (r Role) BucketLabel() string {
	switch r {
	case RoleParent:
		return "Parent"
	case RoleTeen:
		return "Ado"
	case RoleChild:
		return "Enfant"
	}
	return string(r)
}

type Member struct {
	Name string `json:"name"`
	Role Role   `json:"role"`
}
