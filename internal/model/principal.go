package model

import "github.com/google/uuid"

type Role string

const (
	RoleWorker  Role = "Worker"
	RoleCompany Role = "Company"
)

func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleWorker:
		return RoleWorker, true
	case RoleCompany:
		return RoleCompany, true
	default:
		return "", false
	}
}

// Principal is the verified caller identity attached to every request.
type Principal struct {
	UserID uuid.UUID
	Role   Role
}

func (p Principal) IsWorker() bool {
	return p.Role == RoleWorker
}

func (p Principal) IsCompany() bool {
	return p.Role == RoleCompany
}
