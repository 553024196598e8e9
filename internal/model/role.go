package model

// Role types.
const (
	RoleTypeUser   = "user"
	RoleTypeGroup  = "group"
	RoleTypeSystem = "system"
)

// System role identifiers granted implicitly to every caller.
const (
	SystemGuest = "system:guest"
	SystemUser  = "system:user"
)

// Role is an authorization principal attached to an authenticated caller.
type Role struct {
	ID      string   `json:"id" db:"id"`
	Name    string   `json:"name" db:"name"`
	Type    string   `json:"type" db:"type"`
	IsAdmin bool     `json:"is_admin" db:"is_admin"`
	Groups  []string `json:"-" db:"groups"`
}
