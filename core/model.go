package core

import (
	"strings"
	"time"
)

// Path addresses a target in the store. Trailing components may be empty,
// in which case the path denotes a coarser scope. The all-empty path is the
// global scope.
type Path struct {
	Database  string `json:"database"`
	Namespace string `json:"namespace"`
	Entity    string `json:"entity"`
}

// ParsePath parses a dot-joined path. Empty input yields the global path.
func ParsePath(input string) Path {
	if input == "" {
		return Path{}
	}
	var path Path
	parts := strings.SplitN(input, ".", 3)
	path.Database = parts[0]
	if len(parts) > 1 {
		path.Namespace = parts[1]
	}
	if len(parts) > 2 {
		path.Entity = parts[2]
	}
	return path
}

// String dot-joins the non-empty components, omitting trailing empties.
func (p Path) String() string {
	if p.Database == "" {
		return ""
	}
	out := p.Database
	if p.Namespace != "" {
		out += "." + p.Namespace
		if p.Entity != "" {
			out += "." + p.Entity
		}
	}
	return out
}

// IsGlobal reports whether the path has no database component.
func (p Path) IsGlobal() bool {
	return p.Database == ""
}

// Command is one protocol invocation. Commands are ephemeral: built,
// validated, executed, discarded. Only their effect persists in the store.
type Command struct {
	Op     Operation  `json:"operation"`
	Type   EntityType `json:"entityType"`
	Values []any      `json:"values,omitempty"`
	Target Path       `json:"path"`
}

// Permission is one access grant. Re-granting the same subject and scope
// overwrites the row in place.
type Permission struct {
	Subject   string     `json:"subject" gorm:"primaryKey;type:text"`
	Database  string     `json:"database" gorm:"primaryKey;type:text"`
	Namespace string     `json:"namespace" gorm:"primaryKey;type:text;default:''"`
	Entity    string     `json:"entity" gorm:"primaryKey;type:text;default:''"`
	Level     int        `json:"level" gorm:"type:integer"`
	GrantedBy string     `json:"grantedBy" gorm:"type:text"`
	GrantedAt time.Time  `json:"grantedAt" gorm:"autoCreateTime"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// Scope returns the dot-joined non-empty path components of the grant.
func (p Permission) Scope() string {
	return Path{Database: p.Database, Namespace: p.Namespace, Entity: p.Entity}.String()
}

// IsActive reports whether the grant is live at the given instant.
// A grant without an expiry never goes inactive.
func (p Permission) IsActive(now time.Time) bool {
	return p.ExpiresAt == nil || now.Before(*p.ExpiresAt)
}

// Allows reports whether the grant satisfies the required level. Levels are
// monotonic: admin implies write implies read.
func (p Permission) Allows(required int, now time.Time) bool {
	return p.IsActive(now) && p.Level >= required
}

// PermissionSet is one subject's currently held grants, keyed by scope.
type PermissionSet map[string]Permission

// Get looks up a grant by scope.
func (s PermissionSet) Get(scope string) (Permission, bool) {
	p, ok := s[scope]
	return p, ok
}

// Tenant is an isolated logical owner of data in the store, with its own
// system-level credential.
type Tenant struct {
	ID        string    `json:"id" gorm:"primaryKey;type:text"`
	Token     string    `json:"-" gorm:"type:text"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// PermissionRecord is the externally visible shape of a grant.
type PermissionRecord struct {
	Database  string    `json:"database"`
	Level     int       `json:"level"`
	LevelName string    `json:"levelName"`
	GrantedAt time.Time `json:"grantedAt"`
	GrantedBy string    `json:"grantedBy"`
}

// Record converts a grant to its external record shape.
func (p Permission) Record() PermissionRecord {
	return PermissionRecord{
		Database:  p.Database,
		Level:     p.Level,
		LevelName: LevelName(p.Level),
		GrantedAt: p.GrantedAt,
		GrantedBy: p.GrantedBy,
	}
}

// PersonalNamespace derives the self-service namespace name from a caller's
// email. Commands inside it are implicitly fully accessible to that caller.
func PersonalNamespace(email string) string {
	replaced := strings.ReplaceAll(email, ".", "_")
	return strings.ReplaceAll(replaced, "@", "_at_")
}
