package core

// Operation is a verb of the command protocol.
type Operation string

const (
	OpSet    Operation = "set"
	OpView   Operation = "view"
	OpList   Operation = "list"
	OpRemove Operation = "remove"
	OpDrop   Operation = "drop"
	OpSearch Operation = "search"
	OpMatch  Operation = "match"
	OpTag    Operation = "tag"
	OpUntag  Operation = "untag"
	OpAudit  Operation = "audit"
)

// EntityType is the kind of entity a command targets.
type EntityType string

const (
	TypeEnum      EntityType = "enum"
	TypeStructure EntityType = "structure"
	TypePointer   EntityType = "pointer"
	TypeIPointer  EntityType = "ipointer"
)

// Permission levels. Higher levels include all lower ones.
const (
	LevelRead  = 1
	LevelWrite = 2
	LevelAdmin = 3
)

var operations = map[Operation]bool{
	OpSet:    true,
	OpView:   true,
	OpList:   true,
	OpRemove: true,
	OpDrop:   true,
	OpSearch: true,
	OpMatch:  true,
	OpTag:    true,
	OpUntag:  true,
	OpAudit:  true,
}

var entityTypes = map[EntityType]bool{
	TypeEnum:      true,
	TypeStructure: true,
	TypePointer:   true,
	TypeIPointer:  true,
}

// requiredLevels is the single source of truth for how much access each
// operation needs. Do not re-derive this table per feature.
var requiredLevels = map[Operation]int{
	OpView:   LevelRead,
	OpList:   LevelRead,
	OpSearch: LevelRead,
	OpMatch:  LevelRead,
	OpAudit:  LevelRead,
	OpSet:    LevelWrite,
	OpTag:    LevelWrite,
	OpUntag:  LevelWrite,
	OpRemove: LevelWrite,
	OpDrop:   LevelAdmin,
}

var levelNames = map[int]string{
	LevelRead:  "read-only",
	LevelWrite: "read-write",
	LevelAdmin: "admin",
}

// IsValidOperation reports whether op belongs to the closed operation set.
func IsValidOperation(op Operation) bool {
	return operations[op]
}

// IsValidEntityType reports whether t belongs to the closed entity type set.
func IsValidEntityType(t EntityType) bool {
	return entityTypes[t]
}

// RequiredLevel returns the permission level needed to run op.
func RequiredLevel(op Operation) int {
	return requiredLevels[op]
}

// LevelName returns the human readable name of a permission level.
func LevelName(level int) string {
	return levelNames[level]
}

// HasValues reports whether op may carry a values payload.
func HasValues(op Operation) bool {
	return op != OpView && op != OpDrop
}

const (
	RequesterEmailCtxKey = "gw-requester-email"
	RequesterTokenCtxKey = "gw-requester-token"
	PermissionSetCtxKey  = "gw-permission-set"
	TenantCtxKey         = "gw-tenant"
)

const (
	TenantHeader = "x-glyph-tenant"
)
