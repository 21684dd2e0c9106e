package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Permission is the ordered capability tier a direct share grants.
type Permission string

const (
	PermissionView  Permission = "VIEW"
	PermissionEdit  Permission = "EDIT"
	PermissionAdmin Permission = "ADMIN"
)

var permissionLevels = map[Permission]int{
	PermissionView:  1,
	PermissionEdit:  2,
	PermissionAdmin: 3,
}

// Valid reports whether p names a known permission tier.
func (p Permission) Valid() bool {
	_, ok := permissionLevels[p]
	return ok
}

// Covers reports whether p grants at least the capability of required.
func (p Permission) Covers(required Permission) bool {
	pl, ok1 := permissionLevels[p]
	rl, ok2 := permissionLevels[required]
	return ok1 && ok2 && pl >= rl
}

// Operation is a requested action on a resource.
type Operation string

const (
	OperationRead  Operation = "READ"
	OperationWrite Operation = "WRITE"
	OperationShare Operation = "SHARE"
)

// RequiredPermission returns the minimum grant tier that allows the
// operation: READ needs VIEW, WRITE needs EDIT, SHARE needs ADMIN.
func (o Operation) RequiredPermission() Permission {
	switch o {
	case OperationWrite:
		return PermissionEdit
	case OperationShare:
		return PermissionAdmin
	default:
		return PermissionView
	}
}

// ResourceKind distinguishes files from folders wherever both can appear.
type ResourceKind string

const (
	ResourceFile   ResourceKind = "file"
	ResourceFolder ResourceKind = "folder"
)

// Resource is a (kind, id) reference to a file or folder.
type Resource struct {
	Kind ResourceKind
	ID   primitive.ObjectID
}

// DirectShare is an explicit grant of Permission on one resource to one
// user. One row exists per (resource, user); re-granting updates it in
// place. Revocation flips IsActive instead of deleting the row so the audit
// trail stays intact, and an ExpiresAt in the past makes the grant invisible
// to the access engine without any sweep.
type DirectShare struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ResourceKind ResourceKind       `bson:"resource_kind" json:"resource_kind"`
	ResourceID   primitive.ObjectID `bson:"resource_id" json:"resource_id"`
	UserID       primitive.ObjectID `bson:"user_id" json:"user_id"`
	GrantedBy    primitive.ObjectID `bson:"granted_by" json:"granted_by"`
	Permission   Permission         `bson:"permission" json:"permission"`
	ExpiresAt    *time.Time         `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
	IsActive     bool               `bson:"is_active" json:"is_active"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// Effective reports whether the grant counts at decision time: active and
// not lapsed. A lapsed grant is treated as absent even though the row
// still exists.
func (s *DirectShare) Effective(now time.Time) bool {
	if !s.IsActive {
		return false
	}
	if s.ExpiresAt != nil && !s.ExpiresAt.After(now) {
		return false
	}
	return true
}

// ShareResponse is the transport view of a direct share with the target
// user embedded.
type ShareResponse struct {
	Share *DirectShare `json:"share"`
	User  *UserInfo    `json:"user,omitempty"`
}

type ShareRequest struct {
	UserEmail  string     `json:"user_email" validate:"required,email"`
	Permission Permission `json:"permission" validate:"required"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

type RevokeShareRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// BulkShareRequest applies one grant to every (resource, email) pair.
type BulkShareRequest struct {
	Items      []string   `json:"items" validate:"required,min=1"`
	UserEmails []string   `json:"user_emails" validate:"required,min=1"`
	Permission Permission `json:"permission" validate:"required"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

// BulkOutcome is the per-pair result of a bulk share. Partial failure is
// the normal case: every pair gets exactly one outcome and failures never
// roll back neighbours.
type BulkOutcome struct {
	ResourceID string `json:"resource_id"`
	Target     string `json:"target"`
	Status     string `json:"status"` // "success" or "error"
	Message    string `json:"message,omitempty"`
}

const (
	BulkStatusSuccess = "success"
	BulkStatusError   = "error"
)
