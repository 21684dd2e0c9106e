package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Folder is a node in the resource tree. Nodes are linked by parent id only;
// a nil ParentID means the folder sits at the owner's root. The
// (owner, parent, name) triple is unique, enforced both in the service layer
// and by a compound index.
type Folder struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	OwnerID     primitive.ObjectID  `bson:"owner_id" json:"owner_id"`
	ParentID    *primitive.ObjectID `bson:"parent_id,omitempty" json:"parent_id,omitempty"`
	Name        string              `bson:"name" json:"name" validate:"required,max=255"`
	Description string              `bson:"description" json:"description"`
	CreatedAt   time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time           `bson:"updated_at" json:"updated_at"`
}

type FolderCreateRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description"`
	ParentID    string `json:"parent_id"`
}

type FolderUpdateRequest struct {
	Name        string `json:"name" validate:"omitempty,max=255"`
	Description string `json:"description"`
}

type FolderMoveRequest struct {
	ParentID string `json:"parent_id"` // empty moves to root
}
