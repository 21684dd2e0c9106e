package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// File is a stored file's metadata. The bytes themselves live behind the
// blob store and are addressed by StorageKey; this core never touches them
// beyond handing the key to the storage provider. A nil FolderID means the
// file is unfiled. (owner, folder, name) is unique.
type File struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	OwnerID     primitive.ObjectID  `bson:"owner_id" json:"owner_id"`
	FolderID    *primitive.ObjectID `bson:"folder_id,omitempty" json:"folder_id,omitempty"`
	Name        string              `bson:"name" json:"name" validate:"required,max=255"`
	Size        int64               `bson:"size" json:"size" validate:"gte=0"`
	MimeType    string              `bson:"mime_type" json:"mime_type"`
	StorageKey  string              `bson:"storage_key" json:"-"`
	CreatedAt   time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time           `bson:"updated_at" json:"updated_at"`
}

type FileCreateRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	FolderID string `json:"folder_id"`
	Size     int64  `json:"size" validate:"gte=0"`
	MimeType string `json:"mime_type" validate:"required"`
}

type FileUpdateRequest struct {
	Name     string `json:"name" validate:"omitempty,max=255"`
	FolderID string `json:"folder_id"`
}
