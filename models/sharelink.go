package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ShareLink is an unauthenticated, UUID-addressed capability on exactly one
// file or folder. Validity is derived state, recomputed on every access from
// IsActive, ExpiresAt and the download quota; nothing caches a "valid" bit.
type ShareLink struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"-"`
	UUID          string              `bson:"uuid" json:"uuid"`
	FileID        *primitive.ObjectID `bson:"file_id,omitempty" json:"file_id,omitempty"`
	FolderID      *primitive.ObjectID `bson:"folder_id,omitempty" json:"folder_id,omitempty"`
	CreatedBy     primitive.ObjectID  `bson:"created_by" json:"created_by"`
	PasswordHash  string              `bson:"password_hash,omitempty" json:"-"`
	ExpiresAt     *time.Time          `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
	MaxDownloads  int                 `bson:"max_downloads" json:"max_downloads,omitempty"` // 0 = unlimited
	DownloadCount int                 `bson:"download_count" json:"download_count"`
	IsActive      bool                `bson:"is_active" json:"is_active"`
	CreatedAt     time.Time           `bson:"created_at" json:"created_at"`
}

// Resource returns the single resource the link points at.
func (l *ShareLink) Resource() Resource {
	if l.FileID != nil {
		return Resource{Kind: ResourceFile, ID: *l.FileID}
	}
	return Resource{Kind: ResourceFolder, ID: *l.FolderID}
}

// HasPassword reports whether the link is password protected.
func (l *ShareLink) HasPassword() bool {
	return l.PasswordHash != ""
}

type ShareLinkCreateRequest struct {
	Password     string     `json:"password,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	MaxDownloads int        `json:"max_downloads,omitempty"`
}

// ShareLinkPreview is what an anonymous visitor sees when resolving a
// valid link: enough to decide whether to download, nothing more.
type ShareLinkPreview struct {
	UUID         string       `json:"uuid"`
	ResourceKind ResourceKind `json:"resource_kind"`
	Name         string       `json:"name"`
	Size         int64        `json:"size,omitempty"`
	MimeType     string       `json:"mime_type,omitempty"`
	HasPassword  bool         `json:"has_password"`
	ExpiresAt    *time.Time   `json:"expires_at,omitempty"`
}

// ShareLinkResponse is the transport view of a link with its public URL.
type ShareLinkResponse struct {
	UUID          string     `json:"uuid"`
	URL           string     `json:"url"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	MaxDownloads  int        `json:"max_downloads,omitempty"`
	DownloadCount int        `json:"download_count"`
	IsActive      bool       `json:"is_active"`
	CreatedAt     time.Time  `json:"created_at"`
}
