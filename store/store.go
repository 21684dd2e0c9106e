// Package store is the persistence boundary of the service. Two
// implementations exist: a MongoDB-backed one for deployments and an
// in-memory one used by the test suites and the single-binary dev mode.
// Both return errtypes errors so callers never see driver-level sentinels.
package store

import (
	"context"

	"cloudbox/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserStore reads the mirrored identity records. Identities originate from
// the external identity provider; Upsert only syncs the mirror.
type UserStore interface {
	GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpsertUser(ctx context.Context, user *models.User) error
}

// FolderStore persists the folder tree.
type FolderStore interface {
	GetFolder(ctx context.Context, id primitive.ObjectID) (*models.Folder, error)
	// FindFolderByName looks up the sibling with the given name, owner and
	// parent (nil parent = owner root). Returns errtypes.NotFound when absent.
	FindFolderByName(ctx context.Context, ownerID primitive.ObjectID, parentID *primitive.ObjectID, name string) (*models.Folder, error)
	InsertFolder(ctx context.Context, folder *models.Folder) error
	UpdateFolder(ctx context.Context, folder *models.Folder) error
	DeleteFolder(ctx context.Context, id primitive.ObjectID) error
	ListFoldersByParent(ctx context.Context, ownerID primitive.ObjectID, parentID *primitive.ObjectID) ([]models.Folder, error)
	ListFoldersByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Folder, error)
}

// FileStore persists file metadata.
type FileStore interface {
	GetFile(ctx context.Context, id primitive.ObjectID) (*models.File, error)
	FindFileByName(ctx context.Context, ownerID primitive.ObjectID, folderID *primitive.ObjectID, name string) (*models.File, error)
	InsertFile(ctx context.Context, file *models.File) error
	UpdateFile(ctx context.Context, file *models.File) error
	DeleteFile(ctx context.Context, id primitive.ObjectID) error
	ListFilesByFolder(ctx context.Context, folderID primitive.ObjectID) ([]models.File, error)
	ListFilesByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.File, error)
}

// ShareStore persists direct grants. One row exists per (resource, user);
// UpsertShare must honour that uniqueness.
type ShareStore interface {
	// GetShare returns the grant for (resource, user) regardless of its
	// active/expired state; errtypes.NotFound when no row exists.
	GetShare(ctx context.Context, resource models.Resource, userID primitive.ObjectID) (*models.DirectShare, error)
	UpsertShare(ctx context.Context, share *models.DirectShare) error
	UpdateShare(ctx context.Context, share *models.DirectShare) error
	ListSharesForResource(ctx context.Context, resource models.Resource) ([]models.DirectShare, error)
	ListSharesForUser(ctx context.Context, userID primitive.ObjectID, kind models.ResourceKind) ([]models.DirectShare, error)
}

// LinkStore persists public share links.
type LinkStore interface {
	GetLinkByUUID(ctx context.Context, uuid string) (*models.ShareLink, error)
	InsertLink(ctx context.Context, link *models.ShareLink) error
	UpdateLink(ctx context.Context, link *models.ShareLink) error
	// ConsumeDownload increments the link's download counter if and only if
	// the quota is not yet exhausted, as one atomic read-modify-write. Under
	// concurrent callers racing the last quota slot exactly one wins; the
	// rest get errtypes.QuotaExceeded. Returns the post-increment link.
	ConsumeDownload(ctx context.Context, uuid string) (*models.ShareLink, error)
}

// ActivityStore persists the append-only audit trail. References to files,
// folders and users are weak: the Clear*Refs calls null them out when their
// subject is deleted so the rows themselves survive.
type ActivityStore interface {
	InsertActivity(ctx context.Context, entry *models.ActivityLog) error
	ListActivityForUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]models.ActivityLog, error)
	ClearFileRefs(ctx context.Context, fileID primitive.ObjectID) error
	ClearFolderRefs(ctx context.Context, folderID primitive.ObjectID) error
	ClearUserRefs(ctx context.Context, userID primitive.ObjectID) error
}

// Stores bundles every store the services need.
type Stores struct {
	Users    UserStore
	Folders  FolderStore
	Files    FileStore
	Shares   ShareStore
	Links    LinkStore
	Activity ActivityStore
}
