package services

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"cloudbox/models"
	"cloudbox/storage"
	"cloudbox/store"
)

// testEnv wires the full service graph over the in-memory store with a
// controllable clock.
type testEnv struct {
	stores   *store.Stores
	clock    time.Time
	access   *AccessService
	activity *ActivityService
	shares   *ShareService
	links    *LinkService
	bulk     *BulkService
	folders  *FolderService
	files    *FileService
	users    *UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	stores := store.NewMemoryStores()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	env := &testEnv{
		stores: stores,
		clock:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	now := func() time.Time { return env.clock }

	blobs, err := storage.NewLocalClient(t.TempDir())
	if err != nil {
		t.Fatalf("local storage: %v", err)
	}

	env.access = NewAccessService(stores)
	env.access.now = now
	env.activity = NewActivityService(stores, logger)
	env.shares = NewShareService(stores, env.access, env.activity)
	env.shares.now = now
	env.links = NewLinkService(stores, env.access, env.activity)
	env.links.now = now
	env.bulk = NewBulkService(stores, env.shares)
	env.folders = NewFolderService(stores, env.access, env.activity)
	env.folders.now = now
	env.files = NewFileService(stores, env.access, env.activity, blobs)
	env.files.now = now
	env.users = NewUserService(stores)
	env.users.now = now

	return env
}

func (e *testEnv) advance(d time.Duration) {
	e.clock = e.clock.Add(d)
}

func (e *testEnv) addUser(t *testing.T, email string) *models.User {
	t.Helper()
	user := &models.User{
		SubjectID:   "sub-" + email,
		Email:       email,
		DisplayName: email,
		IsActive:    true,
		CreatedAt:   e.clock,
		UpdatedAt:   e.clock,
	}
	if err := e.stores.Users.UpsertUser(context.Background(), user); err != nil {
		t.Fatalf("add user %s: %v", email, err)
	}
	return user
}

func (e *testEnv) addFolder(t *testing.T, ownerID primitive.ObjectID, parentID *primitive.ObjectID, name string) *models.Folder {
	t.Helper()
	folder := &models.Folder{
		OwnerID:   ownerID,
		ParentID:  parentID,
		Name:      name,
		CreatedAt: e.clock,
		UpdatedAt: e.clock,
	}
	if err := e.stores.Folders.InsertFolder(context.Background(), folder); err != nil {
		t.Fatalf("add folder %s: %v", name, err)
	}
	return folder
}

func (e *testEnv) addFile(t *testing.T, ownerID primitive.ObjectID, folderID *primitive.ObjectID, name string) *models.File {
	t.Helper()
	file := &models.File{
		OwnerID:   ownerID,
		FolderID:  folderID,
		Name:      name,
		Size:      42,
		MimeType:  "text/plain",
		CreatedAt: e.clock,
		UpdatedAt: e.clock,
	}
	if err := e.stores.Files.InsertFile(context.Background(), file); err != nil {
		t.Fatalf("add file %s: %v", name, err)
	}
	return file
}

// grant writes a share row directly, bypassing authorization.
func (e *testEnv) grant(t *testing.T, resource models.Resource, userID, grantedBy primitive.ObjectID, permission models.Permission, expiresAt *time.Time) *models.DirectShare {
	t.Helper()
	share := &models.DirectShare{
		ResourceKind: resource.Kind,
		ResourceID:   resource.ID,
		UserID:       userID,
		GrantedBy:    grantedBy,
		Permission:   permission,
		ExpiresAt:    expiresAt,
		IsActive:     true,
		CreatedAt:    e.clock,
		UpdatedAt:    e.clock,
	}
	if err := e.stores.Shares.UpsertShare(context.Background(), share); err != nil {
		t.Fatalf("grant: %v", err)
	}
	return share
}

func fileRes(id primitive.ObjectID) models.Resource {
	return models.Resource{Kind: models.ResourceFile, ID: id}
}

func folderRes(id primitive.ObjectID) models.Resource {
	return models.Resource{Kind: models.ResourceFolder, ID: id}
}

func noInfo() models.RequestInfo {
	return models.RequestInfo{IPAddress: "127.0.0.1", UserAgent: "test"}
}

func timePtr(t time.Time) *time.Time { return &t }
