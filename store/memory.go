package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"cloudbox/errtypes"
	"cloudbox/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStores is an in-memory implementation of Stores. It backs the test
// suites and the STORE_DRIVER=memory dev mode. Safe for concurrent use.
type MemoryStores struct {
	mu       sync.RWMutex
	users    map[primitive.ObjectID]models.User
	folders  map[primitive.ObjectID]models.Folder
	files    map[primitive.ObjectID]models.File
	shares   map[primitive.ObjectID]models.DirectShare
	links    map[string]models.ShareLink
	activity []models.ActivityLog
}

// NewMemoryStores creates an empty in-memory store set.
func NewMemoryStores() *Stores {
	m := &MemoryStores{
		users:   make(map[primitive.ObjectID]models.User),
		folders: make(map[primitive.ObjectID]models.Folder),
		files:   make(map[primitive.ObjectID]models.File),
		shares:  make(map[primitive.ObjectID]models.DirectShare),
		links:   make(map[string]models.ShareLink),
	}
	return &Stores{
		Users:    m,
		Folders:  m,
		Files:    m,
		Shares:   m,
		Links:    m,
		Activity: m,
	}
}

func sameParent(a, b *primitive.ObjectID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Users

func (m *MemoryStores) GetUser(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, errtypes.NotFound("user " + id.Hex())
	}
	return &u, nil
}

func (m *MemoryStores) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			out := u
			return &out, nil
		}
	}
	return nil, errtypes.NotFound("user " + email)
}

func (m *MemoryStores) UpsertUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, u := range m.users {
		if u.SubjectID == user.SubjectID {
			user.ID = id
			user.CreatedAt = u.CreatedAt
			m.users[id] = *user
			return nil
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	m.users[user.ID] = *user
	return nil
}

// Folders

func (m *MemoryStores) GetFolder(_ context.Context, id primitive.ObjectID) (*models.Folder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.folders[id]
	if !ok {
		return nil, errtypes.NotFound("folder " + id.Hex())
	}
	return &f, nil
}

func (m *MemoryStores) FindFolderByName(_ context.Context, ownerID primitive.ObjectID, parentID *primitive.ObjectID, name string) (*models.Folder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, f := range m.folders {
		if f.OwnerID == ownerID && f.Name == name && sameParent(f.ParentID, parentID) {
			out := f
			return &out, nil
		}
	}
	return nil, errtypes.NotFound("folder " + name)
}

func (m *MemoryStores) InsertFolder(_ context.Context, folder *models.Folder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if folder.ID.IsZero() {
		folder.ID = primitive.NewObjectID()
	}
	for _, f := range m.folders {
		if f.OwnerID == folder.OwnerID && f.Name == folder.Name && sameParent(f.ParentID, folder.ParentID) {
			return errtypes.AlreadyExists("folder " + folder.Name)
		}
	}
	m.folders[folder.ID] = *folder
	return nil
}

func (m *MemoryStores) UpdateFolder(_ context.Context, folder *models.Folder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.folders[folder.ID]; !ok {
		return errtypes.NotFound("folder " + folder.ID.Hex())
	}
	for id, f := range m.folders {
		if id != folder.ID && f.OwnerID == folder.OwnerID && f.Name == folder.Name && sameParent(f.ParentID, folder.ParentID) {
			return errtypes.AlreadyExists("folder " + folder.Name)
		}
	}
	m.folders[folder.ID] = *folder
	return nil
}

func (m *MemoryStores) DeleteFolder(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.folders[id]; !ok {
		return errtypes.NotFound("folder " + id.Hex())
	}
	delete(m.folders, id)
	return nil
}

func (m *MemoryStores) ListFoldersByParent(_ context.Context, ownerID primitive.ObjectID, parentID *primitive.ObjectID) ([]models.Folder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Folder
	for _, f := range m.folders {
		if f.OwnerID == ownerID && sameParent(f.ParentID, parentID) {
			out = append(out, f)
		}
	}
	sortFoldersByName(out)
	return out, nil
}

func (m *MemoryStores) ListFoldersByOwner(_ context.Context, ownerID primitive.ObjectID) ([]models.Folder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Folder
	for _, f := range m.folders {
		if f.OwnerID == ownerID {
			out = append(out, f)
		}
	}
	sortFoldersByName(out)
	return out, nil
}

func sortFoldersByName(folders []models.Folder) {
	sort.Slice(folders, func(i, j int) bool { return folders[i].Name < folders[j].Name })
}

// Files

func (m *MemoryStores) GetFile(_ context.Context, id primitive.ObjectID) (*models.File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[id]
	if !ok {
		return nil, errtypes.NotFound("file " + id.Hex())
	}
	return &f, nil
}

func (m *MemoryStores) FindFileByName(_ context.Context, ownerID primitive.ObjectID, folderID *primitive.ObjectID, name string) (*models.File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, f := range m.files {
		if f.OwnerID == ownerID && f.Name == name && sameParent(f.FolderID, folderID) {
			out := f
			return &out, nil
		}
	}
	return nil, errtypes.NotFound("file " + name)
}

func (m *MemoryStores) InsertFile(_ context.Context, file *models.File) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if file.ID.IsZero() {
		file.ID = primitive.NewObjectID()
	}
	for _, f := range m.files {
		if f.OwnerID == file.OwnerID && f.Name == file.Name && sameParent(f.FolderID, file.FolderID) {
			return errtypes.AlreadyExists("file " + file.Name)
		}
	}
	m.files[file.ID] = *file
	return nil
}

func (m *MemoryStores) UpdateFile(_ context.Context, file *models.File) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[file.ID]; !ok {
		return errtypes.NotFound("file " + file.ID.Hex())
	}
	for id, f := range m.files {
		if id != file.ID && f.OwnerID == file.OwnerID && f.Name == file.Name && sameParent(f.FolderID, file.FolderID) {
			return errtypes.AlreadyExists("file " + file.Name)
		}
	}
	m.files[file.ID] = *file
	return nil
}

func (m *MemoryStores) DeleteFile(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[id]; !ok {
		return errtypes.NotFound("file " + id.Hex())
	}
	delete(m.files, id)
	return nil
}

func (m *MemoryStores) ListFilesByFolder(_ context.Context, folderID primitive.ObjectID) ([]models.File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.File
	for _, f := range m.files {
		if f.FolderID != nil && *f.FolderID == folderID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryStores) ListFilesByOwner(_ context.Context, ownerID primitive.ObjectID) ([]models.File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.File
	for _, f := range m.files {
		if f.OwnerID == ownerID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Shares

func (m *MemoryStores) GetShare(_ context.Context, resource models.Resource, userID primitive.ObjectID) (*models.DirectShare, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.shares {
		if s.ResourceKind == resource.Kind && s.ResourceID == resource.ID && s.UserID == userID {
			out := s
			return &out, nil
		}
	}
	return nil, errtypes.NotFound("share on " + resource.ID.Hex())
}

func (m *MemoryStores) UpsertShare(_ context.Context, share *models.DirectShare) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.shares {
		if s.ResourceKind == share.ResourceKind && s.ResourceID == share.ResourceID && s.UserID == share.UserID {
			share.ID = id
			share.CreatedAt = s.CreatedAt
			m.shares[id] = *share
			return nil
		}
	}
	if share.ID.IsZero() {
		share.ID = primitive.NewObjectID()
	}
	m.shares[share.ID] = *share
	return nil
}

func (m *MemoryStores) UpdateShare(_ context.Context, share *models.DirectShare) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.shares[share.ID]; !ok {
		return errtypes.NotFound("share " + share.ID.Hex())
	}
	m.shares[share.ID] = *share
	return nil
}

func (m *MemoryStores) ListSharesForResource(_ context.Context, resource models.Resource) ([]models.DirectShare, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.DirectShare
	for _, s := range m.shares {
		if s.ResourceKind == resource.Kind && s.ResourceID == resource.ID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStores) ListSharesForUser(_ context.Context, userID primitive.ObjectID, kind models.ResourceKind) ([]models.DirectShare, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.DirectShare
	for _, s := range m.shares {
		if s.UserID == userID && s.ResourceKind == kind {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Links

func (m *MemoryStores) GetLinkByUUID(_ context.Context, uuid string) (*models.ShareLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.links[uuid]
	if !ok {
		return nil, errtypes.NotFound("share link " + uuid)
	}
	return &l, nil
}

func (m *MemoryStores) InsertLink(_ context.Context, link *models.ShareLink) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.links[link.UUID]; ok {
		return errtypes.AlreadyExists("share link " + link.UUID)
	}
	if link.ID.IsZero() {
		link.ID = primitive.NewObjectID()
	}
	m.links[link.UUID] = *link
	return nil
}

func (m *MemoryStores) UpdateLink(_ context.Context, link *models.ShareLink) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.links[link.UUID]; !ok {
		return errtypes.NotFound("share link " + link.UUID)
	}
	m.links[link.UUID] = *link
	return nil
}

// ConsumeDownload does the check-and-increment under the write lock, which
// is the memory-store equivalent of the single-statement conditional update
// the Mongo store issues.
func (m *MemoryStores) ConsumeDownload(_ context.Context, uuid string) (*models.ShareLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.links[uuid]
	if !ok {
		return nil, errtypes.NotFound("share link " + uuid)
	}
	if !l.IsActive {
		return nil, errtypes.Inactive("share link " + uuid)
	}
	if l.MaxDownloads > 0 && l.DownloadCount >= l.MaxDownloads {
		return nil, errtypes.QuotaExceeded("share link " + uuid)
	}
	l.DownloadCount++
	m.links[uuid] = l
	return &l, nil
}

// Activity

func (m *MemoryStores) InsertActivity(_ context.Context, entry *models.ActivityLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	m.activity = append(m.activity, *entry)
	return nil
}

func (m *MemoryStores) ListActivityForUser(_ context.Context, userID primitive.ObjectID, limit int) ([]models.ActivityLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.ActivityLog
	for i := len(m.activity) - 1; i >= 0; i-- {
		e := m.activity[i]
		if e.UserID != nil && *e.UserID == userID {
			out = append(out, e)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (m *MemoryStores) ClearFileRefs(_ context.Context, fileID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.activity {
		if m.activity[i].FileID != nil && *m.activity[i].FileID == fileID {
			m.activity[i].FileID = nil
		}
	}
	return nil
}

func (m *MemoryStores) ClearFolderRefs(_ context.Context, folderID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.activity {
		if m.activity[i].FolderID != nil && *m.activity[i].FolderID == folderID {
			m.activity[i].FolderID = nil
		}
	}
	return nil
}

func (m *MemoryStores) ClearUserRefs(_ context.Context, userID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.activity {
		if m.activity[i].UserID != nil && *m.activity[i].UserID == userID {
			m.activity[i].UserID = nil
		}
	}
	return nil
}
