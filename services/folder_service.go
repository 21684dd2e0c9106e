package services

import (
	"context"
	"errors"
	"time"

	"cloudbox/errtypes"
	"cloudbox/models"
	"cloudbox/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FolderService manages the folder tree. Sibling names are unique per
// (owner, parent); the parent chain stays acyclic, checked with an
// explicit walk-to-root on every re-parenting.
type FolderService struct {
	stores   *store.Stores
	access   *AccessService
	activity *ActivityService
	now      func() time.Time
}

func NewFolderService(stores *store.Stores, access *AccessService, activity *ActivityService) *FolderService {
	return &FolderService{
		stores:   stores,
		access:   access,
		activity: activity,
		now:      time.Now,
	}
}

// CreateFolder creates a folder for the owner. A named parent must exist;
// creating inside someone else's folder requires WRITE on it.
func (s *FolderService) CreateFolder(ctx context.Context, ownerID primitive.ObjectID, req *models.FolderCreateRequest) (*models.Folder, error) {
	parentID, err := s.resolveParent(ctx, ownerID, req.ParentID)
	if err != nil {
		return nil, err
	}

	if _, err := s.stores.Folders.FindFolderByName(ctx, ownerID, parentID, req.Name); err == nil {
		return nil, errtypes.AlreadyExists("folder " + req.Name + " already exists here")
	} else {
		var notFound errtypes.IsNotFound
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	now := s.now()
	folder := &models.Folder{
		OwnerID:     ownerID,
		ParentID:    parentID,
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.stores.Folders.InsertFolder(ctx, folder); err != nil {
		return nil, err
	}
	return folder, nil
}

// GetFolder returns a folder the subject may READ; viewing is recorded.
func (s *FolderService) GetFolder(ctx context.Context, subjectID, folderID primitive.ObjectID, info models.RequestInfo) (*models.Folder, error) {
	if err := s.access.Authorize(ctx, subjectID, models.Resource{Kind: models.ResourceFolder, ID: folderID}, models.OperationRead); err != nil {
		return nil, err
	}
	folder, err := s.stores.Folders.GetFolder(ctx, folderID)
	if err != nil {
		return nil, err
	}
	s.activity.Record(ctx, models.ActivityView, &subjectID, nil, &folderID, info, nil)
	return folder, nil
}

// ListFolders returns the subject's own folders under a parent plus, at
// the root level, folders shared with them through an effective grant.
func (s *FolderService) ListFolders(ctx context.Context, subjectID primitive.ObjectID, parentIDHex string) ([]models.Folder, error) {
	parentID, err := optionalID(parentIDHex)
	if err != nil {
		return nil, err
	}

	folders, err := s.stores.Folders.ListFoldersByParent(ctx, subjectID, parentID)
	if err != nil {
		return nil, err
	}

	if parentID == nil {
		shared, err := s.sharedFolders(ctx, subjectID)
		if err != nil {
			return nil, err
		}
		folders = append(folders, shared...)
	}
	return folders, nil
}

func (s *FolderService) sharedFolders(ctx context.Context, subjectID primitive.ObjectID) ([]models.Folder, error) {
	grants, err := s.stores.Shares.ListSharesForUser(ctx, subjectID, models.ResourceFolder)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var folders []models.Folder
	for i := range grants {
		if !grants[i].Effective(now) {
			continue
		}
		folder, err := s.stores.Folders.GetFolder(ctx, grants[i].ResourceID)
		if err != nil {
			continue // grant outlived the folder
		}
		folders = append(folders, *folder)
	}
	return folders, nil
}

// UpdateFolder renames or re-describes a folder. Requires WRITE.
func (s *FolderService) UpdateFolder(ctx context.Context, subjectID, folderID primitive.ObjectID, req *models.FolderUpdateRequest, info models.RequestInfo) (*models.Folder, error) {
	if err := s.access.Authorize(ctx, subjectID, models.Resource{Kind: models.ResourceFolder, ID: folderID}, models.OperationWrite); err != nil {
		return nil, err
	}

	folder, err := s.stores.Folders.GetFolder(ctx, folderID)
	if err != nil {
		return nil, err
	}

	if req.Name != "" && req.Name != folder.Name {
		if _, err := s.stores.Folders.FindFolderByName(ctx, folder.OwnerID, folder.ParentID, req.Name); err == nil {
			return nil, errtypes.AlreadyExists("folder " + req.Name + " already exists here")
		}
		folder.Name = req.Name
	}
	folder.Description = req.Description
	folder.UpdatedAt = s.now()

	if err := s.stores.Folders.UpdateFolder(ctx, folder); err != nil {
		return nil, err
	}
	s.activity.Record(ctx, models.ActivityModify, &subjectID, nil, &folderID, info, nil)
	return folder, nil
}

// MoveFolder re-parents a folder. The destination must not be the folder
// itself or any of its descendants; the walk-to-root check runs on every
// move, bounded by a visited set.
func (s *FolderService) MoveFolder(ctx context.Context, subjectID, folderID primitive.ObjectID, newParentHex string, info models.RequestInfo) (*models.Folder, error) {
	if err := s.access.Authorize(ctx, subjectID, models.Resource{Kind: models.ResourceFolder, ID: folderID}, models.OperationWrite); err != nil {
		return nil, err
	}

	folder, err := s.stores.Folders.GetFolder(ctx, folderID)
	if err != nil {
		return nil, err
	}

	newParentID, err := optionalID(newParentHex)
	if err != nil {
		return nil, err
	}

	if newParentID != nil {
		if *newParentID == folderID {
			return nil, errtypes.InvalidArgument("folder cannot be its own parent")
		}
		parent, err := s.stores.Folders.GetFolder(ctx, *newParentID)
		if err != nil {
			return nil, err
		}
		if err := s.checkAcyclic(ctx, folderID, parent); err != nil {
			return nil, err
		}
	}

	if _, err := s.stores.Folders.FindFolderByName(ctx, folder.OwnerID, newParentID, folder.Name); err == nil {
		return nil, errtypes.AlreadyExists("folder " + folder.Name + " already exists in the destination")
	}

	folder.ParentID = newParentID
	folder.UpdatedAt = s.now()
	if err := s.stores.Folders.UpdateFolder(ctx, folder); err != nil {
		return nil, err
	}
	s.activity.Record(ctx, models.ActivityModify, &subjectID, nil, &folderID, info, map[string]interface{}{
		"moved_to": newParentHex,
	})
	return folder, nil
}

// checkAcyclic walks from the candidate parent to the root and fails if
// the moved folder appears on the chain. The visited set bounds the walk
// even if the stored chain is already corrupt.
func (s *FolderService) checkAcyclic(ctx context.Context, movedID primitive.ObjectID, parent *models.Folder) error {
	visited := map[primitive.ObjectID]bool{}
	current := parent
	for current != nil {
		if current.ID == movedID {
			return errtypes.InvalidArgument("cannot move a folder into its own subtree")
		}
		if visited[current.ID] {
			return errtypes.InvalidArgument("folder parent chain contains a cycle")
		}
		visited[current.ID] = true

		if current.ParentID == nil {
			return nil
		}
		next, err := s.stores.Folders.GetFolder(ctx, *current.ParentID)
		if err != nil {
			var notFound errtypes.IsNotFound
			if errors.As(err, &notFound) {
				return nil
			}
			return err
		}
		current = next
	}
	return nil
}

// DeleteFolder removes an empty folder. Activity entries that referenced
// it keep their rows; only the weak folder pointer is cleared.
func (s *FolderService) DeleteFolder(ctx context.Context, subjectID, folderID primitive.ObjectID, info models.RequestInfo) error {
	if err := s.access.Authorize(ctx, subjectID, models.Resource{Kind: models.ResourceFolder, ID: folderID}, models.OperationWrite); err != nil {
		return err
	}

	folder, err := s.stores.Folders.GetFolder(ctx, folderID)
	if err != nil {
		return err
	}

	children, err := s.stores.Folders.ListFoldersByParent(ctx, folder.OwnerID, &folderID)
	if err != nil {
		return err
	}
	files, err := s.stores.Files.ListFilesByFolder(ctx, folderID)
	if err != nil {
		return err
	}
	if len(children) > 0 || len(files) > 0 {
		return errtypes.InvalidArgument("folder is not empty")
	}

	if err := s.stores.Folders.DeleteFolder(ctx, folderID); err != nil {
		return err
	}
	s.activity.NullifyFolderRefs(ctx, folderID)
	return nil
}

func (s *FolderService) resolveParent(ctx context.Context, ownerID primitive.ObjectID, parentHex string) (*primitive.ObjectID, error) {
	parentID, err := optionalID(parentHex)
	if err != nil || parentID == nil {
		return parentID, err
	}

	parent, err := s.stores.Folders.GetFolder(ctx, *parentID)
	if err != nil {
		return nil, err
	}
	if parent.OwnerID != ownerID {
		if err := s.access.Authorize(ctx, ownerID, models.Resource{Kind: models.ResourceFolder, ID: parent.ID}, models.OperationWrite); err != nil {
			return nil, err
		}
	}
	return parentID, nil
}

func optionalID(hex string) (*primitive.ObjectID, error) {
	if hex == "" || hex == "root" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return nil, errtypes.InvalidArgument("invalid id " + hex)
	}
	return &id, nil
}
