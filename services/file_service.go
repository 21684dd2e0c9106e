package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"cloudbox/errtypes"
	"cloudbox/models"
	"cloudbox/storage"
	"cloudbox/store"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// presignExpiry is how long generated download URLs stay usable.
const presignExpiry = 1 * time.Hour

// FileService manages file metadata and moves bytes through the blob
// store. Authorization goes through the access engine for every
// non-owner-trivial path; successful operations land in the activity log.
type FileService struct {
	stores   *store.Stores
	access   *AccessService
	activity *ActivityService
	blobs    storage.Provider
	now      func() time.Time
}

func NewFileService(stores *store.Stores, access *AccessService, activity *ActivityService, blobs storage.Provider) *FileService {
	return &FileService{
		stores:   stores,
		access:   access,
		activity: activity,
		blobs:    blobs,
		now:      time.Now,
	}
}

// Upload stores the blob and registers the file's metadata. The
// (owner, folder, name) triple must be free; uploading into another
// user's folder requires WRITE on it.
func (s *FileService) Upload(ctx context.Context, ownerID primitive.ObjectID, req *models.FileCreateRequest, content io.Reader, info models.RequestInfo) (*models.File, error) {
	if req.Size < 0 {
		return nil, errtypes.InvalidArgument("file size cannot be negative")
	}

	folderID, err := optionalID(req.FolderID)
	if err != nil {
		return nil, err
	}
	if folderID != nil {
		folder, err := s.stores.Folders.GetFolder(ctx, *folderID)
		if err != nil {
			return nil, err
		}
		if folder.OwnerID != ownerID {
			if err := s.access.Authorize(ctx, ownerID, models.Resource{Kind: models.ResourceFolder, ID: folder.ID}, models.OperationWrite); err != nil {
				return nil, err
			}
		}
	}

	if _, err := s.stores.Files.FindFileByName(ctx, ownerID, folderID, req.Name); err == nil {
		return nil, errtypes.AlreadyExists("file " + req.Name + " already exists here")
	} else {
		var notFound errtypes.IsNotFound
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	storageKey := fmt.Sprintf("%s/%s", ownerID.Hex(), uuid.NewString())
	if err := s.blobs.UploadStream(storageKey, content, req.Size); err != nil {
		return nil, fmt.Errorf("blob upload failed: %w", err)
	}

	now := s.now()
	file := &models.File{
		OwnerID:    ownerID,
		FolderID:   folderID,
		Name:       req.Name,
		Size:       req.Size,
		MimeType:   req.MimeType,
		StorageKey: storageKey,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.stores.Files.InsertFile(ctx, file); err != nil {
		// metadata failed, do not leave the blob orphaned
		_ = s.blobs.Delete(storageKey)
		return nil, err
	}

	s.activity.Record(ctx, models.ActivityUpload, &ownerID, &file.ID, folderID, info, map[string]interface{}{
		"name": file.Name,
		"size": file.Size,
	})
	return file, nil
}

// GetFile returns file metadata for a subject with READ; the view is
// recorded.
func (s *FileService) GetFile(ctx context.Context, subjectID, fileID primitive.ObjectID, info models.RequestInfo) (*models.File, error) {
	if err := s.access.Authorize(ctx, subjectID, models.Resource{Kind: models.ResourceFile, ID: fileID}, models.OperationRead); err != nil {
		return nil, err
	}
	file, err := s.stores.Files.GetFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	s.activity.Record(ctx, models.ActivityView, &subjectID, &fileID, nil, info, nil)
	return file, nil
}

// ListFiles returns the subject's own files plus those shared with them
// through an effective direct file grant.
func (s *FileService) ListFiles(ctx context.Context, subjectID primitive.ObjectID) ([]models.File, error) {
	files, err := s.stores.Files.ListFilesByOwner(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	grants, err := s.stores.Shares.ListSharesForUser(ctx, subjectID, models.ResourceFile)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range grants {
		if !grants[i].Effective(now) {
			continue
		}
		file, err := s.stores.Files.GetFile(ctx, grants[i].ResourceID)
		if err != nil {
			continue
		}
		files = append(files, *file)
	}
	return files, nil
}

// Download authorizes READ and hands the caller either a presigned URL or
// a byte stream, depending on what the blob backend supports.
func (s *FileService) Download(ctx context.Context, subjectID, fileID primitive.ObjectID, info models.RequestInfo) (string, io.ReadCloser, *models.File, error) {
	if err := s.access.Authorize(ctx, subjectID, models.Resource{Kind: models.ResourceFile, ID: fileID}, models.OperationRead); err != nil {
		return "", nil, nil, err
	}

	file, err := s.stores.Files.GetFile(ctx, fileID)
	if err != nil {
		return "", nil, nil, err
	}

	url, stream, err := s.openBlob(file)
	if err != nil {
		return "", nil, nil, err
	}

	s.activity.Record(ctx, models.ActivityDownload, &subjectID, &fileID, nil, info, map[string]interface{}{
		"name": file.Name,
	})
	return url, stream, file, nil
}

// OpenByLink hands out the bytes for a link-resolved file without subject
// authorization; the link itself was the capability and the link service
// already recorded the download.
func (s *FileService) OpenByLink(ctx context.Context, fileID primitive.ObjectID) (string, io.ReadCloser, *models.File, error) {
	file, err := s.stores.Files.GetFile(ctx, fileID)
	if err != nil {
		return "", nil, nil, err
	}
	url, stream, err := s.openBlob(file)
	if err != nil {
		return "", nil, nil, err
	}
	return url, stream, file, nil
}

func (s *FileService) openBlob(file *models.File) (string, io.ReadCloser, error) {
	url, err := s.blobs.GetPresignedURL(file.StorageKey, presignExpiry)
	if err == nil && url != "" {
		return url, nil, nil
	}
	if err != nil && !errors.Is(err, storage.ErrPresignNotSupported) {
		return "", nil, fmt.Errorf("failed to generate download URL: %w", err)
	}

	stream, err := s.blobs.DownloadStream(file.StorageKey)
	if err != nil {
		return "", nil, fmt.Errorf("blob download failed: %w", err)
	}
	return "", stream, nil
}

// UpdateFile renames or re-files a file. Requires WRITE; records MODIFY.
func (s *FileService) UpdateFile(ctx context.Context, subjectID, fileID primitive.ObjectID, req *models.FileUpdateRequest, info models.RequestInfo) (*models.File, error) {
	if err := s.access.Authorize(ctx, subjectID, models.Resource{Kind: models.ResourceFile, ID: fileID}, models.OperationWrite); err != nil {
		return nil, err
	}

	file, err := s.stores.Files.GetFile(ctx, fileID)
	if err != nil {
		return nil, err
	}

	newFolderID := file.FolderID
	if req.FolderID != "" {
		newFolderID, err = optionalID(req.FolderID)
		if err != nil {
			return nil, err
		}
		if newFolderID != nil {
			if _, err := s.stores.Folders.GetFolder(ctx, *newFolderID); err != nil {
				return nil, err
			}
		}
	}

	newName := file.Name
	if req.Name != "" {
		newName = req.Name
	}

	if newName != file.Name || !sameOptionalID(newFolderID, file.FolderID) {
		if existing, err := s.stores.Files.FindFileByName(ctx, file.OwnerID, newFolderID, newName); err == nil && existing.ID != file.ID {
			return nil, errtypes.AlreadyExists("file " + newName + " already exists here")
		}
	}

	file.Name = newName
	file.FolderID = newFolderID
	file.UpdatedAt = s.now()
	if err := s.stores.Files.UpdateFile(ctx, file); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, models.ActivityModify, &subjectID, &fileID, nil, info, nil)
	return file, nil
}

// DeleteFile removes metadata and, best-effort, the blob. Activity rows
// keep their entries with the file pointer cleared.
func (s *FileService) DeleteFile(ctx context.Context, subjectID, fileID primitive.ObjectID, info models.RequestInfo) error {
	if err := s.access.Authorize(ctx, subjectID, models.Resource{Kind: models.ResourceFile, ID: fileID}, models.OperationWrite); err != nil {
		return err
	}

	file, err := s.stores.Files.GetFile(ctx, fileID)
	if err != nil {
		return err
	}

	if err := s.stores.Files.DeleteFile(ctx, fileID); err != nil {
		return err
	}
	_ = s.blobs.Delete(file.StorageKey)
	s.activity.NullifyFileRefs(ctx, fileID)
	return nil
}

func sameOptionalID(a, b *primitive.ObjectID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
