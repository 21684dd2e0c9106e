package services

import (
	"context"
	"time"

	"cloudbox/errtypes"
	"cloudbox/models"
	"cloudbox/store"
	"cloudbox/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LinkService manages public share links: unauthenticated, UUID-addressed
// capabilities on a single file or folder, optionally bounded by password,
// expiry and a download quota. Link validity is derived state recomputed on
// every access.
type LinkService struct {
	stores   *store.Stores
	access   *AccessService
	activity *ActivityService
	now      func() time.Time
}

func NewLinkService(stores *store.Stores, access *AccessService, activity *ActivityService) *LinkService {
	return &LinkService{
		stores:   stores,
		access:   access,
		activity: activity,
		now:      time.Now,
	}
}

// CreateLink issues a new share link on the resource. The actor needs
// SHARE authorization; a password, when given, is stored as a bcrypt hash
// and never in plaintext.
func (s *LinkService) CreateLink(ctx context.Context, actorID primitive.ObjectID, resource models.Resource, req *models.ShareLinkCreateRequest, info models.RequestInfo) (*models.ShareLink, error) {
	if req.ExpiresAt != nil && !req.ExpiresAt.After(s.now()) {
		return nil, errtypes.InvalidArgument("expiration date must be in the future")
	}
	if req.MaxDownloads < 0 {
		return nil, errtypes.InvalidArgument("maximum downloads must be a positive number")
	}

	if err := s.access.Authorize(ctx, actorID, resource, models.OperationShare); err != nil {
		return nil, err
	}

	link := &models.ShareLink{
		UUID:         uuid.NewString(),
		CreatedBy:    actorID,
		ExpiresAt:    req.ExpiresAt,
		MaxDownloads: req.MaxDownloads,
		IsActive:     true,
		CreatedAt:    s.now(),
	}
	id := resource.ID
	if resource.Kind == models.ResourceFile {
		link.FileID = &id
	} else {
		link.FolderID = &id
	}

	if req.Password != "" {
		hash, err := utils.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		link.PasswordHash = hash
	}

	if err := s.stores.Links.InsertLink(ctx, link); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, models.ActivityShare, &actorID, link.FileID, link.FolderID, info, map[string]interface{}{
		"share_link_uuid": link.UUID,
	})
	return link, nil
}

// ResolveLink validates a link against current state and returns it. Deny
// reasons are distinct error kinds: NotFound, Expired, Inactive,
// QuotaExceeded, WrongPassword. The transport layer may collapse them; the
// core keeps them apart for logging.
func (s *LinkService) ResolveLink(ctx context.Context, linkUUID, suppliedPassword string) (*models.ShareLink, error) {
	link, err := s.stores.Links.GetLinkByUUID(ctx, linkUUID)
	if err != nil {
		return nil, err
	}
	if !link.IsActive {
		return nil, errtypes.Inactive("share link " + linkUUID)
	}
	if link.ExpiresAt != nil && !link.ExpiresAt.After(s.now()) {
		return nil, errtypes.Expired("share link " + linkUUID)
	}
	if link.MaxDownloads > 0 && link.DownloadCount >= link.MaxDownloads {
		return nil, errtypes.QuotaExceeded("share link " + linkUUID)
	}
	if link.HasPassword() {
		if suppliedPassword == "" || !utils.CheckPasswordHash(suppliedPassword, link.PasswordHash) {
			return nil, errtypes.WrongPassword("share link " + linkUUID)
		}
	}
	return link, nil
}

// DescribeLink builds the anonymous preview of a resolved link.
func (s *LinkService) DescribeLink(ctx context.Context, link *models.ShareLink) (*models.ShareLinkPreview, error) {
	preview := &models.ShareLinkPreview{
		UUID:        link.UUID,
		HasPassword: link.HasPassword(),
		ExpiresAt:   link.ExpiresAt,
	}

	if link.FileID != nil {
		file, err := s.stores.Files.GetFile(ctx, *link.FileID)
		if err != nil {
			return nil, err
		}
		preview.ResourceKind = models.ResourceFile
		preview.Name = file.Name
		preview.Size = file.Size
		preview.MimeType = file.MimeType
		return preview, nil
	}

	folder, err := s.stores.Folders.GetFolder(ctx, *link.FolderID)
	if err != nil {
		return nil, err
	}
	preview.ResourceKind = models.ResourceFolder
	preview.Name = folder.Name
	return preview, nil
}

// ConsumeDownload resolves the link, then claims one download slot. The
// claim is a single atomic read-modify-write in the store, so concurrent
// consumers of a link with one slot left produce exactly one success.
// Downloads through a link are recorded without a user reference.
func (s *LinkService) ConsumeDownload(ctx context.Context, linkUUID, suppliedPassword string, info models.RequestInfo) (*models.ShareLink, error) {
	if _, err := s.ResolveLink(ctx, linkUUID, suppliedPassword); err != nil {
		return nil, err
	}

	link, err := s.stores.Links.ConsumeDownload(ctx, linkUUID)
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, models.ActivityDownload, nil, link.FileID, link.FolderID, info, map[string]interface{}{
		"share_link_uuid": link.UUID,
		"download_count":  link.DownloadCount,
	})
	return link, nil
}

// RevokeLink deactivates a link. Allowed for the link creator, or for
// anyone holding SHARE on the underlying resource.
func (s *LinkService) RevokeLink(ctx context.Context, actorID primitive.ObjectID, linkUUID string, info models.RequestInfo) error {
	link, err := s.stores.Links.GetLinkByUUID(ctx, linkUUID)
	if err != nil {
		return err
	}

	if link.CreatedBy != actorID {
		if err := s.access.Authorize(ctx, actorID, link.Resource(), models.OperationShare); err != nil {
			return err
		}
	}
	if !link.IsActive {
		return nil
	}

	link.IsActive = false
	if err := s.stores.Links.UpdateLink(ctx, link); err != nil {
		return err
	}

	s.activity.Record(ctx, models.ActivityUnshare, &actorID, link.FileID, link.FolderID, info, map[string]interface{}{
		"share_link_uuid": link.UUID,
	})
	return nil
}
