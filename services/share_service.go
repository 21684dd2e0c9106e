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

// ShareService manages direct grants: explicit (resource, user, permission,
// expiry) records. Granting requires SHARE authorization on the resource;
// revocation flips the grant inactive and keeps the row for the audit
// trail.
type ShareService struct {
	stores   *store.Stores
	access   *AccessService
	activity *ActivityService
	now      func() time.Time
}

func NewShareService(stores *store.Stores, access *AccessService, activity *ActivityService) *ShareService {
	return &ShareService{
		stores:   stores,
		access:   access,
		activity: activity,
		now:      time.Now,
	}
}

// Grant creates or updates the grant for (resource, targetUser). A second
// grant for the same pair updates permission and expiry in place; the
// (resource, user) uniqueness is load-bearing. Self-shares and shares
// targeting the resource owner are rejected outright.
func (s *ShareService) Grant(ctx context.Context, actorID primitive.ObjectID, resource models.Resource, targetUserID primitive.ObjectID, permission models.Permission, expiresAt *time.Time, info models.RequestInfo) (*models.DirectShare, error) {
	if !permission.Valid() {
		return nil, errtypes.InvalidArgument("invalid permission " + string(permission))
	}
	if expiresAt != nil && !expiresAt.After(s.now()) {
		return nil, errtypes.InvalidArgument("expiration date must be in the future")
	}
	if targetUserID == actorID {
		return nil, errtypes.InvalidArgument("cannot share with yourself")
	}

	if err := s.access.Authorize(ctx, actorID, resource, models.OperationShare); err != nil {
		return nil, err
	}

	target, err := s.stores.Users.GetUser(ctx, targetUserID)
	if err != nil {
		return nil, err
	}

	ownerID, err := s.access.ResourceOwner(ctx, resource)
	if err != nil {
		return nil, err
	}
	if target.ID == ownerID {
		return nil, errtypes.InvalidArgument("user already owns this resource")
	}

	now := s.now()
	share := &models.DirectShare{
		ResourceKind: resource.Kind,
		ResourceID:   resource.ID,
		UserID:       target.ID,
		GrantedBy:    actorID,
		Permission:   permission,
		ExpiresAt:    expiresAt,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.stores.Shares.UpsertShare(ctx, share); err != nil {
		return nil, err
	}

	s.recordShareActivity(ctx, models.ActivityShare, actorID, resource, info, map[string]interface{}{
		"target_user_id": target.ID.Hex(),
		"permission":     string(permission),
	})
	return share, nil
}

// GrantByEmail resolves the target by email, then grants. This is the path
// the transport and bulk coordinator use.
func (s *ShareService) GrantByEmail(ctx context.Context, actorID primitive.ObjectID, resource models.Resource, email string, permission models.Permission, expiresAt *time.Time, info models.RequestInfo) (*models.ShareResponse, error) {
	target, err := s.stores.Users.GetUserByEmail(ctx, email)
	if err != nil {
		var notFound errtypes.IsNotFound
		if errors.As(err, &notFound) {
			return nil, errtypes.NotFound("no user with email " + email)
		}
		return nil, err
	}

	share, err := s.Grant(ctx, actorID, resource, target.ID, permission, expiresAt, info)
	if err != nil {
		return nil, err
	}

	userInfo := target.Info()
	return &models.ShareResponse{Share: share, User: &userInfo}, nil
}

// Revoke deactivates the grant for (resource, targetUser). Revoking an
// already-inactive grant is a no-op, not an error; only a missing row is
// NotFound.
func (s *ShareService) Revoke(ctx context.Context, actorID primitive.ObjectID, resource models.Resource, targetUserID primitive.ObjectID, info models.RequestInfo) error {
	if err := s.access.Authorize(ctx, actorID, resource, models.OperationShare); err != nil {
		return err
	}

	share, err := s.stores.Shares.GetShare(ctx, resource, targetUserID)
	if err != nil {
		return err
	}
	if !share.IsActive {
		return nil
	}

	share.IsActive = false
	share.UpdatedAt = s.now()
	if err := s.stores.Shares.UpdateShare(ctx, share); err != nil {
		return err
	}

	s.recordShareActivity(ctx, models.ActivityUnshare, actorID, resource, info, map[string]interface{}{
		"revoked_user_id": targetUserID.Hex(),
	})
	return nil
}

// ListForResource returns all grant rows on a resource, active or not.
// Seeing the grant list is a management operation, so it needs SHARE.
func (s *ShareService) ListForResource(ctx context.Context, actorID primitive.ObjectID, resource models.Resource) ([]models.ShareResponse, error) {
	if err := s.access.Authorize(ctx, actorID, resource, models.OperationShare); err != nil {
		return nil, err
	}

	shares, err := s.stores.Shares.ListSharesForResource(ctx, resource)
	if err != nil {
		return nil, err
	}

	responses := make([]models.ShareResponse, 0, len(shares))
	for i := range shares {
		resp := models.ShareResponse{Share: &shares[i]}
		if user, err := s.stores.Users.GetUser(ctx, shares[i].UserID); err == nil {
			userInfo := user.Info()
			resp.User = &userInfo
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

func (s *ShareService) recordShareActivity(ctx context.Context, activityType models.ActivityType, actorID primitive.ObjectID, resource models.Resource, info models.RequestInfo, details map[string]interface{}) {
	var fileID, folderID *primitive.ObjectID
	id := resource.ID
	if resource.Kind == models.ResourceFile {
		fileID = &id
	} else {
		folderID = &id
	}
	s.activity.Record(ctx, activityType, &actorID, fileID, folderID, info, details)
}
