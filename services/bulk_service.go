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

// BulkService applies one sharing operation across many resources and many
// targets. Partial failure is the normal case: every (resource, email)
// pair is attempted independently, each gets exactly one outcome, and a
// failed pair neither aborts nor rolls back its neighbours.
type BulkService struct {
	stores *store.Stores
	shares *ShareService
}

func NewBulkService(stores *store.Stores, shares *ShareService) *BulkService {
	return &BulkService{
		stores: stores,
		shares: shares,
	}
}

// BulkShare grants permission on every listed resource to every listed
// email. Resource ids may name files or folders; the kind is resolved per
// id. The returned slice has one outcome per (resource, email) pair, in
// input order.
func (s *BulkService) BulkShare(ctx context.Context, actorID primitive.ObjectID, resourceIDs, emails []string, permission models.Permission, expiresAt *time.Time, info models.RequestInfo) []models.BulkOutcome {
	outcomes := make([]models.BulkOutcome, 0, len(resourceIDs)*len(emails))

	for _, rawID := range resourceIDs {
		resource, resolveErr := s.resolveResourceID(ctx, rawID)
		for _, email := range emails {
			outcome := models.BulkOutcome{
				ResourceID: rawID,
				Target:     email,
				Status:     models.BulkStatusSuccess,
			}
			err := resolveErr
			if err == nil {
				_, err = s.shares.GrantByEmail(ctx, actorID, *resource, email, permission, expiresAt, info)
			}
			if err != nil {
				outcome.Status = models.BulkStatusError
				outcome.Message = err.Error()
			}
			outcomes = append(outcomes, outcome)
		}
	}
	return outcomes
}

// resolveResourceID maps a raw id onto a file or folder reference, trying
// files first.
func (s *BulkService) resolveResourceID(ctx context.Context, rawID string) (*models.Resource, error) {
	id, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		return nil, errtypes.InvalidArgument("invalid resource id " + rawID)
	}

	var notFound errtypes.IsNotFound
	if _, err := s.stores.Files.GetFile(ctx, id); err == nil {
		return &models.Resource{Kind: models.ResourceFile, ID: id}, nil
	} else if !errors.As(err, &notFound) {
		return nil, err
	}

	if _, err := s.stores.Folders.GetFolder(ctx, id); err == nil {
		return &models.Resource{Kind: models.ResourceFolder, ID: id}, nil
	} else if !errors.As(err, &notFound) {
		return nil, err
	}

	return nil, errtypes.NotFound("resource " + rawID)
}
