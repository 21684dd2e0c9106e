package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloudbox/errtypes"
	"cloudbox/models"
	"cloudbox/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AccessService decides whether a subject may perform an operation on a
// resource. It is a pure decision function over current store state: no
// side effects, no caching, and expiry is re-checked on every call rather
// than left to a background sweep.
type AccessService struct {
	stores *store.Stores
	now    func() time.Time
}

func NewAccessService(stores *store.Stores) *AccessService {
	return &AccessService{
		stores: stores,
		now:    time.Now,
	}
}

// Authorize returns nil when the subject may perform op on the resource.
// Resolution order: owner wins unconditionally; otherwise the most specific
// effective grant decides — a direct grant on the resource itself, else the
// nearest folder ancestor holding an effective grant for the subject. The
// walk stops at the first effective grant found: permission does not
// propagate past it, so an ancestor match with an insufficient level is a
// deny, not a cue to keep climbing.
func (s *AccessService) Authorize(ctx context.Context, subjectID primitive.ObjectID, resource models.Resource, op models.Operation) error {
	ownerID, startFolder, err := s.resolveResource(ctx, resource)
	if err != nil {
		return err
	}

	if ownerID == subjectID {
		return nil
	}

	grant, err := s.findEffectiveGrant(ctx, subjectID, resource, startFolder)
	if err != nil {
		return err
	}
	if grant == nil {
		return errtypes.PermissionDenied(fmt.Sprintf("no grant for user %s on %s %s", subjectID.Hex(), resource.Kind, resource.ID.Hex()))
	}
	if !grant.Permission.Covers(op.RequiredPermission()) {
		return errtypes.PermissionDenied(fmt.Sprintf("%s permission does not allow %s", grant.Permission, op))
	}
	return nil
}

// ResourceOwner returns the owning user of a file or folder.
func (s *AccessService) ResourceOwner(ctx context.Context, resource models.Resource) (primitive.ObjectID, error) {
	ownerID, _, err := s.resolveResource(ctx, resource)
	return ownerID, err
}

// resolveResource loads the resource, returning its owner and the folder
// the ancestor walk starts from (the containing folder for a file, the
// parent for a folder).
func (s *AccessService) resolveResource(ctx context.Context, resource models.Resource) (primitive.ObjectID, *primitive.ObjectID, error) {
	switch resource.Kind {
	case models.ResourceFile:
		file, err := s.stores.Files.GetFile(ctx, resource.ID)
		if err != nil {
			return primitive.NilObjectID, nil, err
		}
		return file.OwnerID, file.FolderID, nil
	case models.ResourceFolder:
		folder, err := s.stores.Folders.GetFolder(ctx, resource.ID)
		if err != nil {
			return primitive.NilObjectID, nil, err
		}
		return folder.OwnerID, folder.ParentID, nil
	default:
		return primitive.NilObjectID, nil, errtypes.InvalidArgument("unknown resource kind " + string(resource.Kind))
	}
}

// findEffectiveGrant returns the nearest effective grant for the subject:
// the direct grant on the resource when one is active and unexpired, else
// the first effective folder grant found walking up the ancestor chain. A
// visited set bounds the walk so a corrupted (cyclic) parent chain cannot
// hang the engine.
func (s *AccessService) findEffectiveGrant(ctx context.Context, subjectID primitive.ObjectID, resource models.Resource, startFolder *primitive.ObjectID) (*models.DirectShare, error) {
	now := s.now()

	grant, err := s.lookupGrant(ctx, resource, subjectID, now)
	if err != nil {
		return nil, err
	}
	if grant != nil {
		return grant, nil
	}

	visited := map[primitive.ObjectID]bool{resource.ID: true}
	current := startFolder
	for current != nil {
		if visited[*current] {
			break
		}
		visited[*current] = true

		grant, err = s.lookupGrant(ctx, models.Resource{Kind: models.ResourceFolder, ID: *current}, subjectID, now)
		if err != nil {
			return nil, err
		}
		if grant != nil {
			return grant, nil
		}

		folder, err := s.stores.Folders.GetFolder(ctx, *current)
		if err != nil {
			var notFound errtypes.IsNotFound
			if errors.As(err, &notFound) {
				break // dangling parent reference, treat as root
			}
			return nil, err
		}
		current = folder.ParentID
	}
	return nil, nil
}

// lookupGrant fetches the grant row for (resource, subject) and filters it
// through the decision-time effectiveness check. A lapsed or revoked row
// is treated as absent.
func (s *AccessService) lookupGrant(ctx context.Context, resource models.Resource, subjectID primitive.ObjectID, now time.Time) (*models.DirectShare, error) {
	share, err := s.stores.Shares.GetShare(ctx, resource, subjectID)
	if err != nil {
		var notFound errtypes.IsNotFound
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, err
	}
	if !share.Effective(now) {
		return nil, nil
	}
	return share, nil
}
