package services

import (
	"context"

	"cloudbox/models"
	"cloudbox/store"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActivityService appends entries to the audit trail. Recording is
// fire-and-forget relative to the primary operation: a failed write goes
// to the log, never back to the caller, because auditing must not fail a
// user-facing request that already succeeded.
type ActivityService struct {
	stores *store.Stores
	logger *logrus.Logger
}

func NewActivityService(stores *store.Stores, logger *logrus.Logger) *ActivityService {
	if logger == nil {
		logger = logrus.New()
	}
	return &ActivityService{
		stores: stores,
		logger: logger,
	}
}

// Record writes one activity entry. userID, fileID and folderID are weak
// references and may be nil (a public link download has no user).
func (s *ActivityService) Record(ctx context.Context, activityType models.ActivityType, userID, fileID, folderID *primitive.ObjectID, info models.RequestInfo, details map[string]interface{}) {
	if details == nil {
		details = map[string]interface{}{}
	}
	entry := &models.ActivityLog{
		UserID:    userID,
		FileID:    fileID,
		FolderID:  folderID,
		Type:      activityType,
		IPAddress: info.IPAddress,
		UserAgent: info.UserAgent,
		Details:   details,
	}
	if err := s.stores.Activity.InsertActivity(ctx, entry); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"activity_type": activityType,
			"ip":            info.IPAddress,
		}).Error("failed to write activity log entry")
	}
}

// ListForUser returns the user's most recent activity, newest first.
func (s *ActivityService) ListForUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]models.ActivityLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.stores.Activity.ListActivityForUser(ctx, userID, limit)
}

// NullifyFileRefs clears the weak file references on existing entries.
// Called when a file is deleted so the trail outlives it.
func (s *ActivityService) NullifyFileRefs(ctx context.Context, fileID primitive.ObjectID) {
	if err := s.stores.Activity.ClearFileRefs(ctx, fileID); err != nil {
		s.logger.WithError(err).WithField("file_id", fileID.Hex()).Error("failed to clear activity file refs")
	}
}

// NullifyFolderRefs clears the weak folder references on existing entries.
func (s *ActivityService) NullifyFolderRefs(ctx context.Context, folderID primitive.ObjectID) {
	if err := s.stores.Activity.ClearFolderRefs(ctx, folderID); err != nil {
		s.logger.WithError(err).WithField("folder_id", folderID.Hex()).Error("failed to clear activity folder refs")
	}
}
