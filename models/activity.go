package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActivityType enumerates the access-relevant events the log records.
type ActivityType string

const (
	ActivityUpload   ActivityType = "UPLOAD"
	ActivityDownload ActivityType = "DOWNLOAD"
	ActivityShare    ActivityType = "SHARE"
	ActivityUnshare  ActivityType = "UNSHARE"
	ActivityModify   ActivityType = "MODIFY"
	ActivityView     ActivityType = "VIEW"
)

// ActivityLog is one append-only audit entry. All references are weak:
// deleting a file, folder or user clears the pointer here instead of
// destroying the row, so the trail survives its subjects.
type ActivityLog struct {
	ID        primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	UserID    *primitive.ObjectID    `bson:"user_id,omitempty" json:"user_id,omitempty"`
	FileID    *primitive.ObjectID    `bson:"file_id,omitempty" json:"file_id,omitempty"`
	FolderID  *primitive.ObjectID    `bson:"folder_id,omitempty" json:"folder_id,omitempty"`
	Type      ActivityType           `bson:"activity_type" json:"activity_type"`
	IPAddress string                 `bson:"ip_address,omitempty" json:"ip_address,omitempty"`
	UserAgent string                 `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	Details   map[string]interface{} `bson:"details" json:"details"`
	CreatedAt time.Time              `bson:"created_at" json:"created_at"`
}

// RequestInfo carries the per-request client attributes that activity
// entries record. It is threaded explicitly through every mutating call
// rather than read from ambient state.
type RequestInfo struct {
	IPAddress string
	UserAgent string
}
