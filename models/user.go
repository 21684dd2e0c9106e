package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the local mirror of an identity issued by the external identity
// provider. SubjectID is the provider's stable subject; the mirror is
// refreshed from verified token claims on every authenticated request and
// is never a source of authentication itself.
type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SubjectID   string             `bson:"subject_id" json:"subject_id"`
	Email       string             `bson:"email" json:"email" validate:"required,email"`
	DisplayName string             `bson:"display_name" json:"display_name"`
	IsActive    bool               `bson:"is_active" json:"is_active"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// UserInfo is the compact user view embedded in share listings.
type UserInfo struct {
	ID          primitive.ObjectID `json:"id"`
	Email       string             `json:"email"`
	DisplayName string             `json:"display_name"`
}

// Info returns the compact view of the user.
func (u *User) Info() UserInfo {
	return UserInfo{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
	}
}
