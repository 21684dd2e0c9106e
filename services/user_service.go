package services

import (
	"context"
	"time"

	"cloudbox/models"
	"cloudbox/store"
	"cloudbox/utils"
)

// UserService maintains the local mirror of identities issued by the
// external identity provider. The service never authenticates; it trusts
// the verified claims the auth middleware hands it.
type UserService struct {
	stores *store.Stores
	now    func() time.Time
}

func NewUserService(stores *store.Stores) *UserService {
	return &UserService{
		stores: stores,
		now:    time.Now,
	}
}

// EnsureFromClaims upserts the mirror record for a verified identity and
// returns it. Called by the auth middleware on every authenticated
// request.
func (s *UserService) EnsureFromClaims(ctx context.Context, claims *utils.IdentityClaims) (*models.User, error) {
	now := s.now()
	user := &models.User{
		SubjectID:   claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.DisplayName,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.stores.Users.UpsertUser(ctx, user); err != nil {
		return nil, err
	}
	// re-read so the caller sees the stored id for pre-existing mirrors
	return s.stores.Users.GetUserByEmail(ctx, claims.Email)
}

// GetByEmail looks a user up by email.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.stores.Users.GetUserByEmail(ctx, email)
}
