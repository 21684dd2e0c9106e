package services

import (
	"context"
	"testing"

	"cloudbox/utils"
)

func TestEnsureFromClaimsUpsertsMirror(t *testing.T) {
	env := newTestEnv(t)

	claims := &utils.IdentityClaims{
		Email:       "person@example.com",
		DisplayName: "Person",
	}
	claims.Subject = "idp-subject-1"

	first, err := env.users.EnsureFromClaims(context.Background(), claims)
	if err != nil {
		t.Fatalf("first ensure: %v", err)
	}
	if first.Email != "person@example.com" || !first.IsActive {
		t.Errorf("unexpected mirror: %+v", first)
	}

	claims.DisplayName = "Renamed Person"
	second, err := env.users.EnsureFromClaims(context.Background(), claims)
	if err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("repeat login created a new mirror: %s vs %s", second.ID.Hex(), first.ID.Hex())
	}
	if second.DisplayName != "Renamed Person" {
		t.Errorf("claims refresh not applied: %s", second.DisplayName)
	}
}
