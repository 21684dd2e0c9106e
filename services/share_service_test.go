package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloudbox/errtypes"
	"cloudbox/models"
)

func TestGrantAndAuthorize(t *testing.T) {
	env := newTestEnv(t)
	owner := env.addUser(t, "owner@example.com")
	grantee := env.addUser(t, "grantee@example.com")
	file := env.addFile(t, owner.ID, nil, "doc.txt")

	share, err := env.shares.Grant(context.Background(), owner.ID, fileRes(file.ID), grantee.ID, models.PermissionEdit, nil, noInfo())
	if err != nil {
		t.Fatalf("grant: %v", err)
	}
	if share.Permission != models.PermissionEdit || !share.IsActive {
		t.Errorf("unexpected share state: %+v", share)
	}

	if err := env.access.Authorize(context.Background(), grantee.ID, fileRes(file.ID), models.OperationWrite); err != nil {
		t.Errorf("grantee should have WRITE after grant: %v", err)
	}
}

func TestGrantValidation(t *testing.T) {
	env := newTestEnv(t)
	owner := env.addUser(t, "owner@example.com")
	grantee := env.addUser(t, "grantee@example.com")
	file := env.addFile(t, owner.ID, nil, "doc.txt")

	tests := []struct {
		name string
		run  func() error
	}{
		{
			"invalid permission",
			func() error {
				_, err := env.shares.Grant(context.Background(), owner.ID, fileRes(file.ID), grantee.ID, "OWNER", nil, noInfo())
				return err
			},
		},
		{
			"past expiry",
			func() error {
				_, err := env.shares.Grant(context.Background(), owner.ID, fileRes(file.ID), grantee.ID, models.PermissionView, timePtr(env.clock.Add(-time.Hour)), noInfo())
				return err
			},
		},
		{
			"self share",
			func() error {
				_, err := env.shares.Grant(context.Background(), owner.ID, fileRes(file.ID), owner.ID, models.PermissionView, nil, noInfo())
				return err
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.run()
			var invalid errtypes.IsInvalidArgument
			if !errors.As(err, &invalid) {
				t.Fatalf("expected invalid argument, got %v", err)
			}
		})
	}
}

func TestGrantToResourceOwnerRejected(t *testing.T) {
	env := newTestEnv(t)
	owner := env.addUser(t, "owner@example.com")
	admin := env.addUser(t, "admin@example.com")
	file := env.addFile(t, owner.ID, nil, "doc.txt")
	env.grant(t, fileRes(file.ID), admin.ID, owner.ID, models.PermissionAdmin, nil)

	_, err := env.shares.Grant(context.Background(), admin.ID, fileRes(file.ID), owner.ID, models.PermissionView, nil, noInfo())
	var invalid errtypes.IsInvalidArgument
	if !errors.As(err, &invalid) {
		t.Fatalf("sharing back to the owner should be rejected, got %v", err)
	}
}

func TestGrantRequiresSharePermission(t *testing.T) {
	env := newTestEnv(t)
	owner := env.addUser(t, "owner@example.com")
	editor := env.addUser(t, "editor@example.com")
	third := env.addUser(t, "third@example.com")
	file := env.addFile(t, owner.ID, nil, "doc.txt")
	env.grant(t, fileRes(file.ID), editor.ID, owner.ID, models.PermissionEdit, nil)

	_, err := env.shares.Grant(context.Background(), editor.ID, fileRes(file.ID), third.ID, models.PermissionView, nil, noInfo())
	var denied errtypes.IsPermissionDenied
	if !errors.As(err, &denied) {
		t.Fatalf("EDIT grantee must not grant, got %v", err)
	}
}

func TestRegrantUpdatesInPlace(t *testing.T) {
	env := newTestEnv(t)
	owner := env.addUser(t, "owner@example.com")
	grantee := env.addUser(t, "grantee@example.com")
	file := env.addFile(t, owner.ID, nil, "doc.txt")

	first, err := env.shares.Grant(context.Background(), owner.ID, fileRes(file.ID), grantee.ID, models.PermissionView, nil, noInfo())
	if err != nil {
		t.Fatalf("first grant: %v", err)
	}
	second, err := env.shares.Grant(context.Background(), owner.ID, fileRes(file.ID), grantee.ID, models.PermissionAdmin, timePtr(env.clock.Add(time.Hour)), noInfo())
	if err != nil {
		t.Fatalf("second grant: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("re-grant created a new row: %s vs %s", second.ID.Hex(), first.ID.Hex())
	}

	stored, err := env.stores.Shares.GetShare(context.Background(), fileRes(file.ID), grantee.ID)
	if err != nil {
		t.Fatalf("get share: %v", err)
	}
	if stored.Permission != models.PermissionAdmin {
		t.Errorf("permission not updated, got %s", stored.Permission)
	}
	if stored.ExpiresAt == nil {
		t.Error("expiry not updated")
	}

	all, err := env.stores.Shares.ListSharesForResource(context.Background(), fileRes(file.ID))
	if err != nil {
		t.Fatalf("list shares: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected one share row after re-grant, got %d", len(all))
	}
}

func TestRegrantReactivatesRevokedShare(t *testing.T) {
	env := newTestEnv(t)
	owner := env.addUser(t, "owner@example.com")
	grantee := env.addUser(t, "grantee@example.com")
	file := env.addFile(t, owner.ID, nil, "doc.txt")

	if _, err := env.shares.Grant(context.Background(), owner.ID, fileRes(file.ID), grantee.ID, models.PermissionView, nil, noInfo()); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if err := env.shares.Revoke(context.Background(), owner.ID, fileRes(file.ID), grantee.ID, noInfo()); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if err := env.access.Authorize(context.Background(), grantee.ID, fileRes(file.ID), models.OperationRead); err == nil {
		t.Fatal("revoked grantee should be denied")
	}

	if _, err := env.shares.Grant(context.Background(), owner.ID, fileRes(file.ID), grantee.ID, models.PermissionView, nil, noInfo()); err != nil {
		t.Fatalf("re-grant: %v", err)
	}
	if err := env.access.Authorize(context.Background(), grantee.ID, fileRes(file.ID), models.OperationRead); err != nil {
		t.Errorf("re-granted user should have access: %v", err)
	}
}

func TestRevokeIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	owner := env.addUser(t, "owner@example.com")
	grantee := env.addUser(t, "grantee@example.com")
	file := env.addFile(t, owner.ID, nil, "doc.txt")
	env.grant(t, fileRes(file.ID), grantee.ID, owner.ID, models.PermissionView, nil)

	if err := env.shares.Revoke(context.Background(), owner.ID, fileRes(file.ID), grantee.ID, noInfo()); err != nil {
		t.Fatalf("first revoke: %v", err)
	}
	if err := env.shares.Revoke(context.Background(), owner.ID, fileRes(file.ID), grantee.ID, noInfo()); err != nil {
		t.Fatalf("second revoke should be a no-op: %v", err)
	}
}

func TestRevokeMissingShareIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	owner := env.addUser(t, "owner@example.com")
	stranger := env.addUser(t, "stranger@example.com")
	file := env.addFile(t, owner.ID, nil, "doc.txt")

	err := env.shares.Revoke(context.Background(), owner.ID, fileRes(file.ID), stranger.ID, noInfo())
	var notFound errtypes.IsNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGrantByEmailUnknownUser(t *testing.T) {
	env := newTestEnv(t)
	owner := env.addUser(t, "owner@example.com")
	file := env.addFile(t, owner.ID, nil, "doc.txt")

	_, err := env.shares.GrantByEmail(context.Background(), owner.ID, fileRes(file.ID), "nobody@example.com", models.PermissionView, nil, noInfo())
	var notFound errtypes.IsNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected not found for unknown email, got %v", err)
	}
}

func TestListForResourceRequiresShare(t *testing.T) {
	env := newTestEnv(t)
	owner := env.addUser(t, "owner@example.com")
	viewer := env.addUser(t, "viewer@example.com")
	file := env.addFile(t, owner.ID, nil, "doc.txt")
	env.grant(t, fileRes(file.ID), viewer.ID, owner.ID, models.PermissionView, nil)

	if _, err := env.shares.ListForResource(context.Background(), owner.ID, fileRes(file.ID)); err != nil {
		t.Errorf("owner should list shares: %v", err)
	}

	_, err := env.shares.ListForResource(context.Background(), viewer.ID, fileRes(file.ID))
	var denied errtypes.IsPermissionDenied
	if !errors.As(err, &denied) {
		t.Fatalf("VIEW grantee must not list shares, got %v", err)
	}
}

func TestShareActivityRecorded(t *testing.T) {
	env := newTestEnv(t)
	owner := env.addUser(t, "owner@example.com")
	grantee := env.addUser(t, "grantee@example.com")
	file := env.addFile(t, owner.ID, nil, "doc.txt")

	if _, err := env.shares.Grant(context.Background(), owner.ID, fileRes(file.ID), grantee.ID, models.PermissionView, nil, noInfo()); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if err := env.shares.Revoke(context.Background(), owner.ID, fileRes(file.ID), grantee.ID, noInfo()); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	entries, err := env.activity.ListForUser(context.Background(), owner.ID, 10)
	if err != nil {
		t.Fatalf("list activity: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 activity entries, got %d", len(entries))
	}
	// newest first
	if entries[0].Type != models.ActivityUnshare || entries[1].Type != models.ActivityShare {
		t.Errorf("unexpected activity order: %s, %s", entries[0].Type, entries[1].Type)
	}
}
