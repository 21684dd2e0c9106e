package services

import (
	"context"
	"testing"

	"cloudbox/models"
)

func TestBulkShareAllSucceed(t *testing.T) {
	env := newTestEnv(t)
	owner := env.addUser(t, "owner@example.com")
	alice := env.addUser(t, "alice@example.com")
	bob := env.addUser(t, "bob@example.com")
	file := env.addFile(t, owner.ID, nil, "doc.txt")
	folder := env.addFolder(t, owner.ID, nil, "docs")

	outcomes := env.bulk.BulkShare(context.Background(), owner.ID,
		[]string{file.ID.Hex(), folder.ID.Hex()},
		[]string{alice.Email, bob.Email},
		models.PermissionView, nil, noInfo())

	if len(outcomes) != 4 {
		t.Fatalf("expected 4 outcomes, got %d", len(outcomes))
	}
	for _, o := range outcomes {
		if o.Status != models.BulkStatusSuccess {
			t.Errorf("pair (%s, %s) failed: %s", o.ResourceID, o.Target, o.Message)
		}
	}

	// resolved kinds stick: alice got the folder grant, not a file one
	if err := env.access.Authorize(context.Background(), alice.ID, folderRes(folder.ID), models.OperationRead); err != nil {
		t.Errorf("alice should read shared folder: %v", err)
	}
	if err := env.access.Authorize(context.Background(), bob.ID, fileRes(file.ID), models.OperationRead); err != nil {
		t.Errorf("bob should read shared file: %v", err)
	}
}

func TestBulkSharePartialFailure(t *testing.T) {
	env := newTestEnv(t)
	owner := env.addUser(t, "owner@example.com")
	alice := env.addUser(t, "alice@example.com")
	file := env.addFile(t, owner.ID, nil, "doc.txt")

	outcomes := env.bulk.BulkShare(context.Background(), owner.ID,
		[]string{file.ID.Hex()},
		[]string{alice.Email, "nobody@example.com", owner.Email},
		models.PermissionView, nil, noInfo())

	if len(outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(outcomes))
	}
	if outcomes[0].Status != models.BulkStatusSuccess {
		t.Errorf("alice pair should succeed: %s", outcomes[0].Message)
	}
	if outcomes[1].Status != models.BulkStatusError {
		t.Error("unknown email pair should fail")
	}
	if outcomes[2].Status != models.BulkStatusError {
		t.Error("share-to-owner pair should fail")
	}

	// the failing pairs must not undo alice's grant
	if err := env.access.Authorize(context.Background(), alice.ID, fileRes(file.ID), models.OperationRead); err != nil {
		t.Errorf("alice's grant should survive neighbouring failures: %v", err)
	}
}

func TestBulkShareOutcomeOrder(t *testing.T) {
	env := newTestEnv(t)
	owner := env.addUser(t, "owner@example.com")
	alice := env.addUser(t, "alice@example.com")
	fileA := env.addFile(t, owner.ID, nil, "a.txt")
	fileB := env.addFile(t, owner.ID, nil, "b.txt")

	outcomes := env.bulk.BulkShare(context.Background(), owner.ID,
		[]string{fileA.ID.Hex(), "not-an-id", fileB.ID.Hex()},
		[]string{alice.Email},
		models.PermissionEdit, nil, noInfo())

	want := []string{fileA.ID.Hex(), "not-an-id", fileB.ID.Hex()}
	if len(outcomes) != len(want) {
		t.Fatalf("expected %d outcomes, got %d", len(want), len(outcomes))
	}
	for i, o := range outcomes {
		if o.ResourceID != want[i] {
			t.Errorf("outcome %d out of order: got %s want %s", i, o.ResourceID, want[i])
		}
	}
	if outcomes[1].Status != models.BulkStatusError {
		t.Error("malformed id pair should fail")
	}
}
