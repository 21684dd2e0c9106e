package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cloudbox/errtypes"
	"cloudbox/models"
)

func TestCreateLinkRequiresShare(t *testing.T) {
	env := newTestEnv(t)
	owner := env.addUser(t, "owner@example.com")
	viewer := env.addUser(t, "viewer@example.com")
	file := env.addFile(t, owner.ID, nil, "doc.txt")
	env.grant(t, fileRes(file.ID), viewer.ID, owner.ID, models.PermissionView, nil)

	if _, err := env.links.CreateLink(context.Background(), owner.ID, fileRes(file.ID), &models.ShareLinkCreateRequest{}, noInfo()); err != nil {
		t.Errorf("owner should create links: %v", err)
	}

	_, err := env.links.CreateLink(context.Background(), viewer.ID, fileRes(file.ID), &models.ShareLinkCreateRequest{}, noInfo())
	var denied errtypes.IsPermissionDenied
	if !errors.As(err, &denied) {
		t.Fatalf("VIEW grantee must not create links, got %v", err)
	}
}

func TestCreateLinkValidation(t *testing.T) {
	env := newTestEnv(t)
	owner := env.addUser(t, "owner@example.com")
	file := env.addFile(t, owner.ID, nil, "doc.txt")

	_, err := env.links.CreateLink(context.Background(), owner.ID, fileRes(file.ID), &models.ShareLinkCreateRequest{
		ExpiresAt: timePtr(env.clock.Add(-time.Minute)),
	}, noInfo())
	var invalid errtypes.IsInvalidArgument
	if !errors.As(err, &invalid) {
		t.Fatalf("past expiry should be rejected, got %v", err)
	}

	_, err = env.links.CreateLink(context.Background(), owner.ID, fileRes(file.ID), &models.ShareLinkCreateRequest{
		MaxDownloads: -1,
	}, noInfo())
	if !errors.As(err, &invalid) {
		t.Fatalf("negative quota should be rejected, got %v", err)
	}
}

func TestResolveLinkUnknown(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.links.ResolveLink(context.Background(), "no-such-uuid", "")
	var notFound errtypes.IsNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestResolveLinkPassword(t *testing.T) {
	env := newTestEnv(t)
	owner := env.addUser(t, "owner@example.com")
	file := env.addFile(t, owner.ID, nil, "doc.txt")

	link, err := env.links.CreateLink(context.Background(), owner.ID, fileRes(file.ID), &models.ShareLinkCreateRequest{
		Password: "hunter2",
	}, noInfo())
	if err != nil {
		t.Fatalf("create link: %v", err)
	}
	if link.PasswordHash == "hunter2" || link.PasswordHash == "" {
		t.Fatal("password must be stored as a hash")
	}

	var wrong errtypes.IsWrongPassword
	if _, err := env.links.ResolveLink(context.Background(), link.UUID, ""); !errors.As(err, &wrong) {
		t.Fatalf("missing password should fail, got %v", err)
	}
	if _, err := env.links.ResolveLink(context.Background(), link.UUID, "guess"); !errors.As(err, &wrong) {
		t.Fatalf("wrong password should fail, got %v", err)
	}
	if _, err := env.links.ResolveLink(context.Background(), link.UUID, "hunter2"); err != nil {
		t.Errorf("correct password should resolve: %v", err)
	}
}

func TestResolveLinkExpiry(t *testing.T) {
	env := newTestEnv(t)
	owner := env.addUser(t, "owner@example.com")
	file := env.addFile(t, owner.ID, nil, "doc.txt")

	link, err := env.links.CreateLink(context.Background(), owner.ID, fileRes(file.ID), &models.ShareLinkCreateRequest{
		ExpiresAt: timePtr(env.clock.Add(time.Hour)),
	}, noInfo())
	if err != nil {
		t.Fatalf("create link: %v", err)
	}

	if _, err := env.links.ResolveLink(context.Background(), link.UUID, ""); err != nil {
		t.Fatalf("unexpired link should resolve: %v", err)
	}

	env.advance(2 * time.Hour)

	_, err = env.links.ResolveLink(context.Background(), link.UUID, "")
	var expired errtypes.IsExpired
	if !errors.As(err, &expired) {
		t.Fatalf("expected expired, got %v", err)
	}
}

func TestConsumeDownloadQuota(t *testing.T) {
	env := newTestEnv(t)
	owner := env.addUser(t, "owner@example.com")
	file := env.addFile(t, owner.ID, nil, "doc.txt")

	link, err := env.links.CreateLink(context.Background(), owner.ID, fileRes(file.ID), &models.ShareLinkCreateRequest{
		MaxDownloads: 2,
	}, noInfo())
	if err != nil {
		t.Fatalf("create link: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := env.links.ConsumeDownload(context.Background(), link.UUID, "", noInfo()); err != nil {
			t.Fatalf("download %d should succeed: %v", i+1, err)
		}
	}

	_, err = env.links.ConsumeDownload(context.Background(), link.UUID, "", noInfo())
	var quota errtypes.IsQuotaExceeded
	if !errors.As(err, &quota) {
		t.Fatalf("expected quota exceeded on third download, got %v", err)
	}
}

func TestConsumeDownloadUnlimited(t *testing.T) {
	env := newTestEnv(t)
	owner := env.addUser(t, "owner@example.com")
	file := env.addFile(t, owner.ID, nil, "doc.txt")

	link, err := env.links.CreateLink(context.Background(), owner.ID, fileRes(file.ID), &models.ShareLinkCreateRequest{}, noInfo())
	if err != nil {
		t.Fatalf("create link: %v", err)
	}

	for i := 0; i < 10; i++ {
		if _, err := env.links.ConsumeDownload(context.Background(), link.UUID, "", noInfo()); err != nil {
			t.Fatalf("unlimited link download %d failed: %v", i+1, err)
		}
	}
}

func TestConsumeDownloadConcurrent(t *testing.T) {
	env := newTestEnv(t)
	owner := env.addUser(t, "owner@example.com")
	file := env.addFile(t, owner.ID, nil, "doc.txt")

	const quota = 5
	link, err := env.links.CreateLink(context.Background(), owner.ID, fileRes(file.ID), &models.ShareLinkCreateRequest{
		MaxDownloads: quota,
	}, noInfo())
	if err != nil {
		t.Fatalf("create link: %v", err)
	}

	const attempts = 20
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.links.ConsumeDownload(context.Background(), link.UUID, "", noInfo())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes := 0
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		var quotaErr errtypes.IsQuotaExceeded
		if !errors.As(err, &quotaErr) {
			t.Errorf("unexpected failure: %v", err)
		}
	}
	if successes != quota {
		t.Fatalf("expected exactly %d successful downloads, got %d", quota, successes)
	}
}

func TestRevokeLink(t *testing.T) {
	env := newTestEnv(t)
	owner := env.addUser(t, "owner@example.com")
	stranger := env.addUser(t, "stranger@example.com")
	file := env.addFile(t, owner.ID, nil, "doc.txt")

	link, err := env.links.CreateLink(context.Background(), owner.ID, fileRes(file.ID), &models.ShareLinkCreateRequest{}, noInfo())
	if err != nil {
		t.Fatalf("create link: %v", err)
	}

	err = env.links.RevokeLink(context.Background(), stranger.ID, link.UUID, noInfo())
	var denied errtypes.IsPermissionDenied
	if !errors.As(err, &denied) {
		t.Fatalf("stranger must not revoke, got %v", err)
	}

	if err := env.links.RevokeLink(context.Background(), owner.ID, link.UUID, noInfo()); err != nil {
		t.Fatalf("creator revoke: %v", err)
	}
	// revoking again is a no-op
	if err := env.links.RevokeLink(context.Background(), owner.ID, link.UUID, noInfo()); err != nil {
		t.Fatalf("second revoke should be a no-op: %v", err)
	}

	_, err = env.links.ResolveLink(context.Background(), link.UUID, "")
	var inactive errtypes.IsInactive
	if !errors.As(err, &inactive) {
		t.Fatalf("revoked link should be inactive, got %v", err)
	}
}

func TestLinkDownloadRecordedWithoutUser(t *testing.T) {
	env := newTestEnv(t)
	owner := env.addUser(t, "owner@example.com")
	file := env.addFile(t, owner.ID, nil, "doc.txt")

	link, err := env.links.CreateLink(context.Background(), owner.ID, fileRes(file.ID), &models.ShareLinkCreateRequest{}, noInfo())
	if err != nil {
		t.Fatalf("create link: %v", err)
	}
	if _, err := env.links.ConsumeDownload(context.Background(), link.UUID, "", noInfo()); err != nil {
		t.Fatalf("consume: %v", err)
	}

	// the DOWNLOAD entry has no user ref, so it is absent from the owner's feed
	entries, err := env.activity.ListForUser(context.Background(), owner.ID, 10)
	if err != nil {
		t.Fatalf("list activity: %v", err)
	}
	for _, e := range entries {
		if e.Type == models.ActivityDownload {
			t.Error("anonymous link download must not carry a user reference")
		}
	}
}

func TestDescribeLink(t *testing.T) {
	env := newTestEnv(t)
	owner := env.addUser(t, "owner@example.com")
	folder := env.addFolder(t, owner.ID, nil, "shared")
	file := env.addFile(t, owner.ID, &folder.ID, "doc.txt")

	fileLink, err := env.links.CreateLink(context.Background(), owner.ID, fileRes(file.ID), &models.ShareLinkCreateRequest{Password: "pw"}, noInfo())
	if err != nil {
		t.Fatalf("create file link: %v", err)
	}
	preview, err := env.links.DescribeLink(context.Background(), fileLink)
	if err != nil {
		t.Fatalf("describe file link: %v", err)
	}
	if preview.ResourceKind != models.ResourceFile || preview.Name != "doc.txt" || !preview.HasPassword {
		t.Errorf("unexpected file preview: %+v", preview)
	}

	folderLink, err := env.links.CreateLink(context.Background(), owner.ID, folderRes(folder.ID), &models.ShareLinkCreateRequest{}, noInfo())
	if err != nil {
		t.Fatalf("create folder link: %v", err)
	}
	preview, err = env.links.DescribeLink(context.Background(), folderLink)
	if err != nil {
		t.Fatalf("describe folder link: %v", err)
	}
	if preview.ResourceKind != models.ResourceFolder || preview.Name != "shared" || preview.HasPassword {
		t.Errorf("unexpected folder preview: %+v", preview)
	}
}
