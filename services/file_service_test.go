package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"cloudbox/errtypes"
	"cloudbox/models"
)

func uploadReq(name, folderID string, content string) (*models.FileCreateRequest, io.Reader) {
	return &models.FileCreateRequest{
		Name:     name,
		FolderID: folderID,
		Size:     int64(len(content)),
		MimeType: "text/plain",
	}, strings.NewReader(content)
}

func TestUploadAndDownloadRoundtrip(t *testing.T) {
	env := newTestEnv(t)
	owner := env.addUser(t, "owner@example.com")

	req, content := uploadReq("hello.txt", "", "hello world")
	file, err := env.files.Upload(context.Background(), owner.ID, req, content, noInfo())
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if file.StorageKey == "" {
		t.Fatal("uploaded file has no storage key")
	}

	url, stream, got, err := env.files.Download(context.Background(), owner.ID, file.ID, noInfo())
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if url != "" {
		t.Fatalf("local backend should stream, got URL %q", url)
	}
	defer stream.Close()

	data, err := io.ReadAll(stream)
	if err != nil {
		t.Fatalf("read stream: %v", err)
	}
	if string(data) != "hello world" {
		t.Errorf("content mismatch: %q", data)
	}
	if got.Name != "hello.txt" {
		t.Errorf("unexpected metadata: %+v", got)
	}
}

func TestUploadDuplicateNameRejected(t *testing.T) {
	env := newTestEnv(t)
	owner := env.addUser(t, "owner@example.com")

	req, content := uploadReq("doc.txt", "", "one")
	if _, err := env.files.Upload(context.Background(), owner.ID, req, content, noInfo()); err != nil {
		t.Fatalf("first upload: %v", err)
	}

	req, content = uploadReq("doc.txt", "", "two")
	_, err := env.files.Upload(context.Background(), owner.ID, req, content, noInfo())
	var exists errtypes.IsAlreadyExists
	if !errors.As(err, &exists) {
		t.Fatalf("duplicate name in same folder should be rejected, got %v", err)
	}

	// same name in a different folder is fine
	folder := env.addFolder(t, owner.ID, nil, "sub")
	req, content = uploadReq("doc.txt", folder.ID.Hex(), "three")
	if _, err := env.files.Upload(context.Background(), owner.ID, req, content, noInfo()); err != nil {
		t.Errorf("same name in different folder should be allowed: %v", err)
	}
}

func TestUploadIntoForeignFolderRequiresWrite(t *testing.T) {
	env := newTestEnv(t)
	owner := env.addUser(t, "owner@example.com")
	guest := env.addUser(t, "guest@example.com")
	folder := env.addFolder(t, owner.ID, nil, "drop")

	req, content := uploadReq("note.txt", folder.ID.Hex(), "hi")
	_, err := env.files.Upload(context.Background(), guest.ID, req, content, noInfo())
	var denied errtypes.IsPermissionDenied
	if !errors.As(err, &denied) {
		t.Fatalf("upload into foreign folder without WRITE should deny, got %v", err)
	}

	env.grant(t, folderRes(folder.ID), guest.ID, owner.ID, models.PermissionEdit, nil)
	req, content = uploadReq("note.txt", folder.ID.Hex(), "hi")
	if _, err := env.files.Upload(context.Background(), guest.ID, req, content, noInfo()); err != nil {
		t.Errorf("EDIT grantee should upload into shared folder: %v", err)
	}
}

func TestDownloadSharedFile(t *testing.T) {
	env := newTestEnv(t)
	owner := env.addUser(t, "owner@example.com")
	viewer := env.addUser(t, "viewer@example.com")

	req, content := uploadReq("shared.txt", "", "payload")
	file, err := env.files.Upload(context.Background(), owner.ID, req, content, noInfo())
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if _, _, _, err := env.files.Download(context.Background(), viewer.ID, file.ID, noInfo()); err == nil {
		t.Fatal("viewer without grant should be denied")
	}

	env.grant(t, fileRes(file.ID), viewer.ID, owner.ID, models.PermissionView, nil)
	_, stream, _, err := env.files.Download(context.Background(), viewer.ID, file.ID, noInfo())
	if err != nil {
		t.Fatalf("download with VIEW grant: %v", err)
	}
	stream.Close()
}

func TestUpdateFileRename(t *testing.T) {
	env := newTestEnv(t)
	owner := env.addUser(t, "owner@example.com")

	req, content := uploadReq("old.txt", "", "data")
	file, err := env.files.Upload(context.Background(), owner.ID, req, content, noInfo())
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	updated, err := env.files.UpdateFile(context.Background(), owner.ID, file.ID, &models.FileUpdateRequest{Name: "new.txt"}, noInfo())
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if updated.Name != "new.txt" {
		t.Errorf("rename not applied: %s", updated.Name)
	}
}

func TestDeleteFileRemovesBlobAndClearsRefs(t *testing.T) {
	env := newTestEnv(t)
	owner := env.addUser(t, "owner@example.com")

	req, content := uploadReq("gone.txt", "", "bye")
	file, err := env.files.Upload(context.Background(), owner.ID, req, content, noInfo())
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if err := env.files.DeleteFile(context.Background(), owner.ID, file.ID, noInfo()); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var notFound errtypes.IsNotFound
	if _, err := env.stores.Files.GetFile(context.Background(), file.ID); !errors.As(err, &notFound) {
		t.Fatalf("file metadata should be gone, got %v", err)
	}

	entries, err := env.activity.ListForUser(context.Background(), owner.ID, 10)
	if err != nil {
		t.Fatalf("list activity: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("upload activity should survive the delete")
	}
	for _, e := range entries {
		if e.FileID != nil {
			t.Error("deleted file reference should be cleared from activity")
		}
	}
}

func TestListFilesIncludesShared(t *testing.T) {
	env := newTestEnv(t)
	owner := env.addUser(t, "owner@example.com")
	viewer := env.addUser(t, "viewer@example.com")

	req, content := uploadReq("mine.txt", "", "a")
	if _, err := env.files.Upload(context.Background(), viewer.ID, req, content, noInfo()); err != nil {
		t.Fatalf("upload own: %v", err)
	}
	req, content = uploadReq("theirs.txt", "", "b")
	shared, err := env.files.Upload(context.Background(), owner.ID, req, content, noInfo())
	if err != nil {
		t.Fatalf("upload shared: %v", err)
	}
	env.grant(t, fileRes(shared.ID), viewer.ID, owner.ID, models.PermissionView, nil)

	files, err := env.files.ListFiles(context.Background(), viewer.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	names := map[string]bool{}
	for _, f := range files {
		names[f.Name] = true
	}
	if !names["mine.txt"] || !names["theirs.txt"] {
		t.Errorf("listing should contain own and shared files, got %v", names)
	}
}
