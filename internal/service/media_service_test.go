package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/itaymdigi/coldtherapylanding/internal/config"
)

type fakeObjectStore struct {
	deleted []string
}

func (f *fakeObjectStore) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://media.test/" + key + "?sig=get", nil
}

func (f *fakeObjectStore) PresignPut(_ context.Context, key, _ string, _ time.Duration) (string, error) {
	return "https://media.test/" + key + "?sig=put", nil
}

func (f *fakeObjectStore) DeleteObject(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func TestMediaUploadLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	store := &fakeObjectStore{}
	svc := NewMediaService(env.store.Media(), store, config.StorageConfig{MediaURLTTL: time.Hour, UploadURLTTL: 15 * time.Minute})

	if _, err := svc.CreateUpload(ctx, CreateUploadRequest{Kind: "photo", ContentType: "video/mp4", FileName: "a.mp4"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("CreateUpload(mismatch) error = %v, want ErrInvalidInput", err)
	}

	up, err := svc.CreateUpload(ctx, CreateUploadRequest{Kind: "photo", ContentType: "image/jpeg", FileName: "Plunge.JPG", TitleEn: "Ice"})
	if err != nil {
		t.Fatalf("CreateUpload() error = %v", err)
	}
	if !strings.HasPrefix(up.Item.ObjectKey, "gallery/") || !strings.HasSuffix(up.Item.ObjectKey, ".jpg") {
		t.Fatalf("ObjectKey = %q", up.Item.ObjectKey)
	}
	if up.ExpiresIn != 900 || !strings.Contains(up.UploadURL, "sig=put") {
		t.Fatalf("upload = %+v", up)
	}

	public, err := svc.List(ctx, true)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(public) != 0 {
		t.Fatalf("unpublished item listed publicly")
	}

	if _, err := svc.Publish(ctx, up.Item.ID, true); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	public, _ = svc.List(ctx, true)
	if len(public) != 1 || !strings.Contains(public[0].URL, "sig=get") {
		t.Fatalf("List(published) = %+v", public)
	}

	if err := svc.Delete(ctx, up.Item.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(store.deleted) != 1 || store.deleted[0] != up.Item.ObjectKey {
		t.Fatalf("deleted objects = %v", store.deleted)
	}
}

func TestMediaWithoutStorage(t *testing.T) {
	env := newTestEnv(t)
	svc := NewMediaService(env.store.Media(), nil, env.cfg.Storage)

	if _, err := svc.CreateUpload(context.Background(), CreateUploadRequest{Kind: "video", ContentType: "video/mp4", FileName: "a.mp4"}); !errors.Is(err, ErrStorageDisabled) {
		t.Fatalf("CreateUpload() error = %v, want ErrStorageDisabled", err)
	}
	items, err := svc.List(context.Background(), false)
	if err != nil || len(items) != 0 {
		t.Fatalf("List() = %v, %v", items, err)
	}
}
