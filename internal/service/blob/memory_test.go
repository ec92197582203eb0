package blob

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore("memory://blobs/", "images")

	u, err := m.Upload(ctx, Object{Data: []byte{1, 2}, ContentType: "image/png"})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if !m.Has(u) || m.Len() != 1 {
		t.Fatalf("expected object at %q", u)
	}
	if err := m.Delete(ctx, u); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if m.Has(u) {
		t.Fatal("expected object deleted")
	}
	if err := m.Delete(ctx, u); err != nil {
		t.Fatalf("deleting missing object: %v", err)
	}
	if len(m.Uploads()) != 1 || len(m.Deletes()) != 2 {
		t.Fatalf("unexpected call log: uploads=%v deletes=%v", m.Uploads(), m.Deletes())
	}
}

func TestMemoryStoreInjectedErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	m := NewMemoryStore("memory://blobs", "")
	m.Put("memory://blobs/a.png", Object{})
	m.UploadErr = boom
	m.DeleteErr = boom

	if _, err := m.Upload(ctx, Object{}); !errors.Is(err, boom) {
		t.Fatalf("expected upload error, got %v", err)
	}
	if err := m.Delete(ctx, "memory://blobs/a.png"); !errors.Is(err, boom) {
		t.Fatalf("expected delete error, got %v", err)
	}
	if !m.Has("memory://blobs/a.png") {
		t.Fatal("failed delete must keep the object")
	}
}
