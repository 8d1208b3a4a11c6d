package session

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestFileStorageRoundTrip(t *testing.T) {
	storage, err := NewFileStorage(filepath.Join(t.TempDir(), "sess"))
	if err != nil {
		t.Fatalf("NewFileStorage() error = %v", err)
	}
	ctx := t.Context()

	if _, err := storage.Get(ctx, "auth_token"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() on empty storage error = %v, want ErrNotFound", err)
	}

	if err := storage.Set(ctx, "auth_token", "tok123"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := storage.Get(ctx, "auth_token")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "tok123" {
		t.Fatalf("Get() = %q, want tok123", got)
	}

	// whole-value replacement
	if err := storage.Set(ctx, "auth_token", "tok456"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, _ = storage.Get(ctx, "auth_token")
	if got != "tok456" {
		t.Fatalf("Get() after overwrite = %q, want tok456", got)
	}

	if err := storage.Delete(ctx, "auth_token"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := storage.Get(ctx, "auth_token"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() after delete error = %v, want ErrNotFound", err)
	}

	// deleting a missing key is not an error
	if err := storage.Delete(ctx, "auth_token"); err != nil {
		t.Fatalf("Delete() of missing key error = %v", err)
	}
}
