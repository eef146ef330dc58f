package storage

import (
	"errors"
	"testing"
)

func newTestStore(t *testing.T) *DiskStore {
	t.Helper()
	s, err := NewDiskStore(t.TempDir(), "http://localhost:8080/")
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := newTestStore(t)

	if err := s.Put("avatars", "pic.png", []byte("content")); err != nil {
		t.Fatal(err)
	}
	data, err := s.Get("avatars", "pic.png")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "content" {
		t.Fatalf("expected 'content', got %q", data)
	}
}

func TestPutReplaces(t *testing.T) {
	s := newTestStore(t)

	s.Put("avatars", "pic.png", []byte("old"))
	if err := s.Put("avatars", "pic.png", []byte("new")); err != nil {
		t.Fatal(err)
	}
	data, _ := s.Get("avatars", "pic.png")
	if string(data) != "new" {
		t.Fatalf("expected 'new', got %q", data)
	}
}

func TestGetMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get("avatars", "nope.png")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInvalidNames(t *testing.T) {
	s := newTestStore(t)

	bad := []string{"", ".hidden", "../escape", "a/b", "a..b", "name with spaces"}
	for _, name := range bad {
		if err := s.Put("avatars", name, []byte("x")); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Put with name %q: expected ErrInvalidName, got %v", name, err)
		}
		if err := s.Put(name, "pic.png", []byte("x")); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Put with bucket %q: expected ErrInvalidName, got %v", name, err)
		}
		if _, err := s.Get("avatars", name); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Get with name %q: expected ErrInvalidName, got %v", name, err)
		}
	}
}

func TestPublicURL(t *testing.T) {
	s := newTestStore(t)

	got := s.PublicURL("profile-images", "me-123.png")
	want := "http://localhost:8080/storage/profile-images/me-123.png"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
