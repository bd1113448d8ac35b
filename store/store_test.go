package store

import (
	"context"
	"io"
	"testing"
)

func TestNewDiskBackendRoundTrip(t *testing.T) {
	s, err := New(Config{Backend: "disk", Disk: DiskConfig{Path: t.TempDir()}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	name, err := s.Add(ctx, "<chunk/>")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	r, _, err := s.Get(ctx, name)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(data) != "<chunk/>" {
		t.Fatalf("expected %q, got %q", "<chunk/>", data)
	}
}

func TestNewDefaultsToDiskBackend(t *testing.T) {
	s, err := New(Config{Disk: DiskConfig{Path: t.TempDir()}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()
}

func TestNewUnknownBackend(t *testing.T) {
	_, err := New(Config{Backend: "mongo"})
	if err == nil {
		t.Fatalf("expected an error for an unsupported backend")
	}
}
