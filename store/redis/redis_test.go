package redis

import (
	"context"
	"io"
	"testing"

	"github.com/georocket/georocket-go/store"
)

// newTestStore dials a local Redis instance and skips the test when one
// isn't reachable — these are integration tests against a real backend,
// not a fake.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(Option{Addr: "127.0.0.1:6379", Prefix: "georocket-test:"})
	if err != nil {
		t.Skipf("redis not reachable: %v", err)
	}
	return s
}

func TestAddGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	ctx := context.Background()
	name, err := s.Add(ctx, "<chunk/>")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	r, size, err := s.Get(ctx, name)
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
	if size != int64(len(data)) {
		t.Fatalf("expected size %d, got %d", len(data), size)
	}
}

func TestGetUnknownNameReturnsErrNotFound(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	_, _, err := s.Get(context.Background(), "does-not-exist")
	if err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
