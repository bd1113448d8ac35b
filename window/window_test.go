package window

import "testing"

func TestAppendAndSlice(t *testing.T) {
	w := New()
	w.Append([]byte("hello "))
	w.Append([]byte("world"))

	if w.Tail() != 11 {
		t.Fatalf("expected tail 11, got %d", w.Tail())
	}

	text, err := w.TextSlice(0, 11)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "hello world" {
		t.Fatalf("expected %q, got %q", "hello world", text)
	}
}

func TestAdvanceReleasesPrefix(t *testing.T) {
	w := New()
	w.Append([]byte("0123456789"))

	if err := w.Advance(4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Head() != 4 {
		t.Fatalf("expected head 4, got %d", w.Head())
	}

	if _, err := w.TextSlice(0, 4); err == nil {
		t.Fatalf("expected error slicing released bytes")
	}

	text, err := w.TextSlice(4, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "456789" {
		t.Fatalf("expected %q, got %q", "456789", text)
	}
}

func TestAdvanceRejectsOutOfRange(t *testing.T) {
	w := New()
	w.Append([]byte("abc"))

	if err := w.Advance(10); err == nil {
		t.Fatalf("expected error advancing past tail")
	}

	if err := w.Advance(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Advance(0); err == nil {
		t.Fatalf("expected error advancing before head")
	}
}

func TestTextSliceRejectsOutOfRange(t *testing.T) {
	w := New()
	w.Append([]byte("abcdef"))

	if _, err := w.TextSlice(0, 100); err == nil {
		t.Fatalf("expected error slicing past tail")
	}
	if _, err := w.TextSlice(3, 1); err == nil {
		t.Fatalf("expected error for inverted range")
	}
}
