package translate

import (
	"testing"

	"github.com/zcbor/cddlc/internal/cbor"
)

func TestCanonicalizeSortsMapKeys(t *testing.T) {
	in := map[string]any{
		"zebra": int64(1),
		"alpha": int64(2),
		"mid":   int64(3),
	}
	b, err := Canonicalize(in)
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}

	r := cbor.NewReaderBytes(b)
	n, err := r.ReadMapHeader()
	if err != nil {
		t.Fatalf("ReadMapHeader: %v", err)
	}
	if n != 3 {
		t.Fatalf("map len = %d, want 3", n)
	}

	want := []string{"mid", "alpha", "zebra"}
	for _, k := range want {
		gotKey, err := r.ReadString()
		if err != nil {
			t.Fatalf("ReadString key: %v", err)
		}
		if gotKey != k {
			t.Fatalf("key order: got %q, want %q", gotKey, k)
		}
		if _, err := r.ReadInt64(); err != nil {
			t.Fatalf("ReadInt64 value: %v", err)
		}
	}
}

func TestCanonicalizeSortsNestedMapKeys(t *testing.T) {
	in := map[string]any{
		"outer": map[string]any{
			"b": int64(1),
			"a": int64(2),
		},
	}
	b, err := Canonicalize(in)
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}

	r := cbor.NewReaderBytes(b)
	if _, err := r.ReadMapHeader(); err != nil {
		t.Fatalf("ReadMapHeader outer: %v", err)
	}
	if _, err := r.ReadString(); err != nil {
		t.Fatalf("ReadString outer key: %v", err)
	}
	n, err := r.ReadMapHeader()
	if err != nil {
		t.Fatalf("ReadMapHeader inner: %v", err)
	}
	if n != 2 {
		t.Fatalf("inner map len = %d, want 2", n)
	}
	firstKey, err := r.ReadString()
	if err != nil {
		t.Fatalf("ReadString inner key: %v", err)
	}
	if firstKey != "a" {
		t.Fatalf("inner key order: got %q, want a first", firstKey)
	}
}

func TestCanonicalizeEncodesArray(t *testing.T) {
	in := []any{int64(1), "two", true}
	b, err := Canonicalize(in)
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	r := cbor.NewReaderBytes(b)
	n, _, err := r.ReadArrayStart()
	if err != nil {
		t.Fatalf("ReadArrayStart: %v", err)
	}
	if n != 3 {
		t.Fatalf("array len = %d, want 3", n)
	}
}
