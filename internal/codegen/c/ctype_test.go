package c

import (
	"testing"

	"github.com/zcbor/cddlc/internal/cddl"
)

func TestValTypeNameForSizedIntegers(t *testing.T) {
	n := cddl.NewNode(cddl.UintKind)
	size := 2
	n.Size = &size
	if got := valTypeName(n); got != "uint16_t" {
		t.Fatalf("got %q, want uint16_t", got)
	}
}

func TestIntBitsDefaultsToWidestWhenUnsized(t *testing.T) {
	n := cddl.NewNode(cddl.IntKind)
	if got := intBits(n); got != 64 {
		t.Fatalf("got %d, want 64", got)
	}
}

func TestValTypeNameForFloat(t *testing.T) {
	n := cddl.NewNode(cddl.FloatKind)
	size := 4
	n.Size = &size
	if got := valTypeName(n); got != "float" {
		t.Fatalf("got %q, want float", got)
	}

	n2 := cddl.NewNode(cddl.FloatKind)
	size8 := 8
	n2.Size = &size8
	if got := valTypeName(n2); got != "double" {
		t.Fatalf("got %q, want double", got)
	}
}

func TestIntBitsFromSignedRange(t *testing.T) {
	g, err := cddl.Parse("foo = -128..127")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	n, _ := g.Lookup("foo")
	if got := intBits(n); got != 8 {
		t.Fatalf("got %d, want 8", got)
	}
}

func TestIntBitsFromUnsignedRange(t *testing.T) {
	g, err := cddl.Parse("bar = 0..65535")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	n, _ := g.Lookup("bar")
	if got := intBits(n); got != 16 {
		t.Fatalf("got %d, want 16", got)
	}
}

func TestValTypeNameForStrings(t *testing.T) {
	if got := valTypeName(cddl.NewNode(cddl.TstrKind)); got != "struct zcbor_string" {
		t.Fatalf("got %q, want struct zcbor_string", got)
	}
	if got := valTypeName(cddl.NewNode(cddl.BstrKind)); got != "struct zcbor_string" {
		t.Fatalf("got %q, want struct zcbor_string", got)
	}
}
