package c

import (
	"strings"
	"testing"

	"github.com/zcbor/cddlc/internal/cddl"
)

func normalizedGraph(t *testing.T, src string) *cddl.Graph {
	t.Helper()
	g, err := cddl.Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := g.Normalize(); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	return g
}

func TestGenerateSimpleIntegerRange(t *testing.T) {
	g := normalizedGraph(t, "foo = -128..127")

	gen := New(g, Options{Project: "test"})
	artifacts, err := gen.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if !strings.Contains(artifacts.TypesH, "int8_t") {
		t.Errorf("types header missing int8_t declaration:\n%s", artifacts.TypesH)
	}
	decodeC, ok := artifacts.Files["test_decode.c"]
	if !ok {
		t.Fatal("missing test_decode.c artifact")
	}
	if !strings.Contains(decodeC, "zcbor_int8_decode") {
		t.Errorf("decode body missing zcbor_int8_decode call:\n%s", decodeC)
	}
	if artifacts.Cmake == "" {
		t.Error("cmake artifact should not be empty")
	}
}

func TestGenerateMapWithString(t *testing.T) {
	g := normalizedGraph(t, `person = { name: tstr, age: 0..150 }`)

	gen := New(g, Options{Project: "demo"})
	artifacts, err := gen.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(artifacts.TypesH, "zcbor_string") {
		t.Errorf("expected a zcbor_string field for the tstr member:\n%s", artifacts.TypesH)
	}
}

func TestGenerateRespectsModeSelection(t *testing.T) {
	g := normalizedGraph(t, "foo = 0..255")

	gen := New(g, Options{Project: "solo", Modes: []string{"decode"}})
	artifacts, err := gen.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, ok := artifacts.Files["solo_decode.c"]; !ok {
		t.Error("expected solo_decode.c")
	}
	if _, ok := artifacts.Files["solo_encode.c"]; ok {
		t.Error("encode mode should not have been generated")
	}
}

func TestGenerateDebugModeDoesNotPanicOnConsistentGraph(t *testing.T) {
	g := normalizedGraph(t, `item = { id: uint, label: tstr }`)

	gen := New(g, Options{Project: "dbg", Debug: true})
	if _, err := gen.Generate(); err != nil {
		t.Fatalf("Generate with Debug=true: %v", err)
	}
}
