package translate

import (
	"testing"

	"github.com/zcbor/cddlc/internal/cbor"
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

func TestDecodeIntegerRange(t *testing.T) {
	g := normalizedGraph(t, "foo = -128..127")
	tr := New(g, Options{})

	payload := cbor.AppendInt64(nil, -5)
	v, rest, err := tr.Decode("foo", payload)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(rest) != 0 {
		t.Fatalf("expected no trailing bytes, got %d", len(rest))
	}
	if v != int64(-5) {
		t.Fatalf("got %v, want -5", v)
	}
}

func TestDecodeIntegerOutOfRange(t *testing.T) {
	g := normalizedGraph(t, "foo = -128..127")
	tr := New(g, Options{})

	payload := cbor.AppendInt64(nil, 1000)
	if _, _, err := tr.Decode("foo", payload); err == nil {
		t.Fatal("expected range-check failure for value outside -128..127")
	}
}

func TestDecodeMapWithExpectedKey(t *testing.T) {
	g := normalizedGraph(t, `person = { name: tstr, age: 0..150 }`)
	tr := New(g, Options{})

	payload := cbor.AppendMapHeader(nil, 2)
	payload = cbor.AppendString(payload, "name")
	payload = cbor.AppendString(payload, "Ada")
	payload = cbor.AppendString(payload, "age")
	payload = cbor.AppendInt64(payload, 42)

	v, rest, err := tr.Decode("person", payload)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(rest) != 0 {
		t.Fatalf("expected no trailing bytes, got %d", len(rest))
	}
	m, ok := v.(map[string]any)
	if !ok {
		t.Fatalf("got %T, want map[string]any", v)
	}
	if m["name"] != "Ada" {
		t.Errorf("name = %v, want Ada", m["name"])
	}
	if m["age"] != uint64(42) {
		t.Errorf("age = %v, want 42", m["age"])
	}
}

func TestDecodeOptionalMemberAbsent(t *testing.T) {
	g := normalizedGraph(t, `wrapper = { id: uint, ? note: tstr }`)
	tr := New(g, Options{})

	payload := cbor.AppendMapHeader(nil, 1)
	payload = cbor.AppendString(payload, "id")
	payload = cbor.AppendUint64(payload, 7)

	v, _, err := tr.Decode("wrapper", payload)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	m := v.(map[string]any)
	if _, present := m["note"]; present {
		t.Error("note should be absent when not encoded")
	}
	if m["id"] != uint64(7) {
		t.Errorf("id = %v, want 7", m["id"])
	}
}

func TestDecodeUnionDisambiguatedByType(t *testing.T) {
	g := normalizedGraph(t, `choice = int / tstr`)
	tr := New(g, Options{})

	v, _, err := tr.Decode("choice", cbor.AppendString(nil, "hi"))
	if err != nil {
		t.Fatalf("Decode string alternative: %v", err)
	}
	if v != "hi" {
		t.Fatalf("got %v, want hi", v)
	}

	v2, _, err := tr.Decode("choice", cbor.AppendInt64(nil, 9))
	if err != nil {
		t.Fatalf("Decode int alternative: %v", err)
	}
	if v2 != int64(9) {
		t.Fatalf("got %v, want 9", v2)
	}
}

func TestDecodeUnionNoAlternativeMatches(t *testing.T) {
	g := normalizedGraph(t, `choice = int / bool`)
	tr := New(g, Options{})

	if _, _, err := tr.Decode("choice", cbor.AppendString(nil, "nope")); err == nil {
		t.Fatal("expected failure: tstr is not int or bool")
	}
}

func TestDecodeBstrWithNestedCbor(t *testing.T) {
	g := normalizedGraph(t, `outer = bstr .cbor int`)
	tr := New(g, Options{})

	nested := cbor.AppendInt64(nil, 123)
	payload := cbor.AppendBytes(nil, nested)

	v, _, err := tr.Decode("outer", payload)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if v != int64(123) {
		t.Fatalf("got %v, want 123", v)
	}
}

func TestDecodeRepeatedList(t *testing.T) {
	g := normalizedGraph(t, `nums = [* int]`)
	tr := New(g, Options{})

	payload := cbor.AppendArrayHeader(nil, 3)
	payload = cbor.AppendInt64(payload, 1)
	payload = cbor.AppendInt64(payload, 2)
	payload = cbor.AppendInt64(payload, 3)

	v, _, err := tr.Decode("nums", payload)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	lst, ok := v.([]any)
	if !ok {
		t.Fatalf("got %T, want []any", v)
	}
	if len(lst) != 3 {
		t.Fatalf("len = %d, want 3", len(lst))
	}
}
