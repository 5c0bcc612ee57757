package cddl

import "testing"

func parseNormalized(t *testing.T, src string) *Graph {
	t.Helper()
	g, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := g.Normalize(); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	return g
}

func TestParseIntegerRange(t *testing.T) {
	g := parseNormalized(t, "foo = -128..127")
	n, ok := g.Lookup("foo")
	if !ok {
		t.Fatal("rule foo not found")
	}
	if n.Kind != IntKind {
		t.Fatalf("kind = %v, want IntKind", n.Kind)
	}
	if n.MinValue.Int64() != -128 || n.MaxValue.Int64() != 127 {
		t.Fatalf("range = [%d, %d], want [-128, 127]", n.MinValue.Int64(), n.MaxValue.Int64())
	}
}

func TestParseUnsignedRange(t *testing.T) {
	g := parseNormalized(t, "bar = 0..65535")
	n, ok := g.Lookup("bar")
	if !ok {
		t.Fatal("rule bar not found")
	}
	if n.Kind != UintKind {
		t.Fatalf("kind = %v, want UintKind", n.Kind)
	}
	if n.MaxValue.Uint64() != 65535 {
		t.Fatalf("max = %d, want 65535", n.MaxValue.Uint64())
	}
}

func TestMapRequiresReachableKey(t *testing.T) {
	_, err := Parse("foo = {a: int, b: tstr}")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	// A key-less map entry (e.g. an untagged group splice with no label
	// or literal) is exercised via validate_test.go; parsing alone
	// accepts this well-formed schema.
}

func TestEntryTypesOrderedByDependency(t *testing.T) {
	g := parseNormalized(t, `
		leaf = int
		root = { a: leaf, b: branch }
		branch = [leaf]
	`)
	entries := g.EntryTypes()
	pos := map[string]int{}
	for i, e := range entries {
		pos[e] = i
	}
	if pos["leaf"] > pos["branch"] {
		t.Errorf("leaf must not come after branch: %v", entries)
	}
	if pos["branch"] > pos["root"] {
		t.Errorf("branch must not come after root: %v", entries)
	}
}

func TestNormalizeAssignsUniqueIDs(t *testing.T) {
	g := parseNormalized(t, `
		a = { x: int }
		b = { x: int }
	`)
	seen := map[string]bool{}
	for _, name := range g.Order {
		n := g.Types[name]
		if n.IDPrefix == "" {
			t.Fatalf("rule %s: empty IDPrefix after Normalize", name)
		}
		key := n.IDPrefix + "_" + n.BaseName
		if seen[key] {
			t.Fatalf("duplicate generated identifier %q", key)
		}
		seen[key] = true
	}
}

func TestControlGroupBits(t *testing.T) {
	g := parseNormalized(t, `
		flags = &(read: 0, write: 1, exec: 2)
		perm = uint .bits flags
	`)
	n, ok := g.Lookup("perm")
	if !ok {
		t.Fatal("rule perm not found")
	}
	if n.Bits != "flags" {
		t.Fatalf("Bits = %q, want flags", n.Bits)
	}
	members, ok := g.ControlGroups["flags"]
	if !ok {
		t.Fatal("control group flags not found")
	}
	if members["write"] != 1 {
		t.Fatalf("flags.write = %d, want 1", members["write"])
	}
}

func TestUndefinedSocketDroppedSilently(t *testing.T) {
	g := parseNormalized(t, `foo = int / $extension`)
	n, _ := g.Lookup("foo")
	if n.Kind == UnionKind {
		for _, c := range n.Children {
			if c.IsSocket {
				t.Fatalf("undefined socket should have been dropped by flatten, found %v", c)
			}
		}
	}
}
