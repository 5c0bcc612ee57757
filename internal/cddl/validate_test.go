package cddl

import "testing"

// These exercise PostValidate directly against hand-built trees, since
// driving every invariant through the parser would require contriving
// CDDL source for cases the grammar itself already prevents (e.g. a map
// child that only reaches a key through a chain of OTHER references).

func TestPostValidateMapChildWithoutKey(t *testing.T) {
	child := NewNode(IntKind) // no Key
	m := NewNode(MapKind)
	m.Children = []*Node{child}

	g := &Graph{Types: map[string]*Node{}}
	if err := PostValidate(m, g, map[string]bool{}); err == nil {
		t.Fatal("expected error for map child without a key")
	}
}

func TestPostValidateMapChildKeyThroughOther(t *testing.T) {
	keyed := NewNode(IntKind)
	keyed.Key = NewNode(TstrKind)
	g := &Graph{Types: map[string]*Node{"keyed": keyed}}

	ref := NewNode(OtherKind)
	ref.Target = "keyed"
	m := NewNode(MapKind)
	m.Children = []*Node{ref}

	if err := PostValidate(m, g, map[string]bool{}); err != nil {
		t.Fatalf("key reachable through OTHER should be accepted: %v", err)
	}
}

func TestPostValidateListChildWithKeyRejected(t *testing.T) {
	child := NewNode(IntKind)
	child.Key = NewNode(TstrKind)
	l := NewNode(ListKind)
	l.Children = []*Node{child}

	g := &Graph{Types: map[string]*Node{}}
	if err := PostValidate(l, g, map[string]bool{}); err == nil {
		t.Fatal("expected error for list child carrying a key")
	}
}

func TestPostValidateAnyMustBeLastIfVariableQuantified(t *testing.T) {
	wildcard := NewNode(AnyKind)
	wildcard.MinQty, wildcard.MaxQty = 0, Unbounded
	tail := NewNode(IntKind)

	l := NewNode(ListKind)
	l.Children = []*Node{wildcard, tail}

	g := &Graph{Types: map[string]*Node{}}
	if err := PostValidate(l, g, map[string]bool{}); err == nil {
		t.Fatal("expected error for variadic ANY not in last position")
	}
}

func TestPostValidateUnionAmbiguousWithAny(t *testing.T) {
	u := NewNode(UnionKind)
	u.Children = []*Node{NewNode(IntKind), NewNode(AnyKind)}

	g := &Graph{Types: map[string]*Node{}}
	if err := PostValidate(u, g, map[string]bool{}); err == nil {
		t.Fatal("expected error for ANY alongside siblings in a UNION")
	}
}

func TestPostValidateIntegerSizeOutOfBounds(t *testing.T) {
	n := NewNode(UintKind)
	size := 9
	n.Size = &size

	g := &Graph{Types: map[string]*Node{}}
	if err := PostValidate(n, g, map[string]bool{}); err == nil {
		t.Fatal("expected error for integer .size outside 0-8")
	}
}

func TestPostValidateFloatSizeMustBeValid(t *testing.T) {
	n := NewNode(FloatKind)
	size := 3
	n.Size = &size

	g := &Graph{Types: map[string]*Node{}}
	if err := PostValidate(n, g, map[string]bool{}); err == nil {
		t.Fatal("expected error for float .size not in {2,4,8}")
	}
}

func TestPostValidateCborOnlyOnBstr(t *testing.T) {
	n := NewNode(IntKind)
	n.Cbor = NewNode(TstrKind)

	g := &Graph{Types: map[string]*Node{}}
	if err := PostValidate(n, g, map[string]bool{}); err == nil {
		t.Fatal("expected error for .cbor on a non-BSTR node")
	}
}

func TestPostValidateBitsOnlyOnUint(t *testing.T) {
	n := NewNode(IntKind)
	n.Bits = "flags"

	g := &Graph{Types: map[string]*Node{}, ControlGroups: map[string]map[string]int64{"flags": {"a": 0}}}
	if err := PostValidate(n, g, map[string]bool{}); err == nil {
		t.Fatal("expected error for .bits on a non-UINT node")
	}
}

func TestPostValidateBitsUnresolvedControlGroup(t *testing.T) {
	n := NewNode(UintKind)
	n.Bits = "missing"

	g := &Graph{Types: map[string]*Node{}, ControlGroups: map[string]map[string]int64{}}
	if err := PostValidate(n, g, map[string]bool{}); err == nil {
		t.Fatal("expected error for unresolved .bits control group")
	}
}

func TestPostValidateDefaultRequiresOptional(t *testing.T) {
	n := NewNode(IntKind)
	n.MinQty, n.MaxQty = 1, 1
	n.HasDefault = true
	n.Default = int64(3)

	g := &Graph{Types: map[string]*Node{}}
	if err := PostValidate(n, g, map[string]bool{}); err == nil {
		t.Fatal("expected error for default on a required element")
	}
}

func TestPostValidateDefaultTypeMismatch(t *testing.T) {
	n := NewNode(IntKind)
	n.MinQty, n.MaxQty = 0, 1
	n.HasDefault = true
	n.Default = "not-an-int"

	g := &Graph{Types: map[string]*Node{}}
	if err := PostValidate(n, g, map[string]bool{}); err == nil {
		t.Fatal("expected error for default value type mismatch")
	}
}

func TestPostValidateUnresolvedReference(t *testing.T) {
	n := NewNode(OtherKind)
	n.Target = "nowhere"

	g := &Graph{Types: map[string]*Node{}}
	if err := PostValidate(n, g, map[string]bool{}); err == nil {
		t.Fatal("expected error for unresolved OTHER reference")
	}
}

func TestPostValidateCycleBrokenByCborAllowed(t *testing.T) {
	self := NewNode(BstrKind)
	ref := NewNode(OtherKind)
	ref.Target = "self"
	self.Cbor = ref

	g := &Graph{Types: map[string]*Node{"self": self}}
	if err := PostValidate(self, g, map[string]bool{"self": true}); err != nil {
		t.Fatalf("cycle broken by .cbor boundary should be accepted: %v", err)
	}
}
