package graph

import (
	"testing"

	"github.com/zcbor/cddlc/internal/cddl"
)

func TestPresentVarConditionMatchesOptional(t *testing.T) {
	p := New(false)
	n := cddl.NewNode(cddl.IntKind)
	n.MinQty, n.MaxQty = 0, 1
	if !p.PresentVarCondition(n) {
		t.Fatal("expected optional node to need _present")
	}

	required := cddl.NewNode(cddl.IntKind)
	if p.PresentVarCondition(required) {
		t.Fatal("required node should not need _present")
	}
}

func TestCountVarConditionMatchesRepeated(t *testing.T) {
	p := New(false)
	n := cddl.NewNode(cddl.IntKind)
	n.MinQty, n.MaxQty = 0, cddl.Unbounded
	if !p.CountVarCondition(n) {
		t.Fatal("expected unbounded node to need _count")
	}
}

func TestKeyVarConditionThroughUnion(t *testing.T) {
	p := New(false)
	keyed := cddl.NewNode(cddl.IntKind)
	keyed.Key = cddl.NewNode(cddl.TstrKind)

	u := cddl.NewNode(cddl.UnionKind)
	u.Children = []*cddl.Node{keyed}

	if !p.KeyVarCondition(u, nil) {
		t.Fatal("expected key reachable through UNION child")
	}
}

func TestMultiValConditionCountsAmbiguousChildren(t *testing.T) {
	p := New(false)
	m := cddl.NewNode(cddl.MapKind)
	a := cddl.NewNode(cddl.IntKind)
	a.Key = cddl.NewNode(cddl.TstrKind)
	b := cddl.NewNode(cddl.TstrKind)
	b.Key = cddl.NewNode(cddl.TstrKind)
	m.Children = []*cddl.Node{a, b}

	if !p.MultiValCondition(m) {
		t.Fatal("two ambiguous children should trigger MultiValCondition")
	}
}

func TestSkipConditionCollapsesSingleChildWrapper(t *testing.T) {
	p := New(false)
	inner := cddl.NewNode(cddl.IntKind)
	group := cddl.NewNode(cddl.GroupKind)
	group.Children = []*cddl.Node{inner}

	if !p.SkipCondition(group) {
		t.Fatal("single-child GROUP with no multi-var condition should skip")
	}
}

func TestIsUnambiguousLiteralVsRange(t *testing.T) {
	lit := cddl.NewNode(cddl.IntKind)
	lit.Value = int64(3)
	if !IsUnambiguous(lit) {
		t.Fatal("a literal-valued INT should be unambiguous")
	}

	ranged := cddl.NewNode(cddl.IntKind)
	if IsUnambiguous(ranged) {
		t.Fatal("a bare INT with no literal value should not be unambiguous")
	}
}

func TestDebugModeDetectsInconsistentPredicate(t *testing.T) {
	p := New(true)
	n := cddl.NewNode(cddl.IntKind)
	n.MinQty, n.MaxQty = 0, 1

	if !p.PresentVarCondition(n) {
		t.Fatal("expected optional node to need _present")
	}

	// Mutating the node between passes would make the recomputed value
	// disagree with the cached one; debug mode must catch that via panic
	// rather than silently returning the stale cached value (spec §9).
	n.MaxQty = 5
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on predicate inconsistency in debug mode")
		}
	}()
	p.PresentVarCondition(n)
}
