// Package graph holds the predicate layer shared by the C code generator
// (internal/codegen/c) and, where emitted shape informs validation, the
// data translator (internal/translate). Both traversals — declaration
// emission and function-body emission — must see the same boolean for a
// given node, so every predicate is computed once and memoized per node
// (spec §4.3, §9 "Two emit passes").
package graph

import (
	"fmt"

	"github.com/zcbor/cddlc/internal/cddl"
)

// Predicates is a memoization cache keyed by node identity. A Predicates
// value is built once per entry-type traversal and reused across the
// declaration and body emission passes so the two passes can never
// disagree (spec §4.3).
type Predicates struct {
	cache map[*cddl.Node]*entry
	debug bool
}

type entry struct {
	present          *bool
	count            *bool
	key              *bool
	cbor             *bool
	choice           *bool
	multiVal         *bool
	repeatedMulti    *bool
	multi            *bool
	selfRepeatedMulti *bool
	skip             *bool
	delegateType     *bool
	rangeCheck       *bool
	singleFuncImpl   *bool
	repeatedSingle   *bool
}

// New returns a Predicates cache. When debug is true, every memoized
// predicate is recomputed on each call and compared against the cached
// value, panicking on mismatch (spec §9).
func New(debug bool) *Predicates {
	return &Predicates{cache: map[*cddl.Node]*entry{}, debug: debug}
}

func (p *Predicates) entryFor(n *cddl.Node) *entry {
	e, ok := p.cache[n]
	if !ok {
		e = &entry{}
		p.cache[n] = e
	}
	return e
}

func memo(p *Predicates, slot **bool, compute func() bool) bool {
	if *slot != nil {
		if p.debug {
			got := compute()
			if got != **slot {
				panic(fmt.Sprintf("graph: predicate inconsistent between passes: cached=%v recomputed=%v", **slot, got))
			}
		}
		return **slot
	}
	v := compute()
	*slot = &v
	return v
}

// PresentVarCondition reports whether n needs a "bool _present" field: an
// optional ('?') element (spec §4.3).
func (p *Predicates) PresentVarCondition(n *cddl.Node) bool {
	e := p.entryFor(n)
	return memo(p, &e.present, func() bool { return n.IsOptional() })
}

// CountVarCondition reports whether n needs a "size_t _count" field: a
// repeated (qty > 1 or variable) element (spec §4.3).
func (p *Predicates) CountVarCondition(n *cddl.Node) bool {
	e := p.entryFor(n)
	return memo(p, &e.count, func() bool { return n.IsRepeated() })
}

// KeyVarCondition reports whether a key is required at n, directly or
// recursively through OTHER/UNION/GROUP (spec §4.3). g may be nil if n is
// known not to be an OTHER node needing resolution.
func (p *Predicates) KeyVarCondition(n *cddl.Node, g *cddl.Graph) bool {
	e := p.entryFor(n)
	return memo(p, &e.key, func() bool { return keyReachable(n, g, map[*cddl.Node]bool{}) })
}

func keyReachable(n *cddl.Node, g *cddl.Graph, seen map[*cddl.Node]bool) bool {
	if n == nil || seen[n] {
		return false
	}
	seen[n] = true
	if n.Key != nil {
		return true
	}
	if n.Kind == cddl.OtherKind && g != nil {
		if target, ok := g.Lookup(n.Target); ok {
			return keyReachable(target, g, seen)
		}
		return false
	}
	if n.Kind == cddl.UnionKind || n.Kind == cddl.GroupKind {
		for _, c := range n.Children {
			if keyReachable(c, g, seen) {
				return true
			}
		}
	}
	return false
}

// CborVarCondition reports whether n carries a nested .cbor type, which
// emits a nested struct/decode (spec §4.3).
func (p *Predicates) CborVarCondition(n *cddl.Node) bool {
	e := p.entryFor(n)
	return memo(p, &e.cbor, func() bool { return n.Cbor != nil })
}

// ChoiceVarCondition reports whether n is a UNION needing an "enum
// ..._choice" discriminant (spec §4.3).
func (p *Predicates) ChoiceVarCondition(n *cddl.Node) bool {
	e := p.entryFor(n)
	return memo(p, &e.choice, func() bool { return n.Kind == cddl.UnionKind })
}

// MultiValCondition reports whether n is a compound with more than one
// meaningful (non-unambiguous) child (spec §4.3).
func (p *Predicates) MultiValCondition(n *cddl.Node) bool {
	e := p.entryFor(n)
	return memo(p, &e.multiVal, func() bool {
		if !isCompound(n) {
			return false
		}
		count := 0
		for _, c := range n.Children {
			if !IsUnambiguous(c) {
				count++
			}
		}
		return count > 1
	})
}

// RepeatedMultiVarCondition composes CountVarCondition with MultiValCondition:
// the node is both repeated and carries more than one meaningful child, so
// its repeated element itself needs a multi-field wrapper struct (spec
// §4.3 "compose the above into two tiers").
func (p *Predicates) RepeatedMultiVarCondition(n *cddl.Node) bool {
	e := p.entryFor(n)
	return memo(p, &e.repeatedMulti, func() bool {
		return p.CountVarCondition(n) && p.MultiValCondition(n)
	})
}

// MultiVarCondition reports whether n needs a wrapper struct at all: either
// it is multi-valued outright, or it is optional/cbor-bearing/choice-bearing
// on top of a single value (spec §4.3).
func (p *Predicates) MultiVarCondition(n *cddl.Node) bool {
	e := p.entryFor(n)
	return memo(p, &e.multi, func() bool {
		return p.MultiValCondition(n) || p.PresentVarCondition(n) || p.ChoiceVarCondition(n) || p.CborVarCondition(n)
	})
}

// SelfRepeatedMultiVarCondition reports whether n's own outer repetition
// wrapper (as opposed to an inner repeated child) needs the multi-field
// struct shape (spec §4.3's "outer repetition wrapper" tier).
func (p *Predicates) SelfRepeatedMultiVarCondition(n *cddl.Node) bool {
	e := p.entryFor(n)
	return memo(p, &e.selfRepeatedMulti, func() bool {
		return p.CountVarCondition(n) && p.MultiVarCondition(n)
	})
}

// SkipCondition reports whether n is a single-child compound whose struct
// collapses into its child's (spec §4.3).
func (p *Predicates) SkipCondition(n *cddl.Node) bool {
	e := p.entryFor(n)
	return memo(p, &e.skip, func() bool {
		return isCompound(n) && len(n.Children) == 1 && !p.MultiVarCondition(n)
	})
}

// DelegateTypeCondition is SkipCondition's C-type-level counterpart:
// whether n's emitted val-type-name can simply be its child's, rather than
// a freshly named struct (spec §4.3).
func (p *Predicates) DelegateTypeCondition(n *cddl.Node) bool {
	e := p.entryFor(n)
	return memo(p, &e.delegateType, func() bool {
		return p.SkipCondition(n) && !p.CborVarCondition(n)
	})
}

// RangeCheckCondition reports whether n needs post-xcode bounds checks:
// numeric ranges, a .bits bitmask, or string/bytes length bounds (spec
// §4.3).
func (p *Predicates) RangeCheckCondition(n *cddl.Node) bool {
	e := p.entryFor(n)
	return memo(p, &e.rangeCheck, func() bool {
		if n.MinValue != nil || n.MaxValue != nil {
			return true
		}
		if n.Bits != "" {
			return true
		}
		if n.MinSize != nil || (n.Size != nil && !isUnambiguousSize(n)) {
			return true
		}
		return false
	})
}

func isUnambiguousSize(n *cddl.Node) bool {
	return n.MinSize != nil && n.MaxSize != nil && *n.MinSize == *n.MaxSize
}

// SingleFuncImplCondition reports whether n warrants its own emitted
// function rather than being inlined at its call site (spec §4.3): any
// compound, or any node carrying a nested .cbor.
func (p *Predicates) SingleFuncImplCondition(n *cddl.Node) bool {
	e := p.entryFor(n)
	return memo(p, &e.singleFuncImpl, func() bool {
		return isCompound(n) || p.CborVarCondition(n)
	})
}

// RepeatedSingleFuncImplCondition is SingleFuncImplCondition's repeated-
// element counterpart, used to decide whether the repetition driver needs
// a distinct child function pointer (spec §4.3).
func (p *Predicates) RepeatedSingleFuncImplCondition(n *cddl.Node) bool {
	e := p.entryFor(n)
	return memo(p, &e.repeatedSingle, func() bool {
		return p.CountVarCondition(n) && p.SingleFuncImplCondition(n)
	})
}

func isCompound(n *cddl.Node) bool {
	switch n.Kind {
	case cddl.ListKind, cddl.MapKind, cddl.GroupKind, cddl.UnionKind:
		return true
	}
	return false
}

// IsUnambiguous reports whether n's encoding is knowable a priori — a
// literal, or a compound whose children are all unambiguous with fixed
// quantifiers — so it carries no runtime data and is omitted from
// generated structs (spec §4.2).
func IsUnambiguous(n *cddl.Node) bool {
	if n == nil {
		return true
	}
	if n.IsVariableRepeated() {
		return false
	}
	switch n.Kind {
	case cddl.IntKind, cddl.UintKind, cddl.NintKind, cddl.FloatKind, cddl.TstrKind, cddl.BstrKind:
		return n.Value != nil && n.MinValue == nil && n.MaxValue == nil
	case cddl.BoolKind, cddl.NilKind, cddl.UndefKind:
		return true
	case cddl.ListKind, cddl.MapKind, cddl.GroupKind, cddl.UnionKind:
		for _, c := range n.Children {
			if !IsUnambiguous(c) {
				return false
			}
		}
		return true
	}
	return false
}

// IsUnambiguousRepeated reports whether a repeated n's element is itself
// unambiguous, meaning the repetition needs only a count, not per-element
// storage beyond a fixed-shape array (spec §4.2).
func IsUnambiguousRepeated(n *cddl.Node) bool {
	return n.IsRepeated() && IsUnambiguous(n)
}
