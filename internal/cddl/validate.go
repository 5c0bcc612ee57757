package cddl

// PostValidate enforces the invariants of spec §3.1 over n's subtree and
// resolves every OTHER target by dictionary lookup (spec §4.1.4). visiting
// tracks the chain of rule names currently being resolved so a reference
// cycle broken only by a non-.cbor edge can be reported instead of
// recursing forever; cycles broken by a BSTR .cbor T edge are permitted
// per spec §3.2.
func PostValidate(n *Node, g *Graph, visiting map[string]bool) error {
	return postValidate(n, g, visiting, false)
}

func postValidate(n *Node, g *Graph, visiting map[string]bool, underCbor bool) error {
	if n == nil {
		return nil
	}

	switch n.Kind {
	case MapKind:
		for _, c := range n.Children {
			if !hasReachableKey(c, g, map[*Node]bool{}) {
				return &ValidationError{NodeKind: MapKind, Invariant: "map child must have a key", Detail: describeNode(c)}
			}
		}
	case ListKind:
		for i, c := range n.Children {
			if c.Key != nil {
				return &ValidationError{NodeKind: ListKind, Invariant: "list child must not have a key", Detail: describeNode(c)}
			}
			if c.Kind == AnyKind && c.MinQty != c.MaxQty && i != len(n.Children)-1 {
				return &ValidationError{NodeKind: ListKind, Invariant: "ANY with variable quantity must be the last list element", Detail: describeNode(c)}
			}
		}
	case UnionKind:
		if len(n.Children) > 1 {
			for _, c := range n.Children {
				if c.Kind == AnyKind {
					return &ValidationError{NodeKind: UnionKind, Invariant: "ANY inside a multi-alternative UNION would shadow siblings", Detail: describeNode(c)}
				}
			}
		}
	}

	if n.Size != nil || n.MinSize != nil {
		if !sizableKind(n.Kind) {
			return &ValidationError{NodeKind: n.Kind, Invariant: ".size applies only to sizable kinds"}
		}
		if n.Kind == IntKind || n.Kind == UintKind || n.Kind == NintKind {
			if n.Size != nil && (*n.Size < 0 || *n.Size > 8) {
				return &ValidationError{NodeKind: n.Kind, Invariant: "integer .size must be within 0-8"}
			}
		}
	}

	if n.Kind == FloatKind && n.Size != nil {
		if !isValidFloatSize(*n.Size) {
			return &ValidationError{NodeKind: n.Kind, Invariant: "float size must be one of {2,4,8}"}
		}
	}
	if n.Kind == FloatKind && n.MinSize != nil {
		if !isValidFloatSize(*n.MinSize) || !isValidFloatSize(*n.MaxSize) {
			return &ValidationError{NodeKind: n.Kind, Invariant: "float size range must lie within {2,4,8}"}
		}
	}

	if n.Cbor != nil && n.Kind != BstrKind {
		return &ValidationError{NodeKind: n.Kind, Invariant: ".cbor/.cborseq applies only to BSTR"}
	}
	if n.Bits != "" {
		if n.Kind != UintKind {
			return &ValidationError{NodeKind: n.Kind, Invariant: ".bits applies only to UINT"}
		}
		if _, ok := g.ControlGroups[n.Bits]; !ok {
			return &ValidationError{NodeKind: n.Kind, Invariant: "unresolved .bits control group", Detail: n.Bits}
		}
	}

	if n.HasDefault {
		if !n.IsOptional() {
			return &ValidationError{NodeKind: n.Kind, Invariant: "default requires quantifier '?'"}
		}
		if !defaultMatchesKind(n) {
			return &ValidationError{NodeKind: n.Kind, Invariant: "default value type does not match element type"}
		}
	}

	if n.Kind == OtherKind {
		target, ok := g.Lookup(n.Target)
		if !ok {
			if n.IsSocket {
				return nil // dropped earlier by flatten; defensive
			}
			return &ValidationError{NodeKind: OtherKind, Invariant: "unresolved reference", Detail: n.Target}
		}
		if target.Kind != n.Kind {
			// Resolving through OTHER does not itself constrain the
			// target's dynamic kind (a reference is transparent); this
			// branch only guards accidental self-reference loops.
		}
		if visiting[n.Target] && !underCbor {
			return &ValidationError{NodeKind: OtherKind, Invariant: "reference cycle not broken by a .cbor boundary", Detail: n.Target}
		}
		if !visiting[n.Target] {
			visiting[n.Target] = true
			err := postValidate(target, g, visiting, underCbor)
			delete(visiting, n.Target)
			if err != nil {
				return err
			}
		}
	}

	nextUnderCbor := underCbor
	if n.Cbor != nil {
		if err := postValidate(n.Cbor, g, visiting, true); err != nil {
			return err
		}
	}
	for _, c := range n.Children {
		if err := postValidate(c, g, visiting, nextUnderCbor); err != nil {
			return err
		}
	}
	if n.Key != nil {
		if err := postValidate(n.Key, g, visiting, nextUnderCbor); err != nil {
			return err
		}
	}

	return nil
}

// hasReachableKey reports whether n carries a key directly, or reaches
// one through chains of OTHER/GROUP/UNION (spec §3.1: "A MAP child MUST
// have a key (directly, or reachable through chains of OTHER, GROUP,
// UNION)").
func hasReachableKey(n *Node, g *Graph, seen map[*Node]bool) bool {
	if n == nil || seen[n] {
		return false
	}
	seen[n] = true
	if n.Key != nil {
		return true
	}
	switch n.Kind {
	case OtherKind:
		if target, ok := g.Lookup(n.Target); ok {
			return hasReachableKey(target, g, seen)
		}
		return false
	case GroupKind, UnionKind:
		for _, c := range n.Children {
			if hasReachableKey(c, g, seen) {
				return true
			}
		}
	}
	return false
}

func isValidFloatSize(n int) bool { return n == 2 || n == 4 || n == 8 }

func defaultMatchesKind(n *Node) bool {
	switch n.Kind {
	case IntKind, UintKind, NintKind:
		_, ok := n.Default.(int64)
		return ok
	case FloatKind:
		_, ok := n.Default.(float64)
		return ok
	case TstrKind:
		_, ok := n.Default.(string)
		return ok
	case BstrKind:
		_, ok := n.Default.([]byte)
		return ok
	case BoolKind:
		_, ok := n.Default.(bool)
		return ok
	default:
		return true
	}
}

func describeNode(n *Node) string {
	if n == nil {
		return "<nil>"
	}
	if n.Label != "" {
		return n.Label
	}
	if n.Kind == OtherKind {
		return n.Target
	}
	return n.Kind.String()
}
