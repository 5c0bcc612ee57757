package cddl

// Flatten applies spec §4.1.3 to n and its subtree:
//   - recursively flattens children, key, and cbor;
//   - collapses a UNION or GROUP with exactly one child and no key
//     conflict into that child, multiplying quantifiers and propagating
//     label/key/tags;
//   - drops OTHER references to undefined sockets;
//   - when allowMulti is true, additionally expands a singly-quantified
//     GROUP into its children in place (used when flattening the
//     children of a LIST/MAP/GROUP, where a nested group's members
//     belong directly to the parent's entry list).
func Flatten(n *Node, g *Graph, allowMulti bool) *Node {
	if n == nil {
		return nil
	}

	if n.Kind == OtherKind && n.IsSocket {
		if _, defined := g.Types[n.Target]; !defined {
			return nil
		}
	}

	switch n.Kind {
	case ListKind, MapKind, GroupKind, UnionKind:
		n.Children = flattenChildren(n.Children, g, n.Kind != UnionKind)
	}

	n.Key = Flatten(n.Key, g, false)
	n.Cbor = Flatten(n.Cbor, g, false)

	if (n.Kind == UnionKind || n.Kind == GroupKind) && len(n.Children) == 1 {
		child := n.Children[0]
		if child != nil && compatibleForCollapse(n, child) {
			collapsed := child.Clone()
			multiplyQuantifier(collapsed, n)
			if collapsed.Label == "" {
				collapsed.Label = n.Label
			}
			if collapsed.Key == nil {
				collapsed.Key = n.Key
			}
			collapsed.Tags = append(append([]int64(nil), n.Tags...), collapsed.Tags...)
			return collapsed
		}
	}

	if allowMulti && n.Kind == GroupKind && !n.IsQuantified() {
		// Caller (flattenChildren) already knows to splice; signal by
		// leaving Children populated. Splicing happens one level up.
	}

	return n
}

func compatibleForCollapse(parent, child *Node) bool {
	// A union collapsing into a child that already carries its own key
	// would silently discard the parent's map-key requirement if the
	// child also has one; refuse the collapse in that case so
	// post_validate can report the conflict instead of hiding it.
	if parent.Key != nil && child.Key != nil {
		return false
	}
	return true
}

func multiplyQuantifier(dst, src *Node) {
	if src.MinQty == 1 && src.MaxQty == 1 {
		return
	}
	if dst.MinQty == 1 && dst.MaxQty == 1 {
		dst.MinQty, dst.MaxQty = src.MinQty, src.MaxQty
		return
	}
	dst.MinQty *= src.MinQty
	if dst.MaxQty == Unbounded || src.MaxQty == Unbounded {
		dst.MaxQty = Unbounded
	} else {
		dst.MaxQty *= src.MaxQty
	}
}

// flattenChildren flattens each child and, when allowMulti is set,
// splices in the children of any singly-quantified GROUP result in
// place, implementing the allow_multi expansion of spec §4.1.3.
func flattenChildren(children []*Node, g *Graph, allowMulti bool) []*Node {
	out := make([]*Node, 0, len(children))
	for _, c := range children {
		fc := Flatten(c, g, allowMulti)
		if fc == nil {
			continue // dropped undefined socket
		}
		if allowMulti && fc.Kind == GroupKind && !fc.IsQuantified() && fc.Key == nil {
			out = append(out, fc.Children...)
			continue
		}
		out = append(out, fc)
	}
	return out
}
