package cddl

import (
	"strconv"
	"strings"
)

// SetIDPrefix walks n's subtree assigning an id-prefix to every node (spec
// §4.2): a node that will need its own emitted function uses its own
// generate_base_name() as the prefix handed to its descendants; every
// other node simply propagates the prefix it was given.
func SetIDPrefix(n *Node, prefix string) {
	setIDPrefix(n, prefix)
}

func setIDPrefix(n *Node, prefix string) {
	if n == nil {
		return
	}
	n.IDPrefix = prefix

	childPrefix := prefix
	if needsOwnFunction(n) {
		childPrefix = generateBaseName(n, prefix)
	}

	for _, c := range n.Children {
		setIDPrefix(c, childPrefix)
	}
	if n.Key != nil {
		setIDPrefix(n.Key, childPrefix+"_key")
	}
	if n.Cbor != nil {
		setIDPrefix(n.Cbor, childPrefix+"_cbor")
	}
}

// needsOwnFunction reports whether n is emitted as its own C struct/function
// rather than inlined into its parent: every compound kind, and any node
// carrying a nested .cbor type, gets one (spec §4.2, §4.4).
func needsOwnFunction(n *Node) bool {
	switch n.Kind {
	case ListKind, MapKind, GroupKind, UnionKind:
		return true
	}
	return n.Cbor != nil
}

// SetBaseNames walks n's subtree composing each node's BaseName (spec
// §3.1's priority list) and BaseStem ("<parent>_key" / "<parent>_cbor"
// suffixes), latinizing every raw name to a C identifier.
func SetBaseNames(n *Node, parentStem string) {
	setBaseNames(n, parentStem)
}

func setBaseNames(n *Node, parentStem string) {
	if n == nil {
		return
	}
	n.BaseStem = parentStem
	n.BaseName = latinize(generateBaseName(n, parentStem))

	for _, c := range n.Children {
		setBaseNames(c, n.BaseName)
	}
	if n.Key != nil {
		setBaseNames(n.Key, n.BaseName+"_key")
	}
	if n.Cbor != nil {
		setBaseNames(n.Cbor, n.BaseName+"_cbor")
	}
}

// generateBaseName derives a node's base name using the priority order of
// spec §3.1: explicit override (none modeled; labels serve that role here),
// label, key value/name, literal value for strings/ints, containing type
// name, target name for OTHER, first child's base_name for LIST/GROUP, cbor
// child's name, or finally the kind name.
func generateBaseName(n *Node, fallback string) string {
	if n.Label != "" {
		return n.Label
	}
	if n.Key != nil {
		if s := literalName(n.Key); s != "" {
			return s
		}
	}
	if s := literalName(n); s != "" {
		return s
	}
	switch n.Kind {
	case OtherKind:
		return n.Target
	case ListKind, GroupKind:
		if len(n.Children) > 0 {
			if s := generateBaseName(n.Children[0], ""); s != "" {
				return s
			}
		}
	}
	if n.Cbor != nil {
		if s := generateBaseName(n.Cbor, ""); s != "" {
			return s
		}
	}
	if fallback != "" {
		return fallback
	}
	return n.Kind.String()
}

// literalName renders a literal-valued node's value as a name fragment,
// used when a key or node is a string/int literal (spec §3.1).
func literalName(n *Node) string {
	if n == nil || n.Value == nil {
		return ""
	}
	switch v := n.Value.(type) {
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	}
	return ""
}

// latinize maps a raw CDDL name to the C identifier pattern
// [A-Za-z_][A-Za-z0-9_]* (spec §3.1), replacing every disallowed byte with
// '_' and prefixing with '_' if the result would otherwise start with a
// digit.
func latinize(s string) string {
	if s == "" {
		return "_"
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
			b.WriteByte(c)
		case c >= '0' && c <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteByte(c)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// uniquify walks n's subtree assigning collision-free emitted names:
// every node that needsOwnFunction claims "<id_prefix>_<base_name>" in
// assigned, appending "_r" (repeated) and then a numeric suffix until
// free, matching the teacher's clone-on-conflict naming discipline rather
// than silently shadowing an earlier declaration.
func uniquify(n *Node, assigned map[string]bool) error {
	if n == nil {
		return nil
	}
	if needsOwnFunction(n) {
		candidate := n.IDPrefix + "_" + n.BaseName
		if candidate == "" || candidate == "_" {
			candidate = "_anon"
		}
		final := candidate
		suffix := 0
		for assigned[final] {
			suffix++
			if suffix == 1 {
				final = candidate + "_r"
				continue
			}
			final = candidate + "_r" + strconv.Itoa(suffix)
		}
		assigned[final] = true
		n.BaseName = strings.TrimPrefix(final, n.IDPrefix+"_")
	}

	for _, c := range n.Children {
		if err := uniquify(c, assigned); err != nil {
			return err
		}
	}
	if n.Key != nil {
		if err := uniquify(n.Key, assigned); err != nil {
			return err
		}
	}
	if n.Cbor != nil {
		if err := uniquify(n.Cbor, assigned); err != nil {
			return err
		}
	}
	return nil
}
