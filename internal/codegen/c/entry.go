package c

import (
	"fmt"

	"github.com/zcbor/cddlc/internal/cddl"
)

// EntryFunction is one exported "int cbor_<op>_<type>(...)" wrapper (spec
// §4.4.3).
type EntryFunction struct {
	Name       string
	Type       string
	InnerFn    string
	StackDepth int // 2 + num_backups()
	ListCount  string
}

func (gen *Generator) buildEntryFunctions(entries []string, mode string) ([]*EntryFunction, error) {
	var out []*EntryFunction
	for _, name := range entries {
		n, ok := gen.Graph.Types[name]
		if !ok {
			continue
		}
		out = append(out, &EntryFunction{
			Name:       fmt.Sprintf("cbor_%s_%s", mode, n.BaseName),
			Type:       n.BaseName + "_t",
			InnerFn:    fmt.Sprintf("ZCBOR_CUSTOM_CAST_FP(%s_%s_fn)", mode, n.BaseName),
			StackDepth: 2 + numBackups(n, gen.Graph, map[*cddl.Node]bool{}),
			ListCount:  maxListCountExpr(n),
		})
	}
	return out, nil
}

// numBackups recursively sums +1 for each MAP/LIST/UNION/.cbor node and
// each key, taking the maximum over a UNION's children rather than their
// sum (spec §4.4.3: "maximum over UNION children").
func numBackups(n *cddl.Node, g *cddl.Graph, seen map[*cddl.Node]bool) int {
	if n == nil || seen[n] {
		return 0
	}
	seen[n] = true
	defer delete(seen, n)

	self := 0
	switch n.Kind {
	case cddl.MapKind, cddl.ListKind, cddl.UnionKind:
		self = 1
	}
	if n.Cbor != nil {
		self++
	}

	childTotal := 0
	if n.Kind == cddl.UnionKind {
		for _, c := range n.Children {
			if d := numBackups(c, g, seen); d > childTotal {
				childTotal = d
			}
		}
	} else {
		for _, c := range n.Children {
			childTotal += numBackups(c, g, seen)
		}
	}

	keyTotal := 0
	if n.Key != nil {
		keyTotal = 1 + numBackups(n.Key, g, seen)
	}

	cborTotal := 0
	if n.Cbor != nil {
		cborTotal = numBackups(n.Cbor, g, seen)
	}

	if n.Kind == cddl.OtherKind {
		if target, ok := g.Lookup(n.Target); ok {
			childTotal += numBackups(target, g, seen)
		}
	}

	return self + childTotal + keyTotal + cborTotal
}
