package c

import (
	"fmt"

	"github.com/zcbor/cddlc/internal/cddl"
)

// Field is one emitted struct member (spec §4.4.1).
type Field struct {
	Name     string
	CType    string
	ArrayLen string // non-empty ⇒ "CType Name[ArrayLen];"
	Comment  string
}

// Typedef is one emitted "typedef struct { ... } <Name>_t;" (spec §4.4.1).
type Typedef struct {
	Name   string
	Fields []Field
}

// valTypeName returns the C type used to hold n's value, independent of
// whether n is wrapped in a present/count/choice envelope (spec §4.4.1
// item 2): fixed-width integer types, float/double, struct zcbor_string,
// bool, a nested struct name, or (for UNION) the name of its anonymous
// union.
func valTypeName(n *cddl.Node) string {
	switch n.Kind {
	case cddl.UintKind:
		return fmt.Sprintf("uint%d_t", intBits(n))
	case cddl.IntKind, cddl.NintKind:
		return fmt.Sprintf("int%d_t", intBits(n))
	case cddl.FloatKind:
		if n.Size != nil && *n.Size <= 4 {
			return "float"
		}
		return "double"
	case cddl.BstrKind, cddl.TstrKind:
		return "struct zcbor_string"
	case cddl.BoolKind:
		return "bool"
	case cddl.NilKind, cddl.UndefKind:
		return "" // carries no value
	default:
		return n.BaseName + "_t"
	}
}

// intBits picks the narrowest of {8,16,32,64} that holds n (spec §4.4.1,
// §8 "-128..127 → int8_t", "0..65535 → uint16_t"): an explicit .size
// wins, falling back to the bounds of a value range, and finally to 64
// when neither constrains the width.
func intBits(n *cddl.Node) int {
	if n.Size != nil {
		return bytesToBits(*n.Size)
	}
	if n.MaxSize != nil {
		return bytesToBits(*n.MaxSize)
	}
	if n.MinValue == nil && n.MaxValue == nil {
		return 64
	}
	if n.Kind == cddl.UintKind {
		var hi uint64
		if n.MaxValue != nil {
			hi = n.MaxValue.Uint64()
		}
		switch {
		case hi <= 0xFF:
			return 8
		case hi <= 0xFFFF:
			return 16
		case hi <= 0xFFFFFFFF:
			return 32
		default:
			return 64
		}
	}

	var lo, hi int64
	if n.MinValue != nil {
		lo = n.MinValue.Int64()
	}
	if n.MaxValue != nil {
		hi = n.MaxValue.Int64()
	}
	for _, bits := range []int{8, 16, 32} {
		half := int64(1) << (bits - 1)
		if lo >= -half && hi <= half-1 {
			return bits
		}
	}
	return 64
}

func bytesToBits(sz int) int {
	switch {
	case sz <= 1:
		return 8
	case sz <= 2:
		return 16
	case sz <= 4:
		return 32
	default:
		return 64
	}
}

// buildTypedefs builds one Typedef per entry type (and, transitively, per
// descendant node that graph.SingleFuncImplCondition selects), in
// ascending depends_on order, and fails on a name collision between two
// typedefs with differing bodies (spec §4.4.1 "Deduplicate by exact name").
func (gen *Generator) buildTypedefs(entries []string) ([]*Typedef, error) {
	seen := map[string]*Typedef{}
	var ordered []*Typedef

	var walk func(n *cddl.Node, forceOwn bool) error
	walk = func(n *cddl.Node, forceOwn bool) error {
		if n == nil {
			return nil
		}
		for _, c := range n.Children {
			if err := walk(c, false); err != nil {
				return err
			}
		}
		if n.Key != nil {
			if err := walk(n.Key, false); err != nil {
				return err
			}
		}
		if n.Cbor != nil {
			if err := walk(n.Cbor, false); err != nil {
				return err
			}
		}

		if !forceOwn && (!gen.Preds.SingleFuncImplCondition(n) || gen.Preds.DelegateTypeCondition(n)) {
			return nil
		}

		td := gen.buildTypedef(n)
		if existing, ok := seen[td.Name]; ok {
			if !typedefsEqual(existing, td) {
				return &cddl.EmissionError{Name: td.Name, Detail: "conflicting typedef bodies"}
			}
			return nil
		}
		seen[td.Name] = td
		ordered = append(ordered, td)
		return nil
	}

	for _, name := range entries {
		n, ok := gen.Graph.Types[name]
		if !ok {
			continue
		}
		// Entry types always get their own named typedef: the public
		// entry-point wrapper declares "T *value" using n.BaseName+"_t"
		// unconditionally, even for a bare scalar entry that
		// DelegateTypeCondition would otherwise fold away (spec §4.4.3).
		if err := walk(n, true); err != nil {
			return nil, err
		}
	}
	return ordered, nil
}

func typedefsEqual(a, b *Typedef) bool {
	if len(a.Fields) != len(b.Fields) {
		return false
	}
	for i := range a.Fields {
		if a.Fields[i] != b.Fields[i] {
			return false
		}
	}
	return true
}

// buildTypedef assembles n's field list per the item order of spec
// §4.4.1: key field(s), value field, UNION union+choice, .cbor nested
// decl, repeated→array, optional→_present, variably-repeated→_count.
func (gen *Generator) buildTypedef(n *cddl.Node) *Typedef {
	td := &Typedef{Name: n.BaseName + "_t"}

	switch n.Kind {
	case cddl.MapKind, cddl.ListKind, cddl.GroupKind:
		// A container's own struct holds one field-group per member,
		// not a single value field typed by the container itself (spec
		// §4.4.1 applies items 1-7 per element; a MAP/LIST/GROUP's
		// "elements" are its children).
		for _, c := range n.Children {
			td.Fields = append(td.Fields, gen.nodeFields(c)...)
		}
	default:
		td.Fields = gen.nodeFields(n)
	}

	return td
}

// nodeFields composes one node's own field contribution per spec §4.4.1
// items 1,2,4,6,7: key, value, .cbor nested decl, optional _present,
// variably-repeated _count. Item 3 (UNION's anonymous union + _choice) is
// folded into the value/choice fields here since a UNION always has its
// own typedef (it needsOwnFunction) rather than being inlined as a bare
// child. buildTypedef calls this once for a scalar entry and once per
// child when n is itself a MAP/LIST/GROUP container.
func (gen *Generator) nodeFields(n *cddl.Node) []Field {
	var fields []Field

	if n.Key != nil && gen.Preds.KeyVarCondition(n, gen.Graph) {
		fields = append(fields, Field{Name: n.Key.BaseName + "_key", CType: valTypeName(n.Key)})
	}

	valField := Field{Name: n.BaseName, CType: valTypeName(n)}
	if n.Kind == cddl.UnionKind {
		valField.Comment = "anonymous union of alternatives"
	}

	arrLen := ""
	if gen.Preds.CountVarCondition(n) {
		arrLen = maxQtyExpr(n, gen.Opts.DefaultMaxQty)
	}
	valField.ArrayLen = arrLen
	if valField.CType != "" {
		fields = append(fields, valField)
	}

	if n.Kind == cddl.UnionKind {
		fields = append(fields, Field{Name: n.BaseName + "_choice", CType: "enum " + n.BaseName + "_choice"})
	}

	if n.Cbor != nil {
		fields = append(fields, Field{Name: n.BaseName + "_cbor", CType: valTypeName(n.Cbor)})
	}

	if gen.Preds.PresentVarCondition(n) {
		fields = append(fields, Field{Name: n.BaseName + "_present", CType: "bool"})
	}
	if n.IsVariableRepeated() {
		fields = append(fields, Field{Name: n.BaseName + "_count", CType: "size_t"})
	}

	return fields
}

// maxQtyExpr renders the array bound for a repeated node: the literal
// max_qty, or the project's DEFAULT_MAX_QTY macro when unbounded (spec
// §4.4.1 item 7).
func maxQtyExpr(n *cddl.Node, defaultMaxQty int) string {
	if n.MaxQty == cddl.Unbounded {
		return "DEFAULT_MAX_QTY"
	}
	return fmt.Sprintf("%d", n.MaxQty)
}

func (gen *Generator) renderTypesHeader(typedefs []*Typedef) (string, error) {
	return gen.render("types_h.tpl", map[string]any{
		"Project":       gen.Opts.Project,
		"Typedefs":      typedefs,
		"DefaultMaxQty": gen.Opts.DefaultMaxQty,
	})
}
