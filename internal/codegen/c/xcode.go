package c

import (
	"fmt"
	"strings"

	"github.com/zcbor/cddlc/internal/cddl"
)

// Function is one emitted "static bool <name>(...)" body (spec §4.4.2).
type Function struct {
	Name   string
	Type   string // the T in "T *result" / "const T *input"
	Mode   string // "decode" or "encode"
	Body   string // the "&&"-chained expression, already newline-joined
}

// buildFunctions emits one Function per node selected by
// SingleFuncImplCondition, in the same traversal order as buildTypedefs so
// the two passes agree (spec §4.3).
func (gen *Generator) buildFunctions(entries []string, mode string) ([]*Function, error) {
	seen := map[string]bool{}
	var out []*Function

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
		if !forceOwn && !gen.Preds.SingleFuncImplCondition(n) {
			return nil
		}
		name := fmt.Sprintf("%s_%s_%s", mode, n.BaseName, "fn")
		if seen[name] {
			return nil
		}
		seen[name] = true

		body, err := gen.emitChain(n, mode)
		if err != nil {
			return err
		}
		out = append(out, &Function{
			Name: name,
			Type: n.BaseName + "_t",
			Mode: mode,
			Body: body,
		})
		return nil
	}

	for _, name := range entries {
		n, ok := gen.Graph.Types[name]
		if !ok {
			continue
		}
		// Entry types always get their own function: buildEntryFunctions
		// emits a wrapper that calls "<mode>_<entry>_fn" unconditionally,
		// even when the entry itself is a bare scalar that SingleFuncImplCondition
		// would otherwise inline at its call site (spec §4.4.3).
		if err := walk(n, true); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// emitChain builds the "&&"-joined xcode expression for n (spec §4.4.2):
// one call or guarded sub-expression per line, joined with " &&\n\t\t",
// or "1" when n needs no call.
func (gen *Generator) emitChain(n *cddl.Node, mode string) (string, error) {
	lines, err := gen.xcodeLines(n, mode)
	if err != nil {
		return "", err
	}
	if len(lines) == 0 {
		return "1", nil
	}
	return strings.Join(lines, " &&\n\t\t"), nil
}

func (gen *Generator) xcodeLines(n *cddl.Node, mode string) ([]string, error) {
	var lines []string

	for _, tag := range n.Tags {
		if mode == "decode" {
			lines = append(lines, fmt.Sprintf("zcbor_tag_expect(state, %d)", tag))
		} else {
			lines = append(lines, fmt.Sprintf("zcbor_tag_put(state, %d)", tag))
		}
	}

	body, err := gen.xcodeBody(n, mode)
	if err != nil {
		return nil, err
	}
	lines = append(lines, body...)

	if rc := gen.rangeCheckExpr(n); rc != "" {
		lines = append(lines, rc)
	}

	return lines, nil
}

func (gen *Generator) xcodeBody(n *cddl.Node, mode string) ([]string, error) {
	switch n.Kind {
	case cddl.IntKind, cddl.UintKind, cddl.NintKind, cddl.FloatKind, cddl.BoolKind,
		cddl.NilKind, cddl.UndefKind, cddl.TstrKind:
		return []string{primitiveCall(n, mode)}, nil

	case cddl.BstrKind:
		if n.Cbor == nil {
			return []string{primitiveCall(n, mode)}, nil
		}
		inner, err := gen.emitChain(n.Cbor, mode)
		if err != nil {
			return nil, err
		}
		return []string{
			fmt.Sprintf("zcbor_bstr_start_%s(state)", mode),
			inner,
			fmt.Sprintf("zcbor_bstr_end_%s(state)", mode),
		}, nil

	case cddl.ListKind, cddl.MapKind:
		container := "list"
		if n.Kind == cddl.MapKind {
			container = "map"
		}
		var inner []string
		for _, c := range n.Children {
			l, err := gen.xcodeChild(c, mode)
			if err != nil {
				return nil, err
			}
			inner = append(inner, l)
		}
		return append(
			[]string{fmt.Sprintf("zcbor_%s_start_%s(state, %s)", container, mode, maxListCountExpr(n))},
			append(inner, fmt.Sprintf("zcbor_%s_end_%s(state)", container, mode))...,
		), nil

	case cddl.GroupKind:
		var inner []string
		for _, c := range n.Children {
			l, err := gen.xcodeChild(c, mode)
			if err != nil {
				return nil, err
			}
			inner = append(inner, l)
		}
		return inner, nil

	case cddl.UnionKind:
		return gen.xcodeUnion(n, mode)

	case cddl.OtherKind:
		target, ok := gen.Graph.Lookup(n.Target)
		if !ok {
			return nil, &cddl.EmissionError{Name: n.Target, Detail: "unresolved OTHER at emission time"}
		}
		return []string{fmt.Sprintf("%s_%s_fn(state, &(%s))", mode, target.BaseName, n.BaseName)}, nil

	default:
		return nil, &cddl.EmissionError{Name: n.BaseName, Detail: "no xcode shape for kind"}
	}
}

// xcodeChild wraps a compound's per-child expression with its repetition
// combinator (optional → zcbor_present_*, repeated → zcbor_multi_*; spec
// §4.4.2 "Repetition").
func (gen *Generator) xcodeChild(c *cddl.Node, mode string) (string, error) {
	inner, err := gen.emitChain(c, mode)
	if err != nil {
		return "", err
	}
	fnRef := fmt.Sprintf("ZCBOR_CUSTOM_CAST_FP(%s_%s_fn)", mode, c.BaseName)

	switch {
	case gen.Preds.PresentVarCondition(c) && !gen.Preds.SingleFuncImplCondition(c):
		return fmt.Sprintf("(%s, %s_present = (%s), 1)", defaultAssignment(c), c.BaseName, inner), nil
	case gen.Preds.PresentVarCondition(c):
		return fmt.Sprintf("zcbor_present_%s(&(%s_present), %s, state)", mode, c.BaseName, fnRef), nil
	case c.IsRepeated():
		return fmt.Sprintf("zcbor_multi_%s(%d, %s, &(%s_count), %s, state, sizeof(%s))",
			mode, c.MinQty, maxQtyCExpr(c, gen.Opts.DefaultMaxQty), c.BaseName, fnRef, valTypeName(c)), nil
	default:
		return inner, nil
	}
}

func defaultAssignment(n *cddl.Node) string {
	if n.HasDefault {
		return fmt.Sprintf("%s = %v", n.BaseName, n.Default)
	}
	return fmt.Sprintf("memset(&%s, 0, sizeof(%s))", n.BaseName, n.BaseName)
}

// xcodeUnion implements spec §4.4.2's decode/encode split for UNION: a
// disambiguated integer fast path when every child starts with a distinct
// literal, otherwise an OR-chain of attempts bracketed by
// zcbor_union_start/elem/end; encode is always a ternary dispatch on
// _choice.
func (gen *Generator) xcodeUnion(n *cddl.Node, mode string) ([]string, error) {
	if mode == "encode" {
		return []string{gen.unionEncodeTernary(n)}, nil
	}

	if disambiguated := literalDisambiguated(n); disambiguated {
		var lines []string
		lines = append(lines, fmt.Sprintf("zcbor_uint32_decode(state, &(%s_choice))", n.BaseName))
		for _, c := range n.Children {
			guard, err := gen.emitChain(c, mode)
			if err != nil {
				return nil, err
			}
			lines = append(lines, fmt.Sprintf("(%s_choice != %s || (%s))", n.BaseName, choiceConst(n, c), guard))
		}
		return lines, nil
	}

	var attempts []string
	for _, c := range n.Children {
		guard, err := gen.emitChain(c, mode)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, fmt.Sprintf("(zcbor_union_elem_code(state) && (%s_choice = %s, %s))", n.BaseName, choiceConst(n, c), guard))
	}
	return []string{
		"zcbor_union_start_code(state)",
		"(" + strings.Join(attempts, " ||\n\t\t\t") + ")",
		"zcbor_union_end_code(state)",
	}, nil
}

func (gen *Generator) unionEncodeTernary(n *cddl.Node) string {
	var b strings.Builder
	for i, c := range n.Children {
		if i > 0 {
			b.WriteString(" : ")
		}
		fmt.Fprintf(&b, "(%s_choice == %s) ? %s_%s_fn(state, &(%s))", n.BaseName, choiceConst(n, c), "encode", c.BaseName, c.BaseName)
	}
	b.WriteString(" : false")
	return b.String()
}

func choiceConst(n, c *cddl.Node) string {
	return strings.ToUpper(n.BaseName) + "_CHOICE_" + strings.ToUpper(c.BaseName)
}

// literalDisambiguated reports whether every alternative of n starts with
// a statically known distinct literal integer, letting decode emit a
// direct integer switch instead of a try-each OR-chain (spec §4.4.2).
func literalDisambiguated(n *cddl.Node) bool {
	seen := map[int64]bool{}
	for _, c := range n.Children {
		if c.Kind != cddl.IntKind && c.Kind != cddl.UintKind && c.Kind != cddl.NintKind {
			return false
		}
		v, ok := c.Value.(int64)
		if !ok || seen[v] {
			return false
		}
		seen[v] = true
	}
	return len(n.Children) > 0
}

func primitiveCall(n *cddl.Node, mode string) string {
	fn := primitiveFnName(n)
	if n.MinValue != nil || n.MaxValue != nil {
		return fmt.Sprintf("zcbor_%s_%s(state, &(%s), %s, %s)", fn, mode, n.BaseName, boundPtr(n, true), boundPtr(n, false))
	}
	return fmt.Sprintf("zcbor_%s_%s(state, &(%s))", fn, mode, n.BaseName)
}

func boundPtr(n *cddl.Node, lower bool) string {
	v := n.MaxValue
	if lower {
		v = n.MinValue
	}
	if v == nil {
		return "NULL"
	}
	return fmt.Sprintf("&(%s_%s_bound)", n.BaseName, boundSuffix(lower))
}

func boundSuffix(lower bool) string {
	if lower {
		return "min"
	}
	return "max"
}

func primitiveFnName(n *cddl.Node) string {
	switch n.Kind {
	case cddl.UintKind:
		return fmt.Sprintf("uint%d", intBits(n))
	case cddl.IntKind, cddl.NintKind:
		return fmt.Sprintf("int%d", intBits(n))
	case cddl.FloatKind:
		sz := 64
		if n.Size != nil {
			sz = *n.Size * 8
		}
		return fmt.Sprintf("float%d", sz)
	case cddl.BstrKind:
		return "bstr"
	case cddl.TstrKind:
		return "tstr"
	case cddl.BoolKind:
		return "bool"
	case cddl.NilKind:
		return "nil"
	case cddl.UndefKind:
		return "undefined"
	default:
		return "any_skip"
	}
}

// maxListCountExpr sums the per-child maximum list-element counts of a
// LIST/MAP node, used as zcbor_list_start_*'s max-count argument (spec
// §4.4.2).
func maxListCountExpr(n *cddl.Node) string {
	total := int64(0)
	unbounded := false
	for _, c := range n.Children {
		if c.MaxQty == cddl.Unbounded {
			unbounded = true
			break
		}
		total += c.MaxQty
	}
	if unbounded {
		return "DEFAULT_MAX_QTY"
	}
	return fmt.Sprintf("%d", total)
}

func maxQtyCExpr(n *cddl.Node, defaultMaxQty int) string {
	if n.MaxQty == cddl.Unbounded {
		return "DEFAULT_MAX_QTY"
	}
	return fmt.Sprintf("%d", n.MaxQty)
}

// rangeCheckExpr appends a post-xcode bounds check for numeric ranges,
// .bits masks, or string length bounds, wrapped so a failed check reports
// ZCBOR_ERR_WRONG_RANGE (spec §4.4.2 "Range checks").
func (gen *Generator) rangeCheckExpr(n *cddl.Node) string {
	if !gen.Preds.RangeCheckCondition(n) {
		return ""
	}
	var conds []string
	if n.MinValue != nil {
		conds = append(conds, fmt.Sprintf("(%s) >= %d", n.BaseName, n.MinValue.Int64()))
	}
	if n.MaxValue != nil {
		conds = append(conds, fmt.Sprintf("(%s) <= %d", n.BaseName, n.MaxValue.Int64()))
	}
	if n.MinSize != nil {
		conds = append(conds, fmt.Sprintf("(%s).len >= %d", n.BaseName, *n.MinSize))
	}
	if n.MaxSize != nil {
		conds = append(conds, fmt.Sprintf("(%s).len <= %d", n.BaseName, *n.MaxSize))
	}
	if n.Bits != "" {
		conds = append(conds, fmt.Sprintf("!((%s) & ~%s_MASK)", n.BaseName, strings.ToUpper(n.Bits)))
	}
	if len(conds) == 0 {
		return ""
	}
	return fmt.Sprintf("((%s) || (zcbor_error(state, ZCBOR_ERR_WRONG_RANGE), false))", strings.Join(conds, " && "))
}
