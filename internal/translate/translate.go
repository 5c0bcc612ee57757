// Package translate implements the Data Translator (spec §4.5): it walks
// a normalized CDDL graph against a CBOR value using the low-level byte
// engine in internal/cbor, producing a generic, JSON/YAML-representable
// Go value, and offers the reverse direction plus RFC 8949 §4.2 canonical
// re-encoding.
package translate

import (
	"fmt"

	"github.com/zcbor/cddlc/internal/cbor"
	"github.com/zcbor/cddlc/internal/cddl"
)

// Options configures one Translator.
type Options struct {
	// Strict enforces canonical length encodings while decoding.
	Strict bool
	// Deterministic forbids indefinite-length containers while decoding.
	Deterministic bool
	// DefaultMaxQty bounds an unbounded repetition's decode attempts,
	// mirroring the generated C code's DEFAULT_MAX_QTY (spec §4.4.1).
	DefaultMaxQty int64
}

// Translator walks Graph against CBOR payloads.
type Translator struct {
	Graph *cddl.Graph
	Opts  Options
}

// New returns a Translator over a normalized graph.
func New(g *cddl.Graph, opts Options) *Translator {
	if opts.DefaultMaxQty <= 0 {
		opts.DefaultMaxQty = 1024
	}
	return &Translator{Graph: g, Opts: opts}
}

// Decode validates and translates payload against the entry type named
// typeName, returning a generic value (nil, bool, int64, uint64, float64,
// string, []byte, []any, map[string]any, Tag, or Undefined) and the
// unconsumed trailing bytes.
func (t *Translator) Decode(typeName string, payload []byte) (any, []byte, error) {
	n, ok := t.Graph.Lookup(typeName)
	if !ok {
		return nil, nil, fmt.Errorf("translate: unknown entry type %q", typeName)
	}
	r := t.newReader(payload)
	v, err := t.decodeValue(r, n)
	if err != nil {
		return nil, nil, err
	}
	return v, r.Remaining(), nil
}

func (t *Translator) newReader(b []byte) *cbor.Reader {
	r := cbor.NewReaderBytes(b)
	r.SetStrictDecode(t.Opts.Strict)
	r.SetDeterministicDecode(t.Opts.Deterministic)
	return r
}

// resolveOther follows a chain of OTHER references down to a non-OTHER
// node (spec §4.1.4 dictionary lookup, reused here at translate time).
func (t *Translator) resolveOther(n *cddl.Node) (*cddl.Node, error) {
	seen := map[string]bool{}
	for n.Kind == cddl.OtherKind {
		if seen[n.Target] {
			return nil, &Error{Rule: n.Target, Reason: "reference cycle at translate time"}
		}
		seen[n.Target] = true
		target, ok := t.Graph.Lookup(n.Target)
		if !ok {
			return nil, &Error{Rule: n.Target, Reason: "unresolved reference"}
		}
		n = target
	}
	return n, nil
}

// decodeValue decodes exactly one n-shaped item from r (spec §4.5).
func (t *Translator) decodeValue(r *cbor.Reader, n *cddl.Node) (any, error) {
	for _, tag := range n.Tags {
		if err := t.expectTag(r, uint64(tag)); err != nil {
			return nil, err
		}
	}

	resolved, err := t.resolveOther(n)
	if err != nil {
		return nil, err
	}

	switch resolved.Kind {
	case cddl.UintKind:
		v, err := r.ReadUint64()
		if err != nil {
			return nil, wrapKindErr(resolved, err)
		}
		if err := checkUintBounds(resolved, v); err != nil {
			return nil, err
		}
		if resolved.Value != nil && int64(v) != resolved.Value.(int64) {
			return nil, &Error{Rule: resolved.BaseName, Reason: "literal value mismatch"}
		}
		return v, nil

	case cddl.IntKind, cddl.NintKind:
		v, err := r.ReadInt64()
		if err != nil {
			return nil, wrapKindErr(resolved, err)
		}
		if err := checkIntBounds(resolved, v); err != nil {
			return nil, err
		}
		if resolved.Value != nil && v != resolved.Value.(int64) {
			return nil, &Error{Rule: resolved.BaseName, Reason: "literal value mismatch"}
		}
		return v, nil

	case cddl.FloatKind:
		v, err := r.ReadFloat64()
		if err != nil {
			return nil, wrapKindErr(resolved, err)
		}
		return v, nil

	case cddl.TstrKind:
		v, err := r.ReadString()
		if err != nil {
			return nil, wrapKindErr(resolved, err)
		}
		if err := checkSize(resolved, int64(len(v))); err != nil {
			return nil, err
		}
		if resolved.Value != nil && v != resolved.Value.(string) {
			return nil, &Error{Rule: resolved.BaseName, Reason: "literal value mismatch"}
		}
		return v, nil

	case cddl.BstrKind:
		v, err := r.ReadBytes()
		if err != nil {
			return nil, wrapKindErr(resolved, err)
		}
		if err := checkSize(resolved, int64(len(v))); err != nil {
			return nil, err
		}
		if resolved.Cbor != nil {
			inner := t.newReader(v)
			cv, err := t.decodeValue(inner, resolved.Cbor)
			if err != nil {
				return nil, err
			}
			return cv, nil
		}
		return v, nil

	case cddl.BoolKind:
		v, err := r.ReadBool()
		if err != nil {
			return nil, wrapKindErr(resolved, err)
		}
		return v, nil

	case cddl.NilKind:
		rest, err := cbor.ReadNilBytes(r.Remaining())
		if err != nil {
			return nil, wrapKindErr(resolved, err)
		}
		r.Advance(rest)
		return nil, nil

	case cddl.UndefKind:
		rest, err := cbor.ReadUndefinedBytes(r.Remaining())
		if err != nil {
			return nil, wrapKindErr(resolved, err)
		}
		r.Advance(rest)
		return Undefined{}, nil

	case cddl.AnyKind:
		return t.decodeAny(r)

	case cddl.ListKind:
		return t.decodeList(r, resolved)

	case cddl.MapKind:
		return t.decodeMap(r, resolved)

	case cddl.GroupKind:
		return t.decodeSequence(r, resolved.Children)

	case cddl.UnionKind:
		return t.decodeUnion(r, resolved)

	default:
		return nil, &Error{Rule: resolved.BaseName, Reason: "no decode shape for kind " + resolved.Kind.String()}
	}
}

func wrapKindErr(n *cddl.Node, err error) error {
	return &Error{Rule: n.BaseName, Reason: fmt.Sprintf("expected %s: %v", n.Kind, err)}
}

func checkUintBounds(n *cddl.Node, v uint64) error {
	if n.MinValue != nil && v < n.MinValue.Uint64() {
		return &Error{Rule: n.BaseName, Reason: "value below minimum"}
	}
	if n.MaxValue != nil && v > n.MaxValue.Uint64() {
		return &Error{Rule: n.BaseName, Reason: "value above maximum"}
	}
	return nil
}

func checkIntBounds(n *cddl.Node, v int64) error {
	if n.MinValue != nil && v < n.MinValue.Int64() {
		return &Error{Rule: n.BaseName, Reason: "value below minimum"}
	}
	if n.MaxValue != nil && v > n.MaxValue.Int64() {
		return &Error{Rule: n.BaseName, Reason: "value above maximum"}
	}
	return nil
}

func checkSize(n *cddl.Node, length int64) error {
	if n.Size != nil && length != int64(*n.Size) {
		return &Error{Rule: n.BaseName, Reason: "size mismatch"}
	}
	if n.MinSize != nil && length < int64(*n.MinSize) {
		return &Error{Rule: n.BaseName, Reason: "below minimum size"}
	}
	if n.MaxSize != nil && length > int64(*n.MaxSize) {
		return &Error{Rule: n.BaseName, Reason: "above maximum size"}
	}
	return nil
}

// expectTag unwraps one expected CBOR tag, failing on a mismatched or
// missing tag (spec §4.5 "Unwrap expected CBOR tags in order; fail on
// extra/missing").
func (t *Translator) expectTag(r *cbor.Reader, want uint64) error {
	got, rest, err := cbor.ReadTagBytes(r.Remaining())
	if err != nil {
		return fmt.Errorf("translate: expected tag %d: %w", want, err)
	}
	if got != want {
		return &Error{Reason: fmt.Sprintf("expected tag %d, got %d", want, got)}
	}
	r.Advance(rest)
	return nil
}

// decodeChildSlot applies a child's quantifier: optional tries once with
// a restore point on failure, repeated consumes min_qty then attempts up
// to max_qty (or DefaultMaxQty when unbounded) with a restore point per
// try (spec §4.5).
func (t *Translator) decodeChildSlot(r *cbor.Reader, c *cddl.Node) (any, error) {
	switch {
	case c.IsOptional():
		mark := r.Save()
		v, err := t.decodeValue(r, c)
		if err != nil {
			r.Rewind(mark)
			return nil, nil
		}
		return v, nil

	case c.IsRepeated():
		var out []any
		for i := int64(0); i < c.MinQty; i++ {
			v, err := t.decodeValue(r, c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		limit := c.MaxQty
		if limit == cddl.Unbounded {
			limit = int64(len(out)) + t.Opts.DefaultMaxQty
		}
		for int64(len(out)) < limit {
			mark := r.Save()
			v, err := t.decodeValue(r, c)
			if err != nil {
				r.Rewind(mark)
				break
			}
			out = append(out, v)
		}
		return out, nil

	default:
		return t.decodeValue(r, c)
	}
}

func (t *Translator) decodeSequence(r *cbor.Reader, children []*cddl.Node) ([]any, error) {
	var out []any
	for _, c := range children {
		v, err := t.decodeChildSlot(r, c)
		if err != nil {
			return nil, err
		}
		if c.IsOptional() && v == nil {
			continue
		}
		if c.IsRepeated() {
			if lst, ok := v.([]any); ok {
				out = append(out, lst...)
				continue
			}
		}
		out = append(out, v)
	}
	return out, nil
}

func (t *Translator) decodeList(r *cbor.Reader, n *cddl.Node) (any, error) {
	sz, indefinite, err := r.ReadArrayStart()
	if err != nil {
		return nil, wrapKindErr(n, err)
	}
	_ = sz
	seq, err := t.decodeSequence(r, n.Children)
	if err != nil {
		return nil, err
	}
	if indefinite {
		if _, err := t.consumeBreak(r); err != nil {
			return nil, err
		}
	}
	return seq, nil
}

func (t *Translator) decodeMap(r *cbor.Reader, n *cddl.Node) (map[string]any, error) {
	sz, indefinite, rest, err := cbor.ReadMapStartBytes(r.Remaining())
	if err != nil {
		return nil, wrapKindErr(n, err)
	}
	_ = sz
	r.Advance(rest)

	result := map[string]any{}
	tagCounter := 0
	for _, c := range n.Children {
		if c.Key == nil {
			return nil, &Error{Rule: n.BaseName, Reason: "map child has no key"}
		}
		keyVal, err := t.decodeValue(r, c.Key)
		if err != nil {
			if c.IsOptional() {
				continue
			}
			return nil, err
		}
		valVal, err := t.decodeChildSlot(r, c)
		if err != nil {
			return nil, err
		}
		name, isStr := keyVal.(string)
		if !isStr {
			tagCounter++
			name = fmt.Sprintf("zcbor_keyval%d", tagCounter)
			result[name] = map[string]any{"key": keyVal, "val": valVal}
			continue
		}
		result[name] = valVal
	}
	if indefinite {
		if _, err := t.consumeBreak(r); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (t *Translator) consumeBreak(r *cbor.Reader) (bool, error) {
	rest, ok, err := cbor.ReadBreakBytes(r.Remaining())
	if err != nil {
		return false, err
	}
	if ok {
		r.Advance(rest)
	}
	return ok, nil
}

// decodeUnion tries each alternative in order, saving and restoring the
// reader between attempts; the first match wins and failed-attempt
// messages are aggregated for diagnostics (spec §4.5).
func (t *Translator) decodeUnion(r *cbor.Reader, n *cddl.Node) (any, error) {
	var attempts []error
	for _, c := range n.Children {
		mark := r.Save()
		v, err := t.decodeValue(r, c)
		if err == nil {
			return v, nil
		}
		attempts = append(attempts, err)
		r.Rewind(mark)
	}
	return nil, &Error{Rule: n.BaseName, Reason: "no union alternative matched", Attempts: attempts}
}
