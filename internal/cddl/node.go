package cddl

import "math"

// Kind is the tagged-union discriminant for a Node, matching spec §3.1.
// A single struct with a Kind field is used rather than a class hierarchy
// per design note §9 ("Dynamic dispatch on node kind") — predicates and
// emitters switch on it directly.
type Kind int

const (
	InvalidKind Kind = iota
	IntKind
	UintKind
	NintKind
	FloatKind
	BstrKind
	TstrKind
	BoolKind
	NilKind
	UndefKind
	AnyKind
	ListKind
	MapKind
	GroupKind
	UnionKind
	OtherKind
)

func (k Kind) String() string {
	switch k {
	case IntKind:
		return "INT"
	case UintKind:
		return "UINT"
	case NintKind:
		return "NINT"
	case FloatKind:
		return "FLOAT"
	case BstrKind:
		return "BSTR"
	case TstrKind:
		return "TSTR"
	case BoolKind:
		return "BOOL"
	case NilKind:
		return "NIL"
	case UndefKind:
		return "UNDEF"
	case AnyKind:
		return "ANY"
	case ListKind:
		return "LIST"
	case MapKind:
		return "MAP"
	case GroupKind:
		return "GROUP"
	case UnionKind:
		return "UNION"
	case OtherKind:
		return "OTHER"
	default:
		return "INVALID"
	}
}

// Unbounded marks an unbounded max_qty/max_value, matching Python's None.
const Unbounded = math.MaxInt64

// Node is one logical CDDL element (spec §3.1). The graph owns all Nodes;
// a Node's Children/Key/Cbor fields are owned pointers into its own
// subtree, never borrowed references to graph siblings — cross-rule
// references go through the OTHER kind's Target name and are resolved by
// map lookup against Graph.Types (spec §3.2).
type Node struct {
	Kind Kind

	// Value holds a kind-dependent literal: int64 for INT/UINT/NINT,
	// float64 for FLOAT, string for TSTR literals, []byte for BSTR
	// literals, bool for BOOL. OTHER nodes use Target instead. Compound
	// kinds (LIST/MAP/GROUP/UNION) use Children and leave Value nil.
	Value any

	// Target is the rule name referenced by an OTHER node.
	Target string

	// Children holds, in order, the elements of a LIST/MAP/GROUP/UNION.
	Children []*Node

	MinValue, MaxValue *big
	Size               *int
	MinSize, MaxSize   *int
	MinQty, MaxQty     int64 // MaxQty == Unbounded means unbounded; both default to 1,1

	Key  *Node // required for MAP children; forbidden for LIST children
	Cbor *Node // nested type inside a BSTR .cbor/.cborseq

	Tags []int64 // CBOR tag numbers that must precede the item, outermost first
	Bits string  // name of a control group referenced by .bits

	HasDefault bool
	Default    any

	Label string // source label, e.g. "name:" before a type
	IsSocket bool

	// CborSeq marks that Cbor holds a .cborseq (a sequence of items)
	// rather than a single .cbor item.
	CborSeq bool

	// naming state, populated by the normalizer (§4.2)
	BaseName string
	IDPrefix string
	BaseStem string
}

// big is a minimal signed-or-unsigned bound holder: CDDL integer bounds can
// exceed int64 range (e.g. uint64 max), so bounds are stored as a sign
// flag plus a uint64 magnitude rather than plain int64.
type big struct {
	Neg    bool
	U      uint64
}

func newBig(v int64) *big {
	if v < 0 {
		return &big{Neg: true, U: uint64(-v)}
	}
	return &big{U: uint64(v)}
}

func newBigU(v uint64) *big {
	return &big{U: v}
}

// Int64 returns the value as an int64, saturating if it would overflow.
func (b *big) Int64() int64 {
	if b == nil {
		return 0
	}
	if b.Neg {
		if b.U > math.MaxInt64 {
			return math.MinInt64
		}
		return -int64(b.U)
	}
	if b.U > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(b.U)
}

// Uint64 returns the value as a uint64; negative values saturate to 0.
func (b *big) Uint64() uint64 {
	if b == nil || b.Neg {
		return 0
	}
	return b.U
}

// NewNode returns a zero Node of the given kind with the default
// (1,1) quantifier.
func NewNode(k Kind) *Node {
	return &Node{Kind: k, MinQty: 1, MaxQty: 1}
}

// IsQuantified reports whether n carries a non-default repetition.
func (n *Node) IsQuantified() bool {
	return n.MinQty != 1 || n.MaxQty != 1
}

// IsOptional reports the '?' quantifier: (0,1).
func (n *Node) IsOptional() bool {
	return n.MinQty == 0 && n.MaxQty == 1
}

// IsRepeated reports any quantifier that allows more than one occurrence.
func (n *Node) IsRepeated() bool {
	return n.MaxQty > 1 || n.MaxQty == Unbounded
}

// IsVariableRepeated reports an unbounded or ranged (non-fixed) repetition.
func (n *Node) IsVariableRepeated() bool {
	return n.IsRepeated() && n.MinQty != n.MaxQty
}

// Clone returns a deep copy of n, used by flatten when multiplying a
// child's quantifier into its parent (spec §4.1.3).
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, ch := range n.Children {
			c.Children[i] = ch.Clone()
		}
	}
	c.Key = n.Key.Clone()
	c.Cbor = n.Cbor.Clone()
	if n.Tags != nil {
		c.Tags = append([]int64(nil), n.Tags...)
	}
	return &c
}
