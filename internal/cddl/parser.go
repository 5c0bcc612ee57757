package cddl

import (
	"strconv"
	"strings"
)

// parser holds the state of one top-level rule's parse: the current rule
// name, used to annotate errors (spec §7). OTHER references are resolved
// later by name in post_validate, so no other rule bodies are kept here.
type parser struct {
	ruleName string
}

// parseRuleBody implements the precedence-ordered dispatcher of spec
// §4.1.2 for one rule's body text, returning its root Node.
func (p *parser) parseRuleBody(body string) (*Node, error) {
	sc := newScanner(body)
	n, err := p.parseAlternation(sc, true)
	if err != nil {
		return nil, WrapError(err, p.ruleName)
	}
	if !sc.eof() {
		return nil, WrapError(&ParseError{Text: sc.rest(), Reason: "unexpected trailing input"}, p.ruleName)
	}
	return n, nil
}

// parseAlternation parses one group-entry-list level "/" and "//"
// alternation chain. topLevel is true only for a whole rule body, where a
// bare ", " separated list (no brackets) denotes an implicit GROUP of
// entries (used by map/group bodies defined directly as a rule, and by
// .bits control groups handled separately).
func (p *parser) parseAlternation(sc *scanner, topLevel bool) (*Node, error) {
	first, err := p.parseEntry(sc)
	if err != nil {
		return nil, err
	}

	var union *Node
	for {
		b, ok := sc.peekByte()
		if !ok || b != '/' {
			break
		}
		if strings.HasPrefix(sc.rest(), "//") {
			sc.consumeLit("//")
			alt, err := p.parseEntry(sc)
			if err != nil {
				return nil, err
			}
			if union == nil {
				union = NewNode(UnionKind)
				union.Children = []*Node{first}
			}
			union.Children = append(union.Children, alt)
			continue
		}
		sc.consumeLit("/")
		alt, err := p.parseEntry(sc)
		if err != nil {
			return nil, err
		}
		if union == nil {
			// single-slash union-append INHERITS the quantifier and
			// key of the node being converted onto the first
			// alternative (spec §4.1.2 item 6); the union wrapper
			// itself reverts to the default (1,1) quantifier.
			union = NewNode(UnionKind)
			union.MinQty, union.MaxQty = 1, 1
			union.Children = []*Node{first}
		}
		union.Children = append(union.Children, alt)
	}

	if union != nil {
		return union, nil
	}

	// Bare top-level group-entry lists (rule bodies without surrounding
	// brackets, e.g. a rule used only via a group socket) collect
	// comma-separated siblings into an implicit GROUP.
	if topLevel {
		entries := []*Node{first}
		for {
			if b, ok := sc.peekByte(); !ok || b != ',' {
				break
			}
			sc.consumeLit(",")
			if sc.eof() {
				break
			}
			next, err := p.parseEntry(sc)
			if err != nil {
				return nil, err
			}
			entries = append(entries, next)
		}
		if len(entries) == 1 {
			return entries[0], nil
		}
		g := NewNode(GroupKind)
		g.Children = entries
		return g, nil
	}

	return first, nil
}

// parseEntry parses one group entry: an optional quantifier, an optional
// key/label prefix, a primary type, and trailing control operators
// (spec §4.1.2 items 3-5, 7-13). It is the unit separated by ',' inside
// brackets and by '/','//' at the alternation level.
func (p *parser) parseEntry(sc *scanner) (*Node, error) {
	minQ, maxQ, hasQ := p.tryQuantifier(sc)

	// Optional "name:" label prefix (item 3); a "<type> =>" or "<type> :"
	// key is recognized after the primary below (item 4).
	var keyNode *Node
	var label string
	save := sc.pos
	if kn, lbl, ok, err := p.tryKeyOrLabel(sc); err != nil {
		return nil, err
	} else if ok {
		keyNode, label = kn, lbl
	} else {
		sc.pos = save
	}

	n, err := p.parsePrimary(sc)
	if err != nil {
		return nil, err
	}

	if keyNode == nil && label == "" {
		sc.skipWS()
		if sc.consumeLit("=>") || (!strings.HasPrefix(sc.rest(), "::") && sc.consumeLit(":")) {
			keyNode = n
			if n, err = p.parsePrimary(sc); err != nil {
				return nil, err
			}
		}
	}

	if hasQ {
		n.MinQty, n.MaxQty = minQ, maxQ
	}
	if keyNode != nil {
		n.Key = keyNode
	}
	if label != "" {
		n.Label = label
	}

	if err := p.parseControlOps(sc, n); err != nil {
		return nil, err
	}

	return n, nil
}

// tryQuantifier recognizes '?', '*', '+', and the "N*M" family (spec
// §4.1.2 item 5, supplemented per SPEC_FULL §3 with N*, *M, bare *).
func (p *parser) tryQuantifier(sc *scanner) (min, max int64, ok bool) {
	save := sc.pos
	sc.skipWS()

	if sc.consumeLit("?") {
		return 0, 1, true
	}
	if sc.consumeLit("+") {
		return 1, Unbounded, true
	}

	// Try "N*M", "N*", "*M", bare "*" in that order: all use '*' as the
	// pivot, with optional integers on either side.
	start := sc.pos
	n1, hasN1 := p.tryUintLiteral(sc)
	if sc.consumeLit("*") {
		n2, hasN2 := p.tryUintLiteral(sc)
		lo := int64(0)
		if hasN1 {
			lo = n1
		}
		hi := int64(Unbounded)
		if hasN2 {
			hi = n2
		}
		return lo, hi, true
	}
	sc.pos = start
	_ = n1

	sc.pos = save
	return 1, 1, false
}

// tryUintLiteral parses a bare decimal integer at the cursor, returning
// ok=false (without consuming) if none is present.
func (p *parser) tryUintLiteral(sc *scanner) (int64, bool) {
	sc.skipWS()
	start := sc.pos
	for sc.pos < len(sc.s) && isDigit(sc.s[sc.pos]) {
		sc.pos++
	}
	if sc.pos == start {
		return 0, false
	}
	v, err := strconv.ParseInt(sc.s[start:sc.pos], 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// tryKeyOrLabel recognizes a "name:" prefix (item 3), not "name::", and
// records name as a label. It does not check whether name is a defined
// rule, so the prefix never becomes an OTHER-typed key here; inside a map,
// parseBracketed makes the label the text-string key of the same name.
// "<type> =>" and "<type> :" keys (item 4) are handled by parseEntry.
func (p *parser) tryKeyOrLabel(sc *scanner) (key *Node, label string, ok bool, err error) {
	sc.skipWS()
	if id, _, okIdent := sc.consumeIdent(); okIdent {
		sc.skipWS()
		if sc.consumeLit("::") {
			return nil, "", false, nil
		}
		if sc.consumeLit(":") {
			// Rules parse independently, so whether id names a
			// defined rule is not known here; it is kept as a label.
			return nil, id, true, nil
		}
	}
	return nil, "", false, nil
}

// parseControlOps consumes zero or more ".size", ".lt", ".gt", ".ge",
// ".le", ".eq", ".default", ".cbor", ".cborseq", ".bits" suffixes
// (spec §4.1.2 item 13), validating contextual applicability as it goes
// (spec §3.1 invariants; violations raise ParseError per §7).
func (p *parser) parseControlOps(sc *scanner, n *Node) error {
	for {
		sc.skipWS()
		if !strings.HasPrefix(sc.rest(), ".") {
			return nil
		}
		save := sc.pos
		sc.pos++
		op, _, ok := sc.consumeIdent()
		if !ok {
			sc.pos = save
			return nil
		}
		switch op {
		case "size":
			lo, hi, err := p.parseSizeArg(sc)
			if err != nil {
				return err
			}
			if !sizableKind(n.Kind) {
				return &ParseError{Text: ".size", Reason: ".size applied to non-sizable kind " + n.Kind.String()}
			}
			if lo == hi {
				n.Size = &lo
			} else {
				n.MinSize, n.MaxSize = &lo, &hi
			}
		case "bits":
			name, _, ok := sc.consumeIdent()
			if !ok {
				return &ParseError{Text: sc.rest(), Reason: ".bits requires a control-group name"}
			}
			if n.Kind != UintKind {
				return &ParseError{Text: ".bits", Reason: ".bits applied to non-UINT kind " + n.Kind.String()}
			}
			n.Bits = name
		case "cbor", "cborseq":
			if n.Kind != BstrKind {
				return &ParseError{Text: "." + op, Reason: op + " applied to non-BSTR kind " + n.Kind.String()}
			}
			inner, err := p.parsePrimary(sc)
			if err != nil {
				return err
			}
			n.Cbor = inner
			n.CborSeq = op == "cborseq"
		case "default":
			sc.skipWS()
			lit, err := p.parseLiteralValue(sc)
			if err != nil {
				return err
			}
			if !n.IsOptional() {
				return &ParseError{Text: ".default", Reason: ".default requires quantifier '?'"}
			}
			n.HasDefault = true
			n.Default = lit
		case "lt", "gt", "ge", "le", "eq":
			if !numericKind(n.Kind) {
				return &ParseError{Text: "." + op, Reason: "." + op + " applied to non-numeric kind " + n.Kind.String()}
			}
			v, err := p.parseNumericValue(sc)
			if err != nil {
				return err
			}
			applyComparisonOp(n, op, v)
		case "and", "within", "regexp", "pcre":
			// Recognized but unsupported per spec §6.1/§9 Open
			// Question: reject with a parse error rather than guess
			// semantics.
			return &ParseError{Text: "." + op, Reason: "control operator ." + op + " is not supported"}
		default:
			return &ParseError{Text: "." + op, Reason: "unknown control operator"}
		}
	}
}

func sizableKind(k Kind) bool {
	switch k {
	case BstrKind, TstrKind, UintKind, IntKind, NintKind:
		return true
	}
	return false
}

func numericKind(k Kind) bool {
	switch k {
	case IntKind, UintKind, NintKind, FloatKind:
		return true
	}
	return false
}

func applyComparisonOp(n *Node, op string, v float64) {
	switch op {
	case "lt":
		hi := v - 1
		setMax(n, hi)
	case "le":
		setMax(n, v)
	case "gt":
		lo := v + 1
		setMin(n, lo)
	case "ge":
		setMin(n, v)
	case "eq":
		setMin(n, v)
		setMax(n, v)
	}
}

func setMin(n *Node, v float64) {
	if n.Kind == FloatKind {
		return
	}
	n.MinValue = newBig(int64(v))
}

func setMax(n *Node, v float64) {
	if n.Kind == FloatKind {
		return
	}
	n.MaxValue = newBig(int64(v))
}

func (p *parser) parseSizeArg(sc *scanner) (lo, hi int, err error) {
	sc.skipWS()
	a, ok := p.tryUintLiteral(sc)
	if !ok {
		return 0, 0, &ParseError{Text: sc.rest(), Reason: ".size requires an integer or range"}
	}
	sc.skipWS()
	if sc.consumeLit("..") {
		inclusive := true
		if sc.consumeLit(".") {
			inclusive = false
		}
		b, ok := p.tryUintLiteral(sc)
		if !ok {
			return 0, 0, &ParseError{Text: sc.rest(), Reason: "malformed .size range"}
		}
		if !inclusive {
			b--
		}
		return int(a), int(b), nil
	}
	return int(a), int(a), nil
}

func (p *parser) parseNumericValue(sc *scanner) (float64, error) {
	sc.skipWS()
	start := sc.pos
	if sc.pos < len(sc.s) && sc.s[sc.pos] == '-' {
		sc.pos++
	}
	for sc.pos < len(sc.s) && (isDigit(sc.s[sc.pos]) || sc.s[sc.pos] == '.') {
		sc.pos++
	}
	if sc.pos == start {
		return 0, &ParseError{Text: sc.rest(), Reason: "expected a numeric literal"}
	}
	v, err := strconv.ParseFloat(sc.s[start:sc.pos], 64)
	if err != nil {
		return 0, &ParseError{Text: sc.s[start:sc.pos], Reason: "malformed numeric literal"}
	}
	return v, nil
}

// parseLiteralValue parses a literal matching one of INT/FLOAT/BOOL/TSTR/BSTR,
// used by ".default".
func (p *parser) parseLiteralValue(sc *scanner) (any, error) {
	n, err := p.parsePrimary(sc)
	if err != nil {
		return nil, err
	}
	return n.Value, nil
}

// parsePrimary implements spec §4.1.2 items 1-2, 7-12: bracketed
// compounds, literals, primitive keywords, float-size forms, numeric
// literals and ranges, booleans, tags, and references.
func (p *parser) parsePrimary(sc *scanner) (*Node, error) {
	b, ok := sc.peekByte()
	if !ok {
		return nil, &ParseError{Reason: "unexpected end of input"}
	}

	switch b {
	case '[':
		return p.parseBracketed(sc, '[', ']', ListKind)
	case '(':
		return p.parseBracketed(sc, '(', ')', GroupKind)
	case '{':
		return p.parseBracketed(sc, '{', '}', MapKind)
	case '\'':
		return p.parseByteLiteral(sc)
	case '"':
		return p.parseTextLiteral(sc)
	case '#':
		return p.parseTagOrAny(sc)
	}

	if b == '-' || isDigit(b) {
		return p.parseNumberOrRange(sc)
	}

	// Primitive keywords (item 7).
	for _, kw := range []struct {
		word string
		kind Kind
	}{
		{"uint", UintKind}, {"nint", NintKind}, {"int", IntKind},
		{"bool", BoolKind}, {"nil", NilKind}, {"null", NilKind},
		{"undefined", UndefKind}, {"any", AnyKind},
		{"bstr", BstrKind}, {"bytes", BstrKind},
		{"tstr", TstrKind}, {"text", TstrKind},
	} {
		if sc.consumeWord(kw.word) {
			return NewNode(kw.kind), nil
		}
	}

	// Float-size forms: float16/32/64, float16-32, etc (item 8).
	if n, ok := p.tryFloatSizeForm(sc); ok {
		return n, nil
	}
	if sc.consumeWord("float") {
		return NewNode(FloatKind), nil
	}

	// Booleans (item 12).
	if sc.consumeWord("true") {
		n := NewNode(BoolKind)
		n.Value = true
		return n, nil
	}
	if sc.consumeWord("false") {
		n := NewNode(BoolKind)
		n.Value = false
		return n, nil
	}

	// Reference name, possibly socket-prefixed (item 12).
	if name, socket, ok := sc.consumeIdent(); ok {
		n := NewNode(OtherKind)
		n.Target = name
		n.IsSocket = socket
		if strings.HasPrefix(sc.rest(), "<") {
			return nil, &ParseError{Text: name + "<", Reason: "generic rule parameters are not supported"}
		}
		return n, nil
	}

	return nil, &ParseError{Text: sc.rest(), Reason: "unrecognized token"}
}

func (p *parser) parseBracketed(sc *scanner, open, close byte, kind Kind) (*Node, error) {
	sc.skipWS()
	if !sc.consumeLit(string(open)) {
		return nil, &ParseError{Reason: "expected " + string(open)}
	}
	n := NewNode(kind)
	for {
		sc.skipWS()
		if b, ok := sc.peekByte(); ok && b == close {
			sc.consumeLit(string(close))
			return n, nil
		}
		if sc.eof() {
			return nil, &ParseError{Reason: "unterminated " + string(open) + "..." + string(close)}
		}
		child, err := p.parseAlternation(sc, false)
		if err != nil {
			return nil, err
		}
		if kind == MapKind && child.Key == nil && child.Label != "" {
			// A bare "name:" inside a map is the text-string key "name".
			key := NewNode(TstrKind)
			key.Value = child.Label
			child.Key = key
		}
		n.Children = append(n.Children, child)
		sc.skipWS()
		if sc.consumeLit(",") {
			continue
		}
	}
}

func (p *parser) parseByteLiteral(sc *scanner) (*Node, error) {
	s, err := p.parseQuoted(sc, '\'')
	if err != nil {
		return nil, err
	}
	n := NewNode(BstrKind)
	n.Value = []byte(s)
	return n, nil
}

func (p *parser) parseTextLiteral(sc *scanner) (*Node, error) {
	s, err := p.parseQuoted(sc, '"')
	if err != nil {
		return nil, err
	}
	n := NewNode(TstrKind)
	n.Value = s
	return n, nil
}

func (p *parser) parseQuoted(sc *scanner, quote byte) (string, error) {
	sc.skipWS()
	if sc.pos >= len(sc.s) || sc.s[sc.pos] != quote {
		return "", &ParseError{Reason: "expected quote"}
	}
	sc.pos++
	var out strings.Builder
	for sc.pos < len(sc.s) {
		c := sc.s[sc.pos]
		if c == '\\' && sc.pos+1 < len(sc.s) {
			out.WriteByte(sc.s[sc.pos+1])
			sc.pos += 2
			continue
		}
		if c == quote {
			sc.pos++
			return out.String(), nil
		}
		out.WriteByte(c)
		sc.pos++
	}
	return "", &ParseError{Reason: "unterminated quoted literal"}
}

func (p *parser) parseTagOrAny(sc *scanner) (*Node, error) {
	save := sc.pos
	sc.pos++ // consume '#'
	if sc.consumeLit("6.") {
		num, ok := p.tryUintLiteral(sc)
		if !ok {
			return nil, &ParseError{Text: sc.rest(), Reason: "malformed tag number"}
		}
		sc.skipWS()
		var inner *Node
		if sc.consumeLit("(") {
			n, err := p.parseAlternation(sc, false)
			if err != nil {
				return nil, err
			}
			inner = n
			sc.skipWS()
			if !sc.consumeLit(")") {
				return nil, &ParseError{Reason: "unterminated tagged type"}
			}
		} else {
			n, err := p.parsePrimary(sc)
			if err != nil {
				return nil, err
			}
			inner = n
		}
		inner.Tags = append([]int64{num}, inner.Tags...)
		return inner, nil
	}
	// '#' alone (not followed by "6.") denotes ANY in CDDL.
	sc.pos = save
	if sc.consumeLit("#") {
		return NewNode(AnyKind), nil
	}
	return nil, &ParseError{Text: sc.rest(), Reason: "malformed tag"}
}

// parseNumberOrRange handles integer/float literals and a..b / a...b
// ranges (items 9-11), classifying ranges to UINT/INT/NINT by sign of
// the endpoints.
func (p *parser) parseNumberOrRange(sc *scanner) (*Node, error) {
	a, isFloatA, err := p.parseSignedNumber(sc)
	if err != nil {
		return nil, err
	}
	sc.skipWS()
	if strings.HasPrefix(sc.rest(), "..") {
		inclusive := true
		sc.consumeLit("..")
		if sc.consumeLit(".") {
			inclusive = false
		}
		b, isFloatB, err := p.parseSignedNumber(sc)
		if err != nil {
			return nil, err
		}
		if isFloatA || isFloatB {
			return nil, &ParseError{Reason: "float ranges are not supported"}
		}
		hi := int64(b)
		if !inclusive {
			hi--
		}
		lo := int64(a)
		kind := classifyRangeKind(lo, hi)
		n := NewNode(kind)
		n.MinValue = newBig(lo)
		n.MaxValue = newBig(hi)
		return n, nil
	}
	if isFloatA {
		n := NewNode(FloatKind)
		n.Value = a
		return n, nil
	}
	iv := int64(a)
	n := NewNode(classifyIntKind(iv))
	n.Value = iv
	return n, nil
}

func classifyRangeKind(lo, hi int64) Kind {
	switch {
	case lo >= 0 && hi >= 0:
		return UintKind
	case lo < 0 && hi < 0:
		return NintKind
	default:
		return IntKind
	}
}

func classifyIntKind(v int64) Kind {
	if v >= 0 {
		return UintKind
	}
	return NintKind
}

// parseSignedNumber parses an optionally-signed integer (dec/hex/oct/bin)
// or floating literal, reporting whether it was a float.
func (p *parser) parseSignedNumber(sc *scanner) (float64, bool, error) {
	sc.skipWS()
	neg := false
	if sc.pos < len(sc.s) && sc.s[sc.pos] == '-' {
		neg = true
		sc.pos++
	}
	start := sc.pos
	if strings.HasPrefix(sc.s[sc.pos:], "0x") || strings.HasPrefix(sc.s[sc.pos:], "0X") {
		sc.pos += 2
		for sc.pos < len(sc.s) && isHex(sc.s[sc.pos]) {
			sc.pos++
		}
		v, err := strconv.ParseInt(sc.s[start+2:sc.pos], 16, 64)
		if err != nil {
			return 0, false, &ParseError{Text: sc.s[start:sc.pos], Reason: "malformed hex literal"}
		}
		if neg {
			v = -v
		}
		return float64(v), false, nil
	}
	if strings.HasPrefix(sc.s[sc.pos:], "0o") {
		sc.pos += 2
		for sc.pos < len(sc.s) && sc.s[sc.pos] >= '0' && sc.s[sc.pos] <= '7' {
			sc.pos++
		}
		v, err := strconv.ParseInt(sc.s[start+2:sc.pos], 8, 64)
		if err != nil {
			return 0, false, &ParseError{Text: sc.s[start:sc.pos], Reason: "malformed octal literal"}
		}
		if neg {
			v = -v
		}
		return float64(v), false, nil
	}
	if strings.HasPrefix(sc.s[sc.pos:], "0b") {
		sc.pos += 2
		for sc.pos < len(sc.s) && (sc.s[sc.pos] == '0' || sc.s[sc.pos] == '1') {
			sc.pos++
		}
		v, err := strconv.ParseInt(sc.s[start+2:sc.pos], 2, 64)
		if err != nil {
			return 0, false, &ParseError{Text: sc.s[start:sc.pos], Reason: "malformed binary literal"}
		}
		if neg {
			v = -v
		}
		return float64(v), false, nil
	}
	isFloat := false
	for sc.pos < len(sc.s) && (isDigit(sc.s[sc.pos]) || sc.s[sc.pos] == '.') {
		if sc.s[sc.pos] == '.' {
			// Don't consume the '.' of a ".." range operator.
			if strings.HasPrefix(sc.s[sc.pos:], "..") {
				break
			}
			isFloat = true
		}
		sc.pos++
	}
	if sc.pos == start {
		return 0, false, &ParseError{Text: sc.rest(), Reason: "expected a numeric literal"}
	}
	v, err := strconv.ParseFloat(sc.s[start:sc.pos], 64)
	if err != nil {
		return 0, false, &ParseError{Text: sc.s[start:sc.pos], Reason: "malformed numeric literal"}
	}
	if neg {
		v = -v
	}
	return v, isFloat, nil
}

func isHex(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// tryFloatSizeForm recognizes floatN and floatN-M (item 8).
func (p *parser) tryFloatSizeForm(sc *scanner) (*Node, bool) {
	save := sc.pos
	if !sc.consumeWord2("float16") && !sc.consumeWord2("float32") && !sc.consumeWord2("float64") {
		sc.pos = save
		return nil, false
	}
	sc.pos = save
	sc.consumeLit("float")
	lo, ok := p.tryUintLiteral(sc)
	if !ok {
		sc.pos = save
		return nil, false
	}
	hi := lo
	if sc.consumeLit("-") {
		h, ok := p.tryUintLiteral(sc)
		if !ok {
			sc.pos = save
			return nil, false
		}
		hi = h
	}
	n := NewNode(FloatKind)
	loB, hiB := int(lo/8), int(hi/8)
	if loB == hiB {
		n.Size = &loB
	} else {
		n.MinSize, n.MaxSize = &loB, &hiB
	}
	return n, true
}

// consumeWord2 is consumeWord without the "not followed by ident char"
// guard relaxed to allow a trailing '-' (for floatN-M forms).
func (s *scanner) consumeWord2(word string) bool {
	s.skipWS()
	return strings.HasPrefix(s.s[s.pos:], word)
}
