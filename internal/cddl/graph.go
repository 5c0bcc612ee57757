package cddl

// Graph is a parsed, normalized schema: (types, control_groups) as
// described in spec §3.2. Cross-rule references are by name; the graph
// is constructed once and is read-only thereafter (spec §3.2, §5).
type Graph struct {
	// Order preserves the rules' first-definition order, used to make
	// dependency sort and diagnostic output deterministic.
	Order []string
	Types map[string]*Node

	// ControlGroups maps a control-group rule name to its parsed
	// members (name -> non-negative literal value), resolved lazily
	// by a UINT node's Bits field (spec §3.1, §4.1.1).
	ControlGroups map[string]map[string]int64
}

// Parse runs the lexical pre-pass and rule parser over src, producing an
// unflattened, unvalidated Graph (spec §4.1). Callers normally follow
// Parse with Graph.Normalize.
func Parse(src string) (*Graph, error) {
	order, bodies, cgBodies, err := lex(src)
	if err != nil {
		return nil, err
	}

	g := &Graph{
		Order:         order,
		Types:         make(map[string]*Node, len(bodies)),
		ControlGroups: make(map[string]map[string]int64, len(cgBodies)),
	}

	for _, name := range order {
		body, ok := bodies[name]
		if !ok {
			continue
		}
		p := &parser{ruleName: name}
		n, err := p.parseRuleBody(body)
		if err != nil {
			return nil, err
		}
		g.Types[name] = n
	}

	for name, body := range cgBodies {
		members, err := parseControlGroupBody(name, body)
		if err != nil {
			return nil, err
		}
		g.ControlGroups[name] = members
	}

	return g, nil
}

// parseControlGroupBody parses a "&(name1: N1, name2: N2, ...)" control
// group body (spec §4.1.1, §6.1) into a name->value map. Members must be
// literal non-negative integers (spec §3.1 invariant).
func parseControlGroupBody(rule, body string) (map[string]int64, error) {
	sc := newScanner(body)
	if !sc.consumeLit("&(") {
		return nil, WrapError(&ParseError{Text: body, Reason: "malformed control group: expected &("}, rule)
	}
	members := map[string]int64{}
	p := &parser{ruleName: rule}
	for {
		sc.skipWS()
		if sc.consumeLit(")") {
			break
		}
		name, _, ok := sc.consumeIdent()
		if !ok {
			return nil, WrapError(&ParseError{Text: sc.rest(), Reason: "expected control-group member name"}, rule)
		}
		sc.skipWS()
		if !sc.consumeLit(":") {
			return nil, WrapError(&ParseError{Text: sc.rest(), Reason: "expected ':' in control group"}, rule)
		}
		v, _, err := p.parseSignedNumber(sc)
		if err != nil {
			return nil, WrapError(err, rule)
		}
		if v < 0 {
			return nil, WrapError(&ValidationError{Invariant: "control-group members must be non-negative", Detail: name}, rule)
		}
		members[name] = int64(v)
		sc.skipWS()
		if sc.consumeLit(",") {
			continue
		}
	}
	return members, nil
}

// Lookup resolves an OTHER node's Target, returning (node, true) if
// defined. Socket targets that are undefined are not an error here; the
// caller (flatten) drops them per spec §4.1.3/§6.1.
func (g *Graph) Lookup(name string) (*Node, bool) {
	n, ok := g.Types[name]
	return n, ok
}

// Normalize runs flatten, post_validate, and the naming passes over every
// rule in the graph, in that order, matching spec §4.1.3/§4.1.4/§4.2.
func (g *Graph) Normalize() error {
	for _, name := range g.Order {
		n, ok := g.Types[name]
		if !ok {
			continue
		}
		g.Types[name] = Flatten(n, g, false)
	}

	for _, name := range g.Order {
		n, ok := g.Types[name]
		if !ok {
			continue
		}
		if err := PostValidate(n, g, map[string]bool{name: true}); err != nil {
			return WrapError(err, name)
		}
	}

	assigned := map[string]bool{}
	for _, name := range g.Order {
		n, ok := g.Types[name]
		if !ok {
			continue
		}
		SetIDPrefix(n, latinize(name))
		SetBaseNames(n, latinize(name))
		if err := uniquify(n, assigned); err != nil {
			return err
		}
	}

	return nil
}

// DependsOn returns the maximum reference depth of n: the length of the
// longest chain of OTHER references reachable from n, used to sort
// entry types so typedefs appear after their dependencies (spec §4.2,
// P6). Cycles broken by a .cbor boundary do not recurse further, since
// the C emitter treats that edge as an opaque pointer (spec §3.2, §9).
func (g *Graph) DependsOn(n *Node) int {
	return dependsOnRec(n, g, map[*Node]bool{})
}

func dependsOnRec(n *Node, g *Graph, seen map[*Node]bool) int {
	if n == nil || seen[n] {
		return 0
	}
	seen[n] = true
	defer delete(seen, n)

	best := 0
	for _, c := range n.Children {
		if d := dependsOnRec(c, g, seen) + 1; d > best {
			best = d
		}
	}
	if n.Key != nil {
		if d := dependsOnRec(n.Key, g, seen) + 1; d > best {
			best = d
		}
	}
	if n.Cbor != nil {
		// A .cbor edge onto an entry type is an opaque pointer in the
		// C emitter, not an inlined struct; it still needs the
		// typedef to exist (for the pointer's element type) but does
		// not force additional recursive depth beyond 1.
		best = max(best, 1)
	}
	if n.Kind == OtherKind {
		if target, ok := g.Types[n.Target]; ok {
			if d := dependsOnRec(target, g, seen) + 1; d > best {
				best = d
			}
		}
	}
	return best
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// EntryTypes returns the rule names selected as entry types: every
// top-level rule name in deterministic Order, sorted by ascending
// DependsOn so typedefs are emitted after their dependencies (spec
// §4.4.1, P6). Names with equal depth keep their relative Order.
func (g *Graph) EntryTypes() []string {
	names := append([]string(nil), g.Order...)
	depth := make(map[string]int, len(names))
	for _, name := range names {
		if n, ok := g.Types[name]; ok {
			depth[name] = g.DependsOn(n)
		}
	}
	// Stable sort by depth ascending.
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && depth[names[j-1]] > depth[names[j]]; j-- {
			names[j-1], names[j] = names[j], names[j-1]
		}
	}
	return names
}
