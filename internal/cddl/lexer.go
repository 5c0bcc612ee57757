package cddl

import (
	"regexp"
	"strings"
)

// ruleHeaderRe recognizes "name =", "name /=" and "name //=" at the start
// of a rule, optionally prefixed by one or two '$' socket markers
// (spec §4.1.1, §6.1).
var ruleHeaderRe = regexp.MustCompile(`(?m)^\s*(\${0,2})([A-Za-z@][A-Za-z0-9@._-]*)\s*(/{0,2})=\s*`)

// stripComments removes a ';' comment running to end-of-line. It does not
// strip ';' inside a quoted string.
func stripComments(src string) string {
	var out strings.Builder
	inStr := byte(0)
	for i := 0; i < len(src); i++ {
		c := src[i]
		if inStr != 0 {
			out.WriteByte(c)
			if c == '\\' && i+1 < len(src) {
				i++
				out.WriteByte(src[i])
				continue
			}
			if c == inStr {
				inStr = 0
			}
			continue
		}
		if c == '"' || c == '\'' {
			inStr = c
			out.WriteByte(c)
			continue
		}
		if c == ';' {
			for i < len(src) && src[i] != '\n' {
				i++
			}
			if i < len(src) {
				out.WriteByte('\n')
			}
			continue
		}
		out.WriteByte(c)
	}
	return out.String()
}

// unfoldContinuations replaces "\<newline>" with a single space (spec §4.1.1).
func unfoldContinuations(src string) string {
	return strings.ReplaceAll(strings.ReplaceAll(src, "\\\r\n", " "), "\\\n", " ")
}

// rawRule is one name/body pair recovered during the lexical pre-pass,
// before any parsing of the body occurs.
type rawRule struct {
	name    string
	isSlash bool // true for /= and //=
	isGroup bool // true for //=
	isSocket bool
	body    string
}

// lex splits preprocessed CDDL source into a dictionary of rule name to
// accumulated rule body text (spec §4.1.1). Rules assigned with '=' must
// be unique; '/=' and '//=' append an alternative to an existing rule.
//
// A rule whose body begins with "&(" is a control group body and is
// returned separately, keyed by name, for later resolution via .bits.
func lex(src string) (order []string, bodies map[string]string, controlGroups map[string]string, err error) {
	src = unfoldContinuations(stripComments(src))

	type match struct {
		name     string
		isSlash  bool
		isGroup  bool
		isSocket bool
		bodyFrom int
	}

	var matches []match
	for _, loc := range ruleHeaderRe.FindAllStringSubmatchIndex(src, -1) {
		sockets := src[loc[2]:loc[3]]
		name := src[loc[4]:loc[5]]
		slashes := src[loc[6]:loc[7]]
		matches = append(matches, match{
			name:     name,
			isSlash:  slashes != "",
			isGroup:  slashes == "//",
			isSocket: sockets != "",
			bodyFrom: loc[1],
		})
	}
	if len(matches) == 0 {
		return nil, nil, nil, &ParseError{Reason: "no rules found in source"}
	}

	bodies = map[string]string{}
	controlGroups = map[string]string{}
	seen := map[string]bool{}

	for i, m := range matches {
		bodyTo := len(src)
		if i+1 < len(matches) {
			bodyTo = headerStart(src, matches[i+1].bodyFrom)
		}
		body := strings.TrimSpace(src[m.bodyFrom:bodyTo])

		if strings.HasPrefix(body, "&(") {
			controlGroups[m.name] = body
			continue
		}

		if !m.isSlash {
			if seen[m.name] {
				return nil, nil, nil, &ParseError{Rule: m.name, Reason: "duplicate rule name"}
			}
			seen[m.name] = true
			bodies[m.name] = body
			order = append(order, m.name)
			continue
		}

		// '/=' or '//=' append to an existing rule; the slashes
		// themselves are retained in the accumulation so the parser
		// sees a proper union/group-union continuation (spec §4.1.1).
		existing, ok := bodies[m.name]
		if !ok {
			// A socket-only binding that appears before any bare
			// definition is allowed to seed the rule.
			bodies[m.name] = body
			order = append(order, m.name)
			continue
		}
		sep := "/"
		if m.isGroup {
			sep = "//"
		}
		bodies[m.name] = existing + " " + sep + " " + body
	}

	return order, bodies, controlGroups, nil
}

// headerStart walks back from the match of the next rule header to the
// point right before its optional socket/name prefix began, so the
// previous rule's body does not swallow the next header's leading
// whitespace twice.
func headerStart(src string, nextBodyFrom int) int {
	loc := ruleHeaderRe.FindStringIndex(src[:nextBodyFrom])
	if loc == nil {
		return nextBodyFrom
	}
	// Find the start of this specific header occurrence: re-match
	// anchored at the last header before nextBodyFrom.
	return lastHeaderStart(src, nextBodyFrom)
}

func lastHeaderStart(src string, before int) int {
	best := -1
	idx := 0
	for idx < before {
		loc := ruleHeaderRe.FindStringIndex(src[idx:])
		if loc == nil {
			break
		}
		abs := idx + loc[0]
		absEnd := idx + loc[1]
		if absEnd > before {
			break
		}
		best = abs
		idx = absEnd
	}
	if best == -1 {
		return before
	}
	return best
}
