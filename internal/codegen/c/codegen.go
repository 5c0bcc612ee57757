// Package c emits C source implementing the zcbor runtime ABI (spec
// §6.3) for a normalized CDDL graph: shared typedefs, one encode/decode
// function pair per node that needs its own implementation, public entry
// points, and a CMake manifest (spec §4.4). It mirrors the teacher
// cborgen/core generator's shape — text/template bodies driven by a
// per-node Go model, walking a graph instead of a go/ast file — but the
// graph here is a CDDL type graph, and the templates render C, not Go.
package c

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/zcbor/cddlc/internal/cddl"
	"github.com/zcbor/cddlc/internal/graph"
)

// Options configures one generation run.
type Options struct {
	// Project names the emitted artifacts: <Project>_types.h,
	// <Project>_decode.{c,h}, <Project>_encode.{c,h}, <Project>.cmake.
	Project string

	// DefaultMaxQty sizes an unbounded-repetition array when a node's
	// max_qty is unbounded (spec §4.4.1 item 7).
	DefaultMaxQty int

	// Modes selects which of "decode"/"encode" to emit; both by default.
	Modes []string

	// Debug enables the predicate-consistency assertion of spec §9.
	Debug bool
}

func (o Options) modes() []string {
	if len(o.Modes) > 0 {
		return o.Modes
	}
	return []string{"decode", "encode"}
}

// Artifacts holds the rendered output files (spec §4.4.4).
type Artifacts struct {
	TypesH string
	Files  map[string]string // "<project>_decode.c" -> content, etc.
	Cmake  string
}

// Generator renders Artifacts from a normalized Graph.
type Generator struct {
	Graph *cddl.Graph
	Preds *graph.Predicates
	Opts  Options

	tmpl *template.Template
}

// New returns a Generator for g, which must already have had Normalize
// called on it.
func New(g *cddl.Graph, opts Options) *Generator {
	if opts.Project == "" {
		opts.Project = "cddl"
	}
	if opts.DefaultMaxQty == 0 {
		opts.DefaultMaxQty = 16
	}
	return &Generator{
		Graph: g,
		Preds: graph.New(opts.Debug),
		Opts:  opts,
		tmpl:  mustParseTemplates(),
	}
}

// Generate renders every artifact of spec §4.4.4.
func (gen *Generator) Generate() (*Artifacts, error) {
	entries := gen.Graph.EntryTypes()

	typedefs, err := gen.buildTypedefs(entries)
	if err != nil {
		return nil, err
	}

	typesH, err := gen.renderTypesHeader(typedefs)
	if err != nil {
		return nil, err
	}

	out := &Artifacts{TypesH: typesH, Files: map[string]string{}}

	for _, mode := range gen.Opts.modes() {
		funcs, err := gen.buildFunctions(entries, mode)
		if err != nil {
			return nil, err
		}
		entryFns, err := gen.buildEntryFunctions(entries, mode)
		if err != nil {
			return nil, err
		}

		c, h, err := gen.renderModeFiles(mode, funcs, entryFns)
		if err != nil {
			return nil, err
		}
		out.Files[fmt.Sprintf("%s_%s.c", gen.Opts.Project, mode)] = c
		out.Files[fmt.Sprintf("%s_%s.h", gen.Opts.Project, mode)] = h
	}

	cmake, err := gen.renderCmake()
	if err != nil {
		return nil, err
	}
	out.Cmake = cmake

	return out, nil
}

func mustParseTemplates() *template.Template {
	t, err := template.New("c").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.tpl")
	if err != nil {
		panic(fmt.Sprintf("c: embedded templates failed to parse: %v", err))
	}
	return t
}

func (gen *Generator) render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := gen.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("c: render %s: %w", name, err)
	}
	return buf.String(), nil
}
