package c

import (
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/tools/txtar"

	"github.com/zcbor/cddlc/internal/cddl"
)

// TestGoldenFixtures walks testdata/*.txtar: each archive bundles a
// schema.cddl section with one or more want.* sections whose lines must
// all appear somewhere in the matching generated artifact (want.c in
// artifacts.Files, want.h in artifacts.TypesH).
func TestGoldenFixtures(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("..", "..", "..", "testdata", "*.txtar"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(matches) == 0 {
		t.Fatal("no golden fixtures found")
	}

	for _, path := range matches {
		path := path
		t.Run(filepath.Base(path), func(t *testing.T) {
			ar, err := txtar.ParseFile(path)
			if err != nil {
				t.Fatalf("ParseFile: %v", err)
			}

			var schema string
			wants := map[string]string{}
			for _, f := range ar.Files {
				if f.Name == "schema.cddl" {
					schema = string(f.Data)
					continue
				}
				wants[f.Name] = string(f.Data)
			}
			if schema == "" {
				t.Fatal("fixture has no schema.cddl section")
			}

			g, err := cddl.Parse(schema)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if err := g.Normalize(); err != nil {
				t.Fatalf("Normalize: %v", err)
			}

			gen := New(g, Options{Project: "golden"})
			artifacts, err := gen.Generate()
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}

			if wantH, ok := wants["want.h"]; ok {
				for _, line := range nonEmptyLines(wantH) {
					if !strings.Contains(artifacts.TypesH, line) {
						t.Errorf("types header missing %q:\n%s", line, artifacts.TypesH)
					}
				}
			}
			if wantC, ok := wants["want.c"]; ok {
				var all strings.Builder
				for _, content := range artifacts.Files {
					all.WriteString(content)
				}
				for _, line := range nonEmptyLines(wantC) {
					if !strings.Contains(all.String(), line) {
						t.Errorf("generated C missing %q", line)
					}
				}
			}
		})
	}
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
