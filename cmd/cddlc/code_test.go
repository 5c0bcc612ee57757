package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zcbor/cddlc/internal/codegen/c"
)

func TestCodeCmdWritesArtifacts(t *testing.T) {
	schema := writeSchema(t, "foo = -128..127\n")
	outDir := t.TempDir()

	cmd := CodeCmd{
		Schema:        schema,
		Project:       "demo",
		OutDir:        outDir,
		DefaultMaxQty: 16,
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	typesPath := filepath.Join(outDir, "demo_types.h")
	data, err := os.ReadFile(typesPath)
	if err != nil {
		t.Fatalf("reading %s: %v", typesPath, err)
	}
	if !strings.Contains(string(data), "int8_t") {
		t.Errorf("types header missing int8_t:\n%s", data)
	}

	cmakePath := filepath.Join(outDir, "demo.cmake")
	if _, err := os.Stat(cmakePath); err != nil {
		t.Errorf("expected cmake artifact at %s: %v", cmakePath, err)
	}
}

func TestCodeCmdRejectsUnresolvedSchema(t *testing.T) {
	schema := writeSchema(t, "foo = bar\n")
	cmd := CodeCmd{Schema: schema, Project: "demo", OutDir: t.TempDir()}
	if err := cmd.Run(); err == nil {
		t.Fatal("expected an error for an unresolved reference")
	}
}

func TestWriteArtifactsCreatesNestedOutputDir(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "a", "b")
	artifacts := &c.Artifacts{
		TypesH: "typedef struct {} demo_t;\n",
		Files:  map[string]string{"demo_decode.c": "// decode\n"},
		Cmake:  "# cmake\n",
	}
	err := writeArtifacts(outDir, "demo", artifacts)
	if err != nil {
		t.Fatalf("expected MkdirAll to succeed for a nested new directory: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "demo_types.h")); err != nil {
		t.Errorf("expected types header to be written: %v", err)
	}
}
