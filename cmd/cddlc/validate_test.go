package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSchema(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.cddl")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write schema: %v", err)
	}
	return path
}

func TestValidateCmdAcceptsWellFormedSchema(t *testing.T) {
	path := writeSchema(t, "foo = -128..127\n")
	cmd := ValidateCmd{Schema: path}
	if err := cmd.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestValidateCmdRejectsUnresolvedReference(t *testing.T) {
	path := writeSchema(t, "foo = bar\n")
	cmd := ValidateCmd{Schema: path}
	if err := cmd.Run(); err == nil {
		t.Fatal("expected an error for an unresolved reference")
	}
}

func TestValidateCmdRejectsMissingFile(t *testing.T) {
	cmd := ValidateCmd{Schema: filepath.Join(t.TempDir(), "missing.cddl")}
	if err := cmd.Run(); err == nil {
		t.Fatal("expected an error for a missing schema file")
	}
}
