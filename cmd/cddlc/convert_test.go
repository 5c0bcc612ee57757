package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zcbor/cddlc/internal/cbor"
)

func TestConvertCmdCborToYAML(t *testing.T) {
	schema := writeSchema(t, "foo = -128..127\n")

	dir := t.TempDir()
	input := filepath.Join(dir, "in.cbor")
	if err := os.WriteFile(input, cbor.AppendInt64(nil, 5), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	out := filepath.Join(dir, "out.yaml")

	cmd := ConvertCmd{
		Schema: schema,
		Type:   "foo",
		Input:  input,
		From:   "cbor",
		To:     "yaml",
		Out:    out,
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if !strings.Contains(string(data), "5") {
		t.Errorf("expected output to mention the decoded value, got:\n%s", data)
	}
}

func TestConvertCmdYAMLToCbor(t *testing.T) {
	schema := writeSchema(t, "foo = -128..127\n")

	dir := t.TempDir()
	input := filepath.Join(dir, "in.yaml")
	if err := os.WriteFile(input, []byte("5\n"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	out := filepath.Join(dir, "out.cbor")

	cmd := ConvertCmd{
		Schema: schema,
		Type:   "foo",
		Input:  input,
		From:   "yaml",
		To:     "cbor",
		Out:    out,
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	r := cbor.NewReaderBytes(data)
	v, err := r.ReadInt64()
	if err != nil {
		t.Fatalf("ReadInt64: %v", err)
	}
	if v != 5 {
		t.Fatalf("got %d, want 5", v)
	}
}

func TestConvertCmdRejectsTrailingBytesInStrictMode(t *testing.T) {
	schema := writeSchema(t, "foo = -128..127\n")

	dir := t.TempDir()
	input := filepath.Join(dir, "in.cbor")
	payload := cbor.AppendInt64(nil, 5)
	payload = cbor.AppendInt64(payload, 6)
	if err := os.WriteFile(input, payload, 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	cmd := ConvertCmd{
		Schema: schema,
		Type:   "foo",
		Input:  input,
		From:   "cbor",
		To:     "yaml",
		Strict: true,
	}
	if err := cmd.Run(); err == nil {
		t.Fatal("expected an error for trailing bytes under --strict")
	}
}
