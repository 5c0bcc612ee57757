package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/zcbor/cddlc/internal/codegen/c"
)

// CodeCmd generates C encoder/decoder code for a schema (spec §4.4,
// §6.5). Output files are written into OutDir only after every artifact
// has rendered successfully, so a generation failure leaves no partial
// output (spec §5 "No partial artifacts").
type CodeCmd struct {
	Schema        string   `arg:"" help:"Path to the CDDL schema file."`
	Project       string   `short:"p" help:"Project name; controls output filenames." default:"cddl"`
	OutDir        string   `short:"o" help:"Output directory for generated files." default:"."`
	Mode          []string `help:"Modes to generate: decode, encode (default both)."`
	DefaultMaxQty int      `help:"Array size used for unbounded repetition." default:"16"`
	Debug         bool     `help:"Enable the predicate-consistency assertion."`
}

func (cmd *CodeCmd) Run() error {
	g, err := loadGraph(cmd.Schema)
	if err != nil {
		return err
	}

	gen := c.New(g, c.Options{
		Project:       cmd.Project,
		DefaultMaxQty: cmd.DefaultMaxQty,
		Modes:         cmd.Mode,
		Debug:         cmd.Debug,
	})

	artifacts, err := gen.Generate()
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	return writeArtifacts(cmd.OutDir, cmd.Project, artifacts)
}

// writeArtifacts stages every rendered file and only writes once all of
// them are held in memory; if a write fails, the files it already wrote
// are removed, so a late failure can't leave a half-written output
// directory.
func writeArtifacts(outDir, project string, artifacts *c.Artifacts) error {
	type file struct {
		name string
		data []byte
	}

	files := []file{{name: project + "_types.h", data: []byte(artifacts.TypesH)}}
	for name, content := range artifacts.Files {
		files = append(files, file{name: name, data: []byte(content)})
	}
	files = append(files, file{name: project + ".cmake", data: []byte(artifacts.Cmake)})

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	var written []string
	for _, f := range files {
		path := filepath.Join(outDir, f.name)
		if err := os.WriteFile(path, f.data, 0o644); err != nil {
			for _, p := range append(written, path) {
				os.Remove(p)
			}
			return fmt.Errorf("write %s: %w", f.name, err)
		}
		written = append(written, path)
	}

	return nil
}
