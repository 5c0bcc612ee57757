package main

import "fmt"

// ValidateCmd parses and normalizes a schema, reporting the first
// failure without generating any artifacts (spec §6.5).
type ValidateCmd struct {
	Schema string `arg:"" help:"Path to the CDDL schema file."`
}

func (c *ValidateCmd) Run() error {
	g, err := loadGraph(c.Schema)
	if err != nil {
		return err
	}

	entries := g.EntryTypes()
	fmt.Printf("%s: ok (%d entry types)\n", c.Schema, len(entries))
	return nil
}
