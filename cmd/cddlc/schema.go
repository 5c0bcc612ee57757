package main

import (
	"fmt"
	"os"

	"github.com/zcbor/cddlc/internal/cddl"
)

// loadGraph parses and normalizes the CDDL schema at path, the sequence
// every sub-command needs before it can touch the graph (spec §4.1-§4.2).
func loadGraph(path string) (*cddl.Graph, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}

	g, err := cddl.Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}

	if err := g.Normalize(); err != nil {
		return nil, fmt.Errorf("normalize schema: %w", err)
	}

	return g, nil
}
