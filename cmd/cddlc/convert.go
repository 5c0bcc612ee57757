package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/zcbor/cddlc/internal/translate"
)

// ConvertCmd translates a data file between raw CBOR and the YAML/JSON
// envelope of spec §6.4, validating it against a schema's entry type
// along the way (spec §4.5, §6.5).
type ConvertCmd struct {
	Schema string `arg:"" help:"Path to the CDDL schema file."`
	Type   string `arg:"" help:"Entry type name to decode/validate against."`
	Input  string `arg:"" help:"Path to the input data file."`

	From string `help:"Input format: cbor, yaml, json." enum:"cbor,yaml,json" default:"cbor"`
	To   string `help:"Output format: cbor, yaml, json." enum:"cbor,yaml,json" default:"yaml"`
	Out  string `short:"o" help:"Output file path (default stdout)."`

	Strict bool `help:"Reject CBOR input with trailing bytes."`
}

func (cmd *ConvertCmd) Run() error {
	g, err := loadGraph(cmd.Schema)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(cmd.Input)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	t := translate.New(g, translate.Options{Strict: cmd.Strict})

	value, err := cmd.decodeInput(t, data)
	if err != nil {
		return fmt.Errorf("decode %s: %w", cmd.From, err)
	}

	out, err := cmd.encodeOutput(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", cmd.To, err)
	}

	if cmd.Out == "" {
		_, err = os.Stdout.Write(out)
		return err
	}
	return os.WriteFile(cmd.Out, out, 0o644)
}

func (cmd *ConvertCmd) decodeInput(t *translate.Translator, data []byte) (any, error) {
	switch cmd.From {
	case "cbor":
		value, rest, err := t.Decode(cmd.Type, data)
		if err != nil {
			return nil, err
		}
		if cmd.Strict && len(rest) != 0 {
			return nil, fmt.Errorf("%d trailing bytes after entry value", len(rest))
		}
		return value, nil
	case "yaml", "json":
		// JSON is a YAML subset; gopkg.in/yaml.v3 parses both.
		return translate.FromYAML(data)
	default:
		return nil, fmt.Errorf("unknown input format %q", cmd.From)
	}
}

func (cmd *ConvertCmd) encodeOutput(value any) ([]byte, error) {
	switch cmd.To {
	case "cbor":
		return translate.Canonicalize(value)
	case "yaml":
		return translate.ToYAML(value)
	case "json":
		env, err := translate.ToEnvelope(value)
		if err != nil {
			return nil, err
		}
		b, err := json.MarshalIndent(env, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", cmd.To)
	}
}
