// Command cddlc compiles CDDL schemas: it emits C encoder/decoder code,
// validates schemas against the invariants of the core package, and
// converts data between CBOR and its YAML/JSON envelope (spec §6.5).
//
// Like the teacher's cborgen CLI, the flag surface here is a thin,
// deliberately minimal shell around the core library; it is an external
// collaborator, not part of the core contract.
package main

import (
	"github.com/alecthomas/kong"
)

// CLI defines the cddlc command-line interface: three sub-commands,
// code, validate, convert.
type CLI struct {
	Code     CodeCmd     `cmd:"" help:"Generate C encoder/decoder code from a CDDL schema."`
	Validate ValidateCmd `cmd:"" help:"Parse and validate a CDDL schema without generating code."`
	Convert  ConvertCmd  `cmd:"" help:"Translate a data file between CBOR and its YAML/JSON envelope."`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("cddlc"),
		kong.Description("Compile CDDL schemas to C codecs and translate CBOR data."),
	)

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
