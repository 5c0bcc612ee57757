package translate

import (
	"github.com/zcbor/cddlc/internal/cbor"
)

// Canonicalize re-encodes a Decode result (or an FromEnvelope result) as
// CBOR following RFC 8949 §4.2's deterministic encoding rules: sorted map
// keys, minimal-length integers and floats, definite-length containers
// (spec §4.5, §8 P8). internal/cbor's Append family already emits
// minimal-length integers and floats; cbor.AppendCanonical supplies the one
// rule they don't on their own, map-key ordering, recursively so nested
// maps produced by decoding a CDDL map or union are sorted too.
func Canonicalize(v any) ([]byte, error) {
	return cbor.AppendCanonical(nil, v)
}
