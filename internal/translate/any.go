package translate

import (
	"bytes"
	"fmt"

	fxcbor "github.com/fxamacker/cbor/v2"

	"github.com/zcbor/cddlc/internal/cbor"
)

// decodeAny decodes exactly one CBOR item of unknown shape from r (the
// ANY kind, spec §3.1), using the ground-truth fxamacker/cbor decoder
// rather than internal/cbor's fixed-shape primitives, since ANY has no
// Node shape to dispatch on. Nested tags decode as Tag so the envelope
// and canonical re-encoder can round-trip them.
func (t *Translator) decodeAny(r *cbor.Reader) (any, error) {
	v, rest, err := decodeAnyBytes(r.Remaining())
	if err != nil {
		return nil, err
	}
	*r = *t.newReader(rest)
	return v, nil
}

// decodeAnyBytes is decodeAny's Translator-independent core: it consumes
// exactly one CBOR item from b and returns it alongside the unconsumed
// remainder, without needing a Reader or graph context. ToEnvelope uses
// it directly to detect bytes that happen to decode as nested CBOR (spec
// §6.4).
func decodeAnyBytes(b []byte) (any, []byte, error) {
	br := bytes.NewReader(b)
	dec := fxcbor.NewDecoder(br)

	var raw fxcbor.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, nil, fmt.Errorf("translate: decode ANY: %w", err)
	}

	v, err := fromRaw(raw)
	if err != nil {
		return nil, nil, err
	}

	// The Decoder reads ahead from br, so the item's own length is what
	// was consumed.
	consumed := len(raw)
	return v, b[consumed:], nil
}

// fromRaw converts a single raw CBOR item to this package's generic
// representation (nil, bool, uint64, int64, float64, string, []byte,
// []any, map[string]any, Tag, Undefined).
func fromRaw(raw fxcbor.RawMessage) (any, error) {
	if len(raw) == 1 && raw[0] == 0xf7 {
		return Undefined{}, nil
	}
	var tag fxcbor.Tag
	if err := fxcbor.Unmarshal(raw, &tag); err == nil {
		inner, err := reencodeToGeneric(tag.Content)
		if err != nil {
			return nil, err
		}
		return Tag{Number: tag.Number, Value: inner}, nil
	}

	var generic any
	if err := fxcbor.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("translate: decode ANY value: %w", err)
	}
	return normalizeGeneric(generic)
}

func reencodeToGeneric(content any) (any, error) {
	return normalizeGeneric(content)
}

// normalizeGeneric converts fxamacker's default decode-to-any shapes
// (map[any]any keys, byte strings already []byte) into this package's
// canonical shape: string-keyed maps where possible. fxamacker decodes an
// undefined value inside an array, map or tag as nil, and it stays nil
// here; only a top-level undefined item becomes Undefined (in fromRaw).
func normalizeGeneric(v any) (any, error) {
	switch vv := v.(type) {
	case map[any]any:
		out := map[string]any{}
		keyNum := 0
		for k, val := range vv {
			nv, err := normalizeGeneric(val)
			if err != nil {
				return nil, err
			}
			if s, ok := k.(string); ok {
				out[s] = nv
				continue
			}
			keyNum++
			nk, err := normalizeGeneric(k)
			if err != nil {
				return nil, err
			}
			out[fmt.Sprintf("zcbor_keyval%d", keyNum)] = map[string]any{"key": nk, "val": nv}
		}
		return out, nil
	case map[string]any:
		out := map[string]any{}
		for k, val := range vv {
			nv, err := normalizeGeneric(val)
			if err != nil {
				return nil, err
			}
			out[k] = nv
		}
		return out, nil
	case []any:
		out := make([]any, len(vv))
		for i, e := range vv {
			nv, err := normalizeGeneric(e)
			if err != nil {
				return nil, err
			}
			out[i] = nv
		}
		return out, nil
	default:
		return v, nil
	}
}
