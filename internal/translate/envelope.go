package translate

import (
	"encoding/hex"
	"fmt"

	"github.com/zcbor/cddlc/internal/cbor"
	"gopkg.in/yaml.v3"
)

// Tag is a decoded CBOR semantic tag (major type 6): Number is the tag
// value, Value is the tagged item in this package's generic shape. Tag
// implements cbor.Marshaler so it plugs directly into
// cbor.AppendInterface's generic fallback path (spec §4.5 ANY handling).
type Tag struct {
	Number uint64
	Value  any
}

// MarshalCBOR appends the tag header followed by the tagged value.
func (t Tag) MarshalCBOR(b []byte) ([]byte, error) {
	b = cbor.AppendTag(b, t.Number)
	return cbor.AppendInterface(b, t.Value)
}

// Undefined represents the CBOR undefined simple value. It implements
// cbor.Marshaler for the same reason as Tag.
type Undefined struct{}

// MarshalCBOR appends the undefined simple value.
func (Undefined) MarshalCBOR(b []byte) ([]byte, error) {
	return cbor.AppendUndefined(b), nil
}

// ToEnvelope converts a Decode result to the YAML/JSON-compatible shape
// of spec §6.4: byte strings become {"zcbor_bstr": hex-or-nested}, tags
// become {"zcbor_tag", "zcbor_tag_val"}, undefined becomes
// ["zcbor_undefined"], and non-string map keys were already folded into
// zcbor_keyvalN entries during Decode.
func ToEnvelope(v any) (any, error) {
	switch vv := v.(type) {
	case []byte:
		if nested, rest, err := decodeAnyBytes(vv); err == nil && len(rest) == 0 {
			ne, err := ToEnvelope(nested)
			if err != nil {
				return nil, err
			}
			return map[string]any{"zcbor_bstr": ne}, nil
		}
		return map[string]any{"zcbor_bstr": hex.EncodeToString(vv)}, nil

	case Tag:
		inner, err := ToEnvelope(vv.Value)
		if err != nil {
			return nil, err
		}
		return map[string]any{"zcbor_tag": vv.Number, "zcbor_tag_val": inner}, nil

	case Undefined:
		return []any{"zcbor_undefined"}, nil

	case map[string]any:
		out := make(map[string]any, len(vv))
		for k, val := range vv {
			ev, err := ToEnvelope(val)
			if err != nil {
				return nil, err
			}
			out[k] = ev
		}
		return out, nil

	case []any:
		out := make([]any, len(vv))
		for i, e := range vv {
			ev, err := ToEnvelope(e)
			if err != nil {
				return nil, err
			}
			out[i] = ev
		}
		return out, nil

	default:
		return v, nil
	}
}

// FromEnvelope reverses ToEnvelope, turning the YAML/JSON-compatible
// shape back into this package's generic representation.
func FromEnvelope(v any) (any, error) {
	switch vv := v.(type) {
	case map[string]any:
		if raw, ok := vv["zcbor_bstr"]; ok && len(vv) == 1 {
			if s, ok := raw.(string); ok {
				b, err := hex.DecodeString(s)
				if err != nil {
					return nil, fmt.Errorf("translate: zcbor_bstr hex: %w", err)
				}
				return b, nil
			}
			nested, err := FromEnvelope(raw)
			if err != nil {
				return nil, err
			}
			b, err := Canonicalize(nested)
			if err != nil {
				return nil, err
			}
			return b, nil
		}
		if num, ok := vv["zcbor_tag"]; ok {
			inner, err := FromEnvelope(vv["zcbor_tag_val"])
			if err != nil {
				return nil, err
			}
			n, err := toUint64(num)
			if err != nil {
				return nil, err
			}
			return Tag{Number: n, Value: inner}, nil
		}
		out := make(map[string]any, len(vv))
		for k, val := range vv {
			fv, err := FromEnvelope(val)
			if err != nil {
				return nil, err
			}
			out[k] = fv
		}
		return out, nil

	case []any:
		if len(vv) == 1 && vv[0] == "zcbor_undefined" {
			return Undefined{}, nil
		}
		out := make([]any, len(vv))
		for i, e := range vv {
			fv, err := FromEnvelope(e)
			if err != nil {
				return nil, err
			}
			out[i] = fv
		}
		return out, nil

	default:
		return v, nil
	}
}

func toUint64(v any) (uint64, error) {
	switch n := v.(type) {
	case uint64:
		return n, nil
	case int64:
		return uint64(n), nil
	case int:
		return uint64(n), nil
	case float64:
		return uint64(n), nil
	default:
		return 0, fmt.Errorf("translate: zcbor_tag is not numeric: %T", v)
	}
}

// ToYAML renders a Decode result as YAML using the envelope of spec §6.4.
func ToYAML(v any) ([]byte, error) {
	env, err := ToEnvelope(v)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(env)
}

// FromYAML parses YAML in the envelope shape of spec §6.4 back into this
// package's generic representation, ready for Canonicalize.
func FromYAML(data []byte) (any, error) {
	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, err
	}
	return FromEnvelope(normalizeYAMLKeys(generic))
}

// normalizeYAMLKeys rebuilds yaml.v3's default map[string]interface{}
// decode target (already string-keyed for yaml.Unmarshal into `any`,
// unlike gopkg.in/yaml.v2's map[interface{}]interface{}) and its lists,
// recursing into nested values; any other value, including a map with
// non-string keys, is returned unchanged.
func normalizeYAMLKeys(v any) any {
	switch vv := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(vv))
		for k, val := range vv {
			out[k] = normalizeYAMLKeys(val)
		}
		return out
	case []any:
		out := make([]any, len(vv))
		for i, e := range vv {
			out[i] = normalizeYAMLKeys(e)
		}
		return out
	default:
		return v
	}
}
