package translate

import "testing"

func TestToEnvelopeWrapsByteString(t *testing.T) {
	env, err := ToEnvelope([]byte{0xde, 0xad, 0xbe, 0xef})
	if err != nil {
		t.Fatalf("ToEnvelope: %v", err)
	}
	m, ok := env.(map[string]any)
	if !ok {
		t.Fatalf("got %T, want map[string]any", env)
	}
	if m["zcbor_bstr"] != "deadbeef" {
		t.Errorf("zcbor_bstr = %v, want deadbeef", m["zcbor_bstr"])
	}
}

func TestToEnvelopeWrapsTag(t *testing.T) {
	env, err := ToEnvelope(Tag{Number: 32, Value: "http://example.com"})
	if err != nil {
		t.Fatalf("ToEnvelope: %v", err)
	}
	m := env.(map[string]any)
	if m["zcbor_tag"] != uint64(32) {
		t.Errorf("zcbor_tag = %v, want 32", m["zcbor_tag"])
	}
	if m["zcbor_tag_val"] != "http://example.com" {
		t.Errorf("zcbor_tag_val = %v", m["zcbor_tag_val"])
	}
}

func TestToEnvelopeWrapsUndefined(t *testing.T) {
	env, err := ToEnvelope(Undefined{})
	if err != nil {
		t.Fatalf("ToEnvelope: %v", err)
	}
	lst, ok := env.([]any)
	if !ok || len(lst) != 1 || lst[0] != "zcbor_undefined" {
		t.Fatalf("got %#v, want [zcbor_undefined]", env)
	}
}

func TestFromEnvelopeRoundTripsByteString(t *testing.T) {
	env, err := ToEnvelope([]byte{1, 2, 3})
	if err != nil {
		t.Fatalf("ToEnvelope: %v", err)
	}
	back, err := FromEnvelope(env)
	if err != nil {
		t.Fatalf("FromEnvelope: %v", err)
	}
	b, ok := back.([]byte)
	if !ok || len(b) != 3 || b[0] != 1 || b[1] != 2 || b[2] != 3 {
		t.Fatalf("got %#v, want [1 2 3]", back)
	}
}

func TestFromEnvelopeRoundTripsTag(t *testing.T) {
	env, err := ToEnvelope(Tag{Number: 7, Value: int64(5)})
	if err != nil {
		t.Fatalf("ToEnvelope: %v", err)
	}
	back, err := FromEnvelope(env)
	if err != nil {
		t.Fatalf("FromEnvelope: %v", err)
	}
	tag, ok := back.(Tag)
	if !ok {
		t.Fatalf("got %T, want Tag", back)
	}
	if tag.Number != 7 || tag.Value != int64(5) {
		t.Errorf("got %+v, want {7 5}", tag)
	}
}

func TestFromEnvelopeRoundTripsUndefined(t *testing.T) {
	back, err := FromEnvelope([]any{"zcbor_undefined"})
	if err != nil {
		t.Fatalf("FromEnvelope: %v", err)
	}
	if _, ok := back.(Undefined); !ok {
		t.Fatalf("got %T, want Undefined", back)
	}
}

func TestToYAMLFromYAMLRoundTrip(t *testing.T) {
	orig := map[string]any{
		"name": "Ada",
		"tags": []any{"a", "b"},
	}
	data, err := ToYAML(orig)
	if err != nil {
		t.Fatalf("ToYAML: %v", err)
	}
	back, err := FromYAML(data)
	if err != nil {
		t.Fatalf("FromYAML: %v", err)
	}
	m, ok := back.(map[string]any)
	if !ok {
		t.Fatalf("got %T, want map[string]any", back)
	}
	if m["name"] != "Ada" {
		t.Errorf("name = %v, want Ada", m["name"])
	}
	tags, ok := m["tags"].([]any)
	if !ok || len(tags) != 2 || tags[0] != "a" || tags[1] != "b" {
		t.Errorf("tags = %#v", m["tags"])
	}
}
