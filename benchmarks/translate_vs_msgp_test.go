// Package benchmarks compares the Data Translator's throughput against
// other general-purpose Go serializers on the same shape of data,
// mirroring the comparative style of the runtime's own benchmarks (spec
// §4.5 "a library, not a generated-code codec").
package benchmarks

import (
	"testing"

	fxcbor "github.com/fxamacker/cbor/v2"
	msgp "github.com/tinylib/msgp/msgp"

	"github.com/zcbor/cddlc/internal/cddl"
	"github.com/zcbor/cddlc/internal/translate"
)

func newPersonGraph(tb testing.TB) *cddl.Graph {
	tb.Helper()
	g, err := cddl.Parse(`person = { name: tstr, age: 0..150, data: bstr }`)
	if err != nil {
		tb.Fatalf("Parse: %v", err)
	}
	if err := g.Normalize(); err != nil {
		tb.Fatalf("Normalize: %v", err)
	}
	return g
}

func newPersonPayload() map[string]any {
	return map[string]any{
		"name": "Alice",
		"age":  int64(42),
		"data": []byte("hello world"),
	}
}

func BenchmarkTranslate_Person_Encode(b *testing.B) {
	payload := newPersonPayload()
	b.ReportAllocs()
	b.ResetTimer()
	var out []byte
	for i := 0; i < b.N; i++ {
		var err error
		out, err = translate.Canonicalize(payload)
		if err != nil {
			b.Fatalf("Canonicalize: %v", err)
		}
	}
	_ = out
}

func BenchmarkTranslate_Person_Decode(b *testing.B) {
	g := newPersonGraph(b)
	tr := translate.New(g, translate.Options{})
	enc, err := translate.Canonicalize(newPersonPayload())
	if err != nil {
		b.Fatalf("Canonicalize: %v", err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := tr.Decode("person", enc); err != nil {
			b.Fatalf("Decode: %v", err)
		}
	}
}

func BenchmarkMsgp_Person_Encode(b *testing.B) {
	payload := newPersonPayload()
	b.ReportAllocs()
	b.ResetTimer()
	var out []byte
	for i := 0; i < b.N; i++ {
		var err error
		out, err = msgp.AppendIntf(out[:0], payload)
		if err != nil {
			b.Fatalf("msgp.AppendIntf: %v", err)
		}
	}
	_ = out
}

func BenchmarkFXCBOR_Person_Encode(b *testing.B) {
	payload := newPersonPayload()
	encMode, err := fxcbor.CanonicalEncOptions().EncMode()
	if err != nil {
		b.Fatalf("fxcbor EncMode: %v", err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	var out []byte
	for i := 0; i < b.N; i++ {
		out, err = encMode.Marshal(payload)
		if err != nil {
			b.Fatalf("fxcbor Marshal: %v", err)
		}
	}
	_ = out
}

func BenchmarkFXCBOR_Person_Decode(b *testing.B) {
	payload := newPersonPayload()
	encMode, err := fxcbor.CanonicalEncOptions().EncMode()
	if err != nil {
		b.Fatalf("fxcbor EncMode: %v", err)
	}
	decMode, err := fxcbor.DecOptions{}.DecMode()
	if err != nil {
		b.Fatalf("fxcbor DecMode: %v", err)
	}
	enc, err := encMode.Marshal(payload)
	if err != nil {
		b.Fatalf("fxcbor Marshal: %v", err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var out map[string]any
		if err := decMode.Unmarshal(enc, &out); err != nil {
			b.Fatalf("fxcbor Unmarshal: %v", err)
		}
	}
}
