package cbor

import "testing"

func TestAppendReadUndefinedRoundTrip(t *testing.T) {
	b := AppendUndefined(nil)
	rest, err := ReadUndefinedBytes(b)
	if err != nil {
		t.Fatalf("ReadUndefinedBytes: %v", err)
	}
	if len(rest) != 0 {
		t.Fatalf("expected no trailing bytes, got %d", len(rest))
	}
}

func TestReadUndefinedBytesRejectsNil(t *testing.T) {
	b := AppendNil(nil)
	if _, err := ReadUndefinedBytes(b); err == nil {
		t.Fatal("expected error reading nil as undefined")
	}
}

func TestAppendReadNilRoundTrip(t *testing.T) {
	b := AppendNil(nil)
	rest, err := ReadNilBytes(b)
	if err != nil {
		t.Fatalf("ReadNilBytes: %v", err)
	}
	if len(rest) != 0 {
		t.Fatalf("expected no trailing bytes, got %d", len(rest))
	}
}

func TestAppendReadTagRoundTrip(t *testing.T) {
	b := AppendTag(nil, 32)
	b = AppendString(b, "http://example.com")
	tag, rest, err := ReadTagBytes(b)
	if err != nil {
		t.Fatalf("ReadTagBytes: %v", err)
	}
	if tag != 32 {
		t.Fatalf("tag = %d, want 32", tag)
	}
	r := NewReaderBytes(rest)
	s, err := r.ReadString()
	if err != nil {
		t.Fatalf("ReadString: %v", err)
	}
	if s != "http://example.com" {
		t.Fatalf("got %q", s)
	}
}

func TestReadTagBytesRejectsNonTag(t *testing.T) {
	b := AppendInt64(nil, 5)
	if _, _, err := ReadTagBytes(b); err == nil {
		t.Fatal("expected error reading an int as a tag")
	}
}

func TestAppendReadBreakBytes(t *testing.T) {
	b := AppendBreak(nil)
	rest, ok, err := ReadBreakBytes(b)
	if err != nil {
		t.Fatalf("ReadBreakBytes: %v", err)
	}
	if !ok {
		t.Fatal("expected ok=true for a break byte")
	}
	if len(rest) != 0 {
		t.Fatalf("expected no trailing bytes, got %d", len(rest))
	}
}

func TestReadBreakBytesFalseOnNonBreak(t *testing.T) {
	b := AppendInt64(nil, 1)
	rest, ok, err := ReadBreakBytes(b)
	if err != nil {
		t.Fatalf("ReadBreakBytes: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false for a non-break byte")
	}
	if len(rest) != len(b) {
		t.Fatal("non-break input should not be consumed")
	}
}

func TestReaderRoundTripsScalars(t *testing.T) {
	b := AppendInt64(nil, -42)
	b = AppendUint64(b, 9000)
	b = AppendBool(b, true)
	b = AppendFloat64(b, 3.5)
	b = AppendBytes(b, []byte{1, 2, 3})

	r := NewReaderBytes(b)
	i, err := r.ReadInt64()
	if err != nil || i != -42 {
		t.Fatalf("ReadInt64 = %d, %v, want -42", i, err)
	}
	u, err := r.ReadUint64()
	if err != nil || u != 9000 {
		t.Fatalf("ReadUint64 = %d, %v, want 9000", u, err)
	}
	bo, err := r.ReadBool()
	if err != nil || !bo {
		t.Fatalf("ReadBool = %v, %v, want true", bo, err)
	}
	f, err := r.ReadFloat64()
	if err != nil || f != 3.5 {
		t.Fatalf("ReadFloat64 = %v, %v, want 3.5", f, err)
	}
	bs, err := r.ReadBytes()
	if err != nil || len(bs) != 3 {
		t.Fatalf("ReadBytes = %v, %v, want [1 2 3]", bs, err)
	}
	if len(r.Remaining()) != 0 {
		t.Fatalf("expected all bytes consumed, got %d remaining", len(r.Remaining()))
	}
}

func TestReaderStrictDecodeRejectsNonCanonicalLength(t *testing.T) {
	r := NewReaderBytes([]byte{0x18, 0x05}) // uint8-coded 5, non-minimal
	r.SetStrictDecode(true)
	if _, err := r.ReadUint64(); err == nil {
		t.Fatal("expected strict decode to reject a non-minimal length encoding")
	}
}

func TestReaderArrayStartIndefinite(t *testing.T) {
	b := AppendArrayHeaderIndefinite(nil)
	b = AppendInt64(b, 1)
	b = AppendBreak(b)

	r := NewReaderBytes(b)
	sz, indefinite, err := r.ReadArrayStart()
	if err != nil {
		t.Fatalf("ReadArrayStart: %v", err)
	}
	if !indefinite {
		t.Fatal("expected indefinite=true")
	}
	if sz != 0 {
		t.Fatalf("sz = %d, want 0 for indefinite array", sz)
	}
}

func TestReaderSaveRewind(t *testing.T) {
	b := AppendInt64(nil, 1)
	b = AppendInt64(b, 2)

	r := NewReaderBytes(b)
	mark := r.Save()
	v1, err := r.ReadInt64()
	if err != nil || v1 != 1 {
		t.Fatalf("ReadInt64 = %v, %v, want 1", v1, err)
	}
	r.Rewind(mark)
	v1again, err := r.ReadInt64()
	if err != nil || v1again != 1 {
		t.Fatalf("after Rewind, ReadInt64 = %v, %v, want 1", v1again, err)
	}
	v2, err := r.ReadInt64()
	if err != nil || v2 != 2 {
		t.Fatalf("ReadInt64 = %v, %v, want 2", v2, err)
	}
}

func TestReaderAdvance(t *testing.T) {
	b := AppendNil(nil)
	b = AppendInt64(b, 7)

	r := NewReaderBytes(b)
	rest, err := ReadNilBytes(r.Remaining())
	if err != nil {
		t.Fatalf("ReadNilBytes: %v", err)
	}
	r.Advance(rest)
	v, err := r.ReadInt64()
	if err != nil || v != 7 {
		t.Fatalf("ReadInt64 = %v, %v, want 7", v, err)
	}
}

func TestAppendCanonicalSortsNestedMapKeys(t *testing.T) {
	v := map[string]any{
		"z": map[string]any{"b": int64(2), "a": int64(1)},
		"a": int64(0),
	}
	b, err := AppendCanonical(nil, v)
	if err != nil {
		t.Fatalf("AppendCanonical: %v", err)
	}

	r := NewReaderBytes(b)
	sz, err := r.ReadMapHeader()
	if err != nil || sz != 2 {
		t.Fatalf("ReadMapHeader = %d, %v, want 2", sz, err)
	}
	// "a" (0x61 0x61) sorts before "z" (0x61 0x7a) by encoded key bytes.
	k1, err := r.ReadString()
	if err != nil || k1 != "a" {
		t.Fatalf("first key = %q, %v, want \"a\"", k1, err)
	}
	if _, err := r.ReadInt64(); err != nil {
		t.Fatalf("ReadInt64: %v", err)
	}
	k2, err := r.ReadString()
	if err != nil || k2 != "z" {
		t.Fatalf("second key = %q, %v, want \"z\"", k2, err)
	}
	innerSz, err := r.ReadMapHeader()
	if err != nil || innerSz != 2 {
		t.Fatalf("inner ReadMapHeader = %d, %v, want 2", innerSz, err)
	}
	ik1, err := r.ReadString()
	if err != nil || ik1 != "a" {
		t.Fatalf("inner first key = %q, %v, want \"a\"", ik1, err)
	}
}

func TestAppendCanonicalSortsArrayOfMaps(t *testing.T) {
	v := []any{
		map[string]any{"b": int64(1), "a": int64(2)},
	}
	b, err := AppendCanonical(nil, v)
	if err != nil {
		t.Fatalf("AppendCanonical: %v", err)
	}

	r := NewReaderBytes(b)
	n, indefinite, err := r.ReadArrayStart()
	if err != nil || indefinite || n != 1 {
		t.Fatalf("ReadArrayStart = %d, %v, %v, want 1, false", n, indefinite, err)
	}
	sz, err := r.ReadMapHeader()
	if err != nil || sz != 2 {
		t.Fatalf("ReadMapHeader = %d, %v, want 2", sz, err)
	}
	k1, err := r.ReadString()
	if err != nil || k1 != "a" {
		t.Fatalf("first key = %q, %v, want \"a\"", k1, err)
	}
}
