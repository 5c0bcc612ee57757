package cddl

import "testing"

func TestLatinize(t *testing.T) {
	cases := map[string]string{
		"foo-bar": "foo_bar",
		"9lives":  "_9lives",
		"already_fine": "already_fine",
		"":        "_",
	}
	for in, want := range cases {
		if got := latinize(in); got != want {
			t.Errorf("latinize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGenerateBaseNamePriority(t *testing.T) {
	// Label wins over everything else.
	n := NewNode(IntKind)
	n.Label = "explicit"
	n.Key = NewNode(TstrKind)
	n.Key.Value = "keyname"
	if got := generateBaseName(n, "fallback"); got != "explicit" {
		t.Fatalf("got %q, want explicit", got)
	}

	// Without a label, the key's literal name wins.
	n2 := NewNode(IntKind)
	n2.Key = NewNode(TstrKind)
	n2.Key.Value = "keyname"
	if got := generateBaseName(n2, "fallback"); got != "keyname" {
		t.Fatalf("got %q, want keyname", got)
	}

	// Without label or key, fall back to the kind name.
	n3 := NewNode(IntKind)
	if got := generateBaseName(n3, ""); got != "INT" {
		t.Fatalf("got %q, want INT", got)
	}
}

func TestUniquifyAppendsSuffixOnCollision(t *testing.T) {
	a := NewNode(MapKind)
	a.IDPrefix = "root"
	a.BaseName = "dup"

	b := NewNode(MapKind)
	b.IDPrefix = "root"
	b.BaseName = "dup"

	assigned := map[string]bool{}
	if err := uniquify(a, assigned); err != nil {
		t.Fatalf("uniquify a: %v", err)
	}
	if err := uniquify(b, assigned); err != nil {
		t.Fatalf("uniquify b: %v", err)
	}
	if a.BaseName == b.BaseName {
		t.Fatalf("expected distinct base names, both are %q", a.BaseName)
	}
	if b.BaseName != "dup_r" {
		t.Fatalf("second collision should be suffixed _r, got %q", b.BaseName)
	}
}

func TestSetIDPrefixSetsPrefixOnGroupAndChild(t *testing.T) {
	leaf := NewNode(IntKind)
	wrapper := NewNode(GroupKind)
	wrapper.Children = []*Node{leaf}

	SetIDPrefix(wrapper, "top")
	if wrapper.IDPrefix != "top" {
		t.Fatalf("wrapper.IDPrefix = %q, want top", wrapper.IDPrefix)
	}
	// GroupKind needsOwnFunction, so leaf's prefix is wrapper's own
	// generated base name, not "top" verbatim.
	if leaf.IDPrefix == "" {
		t.Fatal("leaf.IDPrefix should not be empty")
	}
}
