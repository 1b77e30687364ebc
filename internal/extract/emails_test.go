package extract

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestEmails_DirectAndObfuscated(t *testing.T) {
	text := `Reach the partners: jane (at) firm (dot) io or write to bob@firm.io today.`

	got := Emails(text)
	want := map[string]bool{"jane@firm.io": true, "bob@firm.io": true}

	if len(got) != len(want) {
		t.Fatalf("expected %d emails, got %v", len(want), got)
	}
	for _, e := range got {
		if !want[e] {
			t.Errorf("unexpected email %q", e)
		}
	}
}

func TestEmails_Deobfuscation(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"name [at] domain [dot] com", "name@domain.com"},
		{"name(at)domain(dot)com", "name@domain.com"},
		{"first.last [at] sub.example [dot] org", "first.last@sub.example.org"},
		{"x  (at)  y  [dot]  io", "x@y.io"},
	}

	for _, tc := range cases {
		got := Emails("contact: " + tc.in + " thanks")
		if len(got) != 1 || got[0] != tc.want {
			t.Errorf("Emails(%q) = %v, want [%s]", tc.in, got, tc.want)
		}
	}
}

func TestEmails_NoDuplicatesAndCasePreserved(t *testing.T) {
	text := "bob@firm.io, bob@firm.io and Bob@firm.io"
	got := Emails(text)
	if len(got) != 2 {
		t.Fatalf("expected 2 distinct emails, got %v", got)
	}
	if got[0] != "bob@firm.io" || got[1] != "Bob@firm.io" {
		t.Errorf("unexpected order or casing: %v", got)
	}
}

func TestEmails_RejectsShortTLD(t *testing.T) {
	if got := Emails("user@host.c and plain text"); len(got) != 0 {
		t.Errorf("expected no match for single-letter TLD, got %v", got)
	}
	if got := Emails(""); got != nil {
		t.Errorf("expected nil for empty text, got %v", got)
	}
}

func TestEmails_Idempotent(t *testing.T) {
	text := "a@b.co, c [at] d [dot] io, e@f.org, a@b.co"
	first := Emails(text)
	second := Emails(text)
	if strings.Join(first, ",") != strings.Join(second, ",") {
		t.Errorf("expected identical results, got %v and %v", first, second)
	}
}

func TestEmails_ConcatenationIsSuperset(t *testing.T) {
	a := "sales@acme.com and ops (at) acme (dot) com"
	b := "ceo@beta.io plus sales@acme.com"

	combined := Emails(a + " " + b)
	set := make(map[string]int)
	for _, e := range combined {
		set[e]++
	}
	for e, n := range set {
		if n > 1 {
			t.Errorf("duplicate %q in combined result", e)
		}
	}
	for _, part := range [][]string{Emails(a), Emails(b)} {
		for _, e := range part {
			if set[e] == 0 {
				t.Errorf("combined result missing %q", e)
			}
		}
	}
}

func TestContext(t *testing.T) {
	text := strings.Repeat("x", 300) + " bob@firm.io " + strings.Repeat("y", 300)

	got, ok := Context(text, "bob@firm.io", 200)
	if !ok {
		t.Fatal("expected email to be located")
	}
	if !strings.Contains(got, "bob@firm.io") {
		t.Errorf("context does not contain email: %q", got)
	}
	if len(got) != 200+len("bob@firm.io")+200 {
		t.Errorf("unexpected context length %d", len(got))
	}

	if _, ok := Context(text, "jane@firm.io", 200); ok {
		t.Error("expected missing email to report ok=false")
	}
}

func TestContext_RuneBoundaries(t *testing.T) {
	text := strings.Repeat("é", 150) + "bob@firm.io" + strings.Repeat("ü", 150)
	got, ok := Context(text, "bob@firm.io", 101)
	if !ok {
		t.Fatal("expected email to be located")
	}
	if !utf8.ValidString(got) {
		t.Errorf("context is not valid UTF-8: %q", got)
	}
}
