package intern

import "testing"

func TestInternDeduplicates(t *testing.T) {
	tbl := New()

	a := tbl.Intern("hi there")
	b := tbl.Intern("hi there")
	c := tbl.Intern("other")

	if a != b {
		t.Fatalf("expected equal handles for equal strings, got %d and %d", a, b)
	}
	if a == c {
		t.Fatalf("expected distinct handles for distinct strings")
	}
	if tbl.Len() != 2 {
		t.Fatalf("expected 2 distinct strings, got %d", tbl.Len())
	}
	if tbl.Lookup(a) != "hi there" {
		t.Fatalf("lookup mismatch: got %q", tbl.Lookup(a))
	}
}
