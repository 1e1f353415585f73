package types

import "testing"

func TestDedupDiagnosticsDropsExactTupleMatches(t *testing.T) {
	in := []Diagnostic{
		{File: "a.c", Line: 1, Code: CodeArrayBounds, Message: "Index 12 exceeds declared size 10 in core.c:1"},
		{File: "a.c", Line: 1, Code: CodeArrayBounds, Message: "Index 12 exceeds declared size 10 in core.c:1"},
		{File: "a.c", Line: 2, Code: CodeArrayBounds, Message: "Index 12 exceeds declared size 10 in core.c:1"},
	}

	out := DedupDiagnostics(in)
	if len(out) != 2 {
		t.Fatalf("expected 2 diagnostics after dedup, got %d", len(out))
	}
}

func TestNormalizedTypeStripsArraySuffixAndCollapsesWhitespace(t *testing.T) {
	cases := map[string]string{
		"int":        "int",
		"int[10]":    "int",
		"  char  *":  "char *",
		"float[ 3 ]": "float",
	}
	for in, want := range cases {
		if got := NormalizedType(in); got != want {
			t.Errorf("NormalizedType(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSeverityString(t *testing.T) {
	if SeverityError.String() != "ERROR" {
		t.Errorf("SeverityError.String() = %q", SeverityError.String())
	}
	if SeverityWarning.String() != "WARNING" {
		t.Errorf("SeverityWarning.String() = %q", SeverityWarning.String())
	}
}
