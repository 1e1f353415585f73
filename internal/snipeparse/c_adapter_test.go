package snipeparse

import "testing"

func TestCountFormatSpecifiersIgnoresPercentEscape(t *testing.T) {
	cases := map[string]int{
		"%d %s":    2,
		"100%% done": 0,
		"%d%%%s":   2,
		"no specs": 0,
	}
	for in, want := range cases {
		if got := countFormatSpecifiers(in); got != want {
			t.Errorf("countFormatSpecifiers(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestExtractCRecognizesArrayAndFunction(t *testing.T) {
	src := []byte("int arr[10];\n\nint compute(int a, int b, int c) {\n    return a + b + c;\n}\n")
	result, err := cAdapter.Extract("core.c", src)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	var foundArray, foundFunc bool
	for _, s := range result.Symbols {
		if s.Name == "arr" && s.ArraySize != nil && *s.ArraySize == 10 {
			foundArray = true
		}
		if s.Name == "compute" && len(s.Params) == 3 {
			foundFunc = true
		}
	}
	if !foundArray {
		t.Errorf("expected to find array symbol arr[10], got %+v", result.Symbols)
	}
	if !foundFunc {
		t.Errorf("expected to find function symbol compute/3, got %+v", result.Symbols)
	}
}

func TestArrayAccessFallbackSkipsCommentsAndStrings(t *testing.T) {
	content := []byte("// arr[99] is a comment\nchar *s = \"arr[5]\";\nint x = arr[3];\n")
	refs := arrayAccessFallback("buf.c", content, map[arrayAccessKey]struct{}{})

	if len(refs) != 1 {
		t.Fatalf("expected exactly 1 fallback reference, got %d: %+v", len(refs), refs)
	}
	if refs[0].Line != 3 || refs[0].IndexValue == nil || *refs[0].IndexValue != 3 {
		t.Errorf("unexpected fallback reference: %+v", refs[0])
	}
}
