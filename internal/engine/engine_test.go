package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snipe-lang/snipe/internal/engine"
	"github.com/snipe-lang/snipe/internal/reposcan"
	"github.com/snipe-lang/snipe/internal/snipeparse"
	"github.com/snipe-lang/snipe/internal/types"
)

// repoWith builds a Graph whose snapshot contains one repo file's worth
// of extracted symbols, mirroring what a full scan would have produced
// before the buffer under test was opened.
func repoWith(t *testing.T, path string, content string) *reposcan.Snapshot {
	t.Helper()
	g := reposcan.New(t.TempDir(), reposcan.Options{})
	require.NoError(t, g.RefreshFile(path, []byte(content)))
	return g.Snapshot()
}

func extractBuffer(t *testing.T, path, content string) snipeparse.ExtractResult {
	t.Helper()
	adapter := snipeparse.ForExtension(extOf(path))
	require.NotNil(t, adapter)
	res, err := adapter.Extract(path, []byte(content))
	require.NoError(t, err)
	return res
}

func extOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			return path[i:]
		}
	}
	return ""
}

func TestScenarioArrayBoundsAcrossFiles(t *testing.T) {
	snap := repoWith(t, "core.c", "int arr[10];\n")
	buf := extractBuffer(t, "main.c", "int main() { int x = arr[12]; return 0; }\n")

	diags := engine.Analyze("main.c", buf.References, buf.Symbols, snap)

	var bounds []types.Diagnostic
	for _, d := range diags {
		if d.Code == types.CodeArrayBounds {
			bounds = append(bounds, d)
		}
	}
	require.Len(t, bounds, 1)
	assert.Equal(t, types.SeverityError, bounds[0].Severity)
	assert.Contains(t, bounds[0].Message, "Index 12 exceeds declared size 10")
	assert.Contains(t, bounds[0].Message, "core.c:1")
}

func TestScenarioCrossFileAnnotationMismatch(t *testing.T) {
	snap := repoWith(t, "a.py", "balance: int = 0\n")
	buf := extractBuffer(t, "b.py", "balance: float = 3.14\n")

	diags := engine.Analyze("b.py", buf.References, buf.Symbols, snap)

	var mismatches []types.Diagnostic
	for _, d := range diags {
		if d.Code == types.CodeTypeMismatch {
			mismatches = append(mismatches, d)
		}
	}
	require.Len(t, mismatches, 1)
	assert.Equal(t, 1, mismatches[0].Line)
}

func TestScenarioSignatureDrift(t *testing.T) {
	snap := repoWith(t, "lib.py", "def compute(a, b, c):\n    return a\n")
	buf := extractBuffer(t, "main.py", "compute(1, 2)\n")

	diags := engine.Analyze("main.py", buf.References, buf.Symbols, snap)

	var drift []types.Diagnostic
	for _, d := range diags {
		if d.Code == types.CodeSignatureDrift {
			drift = append(drift, d)
		}
	}
	require.Len(t, drift, 1)
	assert.Contains(t, drift[0].Message, "expects 3")
	assert.Contains(t, drift[0].Message, "but 2 provided")
}

func TestScenarioDuplicateDefinitionAcrossFiles(t *testing.T) {
	snap := repoWith(t, "a.c", "int total(int x) { return x; }\n")
	buf := extractBuffer(t, "b.c", "int total(int x) { return x * 2; }\n")

	diags := engine.Analyze("b.c", buf.References, buf.Symbols, snap)

	var drift []types.Diagnostic
	for _, d := range diags {
		if d.Code == types.CodeSignatureDrift {
			drift = append(drift, d)
		}
	}
	require.Len(t, drift, 1)
	assert.Equal(t, types.SeverityInfo, drift[0].Severity)
	assert.Contains(t, drift[0].Message, "Duplicate definition of 'total'")
	assert.Contains(t, drift[0].Message, "first seen in a.c:1")
}

func TestScenarioUnsafeGets(t *testing.T) {
	buf := extractBuffer(t, "main.c", "int main() { char buf[16]; gets(buf); return 0; }\n")

	diags := engine.Analyze("main.c", buf.References, buf.Symbols, nil)

	var unsafe []types.Diagnostic
	for _, d := range diags {
		if d.Code == types.CodeUnsafeFunction {
			unsafe = append(unsafe, d)
		}
	}
	require.Len(t, unsafe, 1)
	assert.Equal(t, types.SeverityError, unsafe[0].Severity)
	assert.Contains(t, unsafe[0].Message, "fgets(buf, size, stdin)")
}

func TestScenarioFormatStringArgMismatch(t *testing.T) {
	buf := extractBuffer(t, "main.c", `int main() { printf("%d %s", 42); return 0; }`+"\n")

	diags := engine.Analyze("main.c", buf.References, buf.Symbols, nil)

	var format []types.Diagnostic
	for _, d := range diags {
		if d.Code == types.CodeFormatString {
			format = append(format, d)
		}
	}
	require.Len(t, format, 1)
	assert.Contains(t, format[0].Message, "2 specifier(s)")
	assert.Contains(t, format[0].Message, "1 argument(s)")
}

func TestScenarioDeadImport(t *testing.T) {
	buf := extractBuffer(t, "main.py", "from os import path, getcwd\nprint(path)\n")

	diags := engine.Analyze("main.py", buf.References, buf.Symbols, nil)

	var dead []types.Diagnostic
	for _, d := range diags {
		if d.Code == types.CodeDeadImport {
			dead = append(dead, d)
		}
	}
	require.Len(t, dead, 1)
	assert.Contains(t, dead[0].Message, "'getcwd'")
	for _, d := range diags {
		assert.NotContains(t, d.Message, "'path'")
	}
}

func TestStarImportSuppressesUndefined(t *testing.T) {
	buf := extractBuffer(t, "main.py", "from os import *\nsomething_unknown()\n")

	diags := engine.Analyze("main.py", buf.References, buf.Symbols, nil)

	for _, d := range diags {
		assert.NotEqual(t, types.CodeUndefinedSymbol, d.Code)
	}
}

func TestUnusedExternWarns(t *testing.T) {
	buf := extractBuffer(t, "main.c", "extern int counter;\nint main() { return 0; }\n")

	diags := engine.Analyze("main.c", buf.References, buf.Symbols, nil)

	var found bool
	for _, d := range diags {
		if d.Code == types.CodeUnusedExtern {
			found = true
			assert.Contains(t, d.Message, "'counter'")
		}
	}
	assert.True(t, found)
}
