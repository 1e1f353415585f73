package reposcan

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// fixedIgnoreDirs is the fixed ignore list named in spec.md §4.3,
// independent of any .gitignore or configured exclude pattern.
var fixedIgnoreDirs = map[string]struct{}{
	".git":          {},
	".snipe":        {},
	"venv":          {},
	".venv":         {},
	"env":           {},
	"__pycache__":   {},
	"build":         {},
	"dist":          {},
	"node_modules":  {},
}

func readFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// discoverFiles walks root and returns the absolute paths of every file
// with a supported extension, skipping the fixed ignore list, any
// .gitignore match, and any configured exclude glob.
func discoverFiles(root string, excludes []string, ignore *ignoreMatcher) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil // a single unreadable entry never aborts the scan
		}
		name := d.Name()
		if d.IsDir() {
			if path != root {
				if _, skip := fixedIgnoreDirs[name]; skip {
					return filepath.SkipDir
				}
				if strings.HasPrefix(name, ".") && path != root {
					return filepath.SkipDir
				}
			}
			return nil
		}

		ext := filepath.Ext(name)
		if ext != ".c" && ext != ".h" && ext != ".py" && ext != ".pyw" && ext != ".pyi" {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if ignore != nil && ignore.Match(rel) {
			return nil
		}
		for _, pattern := range excludes {
			if matched, _ := doublestar.Match(pattern, rel); matched {
				return nil
			}
		}

		abs, absErr := filepath.Abs(path)
		if absErr != nil {
			abs = path
		}
		out = append(out, abs)
		return nil
	})
	return out, err
}
