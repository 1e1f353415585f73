package reposcan

import (
	"path/filepath"

	ignore "github.com/sabhiram/go-gitignore"
)

// ignoreMatcher wraps the repo root's .gitignore, grounded on the
// teacher's internal/config/gitignore.go use of
// github.com/sabhiram/go-gitignore (shared by brian-lai-repo-search and
// phobologic-repoguide in the example pack).
type ignoreMatcher struct {
	gi *ignore.GitIgnore
}

func loadIgnore(root string) *ignoreMatcher {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return &ignoreMatcher{gi: gi}
}

// Match reports whether a repo-relative, forward-slash path is ignored.
func (m *ignoreMatcher) Match(relPath string) bool {
	if m == nil || m.gi == nil {
		return false
	}
	return m.gi.MatchesPath(relPath)
}
