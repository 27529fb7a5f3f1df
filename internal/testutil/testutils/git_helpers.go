package helpers

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// SetupTestGitRepo initializes a temporary git repository for testing.
// Returns the repository, its worktree, and the absolute path to the temporary directory.
func SetupTestGitRepo(t *testing.T) (*git.Repository, *git.Worktree, string) {
	t.Helper()
	return InitGitRepo(t, t.TempDir())
}

// InitGitRepo initializes a repository in an existing directory.
func InitGitRepo(t *testing.T, dir string) (*git.Repository, *git.Worktree, string) {
	t.Helper()

	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("failed to initialize git repo: %v", err)
	}

	w, err := repo.Worktree()
	if err != nil {
		t.Fatalf("failed to get worktree: %v", err)
	}

	return repo, w, dir
}

// CommitFiles stages files (slash-separated, relative to root) and commits
// them with author and committer time when. Files that do not exist yet are
// created with placeholder content.
func CommitFiles(t *testing.T, repo *git.Repository, root string, when time.Time, msg string, files ...string) plumbing.Hash {
	t.Helper()
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}
	for _, f := range files {
		full := filepath.Join(root, filepath.FromSlash(f))
		if _, statErr := os.Stat(full); os.IsNotExist(statErr) {
			if mkErr := os.MkdirAll(filepath.Dir(full), 0o755); mkErr != nil {
				t.Fatalf("mkdir: %v", mkErr)
			}
			if writeErr := os.WriteFile(full, []byte(msg+"\n"+f+"\n"), 0o600); writeErr != nil {
				t.Fatalf("write file: %v", writeErr)
			}
		} else {
			// ensure the tree changes so the commit touches the file
			appendLine(t, full, msg)
		}
		if _, addErr := wt.Add(f); addErr != nil {
			t.Fatalf("add %s: %v", f, addErr)
		}
	}
	sig := &object.Signature{Name: "tester", Email: "t@example.com", When: when}
	hash, err := wt.Commit(msg, &git.CommitOptions{Author: sig, Committer: sig})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	return hash
}

func appendLine(t *testing.T, path, line string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	if _, err := f.WriteString("\n<!-- " + line + " -->\n"); err != nil {
		t.Fatalf("append %s: %v", path, err)
	}
}
