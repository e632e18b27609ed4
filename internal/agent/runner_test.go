package agent

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"go.uber.org/zap"
)

// initWorkspace creates a git repository with one committed file, standing
// in for a freshly prepared working copy.
func initWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("initializing repo: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("hello\n"), 0644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	w, err := repo.Worktree()
	if err != nil {
		t.Fatalf("getting worktree: %v", err)
	}
	if _, err := w.Add("README.md"); err != nil {
		t.Fatalf("staging file: %v", err)
	}
	_, err = w.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatalf("committing: %v", err)
	}

	return dir
}

func TestRun_AgentModifiesFiles_ReturnsThem(t *testing.T) {
	dir := initWorkspace(t)

	r := NewRunner("sh", []string{"-c", "echo generated > generated.txt"}, zap.NewNop())
	res, err := r.Run(context.Background(), dir, "add a generated file")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.ModifiedFiles) != 1 || res.ModifiedFiles[0] != "generated.txt" {
		t.Errorf("expected [generated.txt], got %v", res.ModifiedFiles)
	}
}

func TestRun_InstructionDeliveredOnStdin(t *testing.T) {
	dir := initWorkspace(t)

	r := NewRunner("sh", []string{"-c", "cat > instruction.txt"}, zap.NewNop())
	res, err := r.Run(context.Background(), dir, "PROJ-123: fix the null check")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "instruction.txt"))
	if err != nil {
		t.Fatalf("reading captured instruction: %v", err)
	}
	if !strings.Contains(string(data), "PROJ-123") {
		t.Errorf("expected instruction on stdin, got %q", string(data))
	}
	if len(res.ModifiedFiles) == 0 {
		t.Error("expected the written instruction file to count as a change")
	}
}

func TestRun_NoChanges_Fails(t *testing.T) {
	dir := initWorkspace(t)

	r := NewRunner("true", nil, zap.NewNop())
	_, err := r.Run(context.Background(), dir, "do nothing")
	if err == nil {
		t.Fatal("expected error when agent produces no changes")
	}
	if !strings.Contains(err.Error(), "no changes") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRun_AgentExitError_FailsWithOutput(t *testing.T) {
	dir := initWorkspace(t)

	r := NewRunner("sh", []string{"-c", "echo broken instruction >&2; exit 3"}, zap.NewNop())
	_, err := r.Run(context.Background(), dir, "do something")
	if err == nil {
		t.Fatal("expected error when agent exits non-zero")
	}
	if !strings.Contains(err.Error(), "broken instruction") {
		t.Errorf("expected agent output in error, got %v", err)
	}
}

func TestRun_ContextTimeout_Fails(t *testing.T) {
	dir := initWorkspace(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	r := NewRunner("sleep", []string{"10"}, zap.NewNop())
	_, err := r.Run(ctx, dir, "slow")
	if err == nil {
		t.Fatal("expected error when the agent exceeds its deadline")
	}
}
