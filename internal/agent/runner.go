package agent

import (
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"go.uber.org/zap"
)

// Runner invokes the code-generation agent as an external CLI process in a
// working copy. The agent is opaque: this package only knows how to start
// it, feed it the instruction and report whether it changed anything. No
// retries happen here; one trigger means at most one agent attempt.
type Runner struct {
	command string
	args    []string
	logger  *zap.Logger
}

// Result is what a successful agent invocation produced.
type Result struct {
	ModifiedFiles []string
	Output        string
}

// NewRunner creates a runner for the configured agent command.
func NewRunner(command string, args []string, logger *zap.Logger) *Runner {
	return &Runner{
		command: command,
		args:    args,
		logger:  logger,
	}
}

// Run executes the agent in the working copy with the instruction on stdin
// and returns the set of files it modified. An agent exit error, a context
// timeout and an untouched worktree are all failures; the worktree check
// is what keeps empty pull requests from ever being opened.
func (r *Runner) Run(ctx context.Context, workspacePath, instruction string) (*Result, error) {
	cmd := exec.CommandContext(ctx, r.command, r.args...)
	cmd.Dir = workspacePath
	cmd.Stdin = strings.NewReader(instruction)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("agent execution failed: %w: %s", err, tail(string(output), 2000))
	}

	modified, err := modifiedFiles(workspacePath)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect working copy: %w", err)
	}
	if len(modified) == 0 {
		return nil, fmt.Errorf("agent produced no changes in %s", workspacePath)
	}

	r.logger.Info("agent run finished",
		zap.String("workspace", workspacePath),
		zap.Int("modified_files", len(modified)),
	)

	return &Result{
		ModifiedFiles: modified,
		Output:        string(output),
	}, nil
}

// modifiedFiles lists every path the worktree status reports as changed,
// staged or untracked.
func modifiedFiles(workspacePath string) ([]string, error) {
	repo, err := git.PlainOpen(workspacePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	w, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}

	status, err := w.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to read worktree status: %w", err)
	}

	var files []string
	for path, fileStatus := range status {
		if fileStatus.Worktree == git.Unmodified && fileStatus.Staging == git.Unmodified {
			continue
		}
		files = append(files, path)
	}
	sort.Strings(files)

	return files, nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
