package scm

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/google/go-github/v57/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/clintrovert/gorkon/pkg/types"
)

// Client wraps GitHub API and Git operations against the single target
// repository the pipeline serves.
type Client struct {
	apiClient    *github.Client
	logger       *zap.Logger
	accessToken  string
	owner        string
	repo         string
	baseBranch   string
	workspaceDir string
}

// NewClient creates a new SCM client.
func NewClient(accessToken, owner, repo, baseBranch, workspaceDir string, logger *zap.Logger) *Client {
	ctx := context.Background()
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: accessToken},
	)
	tc := oauth2.NewClient(ctx, ts)

	return &Client{
		apiClient:    github.NewClient(tc),
		logger:       logger,
		accessToken:  accessToken,
		owner:        owner,
		repo:         repo,
		baseBranch:   baseBranch,
		workspaceDir: workspaceDir,
	}
}

// PrepareWorkspace produces a fresh working copy for one run: a clean clone
// of the base branch with the head branch created and checked out. Any
// stale working copy for the same ticket is discarded first, which is what
// makes a manual re-trigger idempotent. Working copies for different
// tickets live in separate directories and never share state.
func (c *Client) PrepareWorkspace(ctx context.Context, ticketID, branch string) (string, error) {
	repoPath := filepath.Join(c.workspaceDir, ticketID)

	if _, err := os.Stat(repoPath); err == nil {
		if err := os.RemoveAll(repoPath); err != nil {
			return "", fmt.Errorf("failed to remove stale working copy: %w", err)
		}
	}

	if err := os.MkdirAll(repoPath, 0755); err != nil {
		return "", fmt.Errorf("failed to create workspace directory: %w", err)
	}

	cloneURL := fmt.Sprintf("https://%s@github.com/%s/%s.git", c.accessToken, c.owner, c.repo)

	r, err := git.PlainCloneContext(ctx, repoPath, false, &git.CloneOptions{
		URL:           cloneURL,
		ReferenceName: plumbing.NewBranchReferenceName(c.baseBranch),
		SingleBranch:  true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to clone repository: %w", err)
	}

	w, err := r.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree: %w", err)
	}

	err = w.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(branch),
		Create: true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create branch %s: %w", branch, err)
	}

	c.logger.Info("prepared working copy",
		zap.String("ticket_id", ticketID),
		zap.String("branch", branch),
		zap.String("path", repoPath),
	)

	return repoPath, nil
}

// CommitAndPush stages everything in the working copy, commits it with the
// given message and pushes the branch to the remote.
func (c *Client) CommitAndPush(ctx context.Context, repoPath, branch, message string) error {
	r, err := git.PlainOpen(repoPath)
	if err != nil {
		return fmt.Errorf("failed to open repository: %w", err)
	}

	w, err := r.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	if _, err := w.Add("."); err != nil {
		return fmt.Errorf("failed to add changes: %w", err)
	}

	_, err = w.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Gorkon Bot",
			Email: "gorkon@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	remote, err := r.Remote("origin")
	if err != nil {
		return fmt.Errorf("failed to get remote: %w", err)
	}

	refSpec := fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch)
	err = remote.PushContext(ctx, &git.PushOptions{
		RefSpecs: []gitconfig.RefSpec{gitconfig.RefSpec(refSpec)},
	})
	if err != nil {
		return fmt.Errorf("failed to push branch %s: %w", branch, err)
	}

	c.logger.Info("committed and pushed",
		zap.String("branch", branch),
		zap.String("message", message),
	)

	return nil
}

// OpenPullRequest opens a pull request from the head branch against the
// base branch and returns its URL.
func (c *Client) OpenPullRequest(ctx context.Context, branch, title, body string) (*types.PRInfo, error) {
	newPR := &github.NewPullRequest{
		Title: github.String(title),
		Head:  github.String(branch),
		Base:  github.String(c.baseBranch),
		Body:  github.String(body),
	}

	pr, resp, err := c.apiClient.PullRequests.Create(ctx, c.owner, c.repo, newPR)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to create pull request (status %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("failed to create pull request: %w", err)
	}

	prInfo := &types.PRInfo{
		PRNumber: int64(pr.GetNumber()),
		PRURL:    pr.GetHTMLURL(),
		Title:    pr.GetTitle(),
		Status:   pr.GetState(),
	}

	c.logger.Info("created pull request",
		zap.String("branch", branch),
		zap.Int64("pr_number", prInfo.PRNumber),
		zap.String("pr_url", prInfo.PRURL),
	)

	return prInfo, nil
}
