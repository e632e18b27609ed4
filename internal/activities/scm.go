package activities

import (
	"context"

	"go.temporal.io/sdk/activity"
	"go.uber.org/zap"

	"github.com/clintrovert/gorkon/internal/scm"
)

// SCMActivities handles source-control activities
type SCMActivities struct {
	client *scm.Client
	logger *zap.Logger
}

// NewSCMActivities creates a new SCM activities handler
func NewSCMActivities(client *scm.Client, logger *zap.Logger) *SCMActivities {
	return &SCMActivities{
		client: client,
		logger: logger,
	}
}

// PrepareWorkspace produces a fresh working copy on the run's branch.
func (a *SCMActivities) PrepareWorkspace(ctx context.Context, in WorkspaceInput) (WorkspaceResult, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("preparing workspace",
		"ticket_id", in.TicketID,
		"branch", in.Branch,
	)

	path, err := a.client.PrepareWorkspace(ctx, in.TicketID, in.Branch)
	if err != nil {
		return WorkspaceResult{}, err
	}

	return WorkspaceResult{Path: path}, nil
}

// CommitAndPush commits the working copy and pushes the branch.
func (a *SCMActivities) CommitAndPush(ctx context.Context, in CommitInput) error {
	logger := activity.GetLogger(ctx)
	logger.Info("committing changes",
		"branch", in.Branch,
		"message", in.Message,
	)

	return a.client.CommitAndPush(ctx, in.WorkspacePath, in.Branch, in.Message)
}

// CreatePullRequest opens the pull request for a pushed branch.
func (a *SCMActivities) CreatePullRequest(ctx context.Context, in PRInput) (PRResult, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("creating pull request",
		"branch", in.Branch,
		"title", in.Title,
	)

	pr, err := a.client.OpenPullRequest(ctx, in.Branch, in.Title, in.Body)
	if err != nil {
		return PRResult{}, err
	}

	return PRResult{URL: pr.PRURL, Number: pr.PRNumber}, nil
}
