package activities

import (
	"context"
	"errors"
)

// Activity functions that will be registered with the Temporal worker.
// These are wrapper functions that call the actual activity implementations,
// so workflow code can reference activities by function without holding the
// worker's wiring.

var (
	trackerActivities *TrackerActivities
	scmActivities     *SCMActivities
	agentActivities   *AgentActivities
)

var errNotInitialized = errors.New("activities not initialized")

// SetTrackerActivities sets the tracker activities implementation
func SetTrackerActivities(ta *TrackerActivities) {
	trackerActivities = ta
}

// SetSCMActivities sets the SCM activities implementation
func SetSCMActivities(sa *SCMActivities) {
	scmActivities = sa
}

// SetAgentActivities sets the agent activities implementation
func SetAgentActivities(aa *AgentActivities) {
	agentActivities = aa
}

// TransitionTicketActivity is the activity function for ticket transitions
func TransitionTicketActivity(ctx context.Context, in TransitionInput) error {
	if trackerActivities == nil {
		return errNotInitialized
	}
	return trackerActivities.TransitionTicket(ctx, in)
}

// AddCommentActivity is the activity function for ticket comments
func AddCommentActivity(ctx context.Context, in CommentInput) error {
	if trackerActivities == nil {
		return errNotInitialized
	}
	return trackerActivities.AddComment(ctx, in)
}

// PrepareWorkspaceActivity is the activity function for working-copy setup
func PrepareWorkspaceActivity(ctx context.Context, in WorkspaceInput) (WorkspaceResult, error) {
	if scmActivities == nil {
		return WorkspaceResult{}, errNotInitialized
	}
	return scmActivities.PrepareWorkspace(ctx, in)
}

// RunAgentActivity is the activity function for agent invocation
func RunAgentActivity(ctx context.Context, in AgentInput) (AgentResult, error) {
	if agentActivities == nil {
		return AgentResult{}, errNotInitialized
	}
	return agentActivities.RunAgent(ctx, in)
}

// CommitAndPushActivity is the activity function for committing and pushing
func CommitAndPushActivity(ctx context.Context, in CommitInput) error {
	if scmActivities == nil {
		return errNotInitialized
	}
	return scmActivities.CommitAndPush(ctx, in)
}

// CreatePullRequestActivity is the activity function for opening the PR
func CreatePullRequestActivity(ctx context.Context, in PRInput) (PRResult, error) {
	if scmActivities == nil {
		return PRResult{}, errNotInitialized
	}
	return scmActivities.CreatePullRequest(ctx, in)
}
