package workflows

import (
	"fmt"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/clintrovert/gorkon/internal/activities"
	"github.com/clintrovert/gorkon/internal/scm"
	"github.com/clintrovert/gorkon/pkg/types"
)

// QueryRun is the query name under which a workflow exposes its Run record.
// It answers for both running and terminal runs, so the triggering system
// can always find out which steps succeeded.
const QueryRun = "run"

// PipelineWorkflow drives one run of the ticket-to-PR pipeline:
//
//	received -> in_progress -> committed -> pr_created -> in_review -> completed
//
// with failed reachable from every non-terminal state. Steps are strictly
// sequential; each step's side effect is a precondition for the next. No
// activity is retried: a manual re-trigger is the recovery path, and the
// deterministic branch name keeps that safe. The workflow id doubles as the
// per-ticket run lock, so any terminal outcome (including cancellation)
// releases it.
func PipelineWorkflow(ctx workflow.Context, input RunInput) (*types.Run, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("starting pipeline run",
		"ticket_id", input.Ticket.TicketID,
		"branch", input.BranchName,
	)

	run := &types.Run{
		TicketID:   input.Ticket.TicketID,
		BranchName: input.BranchName,
		State:      types.RunStateReceived,
		StartedAt:  workflow.Now(ctx),
	}

	if err := workflow.SetQueryHandler(ctx, QueryRun, func() (types.Run, error) {
		return *run, nil
	}); err != nil {
		return nil, fmt.Errorf("failed to register run query handler: %w", err)
	}

	singleAttempt := &temporal.RetryPolicy{MaximumAttempts: 1}
	stepCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: input.StepTimeout,
		RetryPolicy:         singleAttempt,
	})
	agentCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: input.AgentTimeout,
		RetryPolicy:         singleAttempt,
	})

	// received -> in_progress: acknowledge the ticket before any work. A
	// failure here stops the run so the agent never works against a ticket
	// the tracker does not show as in progress.
	err := workflow.ExecuteActivity(stepCtx, activities.TransitionTicketActivity, activities.TransitionInput{
		TicketID:     input.Ticket.TicketID,
		TransitionID: input.InProgressTransitionID,
	}).Get(stepCtx, nil)
	if err != nil {
		return fail(ctx, run, types.FailureTicketTransition, err)
	}
	run.State = types.RunStateInProgress

	// in_progress -> committed: fresh working copy, one agent attempt,
	// commit and push. An untouched worktree is an agent failure.
	var ws activities.WorkspaceResult
	err = workflow.ExecuteActivity(stepCtx, activities.PrepareWorkspaceActivity, activities.WorkspaceInput{
		TicketID: input.Ticket.TicketID,
		Branch:   input.BranchName,
	}).Get(stepCtx, &ws)
	if err != nil {
		return fail(ctx, run, types.FailureAgentExecution, err)
	}

	var agentResult activities.AgentResult
	err = workflow.ExecuteActivity(agentCtx, activities.RunAgentActivity, activities.AgentInput{
		WorkspacePath: ws.Path,
		Instruction:   input.Instruction,
	}).Get(agentCtx, &agentResult)
	if err != nil {
		return fail(ctx, run, types.FailureAgentExecution, err)
	}

	err = workflow.ExecuteActivity(stepCtx, activities.CommitAndPushActivity, activities.CommitInput{
		WorkspacePath: ws.Path,
		Branch:        input.BranchName,
		Message:       input.CommitMessage,
	}).Get(stepCtx, nil)
	if err != nil {
		return fail(ctx, run, types.FailureAgentExecution, err)
	}
	run.State = types.RunStateCommitted

	// committed -> pr_created. The commit exists on the remote by now, so
	// a failure names the branch and tells the ticket, leaving an operator
	// enough to open the PR by hand. Nothing is rolled back.
	var pr activities.PRResult
	err = workflow.ExecuteActivity(stepCtx, activities.CreatePullRequestActivity, activities.PRInput{
		Branch: input.BranchName,
		Title:  input.PRTitle,
		Body:   input.PRBody,
	}).Get(stepCtx, &pr)
	if err != nil {
		notifyAbandonedBranch(ctx, input)
		return fail(ctx, run, types.FailurePRCreation,
			fmt.Errorf("branch %s: %w", input.BranchName, err))
	}
	run.PRURL = pr.URL
	run.State = types.RunStatePRCreated

	// pr_created -> in_review. The PR already exists, so even on failure
	// the run record keeps the PR URL: partial success, not a black hole.
	err = workflow.ExecuteActivity(stepCtx, activities.TransitionTicketActivity, activities.TransitionInput{
		TicketID:     input.Ticket.TicketID,
		TransitionID: input.InReviewTransitionID,
	}).Get(stepCtx, nil)
	if err != nil {
		return fail(ctx, run, types.FailureTicketTransition, err)
	}
	run.State = types.RunStateInReview

	// in_review -> completed. The primary deliverable is already achieved;
	// a failed comment downgrades to a warning.
	err = workflow.ExecuteActivity(stepCtx, activities.AddCommentActivity, activities.CommentInput{
		TicketID: input.Ticket.TicketID,
		Body:     scm.CommentBody(pr.URL),
	}).Get(stepCtx, nil)
	if err != nil {
		run.Warning = fmt.Sprintf("comment failed: %v", err)
		logger.Warn("failed to post PR comment", "ticket_id", input.Ticket.TicketID, "error", err)
	}

	now := workflow.Now(ctx)
	run.CompletedAt = &now
	run.State = types.RunStateCompleted

	logger.Info("pipeline run completed",
		"ticket_id", input.Ticket.TicketID,
		"pr_url", run.PRURL,
	)

	return run, nil
}

// fail records the terminal failure on the run and turns it into an
// application error typed with the failure reason.
func fail(ctx workflow.Context, run *types.Run, reason types.FailureReason, err error) (*types.Run, error) {
	now := workflow.Now(ctx)
	run.CompletedAt = &now
	run.State = types.RunStateFailed
	run.FailureReason = reason
	run.FailureDetail = err.Error()

	workflow.GetLogger(ctx).Error("pipeline run failed",
		"ticket_id", run.TicketID,
		"reason", string(reason),
		"error", err,
	)

	return run, temporal.NewApplicationError(err.Error(), string(reason))
}

// notifyAbandonedBranch posts the branch name back on the ticket after PR
// creation failed. Best effort, on a disconnected context so it still runs
// when the workflow is being cancelled.
func notifyAbandonedBranch(ctx workflow.Context, input RunInput) {
	dctx, cancel := workflow.NewDisconnectedContext(ctx)
	defer cancel()

	dctx = workflow.WithActivityOptions(dctx, workflow.ActivityOptions{
		StartToCloseTimeout: input.StepTimeout,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 1},
	})

	body := fmt.Sprintf("Automated PR creation failed. The commit exists on branch %s; open the pull request manually.", input.BranchName)
	err := workflow.ExecuteActivity(dctx, activities.AddCommentActivity, activities.CommentInput{
		TicketID: input.Ticket.TicketID,
		Body:     body,
	}).Get(dctx, nil)
	if err != nil {
		workflow.GetLogger(ctx).Warn("failed to report abandoned branch",
			"ticket_id", input.Ticket.TicketID,
			"branch", input.BranchName,
			"error", err,
		)
	}
}
