package types

import (
	"time"
)

// RunState is the position of a run in the pipeline lifecycle.
type RunState string

const (
	RunStateReceived   RunState = "received"
	RunStateInProgress RunState = "in_progress"
	RunStateCommitted  RunState = "committed"
	RunStatePRCreated  RunState = "pr_created"
	RunStateInReview   RunState = "in_review"
	RunStateCompleted  RunState = "completed"
	RunStateFailed     RunState = "failed"
)

// Terminal reports whether the state ends a run.
func (s RunState) Terminal() bool {
	return s == RunStateCompleted || s == RunStateFailed
}

// FailureReason classifies which pipeline step a failed run died on.
type FailureReason string

const (
	FailureTicketTransition FailureReason = "TicketTransitionFailed"
	FailureAgentExecution   FailureReason = "AgentExecutionFailed"
	FailurePRCreation       FailureReason = "PRCreationFailed"
)

// Run is one execution of the ticket-to-PR pipeline for a single ticket.
// It is the record exposed to the triggering system: which steps succeeded,
// where a failure happened, and the PR URL once one exists.
type Run struct {
	TicketID      string        `json:"ticket_id"`
	BranchName    string        `json:"branch_name"`
	State         RunState      `json:"state"`
	PRURL         string        `json:"pr_url,omitempty"`
	FailureReason FailureReason `json:"failure_reason,omitempty"`
	FailureDetail string        `json:"failure_detail,omitempty"`
	Warning       string        `json:"warning,omitempty"`
	StartedAt     time.Time     `json:"started_at"`
	CompletedAt   *time.Time    `json:"completed_at,omitempty"`
}
