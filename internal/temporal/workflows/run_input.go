package workflows

import (
	"time"

	"github.com/clintrovert/gorkon/internal/trigger"
)

// RunInput is the input for the pipeline workflow. Everything derived from
// the trigger (branch name, instruction, commit and PR text) is computed
// before the workflow starts so the workflow itself stays a pure sequencer.
// The description inside Ticket is already sanitized.
type RunInput struct {
	Ticket        trigger.Event
	Instruction   string
	BranchName    string
	CommitMessage string
	PRTitle       string
	PRBody        string

	InProgressTransitionID string
	InReviewTransitionID   string

	StepTimeout  time.Duration
	AgentTimeout time.Duration
}
