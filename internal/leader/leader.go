package leader

import (
	"context"
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"github.com/clintrovert/gorkon/internal/config"
	"github.com/clintrovert/gorkon/internal/planner"
	"github.com/clintrovert/gorkon/internal/scm"
	"github.com/clintrovert/gorkon/internal/temporal/workflows"
	"github.com/clintrovert/gorkon/internal/trigger"
	"github.com/clintrovert/gorkon/pkg/types"
)

// RunService starts, inspects and cancels pipeline runs.
type RunService interface {
	StartRun(ctx context.Context, input workflows.RunInput) (string, error)
	QueryRun(ctx context.Context, ticketID string) (*types.Run, error)
	CancelRun(ctx context.Context, ticketID string) error
}

// Leader turns validated trigger events into pipeline runs.
type Leader struct {
	cfg        *config.Config
	runs       RunService
	planner    planner.Planner
	keyPattern *regexp.Regexp
	logger     *zap.Logger
}

// New creates a leader. The planner may be nil, in which case the templated
// instruction is used as-is.
func New(cfg *config.Config, runs RunService, pl planner.Planner, logger *zap.Logger) (*Leader, error) {
	keyPattern, err := regexp.Compile(cfg.TicketKeyPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid ticket key pattern: %w", err)
	}

	return &Leader{
		cfg:        cfg,
		runs:       runs,
		planner:    pl,
		keyPattern: keyPattern,
		logger:     logger,
	}, nil
}

// HandleTrigger validates a trigger event and starts a run for it. The
// returned workflow id acknowledges receipt only; the pipeline keeps
// running long after this returns. Validation failures and duplicate-run
// rejections happen before any external side effect.
func (l *Leader) HandleTrigger(ctx context.Context, ev trigger.Event) (string, error) {
	if err := trigger.Validate(ev, l.keyPattern); err != nil {
		return "", err
	}
	ev.Description = trigger.SanitizeDescription(ev.Description)

	instruction := BuildInstruction(ev)
	if l.planner != nil {
		refined, err := l.planner.Refine(ctx, instruction)
		if err != nil {
			l.logger.Warn("instruction refinement failed, using template",
				zap.String("ticket_id", ev.TicketID),
				zap.Error(err),
			)
		} else {
			instruction = refined
		}
	}

	input := workflows.RunInput{
		Ticket:                 ev,
		Instruction:            instruction,
		BranchName:             scm.BranchName(l.cfg.BranchPrefix, ev.TicketID),
		CommitMessage:          scm.CommitMessage(ev.TicketID, ev.Title),
		PRTitle:                scm.PRTitle(ev.TicketID, ev.Title),
		PRBody:                 scm.PRBody(ev.TicketID, ev.Description),
		InProgressTransitionID: l.cfg.TransitionInProgress,
		InReviewTransitionID:   l.cfg.TransitionInReview,
		StepTimeout:            l.cfg.StepTimeout,
		AgentTimeout:           l.cfg.AgentTimeout,
	}

	workflowID, err := l.runs.StartRun(ctx, input)
	if err != nil {
		return "", err
	}

	l.logger.Info("accepted trigger",
		zap.String("ticket_id", ev.TicketID),
		zap.String("workflow_id", workflowID),
		zap.String("branch", input.BranchName),
	)

	return workflowID, nil
}

// RunStatus returns the run record for a ticket.
func (l *Leader) RunStatus(ctx context.Context, ticketID string) (*types.Run, error) {
	return l.runs.QueryRun(ctx, ticketID)
}

// CancelRun cancels a ticket's active run.
func (l *Leader) CancelRun(ctx context.Context, ticketID string) error {
	return l.runs.CancelRun(ctx, ticketID)
}
