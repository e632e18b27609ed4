package leader

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/clintrovert/gorkon/internal/config"
	"github.com/clintrovert/gorkon/internal/planner"
	"github.com/clintrovert/gorkon/internal/temporal"
	"github.com/clintrovert/gorkon/internal/temporal/workflows"
	"github.com/clintrovert/gorkon/internal/trigger"
	"github.com/clintrovert/gorkon/pkg/types"
)

type fakeRunService struct {
	startErr  error
	lastInput workflows.RunInput
	started   int
}

func (f *fakeRunService) StartRun(ctx context.Context, input workflows.RunInput) (string, error) {
	f.started++
	f.lastInput = input
	if f.startErr != nil {
		return "", f.startErr
	}
	return temporal.RunWorkflowID(input.Ticket.TicketID), nil
}

func (f *fakeRunService) QueryRun(ctx context.Context, ticketID string) (*types.Run, error) {
	return nil, temporal.ErrRunNotFound
}

func (f *fakeRunService) CancelRun(ctx context.Context, ticketID string) error {
	return nil
}

type fakePlanner struct {
	refined string
	err     error
}

func (f *fakePlanner) Refine(ctx context.Context, instruction string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.refined, nil
}

func testConfig() *config.Config {
	return &config.Config{
		TicketKeyPattern:     config.DefaultTicketKeyPattern,
		BranchPrefix:         "codex/",
		BaseBranch:           "main",
		TransitionInProgress: "21",
		TransitionInReview:   "31",
		StepTimeout:          2 * time.Minute,
		AgentTimeout:         30 * time.Minute,
	}
}

func newTestLeader(t *testing.T, runs RunService, pl planner.Planner) *Leader {
	t.Helper()
	l, err := New(testConfig(), runs, pl, zap.NewNop())
	if err != nil {
		t.Fatalf("creating leader: %v", err)
	}
	return l
}

func TestHandleTrigger_StartsRunWithDerivedInput(t *testing.T) {
	runs := &fakeRunService{}
	l := newTestLeader(t, runs, nil)

	ev := trigger.Event{
		TicketID:    "PROJ-123",
		Title:       "Fix null check",
		Description: "Crashes when input is \"null\"\nneeds a guard",
	}

	workflowID, err := l.HandleTrigger(context.Background(), ev)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if workflowID != "run-PROJ-123" {
		t.Errorf("unexpected workflow id %q", workflowID)
	}

	in := runs.lastInput
	if in.BranchName != "codex/PROJ-123" {
		t.Errorf("unexpected branch name %q", in.BranchName)
	}
	if in.CommitMessage != "PROJ-123: Fix null check" {
		t.Errorf("unexpected commit message %q", in.CommitMessage)
	}
	if in.InProgressTransitionID != "21" || in.InReviewTransitionID != "31" {
		t.Errorf("transition ids not propagated: %+v", in)
	}
	if strings.ContainsAny(in.Ticket.Description, "\n\r") {
		t.Errorf("description not sanitized: %q", in.Ticket.Description)
	}
	if !strings.Contains(in.Instruction, "PROJ-123") || !strings.Contains(in.Instruction, "Fix null check") {
		t.Errorf("instruction missing ticket fields: %q", in.Instruction)
	}
	if strings.ContainsAny(in.Instruction, "\r") || strings.Contains(in.Instruction, "\"null\"") {
		t.Errorf("instruction contains unsanitized description: %q", in.Instruction)
	}
}

func TestHandleTrigger_InvalidEvent_NoRunStarted(t *testing.T) {
	runs := &fakeRunService{}
	l := newTestLeader(t, runs, nil)

	_, err := l.HandleTrigger(context.Background(), trigger.Event{TicketID: "not a key", Title: "x"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	var verr *trigger.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *trigger.ValidationError, got %T", err)
	}
	if runs.started != 0 {
		t.Errorf("expected no run started, got %d", runs.started)
	}
}

func TestHandleTrigger_ConcurrentRun_PassesThrough(t *testing.T) {
	runs := &fakeRunService{startErr: temporal.ErrConcurrentRun}
	l := newTestLeader(t, runs, nil)

	_, err := l.HandleTrigger(context.Background(), trigger.Event{TicketID: "PROJ-123", Title: "Fix"})
	if !errors.Is(err, temporal.ErrConcurrentRun) {
		t.Fatalf("expected ErrConcurrentRun, got %v", err)
	}
}

func TestHandleTrigger_PlannerRefinesInstruction(t *testing.T) {
	runs := &fakeRunService{}
	l := newTestLeader(t, runs, &fakePlanner{refined: "refined instruction for PROJ-123"})

	_, err := l.HandleTrigger(context.Background(), trigger.Event{TicketID: "PROJ-123", Title: "Fix"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if runs.lastInput.Instruction != "refined instruction for PROJ-123" {
		t.Errorf("expected refined instruction, got %q", runs.lastInput.Instruction)
	}
}

func TestHandleTrigger_PlannerFailure_FallsBackToTemplate(t *testing.T) {
	runs := &fakeRunService{}
	l := newTestLeader(t, runs, &fakePlanner{err: errors.New("model unavailable")})

	_, err := l.HandleTrigger(context.Background(), trigger.Event{TicketID: "PROJ-123", Title: "Fix"})
	if err != nil {
		t.Fatalf("refinement failure must not fail the trigger: %v", err)
	}
	if !strings.Contains(runs.lastInput.Instruction, "PROJ-123") {
		t.Errorf("expected templated instruction fallback, got %q", runs.lastInput.Instruction)
	}
}
