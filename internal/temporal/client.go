package temporal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"github.com/clintrovert/gorkon/internal/temporal/workflows"
	"github.com/clintrovert/gorkon/pkg/types"
)

// ErrConcurrentRun is returned when a trigger arrives for a ticket that
// already has a non-terminal run. Duplicate triggers are rejected, not
// queued; re-triggering becomes possible again once the run terminates.
var ErrConcurrentRun = errors.New("a run for this ticket is already active")

// ErrRunNotFound is returned when no run exists for a ticket.
var ErrRunNotFound = errors.New("no run found for this ticket")

// RunWorkflowID derives the workflow id for a ticket. Workflow id
// uniqueness is the per-ticket run lock: Temporal rejects a second start
// while an execution with this id is still open.
func RunWorkflowID(ticketID string) string {
	return "run-" + ticketID
}

// Client wraps Temporal client functionality
type Client struct {
	temporalClient client.Client
	logger         *zap.Logger
	taskQueue      string
	runTimeout     time.Duration
}

// NewClient creates a new Temporal client. runTimeout bounds each run's
// total execution time; a run that hits it terminates and releases its
// ticket's lock like any other failure.
func NewClient(address, namespace, taskQueue string, runTimeout time.Duration, logger *zap.Logger) (*Client, error) {
	c, err := client.Dial(client.Options{
		HostPort:  address,
		Namespace: namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create temporal client: %w", err)
	}

	return &Client{
		temporalClient: c,
		logger:         logger,
		taskQueue:      taskQueue,
		runTimeout:     runTimeout,
	}, nil
}

// StartRun starts the pipeline workflow for one trigger. The start is
// acknowledged as soon as the workflow exists; the pipeline runs long after
// this returns.
func (c *Client) StartRun(ctx context.Context, input workflows.RunInput) (string, error) {
	workflowOptions := client.StartWorkflowOptions{
		ID:                       RunWorkflowID(input.Ticket.TicketID),
		TaskQueue:                c.taskQueue,
		WorkflowExecutionTimeout: c.runTimeout,
		WorkflowExecutionErrorWhenAlreadyStarted: true,
	}

	we, err := c.temporalClient.ExecuteWorkflow(ctx, workflowOptions, workflows.PipelineWorkflow, input)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) {
			return "", fmt.Errorf("%w: ticket %s", ErrConcurrentRun, input.Ticket.TicketID)
		}
		return "", fmt.Errorf("failed to start run: %w", err)
	}

	c.logger.Info("started run",
		zap.String("workflow_id", we.GetID()),
		zap.String("run_id", we.GetRunID()),
		zap.String("ticket_id", input.Ticket.TicketID),
	)

	return we.GetID(), nil
}

// QueryRun returns the run record for a ticket, whether the run is still
// executing or already terminal.
func (c *Client) QueryRun(ctx context.Context, ticketID string) (*types.Run, error) {
	resp, err := c.temporalClient.QueryWorkflow(ctx, RunWorkflowID(ticketID), "", workflows.QueryRun)
	if err != nil {
		var notFound *serviceerror.NotFound
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: ticket %s", ErrRunNotFound, ticketID)
		}
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	var run types.Run
	if err := resp.Get(&run); err != nil {
		return nil, fmt.Errorf("failed to decode run record: %w", err)
	}

	return &run, nil
}

// CancelRun cancels a ticket's active run. Cancellation is a terminal
// outcome and releases the per-ticket lock like any other.
func (c *Client) CancelRun(ctx context.Context, ticketID string) error {
	err := c.temporalClient.CancelWorkflow(ctx, RunWorkflowID(ticketID), "")
	if err != nil {
		var notFound *serviceerror.NotFound
		if errors.As(err, &notFound) {
			return fmt.Errorf("%w: ticket %s", ErrRunNotFound, ticketID)
		}
		return fmt.Errorf("failed to cancel run: %w", err)
	}

	c.logger.Info("cancelled run", zap.String("ticket_id", ticketID))

	return nil
}

// Close closes the Temporal client
func (c *Client) Close() {
	c.temporalClient.Close()
}
