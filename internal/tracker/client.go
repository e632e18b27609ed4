package tracker

import (
	"context"
	"fmt"

	jira "github.com/andygrunwald/go-jira"
	"go.uber.org/zap"
)

// Client wraps the issue tracker's REST API. Each operation is a single
// synchronous call with no internal retry; non-2xx responses are surfaced
// to the caller with the status attached. Transitioning an issue already in
// the target state and commenting twice are safe no-ops on the tracker
// side, so neither is guarded here.
type Client struct {
	client *jira.Client
	logger *zap.Logger
}

// NewClient creates a new tracker client using basic auth.
func NewClient(baseURL, username, apiToken string, logger *zap.Logger) (*Client, error) {
	tp := jira.BasicAuthTransport{
		Username: username,
		Password: apiToken,
	}

	client, err := jira.NewClient(tp.Client(), baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create jira client: %w", err)
	}

	return &Client{
		client: client,
		logger: logger,
	}, nil
}

// Transition moves a ticket through the workflow transition with the given
// id. Transition ids are tracker-specific opaque codes and come from
// configuration, never from code.
func (c *Client) Transition(ctx context.Context, ticketID, transitionID string) error {
	resp, err := c.client.Issue.DoTransitionWithContext(ctx, ticketID, transitionID)
	if err != nil {
		return fmt.Errorf("failed to transition %s via %s: %w", ticketID, transitionID, withStatus(resp, err))
	}

	c.logger.Info("transitioned ticket",
		zap.String("ticket_id", ticketID),
		zap.String("transition_id", transitionID),
	)

	return nil
}

// Comment posts a comment on a ticket.
func (c *Client) Comment(ctx context.Context, ticketID, body string) error {
	_, resp, err := c.client.Issue.AddCommentWithContext(ctx, ticketID, &jira.Comment{
		Body: body,
	})
	if err != nil {
		return fmt.Errorf("failed to comment on %s: %w", ticketID, withStatus(resp, err))
	}

	c.logger.Info("commented on ticket", zap.String("ticket_id", ticketID))

	return nil
}

// withStatus attaches the HTTP status to a failed call for diagnosis.
func withStatus(resp *jira.Response, err error) error {
	if resp != nil && resp.Response != nil {
		return fmt.Errorf("status %d: %w", resp.StatusCode, err)
	}
	return err
}
