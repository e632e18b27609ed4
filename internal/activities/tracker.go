package activities

import (
	"context"

	"go.temporal.io/sdk/activity"
	"go.uber.org/zap"

	"github.com/clintrovert/gorkon/internal/tracker"
)

// TrackerActivities handles issue-tracker activities
type TrackerActivities struct {
	client *tracker.Client
	logger *zap.Logger
}

// NewTrackerActivities creates a new tracker activities handler
func NewTrackerActivities(client *tracker.Client, logger *zap.Logger) *TrackerActivities {
	return &TrackerActivities{
		client: client,
		logger: logger,
	}
}

// TransitionTicket moves a ticket to the configured transition.
func (a *TrackerActivities) TransitionTicket(ctx context.Context, in TransitionInput) error {
	logger := activity.GetLogger(ctx)
	logger.Info("transitioning ticket",
		"ticket_id", in.TicketID,
		"transition_id", in.TransitionID,
	)

	return a.client.Transition(ctx, in.TicketID, in.TransitionID)
}

// AddComment posts a comment on a ticket.
func (a *TrackerActivities) AddComment(ctx context.Context, in CommentInput) error {
	logger := activity.GetLogger(ctx)
	logger.Info("commenting on ticket", "ticket_id", in.TicketID)

	return a.client.Comment(ctx, in.TicketID, in.Body)
}
