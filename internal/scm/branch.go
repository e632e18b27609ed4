package scm

import (
	"fmt"
)

// BranchName derives the head branch for a ticket. It is a pure function
// of the ticket id so that every run for the same ticket targets the same
// branch, which keeps manual re-triggers idempotent.
func BranchName(prefix, ticketID string) string {
	return prefix + ticketID
}

// CommitMessage builds the standardized commit message for a run.
func CommitMessage(ticketID, title string) string {
	return fmt.Sprintf("%s: %s", ticketID, title)
}

// PRTitle builds the pull request title for a run.
func PRTitle(ticketID, title string) string {
	return fmt.Sprintf("%s: %s", ticketID, title)
}

// PRBody builds the pull request body. The description must already be
// sanitized by the trigger receiver.
func PRBody(ticketID, description string) string {
	body := fmt.Sprintf("Automated change for %s.\n\n**Ticket:** %s\n", ticketID, ticketID)
	if description != "" {
		body += fmt.Sprintf("\n**Description:**\n%s\n", description)
	}
	return body
}

// CommentBody wraps a PR URL in the comment posted back on the ticket.
func CommentBody(prURL string) string {
	return fmt.Sprintf("Pull request created: %s", prURL)
}
