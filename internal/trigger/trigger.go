package trigger

import (
	"fmt"
	"regexp"
	"strings"
)

// Event is the structured payload a tracker automation rule sends when a
// ticket is labeled for automated implementation.
type Event struct {
	TicketID    string `json:"ticket_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ValidationError reports a malformed trigger event. Validation performs no
// side effects, so a rejected event leaves both external systems untouched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid trigger event: %s %s", e.Field, e.Reason)
}

// Validate checks that the event carries a well-formed ticket key and a
// title usable for commit and PR subjects.
func Validate(ev Event, keyPattern *regexp.Regexp) error {
	if ev.TicketID == "" {
		return &ValidationError{Field: "ticket_id", Reason: "is empty"}
	}
	if !keyPattern.MatchString(ev.TicketID) {
		return &ValidationError{
			Field:  "ticket_id",
			Reason: fmt.Sprintf("%q does not match ticket key format %s", ev.TicketID, keyPattern),
		}
	}
	if strings.TrimSpace(ev.Title) == "" {
		return &ValidationError{Field: "title", Reason: "is empty"}
	}
	return nil
}

var descriptionEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\r\n", `\n`,
	"\r", `\n`,
	"\n", `\n`,
)

// SanitizeDescription neutralizes quote characters and newlines so the raw
// ticket description can cross templating and JSON boundaries (agent
// instruction, commit message, PR body, comment payload) without breaking
// their structure. The visible text survives: quotes become escaped quotes
// and line breaks become literal \n sequences.
func SanitizeDescription(s string) string {
	return descriptionEscaper.Replace(s)
}
