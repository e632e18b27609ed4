package leader

import (
	"fmt"

	"github.com/clintrovert/gorkon/internal/trigger"
)

// BuildInstruction combines the ticket fields into the natural-language
// instruction handed to the agent. The event's description must already be
// sanitized; the instruction is embedded verbatim into transport payloads
// downstream.
func BuildInstruction(ev trigger.Event) string {
	instruction := fmt.Sprintf("Implement the change described by ticket %s.\n\nTitle: %s", ev.TicketID, ev.Title)
	if ev.Description != "" {
		instruction += fmt.Sprintf("\n\nDescription: %s", ev.Description)
	}
	return instruction
}
