package planner

import (
	"context"
)

// Planner refines the templated agent instruction into a sharper brief.
// Refinement is optional and best-effort: callers fall back to the
// original instruction when it fails.
type Planner interface {
	Refine(ctx context.Context, instruction string) (string, error)
}
