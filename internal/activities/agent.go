package activities

import (
	"context"

	"go.temporal.io/sdk/activity"
	"go.uber.org/zap"

	"github.com/clintrovert/gorkon/internal/agent"
)

// AgentActivities handles code-generation activities
type AgentActivities struct {
	runner *agent.Runner
	logger *zap.Logger
}

// NewAgentActivities creates a new agent activities handler
func NewAgentActivities(runner *agent.Runner, logger *zap.Logger) *AgentActivities {
	return &AgentActivities{
		runner: runner,
		logger: logger,
	}
}

// RunAgent invokes the code-generation agent once against the working copy.
func (a *AgentActivities) RunAgent(ctx context.Context, in AgentInput) (AgentResult, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("running agent", "workspace", in.WorkspacePath)

	res, err := a.runner.Run(ctx, in.WorkspacePath, in.Instruction)
	if err != nil {
		return AgentResult{}, err
	}

	return AgentResult{
		ModifiedFiles: res.ModifiedFiles,
		Output:        res.Output,
	}, nil
}
