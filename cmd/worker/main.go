package main

import (
	"log"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"

	"github.com/clintrovert/gorkon/internal/activities"
	"github.com/clintrovert/gorkon/internal/agent"
	"github.com/clintrovert/gorkon/internal/config"
	"github.com/clintrovert/gorkon/internal/scm"
	"github.com/clintrovert/gorkon/internal/temporal/workflows"
	"github.com/clintrovert/gorkon/internal/tracker"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Get configuration from environment
	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("incomplete configuration", zap.Error(err))
	}

	// Create Temporal client
	c, err := client.Dial(client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
	})
	if err != nil {
		logger.Fatal("failed to create temporal client", zap.Error(err))
	}
	defer c.Close()

	// Create tracker client
	trackerClient, err := tracker.NewClient(cfg.JiraBaseURL, cfg.JiraUsername, cfg.JiraToken, logger)
	if err != nil {
		logger.Fatal("failed to create tracker client", zap.Error(err))
	}

	// Create SCM client
	scmClient := scm.NewClient(cfg.GitHubToken, cfg.RepoOwner, cfg.RepoName, cfg.BaseBranch, cfg.WorkspaceDir, logger)

	// Create agent runner
	agentRunner := agent.NewRunner(cfg.AgentCommand, cfg.AgentArgs, logger)

	// Initialize activities
	activities.SetTrackerActivities(activities.NewTrackerActivities(trackerClient, logger))
	activities.SetSCMActivities(activities.NewSCMActivities(scmClient, logger))
	activities.SetAgentActivities(activities.NewAgentActivities(agentRunner, logger))

	// Create worker
	w := worker.New(c, cfg.TaskQueue, worker.Options{})

	// Register workflow
	w.RegisterWorkflow(workflows.PipelineWorkflow)

	// Register activities
	w.RegisterActivity(activities.TransitionTicketActivity)
	w.RegisterActivity(activities.AddCommentActivity)
	w.RegisterActivity(activities.PrepareWorkspaceActivity)
	w.RegisterActivity(activities.RunAgentActivity)
	w.RegisterActivity(activities.CommitAndPushActivity)
	w.RegisterActivity(activities.CreatePullRequestActivity)

	// Start worker
	logger.Info("starting worker",
		zap.String("task_queue", cfg.TaskQueue),
		zap.String("namespace", cfg.TemporalNamespace),
	)

	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Fatal("worker failed", zap.Error(err))
	}
}
