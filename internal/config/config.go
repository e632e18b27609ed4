package config

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"
)

// DefaultTicketKeyPattern matches standard tracker keys like PROJ-123.
const DefaultTicketKeyPattern = `^[A-Z][A-Z0-9]*-[0-9]+$`

// Config holds all runtime configuration, read from the environment.
type Config struct {
	TemporalAddress   string
	TemporalNamespace string
	TaskQueue         string

	JiraBaseURL          string
	JiraUsername         string
	JiraToken            string
	TransitionInProgress string
	TransitionInReview   string
	TicketKeyPattern     string

	GitHubToken  string
	RepoOwner    string
	RepoName     string
	BaseBranch   string
	BranchPrefix string
	WorkspaceDir string

	AgentCommand string
	AgentArgs    []string

	StepTimeout  time.Duration
	AgentTimeout time.Duration
	RunTimeout   time.Duration

	OpenAIAPIKey string
	OpenAIModel  string

	RESTPort string
	GRPCPort string
}

// FromEnv builds a Config from environment variables, applying defaults.
func FromEnv() (*Config, error) {
	cfg := &Config{
		TemporalAddress:      getEnv("TEMPORAL_ADDRESS", "localhost:7233"),
		TemporalNamespace:    getEnv("TEMPORAL_NAMESPACE", "default"),
		TaskQueue:            getEnv("TASK_QUEUE", "pipeline-queue"),
		JiraBaseURL:          getEnv("JIRA_BASE_URL", ""),
		JiraUsername:         getEnv("JIRA_USERNAME", ""),
		JiraToken:            getEnv("JIRA_TOKEN", ""),
		TransitionInProgress: getEnv("JIRA_TRANSITION_IN_PROGRESS", ""),
		TransitionInReview:   getEnv("JIRA_TRANSITION_IN_REVIEW", ""),
		TicketKeyPattern:     getEnv("TICKET_KEY_PATTERN", DefaultTicketKeyPattern),
		GitHubToken:          getEnv("GITHUB_TOKEN", ""),
		RepoOwner:            getEnv("REPO_OWNER", ""),
		RepoName:             getEnv("REPO_NAME", ""),
		BaseBranch:           getEnv("BASE_BRANCH", "main"),
		BranchPrefix:         getEnv("BRANCH_PREFIX", "codex/"),
		WorkspaceDir:         getEnv("WORKSPACE_DIR", "/tmp/gorkon-workspace"),
		AgentCommand:         getEnv("AGENT_COMMAND", "codex"),
		AgentArgs:            strings.Fields(getEnv("AGENT_ARGS", "")),
		OpenAIAPIKey:         getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:          getEnv("OPENAI_MODEL", ""),
		RESTPort:             getEnv("REST_PORT", "8080"),
		GRPCPort:             getEnv("GRPC_PORT", "9090"),
	}

	var err error
	if cfg.StepTimeout, err = getDuration("STEP_TIMEOUT", 2*time.Minute); err != nil {
		return nil, err
	}
	if cfg.AgentTimeout, err = getDuration("AGENT_TIMEOUT", 30*time.Minute); err != nil {
		return nil, err
	}
	// RunTimeout bounds a whole run, and with it how long a hung run can
	// hold the per-ticket lock.
	if cfg.RunTimeout, err = getDuration("RUN_TIMEOUT", time.Hour); err != nil {
		return nil, err
	}

	if _, err := regexp.Compile(cfg.TicketKeyPattern); err != nil {
		return nil, fmt.Errorf("invalid TICKET_KEY_PATTERN: %w", err)
	}

	return cfg, nil
}

// Validate checks the fields without defaults that the pipeline cannot run
// without. The worker and server both call it at startup.
func (c *Config) Validate() error {
	required := map[string]string{
		"JIRA_BASE_URL":               c.JiraBaseURL,
		"JIRA_USERNAME":               c.JiraUsername,
		"JIRA_TOKEN":                  c.JiraToken,
		"JIRA_TRANSITION_IN_PROGRESS": c.TransitionInProgress,
		"JIRA_TRANSITION_IN_REVIEW":   c.TransitionInReview,
		"GITHUB_TOKEN":                c.GitHubToken,
		"REPO_OWNER":                  c.RepoOwner,
		"REPO_NAME":                   c.RepoName,
	}

	var missing []string
	for name, value := range required {
		if value == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
