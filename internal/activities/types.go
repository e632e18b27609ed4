package activities

// TransitionInput moves a ticket through a configured workflow transition.
type TransitionInput struct {
	TicketID     string
	TransitionID string
}

// CommentInput posts a comment on a ticket.
type CommentInput struct {
	TicketID string
	Body     string
}

// WorkspaceInput requests a fresh working copy for a run.
type WorkspaceInput struct {
	TicketID string
	Branch   string
}

// WorkspaceResult contains the location of a prepared working copy.
type WorkspaceResult struct {
	Path string
}

// AgentInput is one agent invocation against a working copy.
type AgentInput struct {
	WorkspacePath string
	Instruction   string
}

// AgentResult contains the outcome of a successful agent run.
type AgentResult struct {
	ModifiedFiles []string
	Output        string
}

// CommitInput commits and pushes the working copy.
type CommitInput struct {
	WorkspacePath string
	Branch        string
	Message       string
}

// PRInput opens a pull request for a pushed branch.
type PRInput struct {
	Branch string
	Title  string
	Body   string
}

// PRResult contains the created pull request.
type PRResult struct {
	URL    string
	Number int64
}
