package types

// PRInfo contains pull request information
type PRInfo struct {
	PRNumber int64
	PRURL    string
	Title    string
	Status   string
}
