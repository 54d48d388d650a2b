package models

// ModelSettings configures one model invocation on the RCA engine.
// MaxTokens and Temperature are only meaningful for generative models;
// embeddings and rerank settings carry just the model name.
type ModelSettings struct {
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// Search profiles select which knowledge collections the engine retrieves
// from when generating an answer.
const (
	ProfileCILogs  = "ci-logs"
	ProfileDocs    = "docs"
	ProfileRCAFull = "rca-full"
)

// Profiles lists all valid profile names.
func Profiles() []string {
	return []string{ProfileCILogs, ProfileDocs, ProfileRCAFull}
}

// ValidProfile reports whether name is a known search profile.
func ValidProfile(name string) bool {
	switch name {
	case ProfileCILogs, ProfileDocs, ProfileRCAFull:
		return true
	}
	return false
}
