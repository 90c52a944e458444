package shared

import (
	"time"
)

// TokenUsage tracks the tokens a model call consumed.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Model            string
}

// CallMeta describes one model call made on behalf of an operation such as
// category suggestion.
type CallMeta struct {
	Operation string
	Usage     TokenUsage
	Latency   time.Duration
}
