package core

import "time"

// ConversationTurn is one user/assistant exchange produced by the dialogue
// loop. Turns are immutable once evicted from the short-term buffer.
type ConversationTurn struct {
	UserInput     string    `json:"user_input"`
	AgentResponse string    `json:"agent_response"`
	Timestamp     time.Time `json:"timestamp"`
}

// Complete reports whether the turn carries both sides of the exchange.
// Incomplete turns are dropped during eviction rather than promoted.
func (t *ConversationTurn) Complete() bool {
	return t != nil && t.UserInput != "" && t.AgentResponse != ""
}
