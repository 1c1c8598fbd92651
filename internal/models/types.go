package models

import (
	"time"
)

// Message represents one turn of the conversation sent by the client.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of a POST /api/chat call.
//
// UserAge is decoded as a float64 pointer so that fractional ages can be
// distinguished from integers during validation; it is nil when the field
// is absent or null.
type ChatRequest struct {
	Messages []Message `json:"messages"`
	UserAge  *float64  `json:"userAge"`
}

// Age returns the age as an int pointer, or nil when no age was supplied.
// Callers must validate the request first.
func (r *ChatRequest) Age() *int {
	if r.UserAge == nil {
		return nil
	}
	age := int(*r.UserAge)
	return &age
}

// UpstreamMessage is one entry of the message list forwarded to the
// chat-completions endpoint, including the leading system turn.
type UpstreamMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// UpstreamRequest is the payload sent to the chat-completions endpoint.
type UpstreamRequest struct {
	Model       string            `json:"model"`
	Messages    []UpstreamMessage `json:"messages"`
	Temperature float64           `json:"temperature"`
	MaxTokens   int               `json:"max_tokens"`
	Stream      bool              `json:"stream"`
}

// StreamChunk is one parsed SSE data line of the upstream response stream.
// Only the nested delta content field is of interest to the relay.
type StreamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Decision is the outcome of a rate-limit check for one client identifier.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}
