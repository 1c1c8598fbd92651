// Package validation checks inbound chat requests against the structural
// constraints the relay is willing to forward upstream. Failures collapse
// into a single generic error so callers cannot probe which rule tripped.
package validation

import (
	"errors"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/Qualiasolutions/theracoach/internal/models"
)

const (
	// MaxMessages bounds the conversation history per request.
	MaxMessages = 50

	// MaxContentLength is the inclusive per-message content bound.
	MaxContentLength = 2000

	// MinAge and MaxAge bound the optional userAge field.
	MinAge = 2
	MaxAge = 17
)

// ErrInvalidRequest is the only error Validate returns. Field-level detail
// stays out of it on purpose.
var ErrInvalidRequest = errors.New("invalid request data")

// Validate checks a decoded chat request. It returns ErrInvalidRequest on
// the first rule that fails; which rule failed is not disclosed.
func Validate(req *models.ChatRequest) error {
	if req == nil {
		return ErrInvalidRequest
	}
	if len(req.Messages) < 1 || len(req.Messages) > MaxMessages {
		return ErrInvalidRequest
	}
	for _, msg := range req.Messages {
		if msg.Role != "user" && msg.Role != "assistant" {
			return ErrInvalidRequest
		}
		length := utf8.RuneCountInString(msg.Content)
		if length < 1 || length > MaxContentLength {
			return ErrInvalidRequest
		}
	}
	if req.UserAge != nil {
		age := *req.UserAge
		if age != math.Trunc(age) {
			return ErrInvalidRequest
		}
		if age < MinAge || age > MaxAge {
			return ErrInvalidRequest
		}
	}
	return nil
}

// Sanitize trims surrounding whitespace and truncates each message to the
// content bound. It runs on everything forwarded upstream, whether or not
// validation already vouched for it.
func Sanitize(messages []models.Message) []models.Message {
	out := make([]models.Message, len(messages))
	for i, msg := range messages {
		content := strings.TrimSpace(msg.Content)
		if utf8.RuneCountInString(content) > MaxContentLength {
			runes := []rune(content)
			content = string(runes[:MaxContentLength])
		}
		out[i] = models.Message{Role: msg.Role, Content: content}
	}
	return out
}
