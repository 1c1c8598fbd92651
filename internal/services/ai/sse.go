package ai

import (
	"encoding/json"
	"strings"

	"github.com/Qualiasolutions/theracoach/internal/models"
)

const (
	dataPrefix   = "data: "
	doneSentinel = "[DONE]"
)

// LineFramer reassembles newline-delimited records from an arbitrary
// sequence of byte chunks. Only the trailing partial line is buffered
// across chunk boundaries.
type LineFramer struct {
	partial []byte
}

// Append consumes one chunk and returns every complete line it closed.
// Line terminators are stripped.
func (f *LineFramer) Append(chunk []byte) []string {
	var lines []string
	start := 0
	for i, b := range chunk {
		if b != '\n' {
			continue
		}
		line := string(f.partial) + string(chunk[start:i])
		f.partial = f.partial[:0]
		lines = append(lines, strings.TrimSuffix(line, "\r"))
		start = i + 1
	}
	f.partial = append(f.partial, chunk[start:]...)
	return lines
}

// Flush returns the buffered partial line, if any. Called once at end of
// stream so a final record without a trailing newline is not lost.
func (f *LineFramer) Flush() (string, bool) {
	if len(f.partial) == 0 {
		return "", false
	}
	line := strings.TrimSuffix(string(f.partial), "\r")
	f.partial = f.partial[:0]
	return line, true
}

// decodeDataLine extracts the incremental text fragment from one SSE line.
// Non-data lines, the end-of-stream sentinel, malformed JSON, and chunks
// without delta content all report ok=false; none of them is an error.
func decodeDataLine(line string) (string, bool) {
	if !strings.HasPrefix(line, dataPrefix) {
		return "", false
	}
	payload := line[len(dataPrefix):]
	if payload == doneSentinel {
		return "", false
	}

	var chunk models.StreamChunk
	if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
		return "", false
	}
	if len(chunk.Choices) == 0 {
		return "", false
	}
	content := chunk.Choices[0].Delta.Content
	if content == "" {
		return "", false
	}
	return content, true
}
