package notify

import (
	"context"
	"strings"
)

// MaxMessageLength is the chat platform's hard limit on one message.
const MaxMessageLength = 4096

// Sender delivers one text message to one destination. Implementations
// are best-effort: a nil return means the send was handed off without
// raising, not that delivery was confirmed.
type Sender interface {
	Send(ctx context.Context, chatID, text string) error
}

// SplitMessage splits text into ordered chunks that each respect the
// limit, breaking at line boundaries where possible and falling back to
// hard character cuts for a single over-length line.
func SplitMessage(text string, limit int) []string {
	if limit <= 0 {
		limit = MaxMessageLength
	}
	if len(text) <= limit {
		return []string{text}
	}

	var parts []string
	var current string

	flush := func() {
		if trimmed := strings.TrimSpace(current); trimmed != "" {
			parts = append(parts, trimmed)
		}
		current = ""
	}

	for _, line := range strings.Split(text, "\n") {
		if len(line) > limit {
			flush()
			for len(line) > limit {
				parts = append(parts, line[:limit])
				line = line[limit:]
			}
			current = line
			continue
		}

		if len(current)+len(line)+1 > limit {
			flush()
			current = line
			continue
		}

		if current == "" {
			current = line
		} else {
			current += "\n" + line
		}
	}
	flush()

	return parts
}
