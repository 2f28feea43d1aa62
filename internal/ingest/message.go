// ABOUTME: Commit message splitting and wall-clock helpers
package ingest

import (
	"strings"
	"time"
)

// splitMessage separates a raw commit message into its subject (first
// line, trimmed) and body (remaining lines after any blank separator,
// joined back with newlines). An all-subject message has a nil body.
func splitMessage(message string) (subject string, body *string) {
	lines := strings.Split(message, "\n")
	if len(lines) == 0 {
		return "", nil
	}

	subject = strings.TrimSpace(lines[0])
	rest := lines[1:]

	i := 0
	for i < len(rest) && strings.TrimSpace(rest[i]) == "" {
		i++
	}
	rest = rest[i:]

	if len(rest) == 0 {
		return subject, nil
	}
	joined := strings.TrimRight(strings.Join(rest, "\n"), "\n")
	return subject, &joined
}

func nowUnix() int64 {
	return time.Now().Unix()
}
