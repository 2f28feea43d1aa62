// ABOUTME: Pure construction of the text handed to the embedding endpoint
package embed

import (
	"strings"

	"github.com/blackwell-systems/commitmux/internal/commitmux"
)

// previewCharLimit truncates the patch preview section to roughly 400
// tokens worth of characters before it reaches the embedding endpoint.
const previewCharLimit = 1600

// BuildEmbedDoc assembles the text embedded for one commit: subject,
// then body, then a "Files changed:" line, then a truncated patch
// preview. Each section is only appended when non-empty.
func BuildEmbedDoc(c *commitmux.EmbedCommit) string {
	var sb strings.Builder
	sb.WriteString(c.Subject)

	if c.Body != nil {
		if trimmed := strings.TrimSpace(*c.Body); trimmed != "" {
			sb.WriteString("\n\n")
			sb.WriteString(trimmed)
		}
	}

	if len(c.FilesChanged) > 0 {
		sb.WriteString("\n\nFiles changed: ")
		sb.WriteString(strings.Join(c.FilesChanged, ", "))
	}

	if c.PatchPreview != nil {
		if trimmed := strings.TrimSpace(*c.PatchPreview); trimmed != "" {
			if r := []rune(trimmed); len(r) > previewCharLimit {
				trimmed = string(r[:previewCharLimit])
			}
			sb.WriteString("\n\n")
			sb.WriteString(trimmed)
		}
	}

	return sb.String()
}
