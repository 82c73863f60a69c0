package notion

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NormalizeID accepts a Notion object id with or without dashes (as copied
// from a share URL) and returns the canonical dashed form.
func NormalizeID(id string) (string, error) {
	trimmed := strings.TrimSpace(id)
	parsed, err := uuid.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid notion id %q: %w", id, err)
	}
	return parsed.String(), nil
}
