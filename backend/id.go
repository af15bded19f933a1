package backend

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"
)

var idPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// NewID returns a fresh document id.
func NewID() string {
	return uuid.NewString()
}

// ValidateID checks that id is usable as a document id. context names the
// id in the error message.
func ValidateID(id, context string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("invalid %s: id is empty", context)
	}
	if len(id) > 36 {
		return "", fmt.Errorf("invalid %s: id exceeds 36 characters: %s", context, id)
	}
	if !idPattern.MatchString(id) {
		return "", fmt.Errorf("invalid %s: id contains invalid characters: %s", context, id)
	}
	return id, nil
}
