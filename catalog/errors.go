package catalog

import (
	"errors"
	"strings"
)

// ErrRatingRange rejects a rating outside 0 to 5.
var ErrRatingRange = errors.New("rating must be between 0 and 5")

// ValidationError lists the food-post fields that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}
