package review

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("review not found")
	ErrCropNotFound    = errors.New("crop post not found")
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("only the author can delete this review")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}
