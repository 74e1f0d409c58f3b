package messages

import (
	"errors"
	"fmt"

	"github.com/aescanero/cloudedu/pkg/ports"
)

// ValidationError reports a client input problem
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ErrTextRequired is returned when a message is created without text
var ErrTextRequired = &ValidationError{Field: "text", Message: "text field is required"}

// errorKind labels a storage error for metrics
func errorKind(err error) string {
	switch {
	case errors.Is(err, ports.ErrStorageCorrupted):
		return "corrupted"
	case errors.Is(err, ports.ErrStorageIO):
		return "io"
	default:
		return "other"
	}
}
