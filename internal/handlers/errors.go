package handlers

import (
	"errors"

	"github.com/avvvet/concierge-intent/internal/llm"
	"github.com/avvvet/concierge-intent/internal/models"
)

var (
	ErrMessageRequired = errors.New("message is required")
	ErrEmptyGeneration = errors.New("model returned an empty reply")
)

// ErrorCode maps a pipeline error to the code returned to clients.
// It returns "" for a nil error.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMessageRequired):
		return models.ErrorMessageRequired
	case errors.Is(err, llm.ErrCredentialsMissing):
		return models.ErrorCredentialsMissing
	case errors.Is(err, ErrEmptyGeneration):
		return models.ErrorEmptyModelResponse
	default:
		return models.ErrorInternal
	}
}
