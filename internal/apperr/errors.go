package apperr

import "errors"

// Error kinds shared by services and handlers. Callers wrap them with
// fmt.Errorf("...: %w", ...) and match with errors.Is.
var (
	ErrAuth       = errors.New("session is missing or expired")
	ErrStorage    = errors.New("object storage request failed")
	ErrConflict   = errors.New("scheduled slot conflicts with an existing reservation")
	ErrNetwork    = errors.New("request to external service failed")
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("invalid input")
)

// UserMessage returns the short text shown to the user for a failed action.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrAuth):
		return "Your session has expired. Please sign in again."
	case errors.Is(err, ErrStorage):
		return "Upload failed. Nothing was saved, please try again."
	case errors.Is(err, ErrConflict):
		return "That time is already taken."
	case errors.Is(err, ErrNotFound):
		return "Not found."
	case errors.Is(err, ErrValidation):
		return err.Error()
	default:
		return "Something went wrong. Please try again."
	}
}
