package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	internal_errors "github.com/forumflow-dev/forumflow/internal/errors"
)

// Rules holds the length limits applied before any request leaves the client.
// Limits come from config so the client matches whatever the server enforces.
type Rules struct {
	MinContent int
	MaxContent int
	MinTitle   int
	MaxTitle   int
}

// Default mirrors the platform's server-side limits.
func Default() Rules {
	return Rules{MinContent: 5, MaxContent: 10000, MinTitle: 3, MaxTitle: 200}
}

func (r Rules) Content(text string) error {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < r.MinContent {
		return &internal_errors.ValidationError{
			Message: fmt.Sprintf("content must be at least %d characters", r.MinContent),
		}
	}
	if r.MaxContent > 0 && len(trimmed) > r.MaxContent {
		return &internal_errors.ValidationError{
			Message: fmt.Sprintf("content must be at most %d characters", r.MaxContent),
		}
	}
	return nil
}

func (r Rules) Title(title string) error {
	trimmed := strings.TrimSpace(title)
	if len(trimmed) < r.MinTitle {
		return &internal_errors.ValidationError{
			Message: fmt.Sprintf("title must be at least %d characters", r.MinTitle),
		}
	}
	if r.MaxTitle > 0 && len(trimmed) > r.MaxTitle {
		return &internal_errors.ValidationError{
			Message: fmt.Sprintf("title must be at most %d characters", r.MaxTitle),
		}
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Struct runs tag-based validation over a request DTO before it is sent.
func Struct(body any) error {
	if err := validate.Struct(body); err != nil {
		return &internal_errors.ValidationError{Message: "required fields missing"}
	}
	return nil
}
