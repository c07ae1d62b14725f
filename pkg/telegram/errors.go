package telegram

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-ok Bot API response.
type APIError struct {
	Code        int
	Description string
	RetryAfter  int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram: %d %s", e.Code, e.Description)
}

// IsForbidden reports whether err is a 403 from the Bot API, which is what
// it returns when the bot lacks rights in a chat.
func IsForbidden(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusForbidden
}
