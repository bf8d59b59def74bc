package validators

import (
	"errors"
	"strings"
)

var ErrMessageRequired = errors.New("message is required")

type PostMessageRequest struct {
	Message string `json:"message"`
}

// Validate rejects empty and whitespace-only messages before anything
// touches the store.
func (r *PostMessageRequest) Validate() error {
	if strings.TrimSpace(r.Message) == "" {
		return ErrMessageRequired
	}
	return nil
}
