package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/chirp/internal/common"
)

const defaultErrorMessage = "Request failed"

// APIError is a non-2xx response of the remote API.
type APIError struct {
	Status  int
	Message string
	Details map[string]any
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Is lets callers match an APIError against the common sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case common.ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case common.ErrorNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// StatusOf returns the HTTP status carried by err, if any.
func StatusOf(err error) (int, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status, true
	}
	return 0, false
}

// IsClientError reports whether err is an APIError with a 4xx status.
func IsClientError(err error) bool {
	status, ok := StatusOf(err)
	return ok && status >= 400 && status < 500
}
