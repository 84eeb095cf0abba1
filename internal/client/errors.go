package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	ErrMissingIDParameter = errors.New("missing required id parameter")
	ErrInvalidBaseURL     = errors.New("base url must be absolute")
	ErrNoBaseURL          = errors.New("no base url configured")
)

// APIError is a non-2xx response. Message is what the server said, verbatim.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

var messagePaths = []string{"message", "error.message", "error", "msg"}

func newAPIError(status int, body []byte) *APIError {
	e := &APIError{StatusCode: status, Body: body, Message: ""}

	if gjson.ValidBytes(body) {
		for _, path := range messagePaths {
			if r := gjson.GetBytes(body, path); r.Type == gjson.String && r.Str != "" {
				e.Message = r.Str

				return e
			}
		}
	}

	e.Message = strings.TrimSpace(string(body))
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}

	return e
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s", e.StatusCode, e.Message)
}

func IsAPIError(err error) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError

	if errors.As(err, &apiErr) {
		return apiErr
	}

	return nil
}

// Class buckets an outcome the way the stress harness and the trigger report it.
type Class string

const (
	ClassSuccess     Class = "success"
	ClassClientError Class = "clientError"
	ClassServerError Class = "serverError"
	ClassOther       Class = "other"
)

func Classify(status int) Class {
	switch {
	case status >= 200 && status < 300:
		return ClassSuccess
	case status >= 400 && status < 500:
		return ClassClientError
	case status >= 500 && status < 600:
		return ClassServerError
	default:
		return ClassOther
	}
}

// ClassOf classifies the error returned by Execute. Transport failures and
// timeouts are ClassOther.
func ClassOf(err error) Class {
	if err == nil {
		return ClassSuccess
	}

	if apiErr := IsAPIError(err); apiErr != nil {
		return Classify(apiErr.StatusCode)
	}

	return ClassOther
}

// Message returns the text to show a user for err.
func Message(err error) string {
	if err == nil {
		return ""
	}

	if apiErr := IsAPIError(err); apiErr != nil {
		return apiErr.Message
	}

	return err.Error()
}
