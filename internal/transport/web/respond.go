package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/avstrong/campusnest/internal/rental"
)

var ErrPanic = errors.New("panic recovered")

type errorBody struct {
	Message string              `json:"message"`
	Fields  map[string][]string `json:"fields,omitempty"`
	Reasons []string            `json:"reasons,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.l.LogErrorf("Could not encode response: %v", err.Error())
	}
}

func (s *Server) writeMessage(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorBody{Message: msg, Fields: nil, Reasons: nil})
}

// statusOf maps domain errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case rental.IsInputError(err) != nil:
		return http.StatusBadRequest
	case rental.IsCapacityError(err) != nil:
		return http.StatusPreconditionFailed
	case errors.Is(err, rental.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, rental.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, rental.ErrDuplicate), errors.Is(err, rental.ErrStatus):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) int {
	status := statusOf(err)

	body := errorBody{Message: err.Error(), Fields: nil, Reasons: nil}

	switch {
	case status == http.StatusInternalServerError:
		s.l.LogErrorf("Request failed: %v", err.Error())

		body.Message = http.StatusText(http.StatusInternalServerError)
	case status == http.StatusBadRequest:
		inputErr := rental.IsInputError(err)
		body.Message = "validation failed"
		body.Fields = inputErr.Fields()
	case status == http.StatusPreconditionFailed:
		capacityErr := rental.IsCapacityError(err)
		body.Message = capacityErr.Error()
		body.Reasons = capacityErr.Fields()
	case status == http.StatusNotFound:
		body.Message = "not found"
	}

	s.writeJSON(w, status, body)

	return status
}
