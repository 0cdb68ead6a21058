package api

import (
	"encoding/json"
	"net/http"

	stderrors "errors"
	"teamspace/errors"
	"teamspace/mediator"
)

// StatusClientClosedRequest is the nginx convention for a request abandoned by its client.
const StatusClientClosedRequest = 499

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func decode(w http.ResponseWriter, r *http.Request, into any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(into); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body: " + err.Error()})
		return false
	}
	return true
}

// statusOf maps a business failure to its HTTP status.
func statusOf(err error) int {
	switch {
	case stderrors.Is(err, errors.ErrNotFound):
		return http.StatusNotFound
	case stderrors.Is(err, errors.ErrValidation):
		return http.StatusBadRequest
	case stderrors.Is(err, errors.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusUnprocessableEntity
	}
}

// dispatch sends req through the mediator and writes the outcome.
func dispatch[R any](s *Server, w http.ResponseWriter, r *http.Request, req mediator.Request[R], okStatus int) {
	res, err := mediator.Send[R](r.Context(), s.mediator, req)
	if err != nil {
		s.log.Info("Request abandoned by client", "path", r.URL.Path, "error", err)
		w.WriteHeader(StatusClientClosedRequest)
		return
	}
	if res.IsFailure() {
		writeJSON(w, statusOf(res.Err()), errorBody{Error: res.Error()})
		return
	}
	if okStatus == http.StatusNoContent {
		w.WriteHeader(okStatus)
		return
	}
	writeJSON(w, okStatus, res.Value())
}
