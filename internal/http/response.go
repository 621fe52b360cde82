package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"prodhub/internal/app"
	"prodhub/internal/core"
	applog "prodhub/internal/log"
)

var errBadRequest = errors.New("bad request")

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errBadRequest), errors.Is(err, app.ErrUnknownAction):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrNotImplemented):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as {"error": message}. Internal failures are logged
// and their detail is not sent to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := core.UserMessage(err)
	switch status {
	case http.StatusInternalServerError:
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			applog.FieldError, err)
		msg = "Internal server error"
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		msg = err.Error()
	}
	writeJSON(w, status, errorBody{Error: msg})
}

// decodeJSON reads a single JSON object from the bounded request body.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errBadRequest)
		}
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after JSON object", errBadRequest)
	}
	return nil
}
