package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/wrappedlabs/wrapped/internal/validation"
)

var errMalformedBody = errors.New("request body must be valid JSON")

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(payload)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}

// respondValidation renders field-level errors as a 422 envelope:
// {"message": <first error>, "errors": {field: [messages]}}.
func respondValidation(w http.ResponseWriter, errs validation.Errors) {
	respondJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"message": errs.First(),
		"errors":  errs,
	})
}

// respondFieldError is shorthand for a single-field validation failure.
func respondFieldError(w http.ResponseWriter, field, message string) {
	errs := validation.Errors{}
	errs.Add(field, message)
	respondValidation(w, errs)
}

func respondInternalError(w http.ResponseWriter, err error) {
	slog.Error("request failed", "error", err)
	respondMessage(w, http.StatusInternalServerError, "Something went wrong.")
}

// decodeBody parses a JSON request body into dst.
func decodeBody(r *http.Request, dst any) error {
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	err := dec.Decode(dst)
	if err != nil {
		return errMalformedBody
	}
	return nil
}
