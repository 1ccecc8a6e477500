// Package handlers provides HTTP handlers for the EDI gateway.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/drfirst/go-edi/internal/inquiry"
	"github.com/drfirst/go-edi/internal/x12"
	"github.com/drfirst/go-edi/internal/x12/payer"
)

// maxBodyBytes caps request bodies. Batch 837s and 835 files stay well under it.
const maxBodyBytes = 5 << 20

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// errorBody is the JSON shape of every error response
type errorBody struct {
	Error            string   `json:"error"`
	ValidationErrors []string `json:"validationErrors,omitempty"`
}

func jsonError(w http.ResponseWriter, message string, code int) {
	writeJSON(w, code, errorBody{Error: message})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// statusFor maps an outcome to the HTTP status of its response. Payer-side
// outcomes are answers, not HTTP failures.
func statusFor(out inquiry.Outcome) int {
	if out.Kind == inquiry.KindValidation {
		return http.StatusUnprocessableEntity
	}
	return http.StatusOK
}

// writeServiceError reports an error the service returned instead of a result
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var verrs x12.ValidationErrors
	switch {
	case errors.Is(err, payer.ErrUnknownPayer):
		jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &verrs):
		body := errorBody{Error: "validation failed"}
		for _, v := range verrs {
			body.ValidationErrors = append(body.ValidationErrors, v.Error())
		}
		writeJSON(w, http.StatusUnprocessableEntity, body)
	case errors.Is(err, x12.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "validation failed", ValidationErrors: []string{err.Error()}})
	default:
		logger.Error("clearinghouse exchange failed", zap.Error(err))
		jsonError(w, "clearinghouse unavailable", http.StatusBadGateway)
	}
}
