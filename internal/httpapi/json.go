package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/Dr-Musa/najah-realestate/internal/common/errors"
)

const maxBodyBytes = 64 << 10

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, target any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return err
	}
	if decoder.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code apperrors.ErrorCode, message string, details ...string) {
	writeJSON(w, status, errorResponse{Error: errorBody{Code: string(code), Message: message, Details: details}})
}
