package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"leadgen-engine/internal/config"
	"leadgen-engine/internal/store"
)

// ErrorCode is the machine-readable half of an APIError.
type ErrorCode string

const (
	CodeInvalidJSON        ErrorCode = "invalid_json"
	CodeInvalidRequest     ErrorCode = "invalid_request"
	CodeNotFound           ErrorCode = "not_found"
	CodeMethodNotAllowed   ErrorCode = "method_not_allowed"
	CodeAlreadyRunning     ErrorCode = "already_running"
	CodeMissingCredentials ErrorCode = "missing_credentials"
	CodeDB                 ErrorCode = "db_error"
	CodeInternal           ErrorCode = "internal_error"
	CodeUnauthorized       ErrorCode = "unauthorized"
	CodeForbidden          ErrorCode = "forbidden"
	CodeReloadFailed       ErrorCode = "reload_failed"
	CodeSaveFailed         ErrorCode = "save_failed"
	CodeStoreFailed        ErrorCode = "store_failed"
	CodeStreamUnsupported  ErrorCode = "stream_unsupported"
)

type APIError struct {
	Error struct {
		Code      ErrorCode `json:"code"`
		Message   string    `json:"message"`
		RequestID string    `json:"request_id,omitempty"`
	} `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code ErrorCode, message string) {
	var e APIError
	e.Error.Code = code
	e.Error.Message = message
	e.Error.RequestID = RequestIDFrom(r.Context())
	WriteJSON(w, status, e)
}

// errorStatus maps the errors handlers see from the run path and the store
// onto a status and code. Anything unrecognised is a 500.
func errorStatus(err error) (int, ErrorCode) {
	switch {
	case errors.Is(err, ErrAlreadyRunning):
		return http.StatusConflict, CodeAlreadyRunning
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, config.ErrMissingCredentials):
		return http.StatusBadRequest, CodeMissingCredentials
	case errors.Is(err, errInvalidRun):
		return http.StatusBadRequest, CodeInvalidRequest
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	status, code := errorStatus(err)
	WriteError(w, r, status, code, err.Error())
}
