package errs

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// codes maps application error codes to HTTP status codes.
// Duplicate handles answer 403 rather than 409 because the client
// application predates this server and expects 403 there.
var codes = map[string]int{
	ECONFLICT:     http.StatusForbidden,
	EINVALID:      http.StatusBadRequest,
	ENOTFOUND:     http.StatusNotFound,
	EUNAUTHORIZED: http.StatusUnauthorized,
	EUNAVAILABLE:  http.StatusServiceUnavailable,
	EINTERNAL:     http.StatusInternalServerError,
}

// ErrorStatusCode returns the HTTP status code for an application error code.
func ErrorStatusCode(code string) int {
	if status, ok := codes[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ErrorResponse is the body every failed request answers with.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ReturnError writes err to the response. Unexpected errors (code EINTERNAL
// or EUNAVAILABLE) are logged here, exactly once, before a generic message
// goes out to the client.
func ReturnError(w http.ResponseWriter, r *http.Request, err error) {
	code, message := ErrorCode(err), ErrorMessage(err)
	if code == EINTERNAL || code == EUNAVAILABLE {
		LogError(r, err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(ErrorStatusCode(code))
	json.NewEncoder(w).Encode(&ErrorResponse{Error: message})
}

// LogError logs an error together with the request it occurred on.
func LogError(r *http.Request, err error) {
	zap.L().Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
}
