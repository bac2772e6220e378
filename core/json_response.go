package core

import (
	"encoding/json"
	"errors"
	"maps"
	"net/http"
)

// JSONResponse is the standard JSON response structure.
type JSONResponse struct {
	Code    string         `json:"code,omitempty"`
	Message string         `json:"message,omitempty"`
	Data    any            `json:"data,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
	Error   *ErrorDetail   `json:"error,omitempty"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string              `json:"code,omitempty"`
	Message string              `json:"message,omitempty"`
	Details map[string][]string `json:"details,omitempty"`
}

type jsonResponse struct {
	status int
	body   any
}

func (j jsonResponse) Render(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	return json.NewEncoder(w).Encode(j.body)
}

// JSON creates a 200 response with the given payload serialized as-is.
func JSON(data any) Response {
	return jsonResponse{status: http.StatusOK, body: data}
}

// JSONStatus creates a response with an explicit status code.
func JSONStatus(status int, data any) Response {
	return jsonResponse{status: status, body: data}
}

// JSONError creates a JSON error response from an error. ValidationError
// maps to 422, HTTPError to its own status, anything else to 500.
func JSONError(err error) Response {
	status := http.StatusInternalServerError
	code := "internal_error"
	detail := &ErrorDetail{Code: code, Message: err.Error()}

	var valErr ValidationError
	var httpErr HTTPError
	switch {
	case errors.As(err, &valErr):
		status = http.StatusUnprocessableEntity
		code = "validation_error"
		detail.Code = code
		if len(valErr) > 0 {
			detail.Details = make(map[string][]string)
			maps.Copy(detail.Details, valErr)
		}
	case errors.As(err, &httpErr):
		status = httpErr.Code
		code = httpErr.Key
		detail.Code = code
		detail.Message = http.StatusText(httpErr.Code)
	}

	return jsonResponse{
		status: status,
		body:   JSONResponse{Code: code, Error: detail},
	}
}
