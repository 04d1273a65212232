package response

import (
	"encoding/json"
	"net/http"

	xerrors "auth-service/pkg/xerrors"
)

type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := APIResponse{
		Status: "success",
		Data:   data,
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func Error(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := APIResponse{
		Status:  "error",
		Message: msg,
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// ErrorFrom maps an error to its taxonomy status and writes the envelope.
// 5xx bodies stay opaque unless the service runs outside production.
func ErrorFrom(w http.ResponseWriter, err error, production bool) {
	status := xerrors.HTTPStatus(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError && production {
		msg = xerrors.ErrInternalServer.Error()
	}
	Error(w, status, msg)
}
