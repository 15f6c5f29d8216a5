package common

import (
	"encoding/json"
	"net/http"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// FailureResponse is the {success:false, error} shape used by the AI routes
type FailureResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, err error) {
	WriteJSON(w, HTTPStatus(err), ErrorResponse{Error: err.Error()})
}

func WriteErrorMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, ErrorResponse{Error: msg})
}

func WriteFailure(w http.ResponseWriter, err error) {
	WriteJSON(w, HTTPStatus(err), FailureResponse{Success: false, Error: err.Error()})
}
