package respond

import (
	"encoding/json"
	"net/http"

	"github.com/de-tools/tco-atlas/pkg/models/api"
	"github.com/rs/zerolog"
)

const (
	MsgInvalidInput   = "invalid input"
	MsgInternalError  = "internal server error"
	MsgNotFound       = "not found"
	MsgSourceDegraded = "pricing source unavailable"
)

func JSON(w http.ResponseWriter, r *http.Request, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Int("status", status).
			Msg("failed to encode response")
	}
}

func Error(w http.ResponseWriter, r *http.Request, status int, msg string, details map[string]string) {
	JSON(w, r, status, api.ErrorResponse{Error: msg, Details: details})
}

func InvalidInput(w http.ResponseWriter, r *http.Request, details map[string]string) {
	Error(w, r, http.StatusBadRequest, MsgInvalidInput, details)
}

func InternalError(w http.ResponseWriter, r *http.Request) {
	Error(w, r, http.StatusInternalServerError, MsgInternalError, nil)
}
