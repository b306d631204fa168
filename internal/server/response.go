package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ConstantineIIII/WhatsappClone/internal/app"
)

type envelope struct {
	Success bool     `json:"success"`
	Data    any      `json:"data,omitempty"`
	Message string   `json:"message,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Success: true, Message: msg})
}

// writeError maps app errors to their status; anything else becomes a
// 500 with the underlying message in the errors list.
func writeError(w http.ResponseWriter, err error) {
	if appErr, ok := app.AsError(err); ok {
		writeJSON(w, appErr.Status, envelope{
			Success: false,
			Message: appErr.Message,
			Errors:  appErr.Details,
		})
		return
	}
	slog.Error("request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, envelope{
		Success: false,
		Message: "internal server error",
		Errors:  []string{err.Error()},
	})
}

func decodeBody(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		return app.BadRequest("invalid request body")
	}
	return nil
}
