package utils

import (
	"net/http"

	"github.com/goccy/go-json"
)

// ErrInternal is the only message a client ever sees for server-side failures.
const ErrInternal = "Error interno del servidor"

func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

// WriteErrorWith adds extra fields (examples, available values) next to "error".
func WriteErrorWith(w http.ResponseWriter, status int, message string, extra map[string]interface{}) {
	body := make(map[string]interface{}, len(extra)+1)
	for k, v := range extra {
		body[k] = v
	}
	body["error"] = message
	WriteJSON(w, status, body)
}
