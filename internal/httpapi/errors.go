package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"llmchat/internal/chat"
	"llmchat/pkg/types"
)

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}

// chatErrorStatus maps a chat failure to a status code and a client message.
func chatErrorStatus(err error) (int, string) {
	var ce *chat.Error
	if errors.As(err, &ce) {
		switch ce.Kind {
		case chat.KindEmptyInput:
			return http.StatusBadRequest, ce.Message
		default:
			return http.StatusInternalServerError, ce.Message
		}
	}
	return http.StatusInternalServerError, err.Error()
}
