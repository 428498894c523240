// Package response writes JSON bodies and KuFlow error documents for the
// stub server.
package response

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kuflow/kuflow-sdk-go/internal/logger"
	"github.com/kuflow/kuflow-sdk-go/pkg/client"
)

func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// Error writes a DefaultError document with the given status.
func Error(w http.ResponseWriter, status int, message string, details ...client.DefaultErrorInfo) {
	JSON(w, status, client.DefaultError{
		Timestamp: time.Now().UTC(),
		Status:    status,
		Message:   message,
		Errors:    details,
	})
}
