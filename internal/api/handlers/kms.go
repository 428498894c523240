package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/kuflow/kuflow-sdk-go/internal/api/response"
	"github.com/kuflow/kuflow-sdk-go/internal/store"
	"github.com/kuflow/kuflow-sdk-go/pkg/client"
)

// AddKmsKey stores a key whose value is derived from the JWT secret, so
// the same id always yields the same value for a given server config.
func (h *Handler) AddKmsKey(ctx context.Context, keyID string) (client.KmsKey, error) {
	mac := hmac.New(sha256.New, []byte(h.cfg.JWTSecret))
	mac.Write([]byte(keyID))
	key := client.KmsKey{ID: keyID, Value: base64.StdEncoding.EncodeToString(mac.Sum(nil))}

	if _, err := create(ctx, h.store, store.KindKmsKey, keyID, key); err != nil {
		return client.KmsKey{}, err
	}
	return key, nil
}

// RetrieveKmsKey handles GET /kms/keys/{keyId}
func (h *Handler) RetrieveKmsKey(w http.ResponseWriter, r *http.Request) {
	keyID := chi.URLParam(r, "keyId")
	// chi matches on the raw path when it differs from the decoded one
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(keyID)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid key ID", client.DefaultErrorInfo{
				Code:         "path",
				Message:      err.Error(),
				Location:     "/keyId",
				LocationType: "PATH",
			})
			return
		}
		keyID = unescaped
	}
	if keyID == "" {
		response.Error(w, http.StatusBadRequest, "key ID is required")
		return
	}

	key, err := load[client.KmsKey](r.Context(), h.store, store.KindKmsKey, keyID)
	if err != nil {
		fail(w, err, "KMS key")
		return
	}
	response.JSON(w, http.StatusOK, key)
}
