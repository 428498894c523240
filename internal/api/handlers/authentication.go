package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/kuflow/kuflow-sdk-go/internal/api/middleware"
	"github.com/kuflow/kuflow-sdk-go/internal/api/response"
	"github.com/kuflow/kuflow-sdk-go/internal/logger"
	"github.com/kuflow/kuflow-sdk-go/internal/store"
	"github.com/kuflow/kuflow-sdk-go/pkg/client"
)

// CreateAuthentication handles POST /authentications
func (h *Handler) CreateAuthentication(w http.ResponseWriter, r *http.Request) {
	var params client.AuthenticationCreateParams
	if !h.decode(w, r, "Authentication.Create", &params) {
		return
	}

	tenantID := h.cfg.TenantID
	if params.TenantID != nil && *params.TenantID != tenantID {
		response.Error(w, http.StatusForbidden, "Tenant not accessible")
		return
	}

	auth := client.Authentication{
		ObjectType: client.ObjectTypeAuthentication,
		ID:         uuid.NewString(),
		Type:       params.Type,
		TenantID:   &tenantID,
	}

	// certificates are not issued here, only the bearer tokens the stub
	// itself accepts
	if params.Type != client.AuthenticationTypeEngineCertificate {
		token, expiredAt, err := middleware.SignToken(h.cfg.JWTSecret, h.callerClientID(r), auth.ID, tenantID.String(), h.cfg.TokenTTL)
		if err != nil {
			fail(w, err, "authentication")
			return
		}
		auth.Token = token
		auth.ExpiredAt = &expiredAt
	}

	if err := save(r.Context(), h.store, store.KindAuthentication, auth.ID, auth); err != nil {
		fail(w, err, "authentication")
		return
	}

	logger.Info().
		Str("authentication_id", auth.ID).
		Str("type", string(auth.Type)).
		Msg("authentication created")

	response.JSON(w, http.StatusOK, auth)
}

// Echo handles GET /echo
func (h *Handler) Echo(w http.ResponseWriter, r *http.Request) {
	if h.cfg.EchoID != "" {
		response.JSON(w, http.StatusOK, client.Authentication{ID: h.cfg.EchoID})
		return
	}

	if identity := middleware.GetIdentity(r.Context()); identity != nil && identity.AuthenticationID != "" {
		auth, err := load[client.Authentication](r.Context(), h.store, store.KindAuthentication, identity.AuthenticationID)
		if err != nil {
			fail(w, err, "authentication")
			return
		}
		// tokens are not echoed back
		auth.Token = ""
		response.JSON(w, http.StatusOK, auth)
		return
	}

	tenantID := h.cfg.TenantID
	response.JSON(w, http.StatusOK, client.Authentication{
		ObjectType: client.ObjectTypeAuthentication,
		ID:         ApplicationPrincipal(h.callerClientID(r)).ID.String(),
		TenantID:   &tenantID,
	})
}
