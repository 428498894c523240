package handlers

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/kuflow/kuflow-sdk-go/internal/api/response"
	"github.com/kuflow/kuflow-sdk-go/internal/store"
	"github.com/kuflow/kuflow-sdk-go/pkg/client"
)

// principalRecord is how principals are stored. Group membership is only
// used for filtering and never leaves the server.
type principalRecord struct {
	Principal client.Principal `json:"principal"`
	GroupIDs  []uuid.UUID      `json:"groupIds,omitempty"`
}

// ApplicationPrincipal is the principal acting for an API client.
func ApplicationPrincipal(clientID string) client.Principal {
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte("kuflow:application:"+clientID))
	return client.Principal{
		ObjectType:  client.ObjectTypePrincipal,
		ID:          id,
		Type:        client.PrincipalTypeApplication,
		Name:        clientID,
		Application: &client.PrincipalApplication{ID: id},
	}
}

// UserPrincipal builds a user principal with an id derived from email.
func UserPrincipal(email string) client.Principal {
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte("kuflow:user:"+strings.ToLower(email)))
	name, _, _ := strings.Cut(email, "@")
	return client.Principal{
		ObjectType: client.ObjectTypePrincipal,
		ID:         id,
		Type:       client.PrincipalTypeUser,
		Name:       name,
		User:       &client.PrincipalUser{ID: id, Email: email},
	}
}

// AddPrincipal stores p, leaving an existing principal with the same id
// untouched.
func (h *Handler) AddPrincipal(ctx context.Context, p client.Principal, groupIDs ...uuid.UUID) error {
	if p.ObjectType == "" {
		p.ObjectType = client.ObjectTypePrincipal
	}
	_, err := create(ctx, h.store, store.KindPrincipal, p.ID.String(), principalRecord{Principal: p, GroupIDs: groupIDs})
	return err
}

func (h *Handler) principalByID(ctx context.Context, id uuid.UUID) (*client.Principal, error) {
	rec, err := load[principalRecord](ctx, h.store, store.KindPrincipal, id.String())
	if err != nil {
		return nil, fmt.Errorf("principal %s: %w", id, err)
	}
	return &rec.Principal, nil
}

func (h *Handler) principalByEmail(ctx context.Context, email string) (*client.Principal, error) {
	records, err := loadAll[principalRecord](ctx, h.store, store.KindPrincipal)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rec.Principal.User != nil && strings.EqualFold(rec.Principal.User.Email, email) {
			return &rec.Principal, nil
		}
	}
	return nil, fmt.Errorf("principal %s: %w", email, store.ErrNotFound)
}

// resolvePrincipal finds the principal named by an id or an email, exactly
// one of which is set.
func (h *Handler) resolvePrincipal(ctx context.Context, id *uuid.UUID, email string) (*client.Principal, error) {
	if id != nil {
		return h.principalByID(ctx, *id)
	}
	return h.principalByEmail(ctx, email)
}

// caller is the principal of the API client behind r, created on first use.
func (h *Handler) caller(r *http.Request) (*client.Principal, error) {
	p := ApplicationPrincipal(h.callerClientID(r))
	if err := h.AddPrincipal(r.Context(), p); err != nil {
		return nil, err
	}
	return &p, nil
}

// FindPrincipals handles GET /principals
func (h *Handler) FindPrincipals(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	groupIDs, err := queryUUIDs(r, "groupId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	principalType := client.PrincipalType(r.URL.Query().Get("type"))

	records, err := loadAll[principalRecord](r.Context(), h.store, store.KindPrincipal)
	if err != nil {
		fail(w, err, "principals")
		return
	}

	matches := make([]client.Principal, 0, len(records))
	for _, rec := range records {
		if principalType != "" && rec.Principal.Type != principalType {
			continue
		}
		if len(groupIDs) > 0 && !slices.ContainsFunc(rec.GroupIDs, func(id uuid.UUID) bool {
			return slices.Contains(groupIDs, id)
		}) {
			continue
		}
		matches = append(matches, rec.Principal)
	}

	content, meta := paginate(matches, page)
	response.JSON(w, http.StatusOK, client.PrincipalPage{
		ObjectType: client.ObjectTypePrincipalPage,
		Metadata:   meta,
		Content:    content,
	})
}

// RetrievePrincipal handles GET /principals/{principalId}
func (h *Handler) RetrievePrincipal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "principalId")
	if !ok {
		return
	}

	p, err := h.principalByID(r.Context(), id)
	if err != nil {
		fail(w, err, "principal")
		return
	}
	response.JSON(w, http.StatusOK, p)
}
