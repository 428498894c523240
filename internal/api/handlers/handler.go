package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kuflow/kuflow-sdk-go/internal/api/middleware"
	"github.com/kuflow/kuflow-sdk-go/internal/api/response"
	"github.com/kuflow/kuflow-sdk-go/internal/lifecycle"
	"github.com/kuflow/kuflow-sdk-go/internal/logger"
	"github.com/kuflow/kuflow-sdk-go/internal/store"
	"github.com/kuflow/kuflow-sdk-go/pkg/client"
)

const defaultPageSize = 25

// Config holds what the handlers need beyond the store.
type Config struct {
	ClientID  string
	TenantID  uuid.UUID
	JWTSecret string
	TokenTTL  time.Duration
	// EchoID, when set, is returned by every echo call.
	EchoID string
}

// Handler serves the KuFlow REST resources out of a Store.
type Handler struct {
	store store.Store
	cfg   Config

	// serializes read-modify-write sequences on stored documents
	mu sync.Mutex
}

// New creates a handler. A zero TenantID is derived from the client id.
func New(st store.Store, cfg Config) *Handler {
	if cfg.TenantID == uuid.Nil {
		cfg.TenantID = uuid.NewSHA1(uuid.NameSpaceURL, []byte("kuflow:tenant:"+cfg.ClientID))
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}
	return &Handler{store: st, cfg: cfg}
}

// TenantID is the tenant stamped on every resource.
func (h *Handler) TenantID() uuid.UUID {
	return h.cfg.TenantID
}

func load[T any](ctx context.Context, st store.Store, kind store.Kind, id string) (*T, error) {
	data, err := st.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func loadAll[T any](ctx context.Context, st store.Store, kind store.Kind) ([]T, error) {
	docs, err := st.List(ctx, kind)
	if err != nil {
		return nil, err
	}
	items := make([]T, 0, len(docs))
	for _, doc := range docs {
		var v T
		if err := json.Unmarshal(doc, &v); err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, nil
}

func save(ctx context.Context, st store.Store, kind store.Kind, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return st.Put(ctx, kind, id, data)
}

// create stores v unless id is taken. It reports whether v was stored.
func create(ctx context.Context, st store.Store, kind store.Kind, id string, v any) (bool, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return false, err
	}
	return st.Create(ctx, kind, id, data)
}

// decode reads a JSON body into params and validates it. On failure the
// 400 answer has already been written.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, operation string, params any) bool {
	if err := json.NewDecoder(r.Body).Decode(params); err != nil {
		response.Error(w, http.StatusBadRequest, "Malformed request body")
		return false
	}

	if err := client.ValidateParams(operation, params); err != nil {
		var validationErr *client.ValidationError
		if !errors.As(err, &validationErr) {
			response.Error(w, http.StatusBadRequest, err.Error())
			return false
		}
		details := make([]client.DefaultErrorInfo, len(validationErr.Fields))
		for i, f := range validationErr.Fields {
			details[i] = client.DefaultErrorInfo{
				Code:         f.Tag,
				Message:      f.String(),
				Location:     "/" + strings.ReplaceAll(f.Field, ".", "/"),
				LocationType: "BODY",
			}
		}
		response.Error(w, http.StatusBadRequest, "Invalid request", details...)
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid "+name, client.DefaultErrorInfo{
			Code:         "uuid",
			Message:      err.Error(),
			Location:     name,
			LocationType: "PATH",
		})
		return uuid.Nil, false
	}
	return id, true
}

// fail maps store and lifecycle errors onto HTTP answers.
func fail(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		message := msg + " not found"
		if err != store.ErrNotFound {
			message = err.Error()
		}
		response.Error(w, http.StatusNotFound, message)
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		response.Error(w, http.StatusConflict, err.Error())
	default:
		logger.Error().Err(err).Msg("failed to handle " + msg)
		response.Error(w, http.StatusInternalServerError, "Failed to handle "+msg)
	}
}

// pageRequest is the paging part of a find query.
type pageRequest struct {
	page int
	size int
	desc bool
}

func parsePage(r *http.Request) (pageRequest, error) {
	q := r.URL.Query()
	p := pageRequest{size: defaultPageSize}

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return p, errors.New("page must be a non-negative integer")
		}
		p.page = n
	}
	if v := q.Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 1000 {
			return p, errors.New("size must be between 1 and 1000")
		}
		p.size = n
	}
	for _, s := range q["sort"] {
		if strings.HasSuffix(strings.ToLower(s), ",desc") {
			p.desc = true
		}
	}
	return p, nil
}

// paginate slices items, which are in creation order, for p.
func paginate[T any](items []T, p pageRequest) ([]T, client.PageMetadata) {
	if p.desc {
		items = slices.Clone(items)
		slices.Reverse(items)
	}

	total := len(items)
	meta := client.PageMetadata{
		Size:          p.size,
		Page:          p.page,
		TotalElements: int64(total),
		TotalPages:    (total + p.size - 1) / p.size,
	}

	start := total
	if p.page <= total/p.size {
		start = min(p.page*p.size, total)
	}
	end := min(start+p.size, total)
	return slices.Clone(items[start:end]), meta
}

func queryUUIDs(r *http.Request, name string) ([]uuid.UUID, error) {
	values := r.URL.Query()[name]
	ids := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, errors.New(name + " must be a UUID")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (h *Handler) callerClientID(r *http.Request) string {
	if identity := middleware.GetIdentity(r.Context()); identity != nil && identity.ClientID != "" {
		return identity.ClientID
	}
	return h.cfg.ClientID
}

func now() time.Time {
	return time.Now().UTC()
}
