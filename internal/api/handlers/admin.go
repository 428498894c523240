package handlers

import (
	"net/http"

	"github.com/kuflow/kuflow-sdk-go/internal/api/response"
	"github.com/kuflow/kuflow-sdk-go/internal/store"
	"github.com/kuflow/kuflow-sdk-go/pkg/client"
)

// ListWorkers handles GET /admin/workers
func (h *Handler) ListWorkers(w http.ResponseWriter, r *http.Request) {
	workers, err := loadAll[client.Worker](r.Context(), h.store, store.KindWorker)
	if err != nil {
		fail(w, err, "workers")
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"workers": workers,
		"count":   len(workers),
	})
}

// GetWorker handles GET /admin/workers/{workerId}
func (h *Handler) GetWorker(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "workerId")
	if !ok {
		return
	}

	worker, err := load[client.Worker](r.Context(), h.store, store.KindWorker, id.String())
	if err != nil {
		fail(w, err, "worker")
		return
	}
	response.JSON(w, http.StatusOK, worker)
}

// Stats handles GET /admin/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	kinds := []store.Kind{
		store.KindAuthentication,
		store.KindWorker,
		store.KindPrincipal,
		store.KindProcess,
		store.KindTask,
		store.KindKmsKey,
	}

	counts := make(map[string]int, len(kinds))
	for _, kind := range kinds {
		docs, err := h.store.List(r.Context(), kind)
		if err != nil {
			fail(w, err, "stats")
			return
		}
		counts[string(kind)] = len(docs)
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"tenant_id": h.cfg.TenantID,
		"resources": counts,
	})
}
