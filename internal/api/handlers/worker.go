package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/kuflow/kuflow-sdk-go/internal/api/response"
	"github.com/kuflow/kuflow-sdk-go/internal/logger"
	"github.com/kuflow/kuflow-sdk-go/internal/metrics"
	"github.com/kuflow/kuflow-sdk-go/internal/store"
	"github.com/kuflow/kuflow-sdk-go/pkg/client"
)

// CreateOrUpdateWorker handles POST /workers. A new worker is answered with
// 201, a known one is refreshed and answered with 200.
func (h *Handler) CreateOrUpdateWorker(w http.ResponseWriter, r *http.Request) {
	var params client.WorkerCreateParams
	if !h.decode(w, r, "Worker.CreateOrUpdate", &params) {
		return
	}

	caller, err := h.caller(r)
	if err != nil {
		fail(w, err, "worker")
		return
	}

	id := uuid.New()
	if params.ID != nil {
		id = *params.ID
	}
	tenantID := h.cfg.TenantID
	if params.TenantID != nil {
		tenantID = *params.TenantID
	}
	ts := now()

	worker := client.Worker{
		Audit: client.Audit{
			CreatedBy:      &caller.ID,
			CreatedAt:      &ts,
			LastModifiedBy: &caller.ID,
			LastModifiedAt: &ts,
		},
		ObjectType:     client.ObjectTypeWorker,
		ID:             id,
		Identity:       params.Identity,
		TaskQueue:      params.TaskQueue,
		WorkflowTypes:  params.WorkflowTypes,
		ActivityTypes:  params.ActivityTypes,
		Hostname:       params.Hostname,
		IP:             params.IP,
		InstallationID: params.InstallationID,
		RobotIDs:       params.RobotIDs,
		TenantID:       &tenantID,
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	created, err := create(r.Context(), h.store, store.KindWorker, id.String(), worker)
	if err != nil {
		fail(w, err, "worker")
		return
	}
	if created {
		logger.Info().
			Str("worker_id", id.String()).
			Str("task_queue", worker.TaskQueue).
			Msg("worker registered")
		response.JSON(w, http.StatusCreated, worker)
		return
	}

	existing, err := load[client.Worker](r.Context(), h.store, store.KindWorker, id.String())
	if err != nil {
		fail(w, err, "worker")
		return
	}
	worker.Audit.CreatedBy = existing.CreatedBy
	worker.Audit.CreatedAt = existing.CreatedAt

	if err := save(r.Context(), h.store, store.KindWorker, id.String(), worker); err != nil {
		fail(w, err, "worker")
		return
	}
	metrics.RecordIdempotentReplay(string(store.KindWorker))

	logger.Debug().Str("worker_id", id.String()).Msg("worker refreshed")
	response.JSON(w, http.StatusOK, worker)
}
