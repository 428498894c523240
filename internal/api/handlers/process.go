package handlers

import (
	"context"
	"fmt"
	"net/http"
	"slices"

	"github.com/google/uuid"

	"github.com/kuflow/kuflow-sdk-go/internal/api/response"
	"github.com/kuflow/kuflow-sdk-go/internal/lifecycle"
	"github.com/kuflow/kuflow-sdk-go/internal/logger"
	"github.com/kuflow/kuflow-sdk-go/internal/metrics"
	"github.com/kuflow/kuflow-sdk-go/internal/store"
	"github.com/kuflow/kuflow-sdk-go/pkg/client"
)

// FindProcesses handles GET /processes
func (h *Handler) FindProcesses(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	tenantIDs, err := queryUUIDs(r, "tenantId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	processes, err := loadAll[client.Process](r.Context(), h.store, store.KindProcess)
	if err != nil {
		fail(w, err, "processes")
		return
	}

	if len(tenantIDs) > 0 {
		processes = slices.DeleteFunc(processes, func(p client.Process) bool {
			return p.TenantID == nil || !slices.Contains(tenantIDs, *p.TenantID)
		})
	}

	content, meta := paginate(processes, page)
	response.JSON(w, http.StatusOK, client.ProcessPage{
		ObjectType: client.ObjectTypeProcessPage,
		Metadata:   meta,
		Content:    content,
	})
}

// CreateProcess handles POST /processes. Reusing an id answers 201 with
// the process stored by the first call.
func (h *Handler) CreateProcess(w http.ResponseWriter, r *http.Request) {
	var params client.ProcessCreateParams
	if !h.decode(w, r, "Process.Create", &params) {
		return
	}
	ctx := r.Context()

	caller, err := h.caller(r)
	if err != nil {
		fail(w, err, "process")
		return
	}

	initiatorID := caller.ID
	if params.InitiatorID != nil || params.InitiatorEmail != "" {
		initiator, err := h.resolvePrincipal(ctx, params.InitiatorID, params.InitiatorEmail)
		if err != nil {
			fail(w, err, "initiator")
			return
		}
		initiatorID = initiator.ID
	}

	id := uuid.New()
	if params.ID != nil {
		id = *params.ID
	}
	tenantID := h.cfg.TenantID
	ts := now()

	process := client.Process{
		Audit: client.Audit{
			CreatedBy:      &caller.ID,
			CreatedAt:      &ts,
			LastModifiedBy: &caller.ID,
			LastModifiedAt: &ts,
		},
		ObjectType: client.ObjectTypeProcess,
		ID:         id,
		State:      client.ProcessStateRunning,
		ProcessDefinition: client.ProcessDefinitionSummary{
			ID:      params.ProcessDefinitionID,
			Version: uuid.NewSHA1(params.ProcessDefinitionID, []byte("version")),
		},
		InitiatorID: &initiatorID,
		TenantID:    &tenantID,
	}
	if params.Metadata != nil {
		valid := true
		process.Metadata = &client.JSONValue{Valid: &valid, Value: params.Metadata}
	}

	created, err := create(ctx, h.store, store.KindProcess, id.String(), process)
	if err != nil {
		fail(w, err, "process")
		return
	}
	if !created {
		stored, err := load[client.Process](ctx, h.store, store.KindProcess, id.String())
		if err != nil {
			fail(w, err, "process")
			return
		}
		metrics.RecordIdempotentReplay(string(store.KindProcess))
		response.JSON(w, http.StatusCreated, stored)
		return
	}

	logger.Info().
		Str("process_id", id.String()).
		Str("process_definition_id", params.ProcessDefinitionID.String()).
		Msg("process created")

	response.JSON(w, http.StatusCreated, process)
}

// RetrieveProcess handles GET /processes/{processId}
func (h *Handler) RetrieveProcess(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "processId")
	if !ok {
		return
	}

	process, err := load[client.Process](r.Context(), h.store, store.KindProcess, id.String())
	if err != nil {
		fail(w, err, "process")
		return
	}
	response.JSON(w, http.StatusOK, process)
}

// CancelProcess handles POST /processes/{processId}/~actions/cancel. Open
// tasks of the process are cancelled with it.
func (h *Handler) CancelProcess(w http.ResponseWriter, r *http.Request) {
	h.mutateProcess(w, r, "cancelled", func(ctx context.Context, m *lifecycle.ProcessMachine, p *client.Process) error {
		if err := m.Cancel(); err != nil {
			return err
		}
		return h.cancelOpenTasks(ctx, p.ID)
	})
}

// ChangeProcessInitiator handles POST /processes/{processId}/~actions/change-initiator
func (h *Handler) ChangeProcessInitiator(w http.ResponseWriter, r *http.Request) {
	var params client.ProcessChangeInitiatorParams
	if !h.decode(w, r, "Process.ChangeInitiator", &params) {
		return
	}

	h.mutateProcess(w, r, "initiator changed", func(ctx context.Context, m *lifecycle.ProcessMachine, _ *client.Process) error {
		initiator, err := h.resolvePrincipal(ctx, params.InitiatorID, params.InitiatorEmail)
		if err != nil {
			return err
		}
		return m.ChangeInitiator(initiator.ID)
	})
}

func (h *Handler) mutateProcess(w http.ResponseWriter, r *http.Request, event string, apply func(context.Context, *lifecycle.ProcessMachine, *client.Process) error) {
	id, ok := pathID(w, r, "processId")
	if !ok {
		return
	}
	ctx := r.Context()

	h.mu.Lock()
	defer h.mu.Unlock()

	process, err := load[client.Process](ctx, h.store, store.KindProcess, id.String())
	if err != nil {
		fail(w, err, "process")
		return
	}

	if err := apply(ctx, lifecycle.NewProcessMachine(process), process); err != nil {
		fail(w, err, "process")
		return
	}

	if caller, err := h.caller(r); err == nil {
		process.LastModifiedBy = &caller.ID
	}
	if err := save(ctx, h.store, store.KindProcess, id.String(), process); err != nil {
		fail(w, err, "process")
		return
	}

	logger.Info().Str("process_id", id.String()).Str("state", string(process.State)).Msg("process " + event)
	response.JSON(w, http.StatusOK, process)
}

// cancelOpenTasks must be called with h.mu held.
func (h *Handler) cancelOpenTasks(ctx context.Context, processID uuid.UUID) error {
	tasks, err := loadAll[client.Task](ctx, h.store, store.KindTask)
	if err != nil {
		return err
	}
	for i := range tasks {
		t := &tasks[i]
		if t.ProcessID != processID || lifecycle.IsFinalTask(t.State) {
			continue
		}
		if err := lifecycle.NewTaskMachine(t).Cancel(); err != nil {
			return fmt.Errorf("cancel task %s: %w", t.ID, err)
		}
		if err := save(ctx, h.store, store.KindTask, t.ID.String(), t); err != nil {
			return err
		}
	}
	return nil
}
