package handlers

import (
	"context"
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

// FindTasks handles GET /tasks
func (h *Handler) FindTasks(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	processIDs, err := queryUUIDs(r, "processId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	tenantIDs, err := queryUUIDs(r, "tenantId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	q := r.URL.Query()
	states := q["state"]
	codes := q["taskDefinitionCode"]
	ctx := r.Context()

	tasks, err := loadAll[client.Task](ctx, h.store, store.KindTask)
	if err != nil {
		fail(w, err, "tasks")
		return
	}

	// tasks carry no tenant, it comes from their process
	var tenantOf map[uuid.UUID]uuid.UUID
	if len(tenantIDs) > 0 {
		processes, err := loadAll[client.Process](ctx, h.store, store.KindProcess)
		if err != nil {
			fail(w, err, "tasks")
			return
		}
		tenantOf = make(map[uuid.UUID]uuid.UUID, len(processes))
		for _, p := range processes {
			if p.TenantID != nil {
				tenantOf[p.ID] = *p.TenantID
			}
		}
	}

	tasks = slices.DeleteFunc(tasks, func(t client.Task) bool {
		if len(processIDs) > 0 && !slices.Contains(processIDs, t.ProcessID) {
			return true
		}
		if len(states) > 0 && !slices.Contains(states, string(t.State)) {
			return true
		}
		if len(codes) > 0 && !slices.Contains(codes, t.TaskDefinition.Code) {
			return true
		}
		if len(tenantIDs) > 0 {
			tenantID, ok := tenantOf[t.ProcessID]
			if !ok || !slices.Contains(tenantIDs, tenantID) {
				return true
			}
		}
		return false
	})

	content, meta := paginate(tasks, page)
	response.JSON(w, http.StatusOK, client.TaskPage{
		ObjectType: client.ObjectTypeTaskPage,
		Metadata:   meta,
		Content:    content,
	})
}

// CreateTask handles POST /tasks. Reusing an id answers 201 with the task
// stored by the first call.
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var params client.TaskCreateParams
	if !h.decode(w, r, "Task.Create", &params) {
		return
	}
	ctx := r.Context()

	caller, err := h.caller(r)
	if err != nil {
		fail(w, err, "task")
		return
	}

	id := uuid.New()
	if params.ID != nil {
		id = *params.ID
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if stored, err := load[client.Task](ctx, h.store, store.KindTask, id.String()); err == nil {
		metrics.RecordIdempotentReplay(string(store.KindTask))
		response.JSON(w, http.StatusCreated, stored)
		return
	}

	process, err := load[client.Process](ctx, h.store, store.KindProcess, params.ProcessID.String())
	if err != nil {
		fail(w, err, "process")
		return
	}
	if lifecycle.IsFinalProcess(process.State) {
		response.Error(w, http.StatusConflict, "process "+process.ID.String()+" is "+string(process.State))
		return
	}

	ts := now()
	task := client.Task{
		Audit: client.Audit{
			CreatedBy:      &caller.ID,
			CreatedAt:      &ts,
			LastModifiedBy: &caller.ID,
			LastModifiedAt: &ts,
		},
		ObjectType: client.ObjectTypeTask,
		ID:         id,
		State:      client.TaskStateReady,
		TaskDefinition: client.TaskDefinitionSummary{
			ID:      uuid.NewSHA1(process.ProcessDefinition.ID, []byte(params.TaskDefinitionCode)),
			Version: uuid.NewSHA1(process.ProcessDefinition.Version, []byte(params.TaskDefinitionCode)),
			Code:    params.TaskDefinitionCode,
		},
		ProcessID:     process.ID,
		ElementValues: params.ElementValues,
	}

	if params.OwnerID != nil {
		owner, err := h.principalByID(ctx, *params.OwnerID)
		if err != nil {
			fail(w, err, "owner")
			return
		}
		if err := lifecycle.NewTaskMachine(&task).Assign(*owner); err != nil {
			fail(w, err, "task")
			return
		}
	}

	if _, err := create(ctx, h.store, store.KindTask, id.String(), task); err != nil {
		fail(w, err, "task")
		return
	}

	logger.Info().
		Str("task_id", id.String()).
		Str("process_id", process.ID.String()).
		Str("code", task.TaskDefinition.Code).
		Msg("task created")

	response.JSON(w, http.StatusCreated, task)
}

// RetrieveTask handles GET /tasks/{taskId}
func (h *Handler) RetrieveTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "taskId")
	if !ok {
		return
	}

	task, err := load[client.Task](r.Context(), h.store, store.KindTask, id.String())
	if err != nil {
		fail(w, err, "task")
		return
	}
	response.JSON(w, http.StatusOK, task)
}

// ClaimTask handles POST /tasks/{taskId}/~actions/claim
func (h *Handler) ClaimTask(w http.ResponseWriter, r *http.Request) {
	h.mutateTask(w, r, "claimed", func(_ context.Context, m *lifecycle.TaskMachine) error {
		caller, err := h.caller(r)
		if err != nil {
			return err
		}
		return m.Claim(*caller)
	})
}

// AssignTask handles POST /tasks/{taskId}/~actions/assign
func (h *Handler) AssignTask(w http.ResponseWriter, r *http.Request) {
	var params client.TaskAssignParams
	if !h.decode(w, r, "Task.Assign", &params) {
		return
	}

	h.mutateTask(w, r, "assigned", func(ctx context.Context, m *lifecycle.TaskMachine) error {
		owner, err := h.resolvePrincipal(ctx, params.OwnerID, params.OwnerEmail)
		if err != nil {
			return err
		}
		return m.Assign(*owner)
	})
}

// CompleteTask handles POST /tasks/{taskId}/~actions/complete
func (h *Handler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	h.mutateTask(w, r, "completed", func(_ context.Context, m *lifecycle.TaskMachine) error {
		return m.Complete()
	})
}

// AppendTaskLog handles POST /tasks/{taskId}/~actions/append-log
func (h *Handler) AppendTaskLog(w http.ResponseWriter, r *http.Request) {
	var params client.TaskAppendLogParams
	if !h.decode(w, r, "Task.AppendLog", &params) {
		return
	}

	h.mutateTask(w, r, "log appended", func(_ context.Context, m *lifecycle.TaskMachine) error {
		return m.AppendLog(params.Message, params.Level)
	})
}

func (h *Handler) mutateTask(w http.ResponseWriter, r *http.Request, event string, apply func(context.Context, *lifecycle.TaskMachine) error) {
	id, ok := pathID(w, r, "taskId")
	if !ok {
		return
	}
	ctx := r.Context()

	h.mu.Lock()
	defer h.mu.Unlock()

	task, err := load[client.Task](ctx, h.store, store.KindTask, id.String())
	if err != nil {
		fail(w, err, "task")
		return
	}

	if err := apply(ctx, lifecycle.NewTaskMachine(task)); err != nil {
		fail(w, err, "task")
		return
	}

	if caller, err := h.caller(r); err == nil {
		task.LastModifiedBy = &caller.ID
	}
	if err := save(ctx, h.store, store.KindTask, id.String(), task); err != nil {
		fail(w, err, "task")
		return
	}

	logger.Info().Str("task_id", id.String()).Str("state", string(task.State)).Msg("task " + event)
	response.JSON(w, http.StatusOK, task)
}
