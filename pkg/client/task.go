package client

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

var (
	taskFind = operation{
		name:    "Task.Find",
		method:  http.MethodGet,
		path:    "/tasks",
		success: []int{http.StatusOK},
	}

	taskCreate = operation{
		name:    "Task.Create",
		method:  http.MethodPost,
		path:    "/tasks",
		success: []int{http.StatusCreated},
	}

	taskRetrieve = operation{
		name:    "Task.Retrieve",
		method:  http.MethodGet,
		path:    "/tasks/{id}",
		success: []int{http.StatusOK},
	}

	taskClaim = operation{
		name:    "Task.Claim",
		method:  http.MethodPost,
		path:    "/tasks/{id}/~actions/claim",
		success: []int{http.StatusOK},
	}

	taskAssign = operation{
		name:    "Task.Assign",
		method:  http.MethodPost,
		path:    "/tasks/{id}/~actions/assign",
		success: []int{http.StatusOK},
	}

	taskComplete = operation{
		name:    "Task.Complete",
		method:  http.MethodPost,
		path:    "/tasks/{id}/~actions/complete",
		success: []int{http.StatusOK},
	}

	taskAppendLog = operation{
		name:    "Task.AppendLog",
		method:  http.MethodPost,
		path:    "/tasks/{id}/~actions/append-log",
		success: []int{http.StatusOK},
	}
)

// TaskOperations manages the tasks of processes.
type TaskOperations struct {
	client *KuFlowClient
}

func (o *TaskOperations) Find(ctx context.Context, opts TaskFindOptions) (*TaskPage, error) {
	return valueOf(o.FindWithResponse(ctx, opts))
}

func (o *TaskOperations) FindWithResponse(ctx context.Context, opts TaskFindOptions) (*Response[TaskPage], error) {
	if err := validateParams(taskFind.name, &opts); err != nil {
		return nil, err
	}

	q := newQuery().
		addPage(opts.PageOptions).
		addUUIDs("processId", opts.ProcessIDs).
		addStrings("taskDefinitionCode", opts.TaskDefinitionCodes).
		addUUIDs("tenantId", opts.TenantIDs)
	if len(opts.States) > 0 {
		q.add("state", opts.States)
	}

	return invoke[TaskPage](ctx, o.client, taskFind, request{query: q})
}

// Create adds a task to a running process. Sending the same params.ID twice
// returns the task created by the first call.
func (o *TaskOperations) Create(ctx context.Context, params TaskCreateParams) (*Task, error) {
	return valueOf(o.CreateWithResponse(ctx, params))
}

func (o *TaskOperations) CreateWithResponse(ctx context.Context, params TaskCreateParams) (*Response[Task], error) {
	if err := validateParams(taskCreate.name, &params); err != nil {
		return nil, err
	}
	return invoke[Task](ctx, o.client, taskCreate, request{body: params})
}

func (o *TaskOperations) Retrieve(ctx context.Context, id uuid.UUID) (*Task, error) {
	return valueOf(o.RetrieveWithResponse(ctx, id))
}

func (o *TaskOperations) RetrieveWithResponse(ctx context.Context, id uuid.UUID) (*Response[Task], error) {
	return o.action(ctx, taskRetrieve, id, nil)
}

// Claim makes the caller the owner of a READY task.
func (o *TaskOperations) Claim(ctx context.Context, id uuid.UUID) (*Task, error) {
	return valueOf(o.ClaimWithResponse(ctx, id))
}

func (o *TaskOperations) ClaimWithResponse(ctx context.Context, id uuid.UUID) (*Response[Task], error) {
	return o.action(ctx, taskClaim, id, nil)
}

// Assign hands the task to another principal.
func (o *TaskOperations) Assign(ctx context.Context, id uuid.UUID, params TaskAssignParams) (*Task, error) {
	return valueOf(o.AssignWithResponse(ctx, id, params))
}

func (o *TaskOperations) AssignWithResponse(ctx context.Context, id uuid.UUID, params TaskAssignParams) (*Response[Task], error) {
	if err := validateParams(taskAssign.name, &params); err != nil {
		return nil, err
	}
	return o.action(ctx, taskAssign, id, params)
}

// Complete finishes a CLAIMED task.
func (o *TaskOperations) Complete(ctx context.Context, id uuid.UUID) (*Task, error) {
	return valueOf(o.CompleteWithResponse(ctx, id))
}

func (o *TaskOperations) CompleteWithResponse(ctx context.Context, id uuid.UUID) (*Response[Task], error) {
	return o.action(ctx, taskComplete, id, nil)
}

func (o *TaskOperations) AppendLog(ctx context.Context, id uuid.UUID, params TaskAppendLogParams) (*Task, error) {
	return valueOf(o.AppendLogWithResponse(ctx, id, params))
}

func (o *TaskOperations) AppendLogWithResponse(ctx context.Context, id uuid.UUID, params TaskAppendLogParams) (*Response[Task], error) {
	if err := validateParams(taskAppendLog.name, &params); err != nil {
		return nil, err
	}
	return o.action(ctx, taskAppendLog, id, params)
}

func (o *TaskOperations) action(ctx context.Context, op operation, id uuid.UUID, body any) (*Response[Task], error) {
	if err := requireID(op.name, "id", id); err != nil {
		return nil, err
	}
	return invoke[Task](ctx, o.client, op, request{
		pathParams: map[string]any{"id": id},
		body:       body,
	})
}
