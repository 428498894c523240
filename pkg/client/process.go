package client

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

var (
	processFind = operation{
		name:    "Process.Find",
		method:  http.MethodGet,
		path:    "/processes",
		success: []int{http.StatusOK},
	}

	processCreate = operation{
		name:    "Process.Create",
		method:  http.MethodPost,
		path:    "/processes",
		success: []int{http.StatusCreated},
	}

	processRetrieve = operation{
		name:    "Process.Retrieve",
		method:  http.MethodGet,
		path:    "/processes/{id}",
		success: []int{http.StatusOK},
	}

	processCancel = operation{
		name:    "Process.Cancel",
		method:  http.MethodPost,
		path:    "/processes/{id}/~actions/cancel",
		success: []int{http.StatusOK},
	}

	processChangeInitiator = operation{
		name:    "Process.ChangeInitiator",
		method:  http.MethodPost,
		path:    "/processes/{id}/~actions/change-initiator",
		success: []int{http.StatusOK},
	}
)

// ProcessOperations manages process instances.
type ProcessOperations struct {
	client *KuFlowClient
}

func (o *ProcessOperations) Find(ctx context.Context, opts ProcessFindOptions) (*ProcessPage, error) {
	return valueOf(o.FindWithResponse(ctx, opts))
}

func (o *ProcessOperations) FindWithResponse(ctx context.Context, opts ProcessFindOptions) (*Response[ProcessPage], error) {
	if err := validateParams(processFind.name, &opts); err != nil {
		return nil, err
	}

	q := newQuery().addPage(opts.PageOptions).addUUIDs("tenantId", opts.TenantIDs)
	return invoke[ProcessPage](ctx, o.client, processFind, request{query: q})
}

// Create starts a process. Sending the same params.ID twice returns the
// process created by the first call.
func (o *ProcessOperations) Create(ctx context.Context, params ProcessCreateParams) (*Process, error) {
	return valueOf(o.CreateWithResponse(ctx, params))
}

func (o *ProcessOperations) CreateWithResponse(ctx context.Context, params ProcessCreateParams) (*Response[Process], error) {
	if err := validateParams(processCreate.name, &params); err != nil {
		return nil, err
	}
	return invoke[Process](ctx, o.client, processCreate, request{body: params})
}

func (o *ProcessOperations) Retrieve(ctx context.Context, id uuid.UUID) (*Process, error) {
	return valueOf(o.RetrieveWithResponse(ctx, id))
}

func (o *ProcessOperations) RetrieveWithResponse(ctx context.Context, id uuid.UUID) (*Response[Process], error) {
	if err := requireID(processRetrieve.name, "id", id); err != nil {
		return nil, err
	}
	return invoke[Process](ctx, o.client, processRetrieve, request{
		pathParams: map[string]any{"id": id},
	})
}

// Cancel stops a running process and every open task in it.
func (o *ProcessOperations) Cancel(ctx context.Context, id uuid.UUID) (*Process, error) {
	return valueOf(o.CancelWithResponse(ctx, id))
}

func (o *ProcessOperations) CancelWithResponse(ctx context.Context, id uuid.UUID) (*Response[Process], error) {
	if err := requireID(processCancel.name, "id", id); err != nil {
		return nil, err
	}
	return invoke[Process](ctx, o.client, processCancel, request{
		pathParams: map[string]any{"id": id},
	})
}

func (o *ProcessOperations) ChangeInitiator(ctx context.Context, id uuid.UUID, params ProcessChangeInitiatorParams) (*Process, error) {
	return valueOf(o.ChangeInitiatorWithResponse(ctx, id, params))
}

func (o *ProcessOperations) ChangeInitiatorWithResponse(ctx context.Context, id uuid.UUID, params ProcessChangeInitiatorParams) (*Response[Process], error) {
	if err := requireID(processChangeInitiator.name, "id", id); err != nil {
		return nil, err
	}
	if err := validateParams(processChangeInitiator.name, &params); err != nil {
		return nil, err
	}
	return invoke[Process](ctx, o.client, processChangeInitiator, request{
		pathParams: map[string]any{"id": id},
		body:       params,
	})
}
