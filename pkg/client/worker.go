package client

import (
	"context"
	"net/http"
)

var workerCreateOrUpdate = operation{
	name:    "Worker.CreateOrUpdate",
	method:  http.MethodPost,
	path:    "/workers",
	success: []int{http.StatusOK, http.StatusCreated},
}

// WorkerOperations registers workers with the platform.
type WorkerOperations struct {
	client *KuFlowClient
}

// CreateOrUpdate registers a worker, or refreshes it when params.ID is
// already known to the server.
func (o *WorkerOperations) CreateOrUpdate(ctx context.Context, params WorkerCreateParams) (*Worker, error) {
	return valueOf(o.CreateOrUpdateWithResponse(ctx, params))
}

// CreateOrUpdateWithResponse answers 201 on first registration and 200 on
// refresh.
func (o *WorkerOperations) CreateOrUpdateWithResponse(ctx context.Context, params WorkerCreateParams) (*Response[Worker], error) {
	if err := validateParams(workerCreateOrUpdate.name, &params); err != nil {
		return nil, err
	}
	return invoke[Worker](ctx, o.client, workerCreateOrUpdate, request{body: params})
}
