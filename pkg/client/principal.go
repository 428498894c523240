package client

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

var (
	principalFind = operation{
		name:    "Principal.Find",
		method:  http.MethodGet,
		path:    "/principals",
		success: []int{http.StatusOK},
	}

	principalRetrieve = operation{
		name:    "Principal.Retrieve",
		method:  http.MethodGet,
		path:    "/principals/{id}",
		success: []int{http.StatusOK},
	}
)

type PrincipalOperations struct {
	client *KuFlowClient
}

// Find lists the principals of the tenant, one page at a time.
func (o *PrincipalOperations) Find(ctx context.Context, opts PrincipalFindOptions) (*PrincipalPage, error) {
	return valueOf(o.FindWithResponse(ctx, opts))
}

func (o *PrincipalOperations) FindWithResponse(ctx context.Context, opts PrincipalFindOptions) (*Response[PrincipalPage], error) {
	if err := validateParams(principalFind.name, &opts); err != nil {
		return nil, err
	}

	q := newQuery().addPage(opts.PageOptions).addUUIDs("groupId", opts.GroupIDs)
	if opts.Type != "" {
		q.add("type", opts.Type)
	}

	return invoke[PrincipalPage](ctx, o.client, principalFind, request{query: q})
}

func (o *PrincipalOperations) Retrieve(ctx context.Context, id uuid.UUID) (*Principal, error) {
	return valueOf(o.RetrieveWithResponse(ctx, id))
}

func (o *PrincipalOperations) RetrieveWithResponse(ctx context.Context, id uuid.UUID) (*Response[Principal], error) {
	if err := requireID(principalRetrieve.name, "id", id); err != nil {
		return nil, err
	}
	return invoke[Principal](ctx, o.client, principalRetrieve, request{
		pathParams: map[string]any{"id": id},
	})
}
