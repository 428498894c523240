package client

import (
	"context"
	"net/http"
)

var authenticationCreate = operation{
	name:    "Authentication.Create",
	method:  http.MethodPost,
	path:    "/authentications",
	success: []int{http.StatusOK},
}

// AuthenticationOperations issues authentications for engines and workers.
type AuthenticationOperations struct {
	client *KuFlowClient
}

// Create requests a new authentication.
func (o *AuthenticationOperations) Create(ctx context.Context, params AuthenticationCreateParams) (*Authentication, error) {
	return valueOf(o.CreateWithResponse(ctx, params))
}

func (o *AuthenticationOperations) CreateWithResponse(ctx context.Context, params AuthenticationCreateParams) (*Response[Authentication], error) {
	if err := validateParams(authenticationCreate.name, &params); err != nil {
		return nil, err
	}
	return invoke[Authentication](ctx, o.client, authenticationCreate, request{body: params})
}
