package client

import (
	"context"
	"net/http"
)

var echoRequestEcho = operation{
	name:    "Echo.RequestEcho",
	method:  http.MethodGet,
	path:    "/echo",
	success: []int{http.StatusOK},
}

// EchoOperations checks connectivity and credentials.
type EchoOperations struct {
	client *KuFlowClient
}

// RequestEcho returns the authentication the server resolved for the
// caller's credentials.
func (o *EchoOperations) RequestEcho(ctx context.Context) (*Authentication, error) {
	return valueOf(o.RequestEchoWithResponse(ctx))
}

func (o *EchoOperations) RequestEchoWithResponse(ctx context.Context) (*Response[Authentication], error) {
	return invoke[Authentication](ctx, o.client, echoRequestEcho, request{})
}
