// Package client provides a Go SDK for the KuFlow REST API.
//
// A KuFlowClient owns one HTTP pipeline (resty) and one serializer shared by
// seven operation groups: Authentication, Echo, Kms, Worker, Principal,
// Process and Task. Every operation comes in two forms: one returning the
// decoded model and one, suffixed WithResponse, returning the full
// Response envelope with status code and headers.
//
// # Basic Usage
//
//	c, err := client.New("https://api.kuflow.com",
//	    client.WithCredentials(clientID, clientSecret),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//
//	auth, err := c.Echo().RequestEcho(ctx)
//
// # Errors
//
// Calls fail with one of three error types:
//
//   - *ValidationError: params were rejected locally, nothing was sent.
//   - *APIError: the server answered with a status the operation does not
//     accept; StatusCode, Body and the decoded DefaultError are available.
//   - *TransportError: no answer was received (network failure, timeout,
//     cancelled context). It unwraps to the cause.
//
// # Idempotency
//
// Create operations take an optional ID. Reusing an ID returns the resource
// created by the first call, so creates are safe to retry:
//
//	id := uuid.New()
//	proc, err := c.Process().Create(ctx, client.ProcessCreateParams{
//	    ID:                  &id,
//	    ProcessDefinitionID: definitionID,
//	})
//
// # Configuration
//
// The client supports functional options for configuration:
//
//	c, err := client.New("https://api.kuflow.com",
//	    client.WithCredentials(clientID, clientSecret),
//	    client.WithTimeout(10 * time.Second),
//	    client.WithRetryPolicy(client.DefaultRetryPolicy()),
//	    client.WithRateLimit(20, 5),
//	)
package client
