package client

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	resty "resty.dev/v3"

	"github.com/kuflow/kuflow-sdk-go/pkg/client/internal/metrics"
)

// operation declares how a typed call maps onto HTTP.
type operation struct {
	name    string
	method  string
	path    string
	success []int
}

func (op operation) accepts(status int) bool {
	return slices.Contains(op.success, status)
}

// request carries the per-call inputs of an operation.
type request struct {
	pathParams map[string]any
	query      *query
	body       any
}

// query accumulates form-style, exploded query parameters.
type query struct {
	parts []string
	err   error
}

func newQuery() *query {
	return &query{}
}

func (q *query) add(name string, value any) *query {
	if q.err != nil {
		return q
	}

	styled, err := runtime.StyleParamWithLocation("form", true, name, runtime.ParamLocationQuery, value)
	if err != nil {
		q.err = fmt.Errorf("query parameter %s: %w", name, err)
		return q
	}
	q.parts = append(q.parts, styled)
	return q
}

func (q *query) addPage(p PageOptions) *query {
	if p.Page > 0 {
		q.add("page", p.Page)
	}
	if p.Size > 0 {
		q.add("size", p.Size)
	}
	if len(p.Sort) > 0 {
		q.add("sort", p.Sort)
	}
	return q
}

func (q *query) addUUIDs(name string, ids []uuid.UUID) *query {
	if len(ids) > 0 {
		q.add(name, ids)
	}
	return q
}

func (q *query) addStrings(name string, values []string) *query {
	if len(values) > 0 {
		q.add(name, values)
	}
	return q
}

func (q *query) values() (url.Values, error) {
	if q.err != nil {
		return nil, q.err
	}
	return url.ParseQuery(strings.Join(q.parts, "&"))
}

func expandPath(path string, params map[string]any) (string, error) {
	for name, value := range params {
		styled, err := runtime.StyleParamWithLocation("simple", false, name, runtime.ParamLocationPath, value)
		if err != nil {
			return "", fmt.Errorf("path parameter %s: %w", name, err)
		}
		path = strings.ReplaceAll(path, "{"+name+"}", styled)
	}
	return path, nil
}

// invoke sends one operation through the client pipeline and decodes the
// answer into T. Statuses outside op.success become an *APIError, failures
// to get any answer become a *TransportError.
func invoke[T any](ctx context.Context, c *KuFlowClient, op operation, in request) (*Response[T], error) {
	path, err := expandPath(op.path, in.pathParams)
	if err != nil {
		return nil, &ValidationError{Operation: op.name, Err: err}
	}

	req := c.pipeline.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json")

	if in.query != nil {
		values, err := in.query.values()
		if err != nil {
			return nil, &ValidationError{Operation: op.name, Err: err}
		}
		req.SetQueryParamsFromValues(values)
	}

	if in.body != nil {
		body, err := c.serializer.Marshal(in.body)
		if err != nil {
			return nil, &ValidationError{Operation: op.name, Err: fmt.Errorf("encode body: %w", err)}
		}
		req.SetBody(body).SetContentType(c.serializer.ContentType())
	}

	req.AddRetryHooks(func(res *resty.Response, err error) {
		metrics.RecordClientRetry(op.name)
		event := c.log.Warn().Str("operation", op.name)
		if res != nil {
			event = event.Int("status", res.StatusCode())
			if res.Request != nil {
				event = event.Int("attempt", res.Request.Attempt)
			}
		}
		event.Err(err).Msg("retrying request")
	})

	metrics.ClientInFlight.Inc()
	start := time.Now()
	res, err := req.Execute(op.method, c.baseURL+path)
	elapsed := time.Since(start)
	metrics.ClientInFlight.Dec()

	if err != nil {
		metrics.RecordClientRequest(op.name, "error", elapsed.Seconds())
		c.log.Debug().
			Err(err).
			Str("operation", op.name).
			Dur("duration", elapsed).
			Msg("request failed")
		return nil, &TransportError{Operation: op.name, Err: err}
	}

	status := res.StatusCode()
	metrics.RecordClientRequest(op.name, strconv.Itoa(status), elapsed.Seconds())
	c.log.Debug().
		Str("operation", op.name).
		Str("method", op.method).
		Str("path", path).
		Int("status", status).
		Dur("duration", elapsed).
		Msg("request completed")

	body := res.Bytes()
	if !op.accepts(status) {
		return nil, c.newAPIError(op, res, body)
	}

	out := &Response[T]{
		StatusCode: status,
		Header:     res.Header(),
		Value:      new(T),
	}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := c.serializer.Unmarshal(body, out.Value); err != nil {
			return nil, fmt.Errorf("kuflow: %s: decode response: %w", op.name, err)
		}
	}
	return out, nil
}

func (c *KuFlowClient) newAPIError(op operation, res *resty.Response, body []byte) *APIError {
	apiErr := &APIError{
		Operation:  op.name,
		StatusCode: res.StatusCode(),
		Header:     res.Header(),
		Body:       body,
	}

	var payload DefaultError
	if len(body) > 0 && c.serializer.Unmarshal(body, &payload) == nil && (payload.Message != "" || payload.Status != 0) {
		apiErr.Payload = &payload
	}

	c.log.Debug().
		Str("operation", op.name).
		Int("status", apiErr.StatusCode).
		Msg("unexpected status")

	return apiErr
}

func requireID(operation, field string, id uuid.UUID) error {
	if id == uuid.Nil {
		return &ValidationError{
			Operation: operation,
			Fields:    []FieldError{{Field: field, Tag: "required"}},
		}
	}
	return nil
}
