package client

import "net/http"

// Response is the envelope of a successful call: the status the server
// answered with, its headers and the decoded body.
type Response[T any] struct {
	StatusCode int
	Header     http.Header
	Value      *T
}

// valueOf unwraps the body of an envelope returned alongside err.
func valueOf[T any](res *Response[T], err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	return res.Value, nil
}
