package client

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	resty "resty.dev/v3"
)

// KuFlowClient is the entry point of the SDK. It owns the HTTP pipeline and
// the serializer shared by every operation group and is safe for concurrent
// use.
type KuFlowClient struct {
	baseURL      string
	pipeline     *resty.Client
	ownsPipeline bool
	serializer   Serializer
	log          zerolog.Logger

	authentication *AuthenticationOperations
	echo           *EchoOperations
	kms            *KmsOperations
	worker         *WorkerOperations
	principal      *PrincipalOperations
	process        *ProcessOperations
	task           *TaskOperations
}

// New creates a client for the KuFlow API at endpoint, for example
// "https://api.kuflow.com". The API version segment is appended unless the
// endpoint already ends with it.
func New(endpoint string, opts ...Option) (*KuFlowClient, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	if o.apiVersion == "" {
		return nil, fmt.Errorf("api version is required")
	}

	baseURL, err := resolveBaseURL(endpoint, o.apiVersion)
	if err != nil {
		return nil, err
	}

	c := &KuFlowClient{
		baseURL:    baseURL,
		pipeline:   o.pipeline,
		serializer: o.serializer,
		log:        o.logger.With().Str("component", "kuflow-client").Logger(),
	}
	if c.pipeline == nil {
		c.pipeline = newPipeline(o)
		c.ownsPipeline = true
	}
	if c.serializer == nil {
		c.serializer = JSONSerializer{}
	}

	c.authentication = &AuthenticationOperations{client: c}
	c.echo = &EchoOperations{client: c}
	c.kms = &KmsOperations{client: c}
	c.worker = &WorkerOperations{client: c}
	c.principal = &PrincipalOperations{client: c}
	c.process = &ProcessOperations{client: c}
	c.task = &TaskOperations{client: c}

	return c, nil
}

func resolveBaseURL(endpoint, apiVersion string) (string, error) {
	endpoint = strings.TrimSuffix(strings.TrimSpace(endpoint), "/")

	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid endpoint %q: scheme must be http or https", endpoint)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid endpoint %q: missing host", endpoint)
	}

	versionSegment := "/v" + apiVersion
	if strings.HasSuffix(u.Path, versionSegment) {
		return endpoint, nil
	}
	return endpoint + versionSegment, nil
}

// BaseURL returns the versioned root every operation path is appended to.
func (c *KuFlowClient) BaseURL() string {
	return c.baseURL
}

// Pipeline exposes the underlying resty client.
func (c *KuFlowClient) Pipeline() *resty.Client {
	return c.pipeline
}

func (c *KuFlowClient) Authentication() *AuthenticationOperations {
	return c.authentication
}

func (c *KuFlowClient) Echo() *EchoOperations {
	return c.echo
}

func (c *KuFlowClient) Kms() *KmsOperations {
	return c.kms
}

func (c *KuFlowClient) Worker() *WorkerOperations {
	return c.worker
}

func (c *KuFlowClient) Principal() *PrincipalOperations {
	return c.principal
}

func (c *KuFlowClient) Process() *ProcessOperations {
	return c.process
}

func (c *KuFlowClient) Task() *TaskOperations {
	return c.task
}

// Close releases the pipeline when the client created it. A pipeline passed
// with WithPipeline is left to its owner.
func (c *KuFlowClient) Close() error {
	if !c.ownsPipeline {
		return nil
	}
	return c.pipeline.Close()
}
