package client

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	resty "resty.dev/v3"
)

const (
	// Version is the SDK release reported in the User-Agent header.
	Version = "1.0.0"

	// DefaultAPIVersion is the KuFlow API revision this SDK speaks.
	DefaultAPIVersion = "2022-10-08"
)

// Option configures the KuFlow client.
type Option func(*options)

type options struct {
	clientID     string
	clientSecret string
	apiVersion   string
	userAgent    string
	timeout      time.Duration
	headers      map[string]string
	retry        RetryPolicy
	transport    *TransportConfig
	httpClient   *http.Client
	pipeline     *resty.Client
	serializer   Serializer
	logger       zerolog.Logger
	tracing      bool
	rateLimit    rate.Limit
	rateBurst    int
}

func defaultOptions() *options {
	return &options{
		apiVersion: DefaultAPIVersion,
		userAgent:  "kuflow-sdk-go/" + Version,
		timeout:    30 * time.Second,
		headers:    make(map[string]string),
		retry:      DefaultRetryPolicy(),
		serializer: JSONSerializer{},
		logger:     zerolog.Nop(),
	}
}

// TransportConfig tunes the HTTP transport built for the default pipeline.
type TransportConfig struct {
	DialTimeout           time.Duration
	TLSHandshakeTimeout   time.Duration
	IdleConnTimeout       time.Duration
	ResponseHeaderTimeout time.Duration
	MaxIdleConns          int
	MaxConnsPerHost       int
}

func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		DialTimeout:         5 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
		IdleConnTimeout:     90 * time.Second,
		MaxIdleConns:        100,
		MaxConnsPerHost:     16,
	}
}

// WithCredentials sets the application client id and secret sent with
// HTTP basic authentication.
func WithCredentials(clientID, clientSecret string) Option {
	return func(o *options) {
		o.clientID = clientID
		o.clientSecret = clientSecret
	}
}

// WithAPIVersion overrides the API revision embedded in every path.
func WithAPIVersion(version string) Option {
	return func(o *options) {
		o.apiVersion = version
	}
}

// WithUserAgent replaces the default User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(o *options) {
		o.userAgent = userAgent
	}
}

// WithTimeout sets the overall timeout of a single HTTP attempt.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithHeader adds a custom header to all requests.
func WithHeader(key, value string) Option {
	return func(o *options) {
		o.headers[key] = value
	}
}

// WithRetryPolicy replaces the default retry policy.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(o *options) {
		o.retry = policy
	}
}

// WithTransport builds the pipeline on a transport tuned by cfg.
func WithTransport(cfg TransportConfig) Option {
	return func(o *options) {
		o.transport = &cfg
	}
}

// WithHTTPClient builds the pipeline on top of an existing HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithPipeline makes the client send every request through p instead of
// assembling its own. Credentials, retries and transport options are then
// the caller's responsibility.
func WithPipeline(p *resty.Client) Option {
	return func(o *options) {
		o.pipeline = p
	}
}

// WithSerializer replaces the JSON serializer.
func WithSerializer(s Serializer) Option {
	return func(o *options) {
		o.serializer = s
	}
}

// WithLogger sets the logger used for request and retry diagnostics.
// The client is silent by default.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTracing wraps the transport with OpenTelemetry instrumentation.
func WithTracing(enabled bool) Option {
	return func(o *options) {
		o.tracing = enabled
	}
}

// WithRateLimit caps outgoing attempts (retries included) to rps per
// second with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(o *options) {
		o.rateLimit = rate.Limit(rps)
		o.rateBurst = burst
	}
}
