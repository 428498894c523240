package client

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
	resty "resty.dev/v3"
)

// newPipeline assembles the default resty client: credentials, headers,
// retry policy, transport, tracing and rate limiting.
func newPipeline(o *options) *resty.Client {
	var c *resty.Client
	if o.httpClient != nil {
		c = resty.NewWithClient(o.httpClient)
	} else {
		c = resty.New()
	}

	if o.transport != nil {
		c.SetTransport(newHTTPTransport(*o.transport))
	}
	if o.tracing {
		c.SetTransport(otelhttp.NewTransport(c.Transport()))
	}

	c.SetTimeout(o.timeout).
		SetLogger(restyLogger{log: o.logger}).
		SetHeader("User-Agent", o.userAgent).
		SetHeader("Accept", "application/json")

	if o.clientID != "" {
		c.SetBasicAuth(o.clientID, o.clientSecret)
	}
	for k, v := range o.headers {
		c.SetHeader(k, v)
	}

	o.retry.apply(c)

	if o.rateLimit > 0 {
		burst := o.rateBurst
		if burst <= 0 {
			burst = 1
		}
		c.AddRequestMiddleware(waitForLimiter(rate.NewLimiter(o.rateLimit, burst)))
	}

	return c
}

func newHTTPTransport(cfg TransportConfig) *http.Transport {
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: cfg.DialTimeout}).DialContext,
		TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
		TLSHandshakeTimeout:   cfg.TLSHandshakeTimeout,
		IdleConnTimeout:       cfg.IdleConnTimeout,
		ResponseHeaderTimeout: cfg.ResponseHeaderTimeout,
		MaxIdleConns:          cfg.MaxIdleConns,
		MaxConnsPerHost:       cfg.MaxConnsPerHost,
		MaxIdleConnsPerHost:   cfg.MaxConnsPerHost,
	}
}

// waitForLimiter blocks each attempt until the limiter grants a token or
// the request context ends.
func waitForLimiter(limiter *rate.Limiter) resty.RequestMiddleware {
	return func(_ *resty.Client, r *resty.Request) error {
		if err := limiter.Wait(r.Context()); err != nil {
			return fmt.Errorf("rate limit: %w", err)
		}
		return nil
	}
}

// restyLogger routes resty's own diagnostics to zerolog.
type restyLogger struct {
	log zerolog.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.log.Error().Str("component", "pipeline").Msgf(format, v...)
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.log.Warn().Str("component", "pipeline").Msgf(format, v...)
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.log.Debug().Str("component", "pipeline").Msgf(format, v...)
}
