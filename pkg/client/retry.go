package client

import (
	"math"
	"math/rand"
	"time"

	resty "resty.dev/v3"
)

// RetryPolicy controls how the pipeline retries throttled (429), unavailable
// (5xx except 501) and temporarily unreachable calls. A Retry-After header
// sent with 429 or 503 takes precedence over the computed backoff.
type RetryPolicy struct {
	MaxRetries     int           // Retries after the first attempt; 0 disables retrying
	InitialBackoff time.Duration // Wait before the first retry
	MaxBackoff     time.Duration // Upper bound for any single wait
	BackoffFactor  float64       // Multiplier applied per retry
	JitterFactor   float64       // Random spread around the wait (0.0 to 1.0)
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:     3,
		InitialBackoff: 800 * time.Millisecond,
		MaxBackoff:     30 * time.Second,
		BackoffFactor:  2.0,
		JitterFactor:   0.1,
	}
}

// NoRetry returns a policy that sends each request exactly once.
func NoRetry() RetryPolicy {
	return RetryPolicy{}
}

// Backoff returns the wait before retry number retry (0-based).
func (p RetryPolicy) Backoff(retry int) time.Duration {
	if retry <= 0 {
		return p.InitialBackoff
	}

	backoff := float64(p.InitialBackoff) * math.Pow(p.BackoffFactor, float64(retry))
	if backoff > float64(p.MaxBackoff) {
		backoff = float64(p.MaxBackoff)
	}

	if p.JitterFactor > 0 {
		backoff += backoff * p.JitterFactor * (rand.Float64()*2 - 1)
	}

	if backoff < 0 {
		backoff = float64(p.InitialBackoff)
	}

	return time.Duration(backoff)
}

func (p RetryPolicy) normalized() RetryPolicy {
	def := DefaultRetryPolicy()
	if p.InitialBackoff <= 0 {
		p.InitialBackoff = def.InitialBackoff
	}
	if p.MaxBackoff < p.InitialBackoff {
		p.MaxBackoff = p.InitialBackoff
	}
	if p.BackoffFactor < 1 {
		p.BackoffFactor = 1
	}
	return p
}

// apply installs the policy on a resty client. Resty counts attempts from
// 1, so the wait after attempt n is Backoff(n-1).
func (p RetryPolicy) apply(c *resty.Client) {
	if p.MaxRetries <= 0 {
		c.SetRetryCount(0)
		return
	}

	p = p.normalized()
	c.SetRetryCount(p.MaxRetries).
		SetRetryWaitTime(p.InitialBackoff).
		SetRetryMaxWaitTime(p.MaxBackoff).
		SetAllowNonIdempotentRetry(true).
		SetRetryStrategy(func(res *resty.Response, _ error) (time.Duration, error) {
			retry := 0
			if res != nil && res.Request != nil {
				retry = res.Request.Attempt - 1
			}
			return p.Backoff(retry), nil
		})
}
