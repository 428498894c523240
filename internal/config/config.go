package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/kuflow/kuflow-sdk-go/pkg/client"
)

type Config struct {
	Client    ClientConfig
	Stub      StubConfig
	Redis     RedisConfig
	LogLevel  string
	LogPretty bool
}

// ClientConfig holds what the CLI needs to reach a KuFlow endpoint.
type ClientConfig struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	APIVersion   string
	Timeout      time.Duration
	Tracing      bool
	Retry        RetryConfig
	RateLimit    RateLimitConfig
}

type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffFactor  float64
	JitterFactor   float64
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// StubConfig configures the local fake KuFlow server.
type StubConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	ClientID     string
	ClientSecret string
	TenantID     string
	JWTSecret    string
	TokenTTL     time.Duration
	Latency      time.Duration
	RateLimit    RateLimitConfig
	Store        string
	Users        []string
	KmsKeys      []string
}

type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	KeyPrefix    string
	PoolSize     int
	MinIdleConns int
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Load reads kuflow.yaml from the working directory, ./config or
// /etc/kuflow when present, then applies KUFLOW_* environment variables.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file. An empty path falls back
// to the default search locations.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("kuflow")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/kuflow")
	}

	setDefaults(v)

	// KUFLOW_CLIENT_ENDPOINT -> client.endpoint
	v.SetEnvPrefix("KUFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Client defaults
	v.SetDefault("client.endpoint", "https://api.kuflow.com")
	v.SetDefault("client.clientid", "")
	v.SetDefault("client.clientsecret", "")
	v.SetDefault("client.apiversion", client.DefaultAPIVersion)
	v.SetDefault("client.timeout", 30*time.Second)
	v.SetDefault("client.tracing", false)
	v.SetDefault("client.retry.maxretries", 3)
	v.SetDefault("client.retry.initialbackoff", 800*time.Millisecond)
	v.SetDefault("client.retry.maxbackoff", 30*time.Second)
	v.SetDefault("client.retry.backofffactor", 2.0)
	v.SetDefault("client.retry.jitterfactor", 0.1)
	v.SetDefault("client.ratelimit.rps", 0.0)
	v.SetDefault("client.ratelimit.burst", 1)

	// Stub defaults
	v.SetDefault("stub.host", "127.0.0.1")
	v.SetDefault("stub.port", 8480)
	v.SetDefault("stub.readtimeout", 30*time.Second)
	v.SetDefault("stub.writetimeout", 30*time.Second)
	v.SetDefault("stub.idletimeout", 120*time.Second)
	v.SetDefault("stub.clientid", "stub-client")
	v.SetDefault("stub.clientsecret", "stub-secret")
	v.SetDefault("stub.tenantid", "")
	v.SetDefault("stub.jwtsecret", "stub-jwt-secret")
	v.SetDefault("stub.tokenttl", time.Hour)
	v.SetDefault("stub.latency", time.Duration(0))
	v.SetDefault("stub.ratelimit.rps", 0.0)
	v.SetDefault("stub.ratelimit.burst", 1)
	v.SetDefault("stub.store", "memory")
	v.SetDefault("stub.users", []string{})
	v.SetDefault("stub.kmskeys", []string{"default"})

	// Redis defaults
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.keyprefix", "kuflow")
	v.SetDefault("redis.poolsize", 10)
	v.SetDefault("redis.minidleconns", 2)
	v.SetDefault("redis.maxretries", 3)
	v.SetDefault("redis.dialtimeout", 5*time.Second)
	v.SetDefault("redis.readtimeout", 3*time.Second)
	v.SetDefault("redis.writetimeout", 3*time.Second)

	// Logging defaults
	v.SetDefault("loglevel", "info")
	v.SetDefault("logpretty", false)
}

// RetryPolicy converts the retry section into the SDK policy.
func (c ClientConfig) RetryPolicy() client.RetryPolicy {
	return client.RetryPolicy{
		MaxRetries:     c.Retry.MaxRetries,
		InitialBackoff: c.Retry.InitialBackoff,
		MaxBackoff:     c.Retry.MaxBackoff,
		BackoffFactor:  c.Retry.BackoffFactor,
		JitterFactor:   c.Retry.JitterFactor,
	}
}

// Options maps the client section onto SDK options.
func (c ClientConfig) Options() []client.Option {
	opts := []client.Option{
		client.WithAPIVersion(c.APIVersion),
		client.WithRetryPolicy(c.RetryPolicy()),
		client.WithTracing(c.Tracing),
	}
	if c.ClientID != "" {
		opts = append(opts, client.WithCredentials(c.ClientID, c.ClientSecret))
	}
	if c.Timeout > 0 {
		opts = append(opts, client.WithTimeout(c.Timeout))
	}
	if c.RateLimit.RPS > 0 {
		opts = append(opts, client.WithRateLimit(c.RateLimit.RPS, c.RateLimit.Burst))
	}
	return opts
}
