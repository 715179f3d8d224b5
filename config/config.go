// Package config loads controller client settings from a YAML file and
// FORTIMANAGER_-prefixed environment variables.
//
// Environment variables map to keys by dropping the prefix, lowercasing and
// turning underscores into dots:
//
//	FORTIMANAGER_HOST              host
//	FORTIMANAGER_ADOM              adom
//	FORTIMANAGER_TLS_INSECURE      tls.insecure
//	FORTIMANAGER_TIMEOUT_REQUEST   timeout.request   (e.g. "30s")
//	FORTIMANAGER_TIMEOUT_PROXY     timeout.proxy
//	FORTIMANAGER_AUTH_USERNAME     auth.username
//	FORTIMANAGER_AUTH_PASSWORD     auth.password
//	FORTIMANAGER_AUTH_TOKEN        auth.token
//	FORTIMANAGER_AUTH_ATTEMPTS     auth.attempts
//	FORTIMANAGER_AUTH_LOGOUT       auth.logout       (log out a stale session before logging in again)
//	FORTIMANAGER_RETRY_ATTEMPTS    retry.attempts
//	FORTIMANAGER_RETRY_BACKOFF     retry.backoff
//	FORTIMANAGER_RATELIMIT         ratelimit         (requests per minute)
//
// retry.statuses (a list of HTTP status codes) can only be set from the file.
// Environment variables override the file.
package config

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/knadh/koanf/maps"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/lexfrei/go-fortimanager/api/fortimanager"
)

// DefaultEnvPrefix is the default environment variable prefix.
const DefaultEnvPrefix = "FORTIMANAGER_"

// Settings mirrors the file layout.
type Settings struct {
	Host string `koanf:"host"`
	ADOM string `koanf:"adom"`

	TLS struct {
		Insecure bool `koanf:"insecure"`
	} `koanf:"tls"`

	Timeout struct {
		Request time.Duration `koanf:"request"`
		Proxy   time.Duration `koanf:"proxy"`
	} `koanf:"timeout"`

	Auth struct {
		Username string `koanf:"username"`
		Password string `koanf:"password"`
		Token    string `koanf:"token"`
		Attempts int    `koanf:"attempts"`
		Logout   bool   `koanf:"logout"`
	} `koanf:"auth"`

	Retry struct {
		Attempts int           `koanf:"attempts"`
		Backoff  time.Duration `koanf:"backoff"`
		Statuses []int         `koanf:"statuses"`
	} `koanf:"retry"`

	RateLimit int `koanf:"ratelimit"`
}

// Loader loads Settings from a file, overrides and the environment.
type Loader struct {
	k         *koanf.Koanf
	envPrefix string
	filePath  string
	overrides map[string]any
}

// Option is a function that configures the Loader.
type Option func(*Loader)

// WithEnvPrefix sets the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// WithConfigFile sets the YAML configuration file path.
func WithConfigFile(path string) Option {
	return func(l *Loader) {
		l.filePath = path
	}
}

// WithOverrides applies dotted keys (e.g. "auth.token") on top of every other
// source. Command-line flags are the usual source.
func WithOverrides(values map[string]any) Option {
	return func(l *Loader) {
		l.overrides = values
	}
}

// NewLoader creates a new configuration loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		k:         koanf.New("."),
		envPrefix: DefaultEnvPrefix,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Load reads the sources in priority order (file, environment, overrides)
// and decodes the result.
func (l *Loader) Load() (*Settings, error) {
	if l.filePath != "" {
		if err := l.k.Load(file.Provider(l.filePath), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "failed to load config file %s", l.filePath)
		}
	}

	if err := l.k.Load(env.Provider(l.envPrefix, ".", l.envKey), nil); err != nil {
		return nil, errors.Wrap(err, "failed to load environment")
	}

	if len(l.overrides) > 0 {
		if err := l.k.Load(mapProvider(l.overrides), nil); err != nil {
			return nil, errors.Wrap(err, "failed to load overrides")
		}
	}

	var settings Settings
	if err := l.k.Unmarshal("", &settings); err != nil {
		return nil, errors.Wrap(err, "failed to decode config")
	}

	return &settings, nil
}

// envKey maps FORTIMANAGER_AUTH_TOKEN to auth.token.
func (l *Loader) envKey(s string) string {
	s = strings.TrimPrefix(s, l.envPrefix)
	s = strings.ToLower(s)

	return strings.ReplaceAll(s, "_", ".")
}

// ClientConfig converts the settings into a client configuration.
// Exactly one of auth.token and auth.username must be set.
func (s *Settings) ClientConfig() (*fortimanager.ClientConfig, error) {
	credential, err := s.credential()
	if err != nil {
		return nil, err
	}

	return &fortimanager.ClientConfig{
		Host:               s.Host,
		Credential:         credential,
		ADOM:               s.ADOM,
		InsecureSkipVerify: s.TLS.Insecure,
		RequestTimeout:     s.Timeout.Request,
		ProxyTimeout:       s.Timeout.Proxy,
		Retry: fortimanager.RetryPolicy{
			MaxAttempts:          s.Retry.Attempts,
			BackoffBase:          s.Retry.Backoff,
			RetryableStatusCodes: s.Retry.Statuses,
		},
		AuthAttempts:       s.Auth.Attempts,
		RateLimitPerMinute: s.RateLimit,
		LogoutBeforeReauth: s.Auth.Logout,
	}, nil
}

//nolint:ireturn // Credential is a sealed sum type
func (s *Settings) credential() (fortimanager.Credential, error) {
	switch {
	case s.Auth.Token != "" && s.Auth.Username != "":
		return nil, errors.New("auth.token and auth.username are mutually exclusive")
	case s.Auth.Token != "":
		return fortimanager.TokenCredential{Token: s.Auth.Token}, nil
	case s.Auth.Username != "":
		return fortimanager.SessionCredential{Username: s.Auth.Username, Password: s.Auth.Password}, nil
	default:
		return nil, errors.New("either auth.token or auth.username is required")
	}
}

// Load is a shorthand for NewLoader(opts...).Load followed by ClientConfig.
func Load(opts ...Option) (*fortimanager.ClientConfig, error) {
	settings, err := NewLoader(opts...).Load()
	if err != nil {
		return nil, err
	}

	return settings.ClientConfig()
}

// mapProvider feeds a map with dotted keys to koanf.
type mapProvider map[string]any

func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, errors.New("map provider does not support ReadBytes")
}

func (m mapProvider) Read() (map[string]any, error) {
	return maps.Unflatten(m, "."), nil
}
