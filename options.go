package alm

import (
	"io"
	"time"

	"github.com/r3fresh/alm-go/internal/sink"
)

// Option configures an ALM instance at creation time.
type Option func(*clientConfig)

type clientConfig struct {
	env           string
	agentVersion  string
	policyVersion string

	allowedTools    []string
	deniedTools     []string
	defaultAllow    bool
	defaultAllowSet bool
	maxToolCalls    int
	policyFile      string

	maxRetries int
	backoff    time.Duration

	sink      sink.Sink
	endpoint  string
	apiKey    string
	auditFile string
	batchSize int
	writer    io.Writer
}

func defaultClientConfig() clientConfig {
	return clientConfig{env: "development"}
}

// WithEnv sets the environment name (default "development").
func WithEnv(env string) Option {
	return func(c *clientConfig) { c.env = env }
}

// WithAllowedTools sets the allow-list. A non-empty allow-list puts the
// policy in whitelist mode: tools absent from it are denied.
func WithAllowedTools(tools ...string) Option {
	return func(c *clientConfig) { c.allowedTools = tools }
}

// WithDeniedTools sets the deny-list. Deny-list membership always wins
// over allow-list membership.
func WithDeniedTools(tools ...string) Option {
	return func(c *clientConfig) { c.deniedTools = tools }
}

// WithDefaultAllow sets the fallback decision used when no allow-list
// is configured (default true).
func WithDefaultAllow(allow bool) Option {
	return func(c *clientConfig) {
		c.defaultAllow = allow
		c.defaultAllowSet = true
	}
}

// WithMaxToolCallsPerRun sets the per-run tool call budget. Zero means
// unlimited. The counter resets at every run entry.
func WithMaxToolCallsPerRun(n int) Option {
	return func(c *clientConfig) { c.maxToolCalls = n }
}

// WithPolicyFile loads allow/deny/budget configuration from a YAML
// file. Explicit policy options override values from the file.
func WithPolicyFile(path string) Option {
	return func(c *clientConfig) { c.policyFile = path }
}

// WithAgentVersion stamps events with the agent's version.
func WithAgentVersion(v string) Option {
	return func(c *clientConfig) { c.agentVersion = v }
}

// WithPolicyVersion stamps events with the policy's version.
func WithPolicyVersion(v string) Option {
	return func(c *clientConfig) { c.policyVersion = v }
}

// WithMaxRetries sets the default retry ceiling for retryable tool
// failures (default 0, no retries). Total attempts per invocation are
// capped at 3 regardless.
func WithMaxRetries(n int) Option {
	return func(c *clientConfig) { c.maxRetries = n }
}

// WithRetryBackoff sets a fixed sleep between retry attempts.
func WithRetryBackoff(d time.Duration) Option {
	return func(c *clientConfig) { c.backoff = d }
}

// WithSink supplies a custom event sink, overriding the transport
// options below.
func WithSink(s sink.Sink) Option {
	return func(c *clientConfig) { c.sink = s }
}

// WithEndpoint routes events to a batched HTTP sink posting to
// <endpoint>/v1/events.
func WithEndpoint(endpoint string) Option {
	return func(c *clientConfig) { c.endpoint = endpoint }
}

// WithAPIKey sets the bearer token for the HTTP sink.
func WithAPIKey(key string) Option {
	return func(c *clientConfig) { c.apiKey = key }
}

// WithAuditFile routes events to a hash-chained JSONL capture file.
func WithAuditFile(path string) Option {
	return func(c *clientConfig) { c.auditFile = path }
}

// WithBatchSize overrides the sink batch size (default 50).
func WithBatchSize(n int) Option {
	return func(c *clientConfig) { c.batchSize = n }
}

// WithWriter redirects the console sink's output, mainly for tests.
func WithWriter(w io.Writer) Option {
	return func(c *clientConfig) { c.writer = w }
}

// ToolOption configures a single wrapped tool.
type ToolOption func(*toolConfig)

type toolConfig struct {
	maxRetries int
	backoff    time.Duration
}

// ToolWithMaxRetries overrides the instance retry ceiling for one tool.
func ToolWithMaxRetries(n int) ToolOption {
	return func(t *toolConfig) { t.maxRetries = n }
}

// ToolWithBackoff overrides the instance retry backoff for one tool.
func ToolWithBackoff(d time.Duration) ToolOption {
	return func(t *toolConfig) { t.backoff = d }
}
