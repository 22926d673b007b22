// Package apifuzz drives an OpenAPI-described HTTP API with generated
// payload combinations: it collects eligible GET and POST operations from
// a parsed specification, builds every non-empty combination of a POST
// body's properties, and records the status code each request received.
//
// Create a [Fuzzer] with [New] and functional [Option]s, then call
// [Fuzzer.Run] with a parsed [github.com/talav/apifuzz/internal/model.Spec]
// (see [github.com/talav/apifuzz/internal/docparse] to build one from a
// YAML or JSON document).
package apifuzz

import (
	"context"
	"net/http"

	"github.com/talav/apifuzz/internal/httpclient"
	"github.com/talav/apifuzz/internal/model"
	"github.com/talav/apifuzz/internal/orchestrator"
)

// Fuzzer holds the configuration used across a Run. All fields are set via
// functional options; direct mutation after New is not recommended.
//
// Create instances using [New].
type Fuzzer struct {
	// BaseURL, if set, overrides the base URL resolved from the spec's
	// servers.
	BaseURL string

	// BearerToken is sent on every operation whose security requirements
	// name the bearer scheme found in the spec's components.
	BearerToken string

	// HTTPClient is reused for every request if set; otherwise a fresh
	// client is created per operation via internal/httpclient.
	HTTPClient *http.Client
}

// Option configures a Fuzzer using the functional options pattern. Options
// are applied in order, with later options overriding earlier ones.
type Option func(*Fuzzer)

// WithBaseURL overrides the base URL the fuzzer targets, taking precedence
// over any server declared in the spec.
func WithBaseURL(url string) Option {
	return func(f *Fuzzer) {
		f.BaseURL = url
	}
}

// WithBearerToken sets the token sent on operations whose security
// requirements name the spec's bearer scheme.
func WithBearerToken(token string) Option {
	return func(f *Fuzzer) {
		f.BearerToken = token
	}
}

// WithHTTPClient sets the *http.Client every request is issued through,
// instead of a fresh client per operation.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fuzzer) {
		f.HTTPClient = client
	}
}

// New creates a new [Fuzzer].
//
// Example:
//
//	f := apifuzz.New(
//	    apifuzz.WithBaseURL("https://staging.example.com"),
//	    apifuzz.WithBearerToken(token),
//	)
func New(opts ...Option) *Fuzzer {
	f := &Fuzzer{}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Run collects every eligible GET and POST operation in spec and executes
// them sequentially, returning a [Result] with one CallResult slice per
// operation.
//
// Run returns [orchestrator.ErrNoComponents] or [orchestrator.ErrNoServers]
// rather than exiting the process when the spec is missing the
// information needed to resolve a target; it is the caller's
// responsibility (e.g. cmd/apifuzz) to decide how to report that.
func (f *Fuzzer) Run(ctx context.Context, spec *model.Spec) (*Result, error) {
	if spec == nil {
		return nil, ErrNoSpec
	}

	cfg := orchestrator.Config{
		BaseURL:     f.BaseURL,
		BearerToken: f.BearerToken,
		HTTPClient:  f.HTTPClient,
	}

	out, err := orchestrator.Run(ctx, spec, cfg, httpclient.New)
	if err != nil {
		return nil, err
	}

	return &Result{
		Operations: out.Operations,
		Warnings:   out.Warnings,
	}, nil
}
