// Package orchestrator resolves a Spec's base URL and bearer-auth scheme,
// collects its GET and POST operations, and drives the executor over each
// one in turn.
//
// Grounded on original_source/src/lib.rs (do_it / retrieve_base_url /
// get_jwt_token), restated to return a typed error from Run instead of
// calling std::process::exit as the original does on a missing server or
// missing components block — this is the library-mode redesign
// SPEC_FULL.md calls for so apifuzz can be imported, not only run as a
// binary.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/talav/apifuzz/debug"
	"github.com/talav/apifuzz/internal/collector"
	"github.com/talav/apifuzz/internal/executor"
	"github.com/talav/apifuzz/internal/model"
)

// Sentinel errors for conditions the original implementation treats as
// fatal (process::exit). Here they are returned to the caller instead.
var (
	// ErrNoComponents indicates the spec declares no components block, so
	// no request bodies or security schemes can be resolved.
	ErrNoComponents = errors.New("orchestrator: spec has no components")

	// ErrNoServers indicates the spec declares no servers and the caller
	// supplied no base URL override.
	ErrNoServers = errors.New("orchestrator: spec has no servers and no base URL override was given")
)

// Config carries the caller-supplied overrides for a Run.
type Config struct {
	// BaseURL, if set, takes precedence over the server URL resolved from
	// the spec.
	BaseURL string

	// BearerToken, if set, is sent on every operation whose security
	// requirements name the bearer scheme discovered in the spec's
	// components.
	BearerToken string

	// HTTPClient is used for every request if set; otherwise Run's
	// newClient factory is called once per operation.
	HTTPClient *http.Client
}

// Result is the outcome of a full orchestrator run: one CallResult slice
// per collected operation, in the same GETs-then-POSTs order Collect
// returns, plus any non-fatal warnings raised along the way.
type Result struct {
	Operations [][]model.CallResult
	Warnings   debug.Warnings
}

// Run resolves cfg against spec, collects its operations, and executes
// them sequentially. It aborts and returns the first transport error any
// operation raises — matching the original implementation's "propagate
// reqwest::Error and stop" behavior.
func Run(ctx context.Context, spec *model.Spec, cfg Config, newClient func() *http.Client) (*Result, error) {
	if spec.Components == nil {
		return nil, ErrNoComponents
	}

	baseURL, err := resolveBaseURL(spec, cfg)
	if err != nil {
		return nil, err
	}

	bearer := executor.Bearer{
		SchemeName: findBearerScheme(spec.Components),
		Token:      cfg.BearerToken,
	}

	ops, warnings := collector.Collect(spec)
	warnUnrecognizedSecuritySchemes(ops, spec.Components, &warnings)

	client := cfg.HTTPClient
	result := &Result{Warnings: warnings}

	for _, op := range ops {
		c := client
		if c == nil {
			c = newClient()
		}

		calls, err := executor.Execute(ctx, c, baseURL, op, spec.Components, bearer)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: operation %s %s: %w", op.Method, op.Path, err)
		}

		result.Operations = append(result.Operations, calls)
	}

	return result, nil
}

// resolveBaseURL picks, in order: the caller's override, the first
// server's URL, or the first server variable's default value if the first
// server declares variables.
func resolveBaseURL(spec *model.Spec, cfg Config) (string, error) {
	if cfg.BaseURL != "" {
		return cfg.BaseURL, nil
	}

	if len(spec.Servers) == 0 {
		return "", ErrNoServers
	}

	server := spec.Servers[0]
	if len(server.Variables) == 0 {
		return server.URL, nil
	}

	return server.Variables[0].Default, nil
}

// warnUnrecognizedSecuritySchemes raises a warning for every operation whose
// security requirements name a scheme absent from the spec's components: no
// bearer header can ever satisfy it, since findBearerScheme only ever
// resolves names that are actually declared.
func warnUnrecognizedSecuritySchemes(ops []collector.Op, components *model.Components, warnings *debug.Warnings) {
	for _, op := range ops {
		for _, requirement := range op.Op.Security {
			for name := range requirement {
				if hasSecurityScheme(components, name) {
					continue
				}

				warnings.Append(debug.NewWarning(
					debug.WarnUnrecognizedSecurityScheme,
					op.Path,
					fmt.Sprintf("security requirement names scheme %q, which is not declared in components", name),
				))
			}
		}
	}
}

func hasSecurityScheme(components *model.Components, name string) bool {
	for _, scheme := range components.SecuritySchemes {
		if scheme.Name == name {
			return true
		}
	}

	return false
}

// findBearerScheme returns the first security scheme name whose type is
// "http" and whose scheme is "bearer" (case-insensitive), or "" if none
// exists.
func findBearerScheme(components *model.Components) string {
	for _, named := range components.SecuritySchemes {
		if named.Scheme.Type == "http" && strings.EqualFold(named.Scheme.Scheme, "bearer") {
			return named.Name
		}
	}

	return ""
}
