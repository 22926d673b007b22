// Package httpclient constructs the *http.Client instances the executor
// uses to issue requests. One instance per operation is acceptable — the
// original implementation constructs a fresh reqwest::Client per call — so
// this factory is deliberately cheap and carries no connection-pool
// sharing concerns.
package httpclient

import (
	"net/http"

	cleanhttp "github.com/hashicorp/go-cleanhttp"
)

// New returns an *http.Client backed by a fresh, unshared transport. Using
// cleanhttp instead of http.DefaultClient avoids inheriting process-wide
// proxy/env mutations another package may have applied to the default
// transport.
func New() *http.Client {
	return cleanhttp.DefaultClient()
}
