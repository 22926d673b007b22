// Package executor issues the HTTP requests a collected operation calls
// for: a single GET, or one POST per digger/shuffler-generated payload
// variant plus a trailing empty-object variant.
//
// Grounded on original_source/src/lib.rs (drill_get_endpoint /
// drill_post_endpoint).
package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/talav/apifuzz/internal/collector"
	"github.com/talav/apifuzz/internal/digger"
	"github.com/talav/apifuzz/internal/model"
	"github.com/talav/apifuzz/internal/shuffler"
)

// Bearer carries the scheme name apifuzz recognizes as bearer auth and the
// token value to send when an operation's security requirements name it.
// Either field may be empty, in which case no Authorization header is ever
// attached.
type Bearer struct {
	SchemeName string
	Token      string
}

// Execute runs op and returns one CallResult per request it issued.
//
// For a GET, this is always exactly one result. For a POST whose payload
// could not be resolved by the collector, this returns no results (and no
// error) — there is nothing to fuzz, matching the original's "no payload
// found, skip" behavior. For a POST with a payload, this issues one request
// per shuffler variant plus a final request with an empty JSON object.
func Execute(ctx context.Context, client *http.Client, baseURL string, op collector.Op, components *model.Components, bearer Bearer) ([]model.CallResult, error) {
	switch op.Method {
	case "GET":
		return executeGet(ctx, client, baseURL, op, bearer)
	case "POST":
		return executePost(ctx, client, baseURL, op, components, bearer)
	default:
		slog.Warn("executor: unsupported method", "method", op.Method, "path", op.Path)
		return nil, nil
	}
}

func executeGet(ctx context.Context, client *http.Client, baseURL string, op collector.Op, bearer Bearer) ([]model.CallResult, error) {
	url := baseURL + op.Path

	slog.Info("executor: GET", "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("executor: build GET request: %w", err)
	}

	attachBearer(req, op.Op.Security, bearer)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executor: GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	return []model.CallResult{{
		Path:       url,
		StatusCode: resp.StatusCode,
	}}, nil
}

func executePost(ctx context.Context, client *http.Client, baseURL string, op collector.Op, components *model.Components, bearer Bearer) ([]model.CallResult, error) {
	if op.Payload == nil {
		slog.Warn("executor: no payload found for POST", "path", op.Path)
		return nil, nil
	}

	url := baseURL + op.Path

	root, err := digger.Dig(op.Payload, components)
	if err != nil {
		slog.Error("executor: error digging the payload", "path", op.Path, "error", err)
		return nil, nil
	}

	variants := shuffler.Shuffle(root)
	variants = append(variants, shuffler.Variant{})

	results := make([]model.CallResult, 0, len(variants))

	for _, variant := range variants {
		body, err := json.Marshal(variant)
		if err != nil {
			return nil, fmt.Errorf("executor: marshal payload: %w", err)
		}

		slog.Info("executor: payload", "body", string(body))

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("executor: build POST request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		attachBearer(req, op.Op.Security, bearer)

		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("executor: POST %s: %w", url, err)
		}

		results = append(results, model.CallResult{
			Payload:    string(body),
			Path:       url,
			StatusCode: resp.StatusCode,
		})

		resp.Body.Close()
	}

	return results, nil
}

// attachBearer sets the Authorization header when bearer.Token is set and
// any of op's security requirement groups names bearer.SchemeName. It
// iterates every group instead of stopping at the first match, mirroring
// the original implementation; http.Header.Set collapses repeats, so a
// scheme named in more than one group still produces a single header.
func attachBearer(req *http.Request, security []model.SecurityRequirement, bearer Bearer) {
	if bearer.Token == "" || bearer.SchemeName == "" {
		return
	}

	for _, requirement := range security {
		for name := range requirement {
			if name == bearer.SchemeName {
				req.Header.Set("Authorization", "Bearer "+bearer.Token)
			}
		}
	}
}
