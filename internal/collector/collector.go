// Package collector walks a parsed Spec and selects the GET and POST
// operations apifuzz will exercise, resolving each POST's request body to
// a concrete Schema along the way.
//
// Grounded on original_source/src/collector.rs (collect_gets/collect_post/
// populate_payload) and restated in Go using the teacher's sentinel-error
// and debug.Warnings idioms.
package collector

import (
	"github.com/talav/apifuzz/debug"
	"github.com/talav/apifuzz/internal/model"
)

// Op is a single operation selected for fuzzing: its HTTP method, its path
// template, the operation metadata (security, deprecation), and — for
// POST — the resolved request body schema, if one could be found.
type Op struct {
	Path    string
	Method  string
	Op      model.Operation
	Payload *model.Schema
}

// Collect returns every eligible GET followed by every eligible POST, in
// document order within each group, plus any non-fatal warnings raised
// while resolving POST payload references.
func Collect(spec *model.Spec) ([]Op, debug.Warnings) {
	var warnings debug.Warnings

	gets := collectGets(spec)
	posts := collectPosts(spec, &warnings)

	ops := make([]Op, 0, len(gets)+len(posts))
	ops = append(ops, gets...)
	ops = append(ops, posts...)

	return ops, warnings
}

// collectGets selects every non-deprecated GET operation. Paths without a
// GET, and GETs marked deprecated, are silently skipped.
func collectGets(spec *model.Spec) []Op {
	var ops []Op

	for _, entry := range spec.Paths {
		if entry.Item == nil || entry.Item.Get == nil {
			continue
		}

		get := entry.Item.Get
		if get.Deprecated {
			continue
		}

		ops = append(ops, Op{
			Path:   entry.Path,
			Method: "GET",
			Op:     *get,
		})
	}

	return ops
}

// collectPosts selects every non-deprecated POST operation that declares a
// request body with an "application/json" media type, then resolves each
// one's payload schema.
func collectPosts(spec *model.Spec, warnings *debug.Warnings) []Op {
	var ops []Op

	for _, entry := range spec.Paths {
		if entry.Item == nil || entry.Item.Post == nil {
			continue
		}

		post := entry.Item.Post
		if post.Deprecated {
			continue
		}

		if post.RequestBody == nil {
			continue
		}

		if !hasJSONContent(post.RequestBody) {
			continue
		}

		ops = append(ops, Op{
			Path:   entry.Path,
			Method: "POST",
			Op:     *post,
		})
	}

	populatePayloads(spec, ops, warnings)

	return ops
}

func hasJSONContent(body *model.RequestBody) bool {
	for _, entry := range body.Content {
		if entry.Type == "application/json" {
			return true
		}
	}

	return false
}

// populatePayloads resolves each operation's request body to a schema
// pulled from Components. It scans every media type present on the
// request body (not just "application/json") and, matching the original
// implementation's quirk, the last resolvable $ref wins if more than one
// media type carries one. A media type whose schema is inline (not a
// $ref) is silently skipped.
//
// Every $ref pointing at a component that does not exist produces a
// warning. The operation is kept either way (its GET/POST selection
// already happened); if no media type's $ref resolves, its Payload stays
// nil and the executor issues no request for it.
func populatePayloads(spec *model.Spec, ops []Op, warnings *debug.Warnings) {
	for i := range ops {
		body := ops[i].Op.RequestBody
		if body == nil {
			continue
		}

		var resolved *model.Schema

		for _, entry := range body.Content {
			mt := entry.MediaType
			if mt == nil || mt.Schema == nil {
				continue
			}

			if mt.Schema.Ref == "" {
				continue
			}

			schema, ok := resolveRef(spec.Components, mt.Schema.Ref)
			if !ok {
				warnings.Append(debug.NewWarning(
					debug.WarnUnresolvedPayloadReference,
					ops[i].Path,
					"POST request body references a schema that was not found in components",
				))

				continue
			}

			resolved = schema
		}

		ops[i].Payload = resolved
	}
}

func resolveRef(components *model.Components, ref string) (*model.Schema, bool) {
	if components == nil {
		return nil, false
	}

	name := stripSchemaPrefix(ref)

	schema, ok := components.Schemas[name]
	if !ok {
		return nil, false
	}

	return schema, true
}

const schemaPrefix = "#/components/schemas/"

func stripSchemaPrefix(ref string) string {
	if len(ref) > len(schemaPrefix) && ref[:len(schemaPrefix)] == schemaPrefix {
		return ref[len(schemaPrefix):]
	}

	return ref
}
