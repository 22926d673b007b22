// Package docparse turns a YAML (or JSON, which is valid YAML) OpenAPI
// document into an internal/model.Spec. It is an ambient collaborator: the
// core never depends on it directly (collector/digger/shuffler/executor
// all operate on internal/model), but a runnable module needs something
// to build that model from a file on disk.
//
// Grounded on original_source/src/main.rs, which reads a file path from
// argv and calls serde_yaml::from_str directly into the openapiv3 crate's
// own OpenAPI struct. Here the decode goes through an intermediate
// document shape first because Go's map[string]any can't preserve the
// declared order of a YAML mapping's keys, and declared property order is
// load-bearing for the digger and shuffler (see SPEC_FULL.md). goccy/go-yaml
// decodes a mapping into an ast.MappingNode whose Values preserve source
// order, which is walked directly below instead of decoding through
// encoding/json-style struct tags.
package docparse

import (
	"fmt"

	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"

	"github.com/talav/apifuzz/internal/model"
)

// Parse decodes data as an OpenAPI document and projects it into a Spec.
func Parse(data []byte) (*model.Spec, error) {
	file, err := parser.ParseBytes(data, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("docparse: parse document: %w", err)
	}

	if len(file.Docs) == 0 {
		return nil, fmt.Errorf("docparse: document is empty")
	}

	root, ok := file.Docs[0].Body.(*ast.MappingNode)
	if !ok {
		return nil, fmt.Errorf("docparse: document root is not a mapping")
	}

	spec := &model.Spec{}

	for _, entry := range root.Values {
		key := scalarString(entry.Key)

		switch key {
		case "openapi":
			spec.OpenAPI = scalarString(entry.Value)
		case "servers":
			spec.Servers = parseServers(entry.Value)
		case "paths":
			spec.Paths = parsePaths(entry.Value)
		case "components":
			spec.Components = parseComponents(entry.Value)
		}
	}

	return spec, nil
}

func parseServers(node ast.Node) []model.Server {
	seq, ok := node.(*ast.SequenceNode)
	if !ok {
		return nil
	}

	var servers []model.Server

	for _, item := range seq.Values {
		m, ok := item.(*ast.MappingNode)
		if !ok {
			continue
		}

		var server model.Server

		for _, entry := range m.Values {
			switch scalarString(entry.Key) {
			case "url":
				server.URL = scalarString(entry.Value)
			case "variables":
				server.Variables = parseServerVariables(entry.Value)
			}
		}

		servers = append(servers, server)
	}

	return servers
}

func parseServerVariables(node ast.Node) []model.ServerVariable {
	m, ok := node.(*ast.MappingNode)
	if !ok {
		return nil
	}

	vars := make([]model.ServerVariable, 0, len(m.Values))

	for _, entry := range m.Values {
		v := model.ServerVariable{Name: scalarString(entry.Key)}

		varNode, ok := entry.Value.(*ast.MappingNode)
		if !ok {
			vars = append(vars, v)
			continue
		}

		for _, ve := range varNode.Values {
			switch scalarString(ve.Key) {
			case "default":
				v.Default = scalarString(ve.Value)
			case "enum":
				v.Enum = scalarSequence(ve.Value)
			}
		}

		vars = append(vars, v)
	}

	return vars
}

func parsePaths(node ast.Node) []model.PathEntry {
	m, ok := node.(*ast.MappingNode)
	if !ok {
		return nil
	}

	entries := make([]model.PathEntry, 0, len(m.Values))

	for _, entry := range m.Values {
		path := scalarString(entry.Key)

		itemNode, ok := entry.Value.(*ast.MappingNode)
		if !ok {
			continue
		}

		item := &model.PathItem{}

		for _, op := range itemNode.Values {
			switch scalarString(op.Key) {
			case "get":
				item.Get = parseOperation(op.Value)
			case "post":
				item.Post = parseOperation(op.Value)
			}
		}

		entries = append(entries, model.PathEntry{Path: path, Item: item})
	}

	return entries
}

func parseOperation(node ast.Node) *model.Operation {
	m, ok := node.(*ast.MappingNode)
	if !ok {
		return nil
	}

	op := &model.Operation{}

	for _, entry := range m.Values {
		switch scalarString(entry.Key) {
		case "operationId":
			op.OperationID = scalarString(entry.Value)
		case "deprecated":
			op.Deprecated = scalarString(entry.Value) == "true"
		case "security":
			op.Security = parseSecurityRequirements(entry.Value)
		case "requestBody":
			op.RequestBody = parseRequestBody(entry.Value)
		}
	}

	return op
}

func parseSecurityRequirements(node ast.Node) []model.SecurityRequirement {
	seq, ok := node.(*ast.SequenceNode)
	if !ok {
		return nil
	}

	var reqs []model.SecurityRequirement

	for _, item := range seq.Values {
		m, ok := item.(*ast.MappingNode)
		if !ok {
			continue
		}

		req := model.SecurityRequirement{}

		for _, entry := range m.Values {
			name := scalarString(entry.Key)
			req[name] = scalarSequence(entry.Value)
		}

		reqs = append(reqs, req)
	}

	return reqs
}

func parseRequestBody(node ast.Node) *model.RequestBody {
	m, ok := node.(*ast.MappingNode)
	if !ok {
		return nil
	}

	body := &model.RequestBody{}

	for _, entry := range m.Values {
		switch scalarString(entry.Key) {
		case "required":
			body.Required = scalarString(entry.Value) == "true"
		case "content":
			contentNode, ok := entry.Value.(*ast.MappingNode)
			if !ok {
				continue
			}

			for _, mt := range contentNode.Values {
				body.Content = append(body.Content, model.MediaTypeEntry{
					Type:      scalarString(mt.Key),
					MediaType: parseMediaType(mt.Value),
				})
			}
		}
	}

	return body
}

func parseMediaType(node ast.Node) *model.MediaType {
	m, ok := node.(*ast.MappingNode)
	if !ok {
		return &model.MediaType{}
	}

	mt := &model.MediaType{}

	for _, entry := range m.Values {
		if scalarString(entry.Key) == "schema" {
			mt.Schema = parseSchema(entry.Value)
		}
	}

	return mt
}

func parseComponents(node ast.Node) *model.Components {
	m, ok := node.(*ast.MappingNode)
	if !ok {
		return nil
	}

	components := &model.Components{
		Schemas: map[string]*model.Schema{},
	}

	for _, entry := range m.Values {
		switch scalarString(entry.Key) {
		case "schemas":
			schemasNode, ok := entry.Value.(*ast.MappingNode)
			if !ok {
				continue
			}

			for _, s := range schemasNode.Values {
				components.Schemas[scalarString(s.Key)] = parseSchema(s.Value)
			}
		case "securitySchemes":
			schemesNode, ok := entry.Value.(*ast.MappingNode)
			if !ok {
				continue
			}

			for _, s := range schemesNode.Values {
				components.SecuritySchemes = append(components.SecuritySchemes, model.NamedSecurityScheme{
					Name:   scalarString(s.Key),
					Scheme: parseSecurityScheme(s.Value),
				})
			}
		}
	}

	return components
}

func parseSecurityScheme(node ast.Node) model.SecurityScheme {
	m, ok := node.(*ast.MappingNode)
	if !ok {
		return model.SecurityScheme{}
	}

	scheme := model.SecurityScheme{}

	for _, entry := range m.Values {
		switch scalarString(entry.Key) {
		case "type":
			scheme.Type = scalarString(entry.Value)
		case "scheme":
			scheme.Scheme = scalarString(entry.Value)
		case "name":
			scheme.Name = scalarString(entry.Value)
		case "in":
			scheme.In = scalarString(entry.Value)
		}
	}

	return scheme
}

// parseSchema handles the one level of $ref-vs-inline tagging the digger
// needs. Only the fields the fuzzer actually reads (type, properties,
// example, nullable) are projected; everything else in a real OpenAPI
// schema object is intentionally ignored.
func parseSchema(node ast.Node) *model.Schema {
	m, ok := node.(*ast.MappingNode)
	if !ok {
		return &model.Schema{}
	}

	schema := &model.Schema{}

	for _, entry := range m.Values {
		switch scalarString(entry.Key) {
		case "$ref":
			schema.Ref = scalarString(entry.Value)
		case "type":
			if scalarString(entry.Value) == "object" {
				schema.Kind = model.KindObject
			}
		case "nullable":
			schema.Nullable = scalarString(entry.Value) == "true"
		case "example":
			schema.Example = scalarValue(entry.Value)
			schema.HasExample = true
		case "properties":
			propsNode, ok := entry.Value.(*ast.MappingNode)
			if !ok {
				continue
			}

			for _, p := range propsNode.Values {
				schema.Properties = append(schema.Properties, model.Property{
					Name:   scalarString(p.Key),
					Schema: parseSchema(p.Value),
				})
			}
		}
	}

	return schema
}

func scalarString(node ast.Node) string {
	if s, ok := node.(*ast.StringNode); ok {
		return s.Value
	}

	return node.String()
}

func scalarValue(node ast.Node) any {
	switch n := node.(type) {
	case *ast.StringNode:
		return n.Value
	case *ast.IntegerNode:
		return n.Value
	case *ast.FloatNode:
		return n.Value
	case *ast.BoolNode:
		return n.Value
	case *ast.NullNode:
		return nil
	default:
		return node.String()
	}
}

func scalarSequence(node ast.Node) []string {
	seq, ok := node.(*ast.SequenceNode)
	if !ok {
		return nil
	}

	out := make([]string, 0, len(seq.Values))
	for _, v := range seq.Values {
		out = append(out, scalarString(v))
	}

	return out
}
