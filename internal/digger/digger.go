// Package digger builds a Property Tree from a request body schema: a tree
// of Node values mirroring the schema's declared object nesting, with each
// leaf property resolved to its example value.
//
// Grounded on original_source/src/digger.rs. The Rust Node uses a
// Rc<RefCell<..>> parent back-link purely so construction can pop back out
// of a finished subtree; this Go port gets the same discipline from plain
// recursion (each call appends to the node it was handed) and records
// Parent as a plain pointer when a child is attached, which costs nothing
// extra and lets callers walk upward too.
package digger

import (
	"errors"
	"fmt"

	"github.com/talav/apifuzz/internal/model"
)

// Sentinel errors for the conditions the original implementation treats as
// fatal for a single POST operation's payload.
var (
	// ErrNoExample indicates an inline leaf property has no declared example.
	ErrNoExample = errors.New("digger: property has no example")

	// ErrUnsupportedSchemaKind indicates the root or a referenced schema is
	// not an object schema.
	ErrUnsupportedSchemaKind = errors.New("digger: unsupported schema kind")

	// ErrUnresolvedReference indicates a property's $ref does not resolve
	// to a component schema.
	ErrUnresolvedReference = errors.New("digger: unresolved schema reference")

	// ErrCyclicReference indicates a $ref chain refers back to a schema
	// already being dug, which would otherwise recurse forever. The
	// original Rust implementation has no such guard; this is a deliberate
	// addition (see SPEC_FULL.md, Digger module).
	ErrCyclicReference = errors.New("digger: cyclic schema reference")
)

// Node is a single property in the tree built from a request body schema.
// Leaf nodes carry Value (their declared example); properties given by a
// $ref (always to an object schema) carry Children instead and leave Value
// nil.
type Node struct {
	Name     string
	Value    any
	Parent   *Node
	Children []*Node
}

// Dig walks schema (which must be an object schema) and returns the root of
// its Property Tree. The returned root's Name is "root" and its Value is
// always nil; its Children mirror schema's declared properties in order.
func Dig(schema *model.Schema, components *model.Components) (*Node, error) {
	root := &Node{Name: "root"}

	d := &digger{components: components, visited: map[string]bool{}}
	if err := d.dig(root, schema); err != nil {
		return nil, err
	}

	return root, nil
}

type digger struct {
	components *model.Components
	visited    map[string]bool
}

func (d *digger) dig(into *Node, schema *model.Schema) error {
	if schema.Kind != model.KindObject {
		return fmt.Errorf("%w: %q", ErrUnsupportedSchemaKind, schema.Kind)
	}

	for _, prop := range schema.Properties {
		if prop.Schema.Ref != "" {
			if err := d.digReference(into, prop.Name, prop.Schema.Ref); err != nil {
				return err
			}

			continue
		}

		if !prop.Schema.HasExample {
			return fmt.Errorf("%w: property %q", ErrNoExample, prop.Name)
		}

		into.Children = append(into.Children, &Node{
			Name:   prop.Name,
			Value:  prop.Schema.Example,
			Parent: into,
		})
	}

	return nil
}

func (d *digger) digReference(into *Node, propName, ref string) error {
	name, schema, ok := resolveRef(d.components, ref)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnresolvedReference, ref)
	}

	if d.visited[name] {
		return fmt.Errorf("%w: %s", ErrCyclicReference, ref)
	}

	if schema.Kind != model.KindObject {
		return fmt.Errorf("%w: referenced schema %q", ErrUnsupportedSchemaKind, name)
	}

	d.visited[name] = true
	defer delete(d.visited, name)

	child := &Node{Name: propName, Parent: into}
	into.Children = append(into.Children, child)

	return d.dig(child, schema)
}

const schemaPrefix = "#/components/schemas/"

func resolveRef(components *model.Components, ref string) (string, *model.Schema, bool) {
	if components == nil {
		return "", nil, false
	}

	name := ref
	if len(ref) > len(schemaPrefix) && ref[:len(schemaPrefix)] == schemaPrefix {
		name = ref[len(schemaPrefix):]
	}

	schema, ok := components.Schemas[name]
	if !ok {
		return "", nil, false
	}

	return name, schema, true
}
