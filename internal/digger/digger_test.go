package digger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talav/apifuzz/internal/digger"
	"github.com/talav/apifuzz/internal/model"
)

func leafSchema(example any) *model.Schema {
	return &model.Schema{Kind: model.KindOther, Example: example, HasExample: true}
}

func TestDigFlatLevel(t *testing.T) {
	schema := &model.Schema{
		Kind: model.KindObject,
		Properties: []model.Property{
			{Name: "email", Schema: leafSchema("a@b.com")},
			{Name: "org", Schema: leafSchema("acme")},
			{Name: "password", Schema: leafSchema("hunter2")},
		},
	}

	root, err := digger.Dig(schema, nil)
	require.NoError(t, err)
	require.Len(t, root.Children, 3)
	assert.Equal(t, "email", root.Children[0].Name)
	assert.Equal(t, "org", root.Children[1].Name)
	assert.Equal(t, "password", root.Children[2].Name)
}

func TestDigNestedReference(t *testing.T) {
	components := &model.Components{
		Schemas: map[string]*model.Schema{
			"HQ": {
				Kind: model.KindObject,
				Properties: []model.Property{
					{Name: "address", Schema: leafSchema("1 Infinite Loop")},
					{Name: "postal_code", Schema: leafSchema("95014")},
					{Name: "city", Schema: leafSchema("Cupertino")},
					{Name: "state_region", Schema: leafSchema("CA")},
					{Name: "country", Schema: leafSchema("US")},
				},
			},
		},
	}

	schema := &model.Schema{
		Kind: model.KindObject,
		Properties: []model.Property{
			{Name: "hq", Schema: &model.Schema{Ref: "#/components/schemas/HQ"}},
		},
	}

	root, err := digger.Dig(schema, components)
	require.NoError(t, err)
	require.Len(t, root.Children, 1)

	hq := root.Children[0]
	assert.Equal(t, "hq", hq.Name)
	require.Len(t, hq.Children, 5)
	assert.Equal(t, "address", hq.Children[0].Name)
	assert.Equal(t, "country", hq.Children[4].Name)
}

func TestDigNestedWithSimpleAlong(t *testing.T) {
	components := &model.Components{
		Schemas: map[string]*model.Schema{
			"HQ": {
				Kind: model.KindObject,
				Properties: []model.Property{
					{Name: "address", Schema: leafSchema("1 Infinite Loop")},
				},
			},
		},
	}

	schema := &model.Schema{
		Kind: model.KindObject,
		Properties: []model.Property{
			{Name: "hq", Schema: &model.Schema{Ref: "#/components/schemas/HQ"}},
			{Name: "other", Schema: leafSchema("misc")},
		},
	}

	root, err := digger.Dig(schema, components)
	require.NoError(t, err)
	require.Len(t, root.Children, 2)
	assert.Equal(t, "hq", root.Children[0].Name)
	assert.Equal(t, "other", root.Children[1].Name)
}

func TestDigMissingExampleIsError(t *testing.T) {
	schema := &model.Schema{
		Kind: model.KindObject,
		Properties: []model.Property{
			{Name: "email", Schema: &model.Schema{Kind: model.KindOther}},
		},
	}

	_, err := digger.Dig(schema, nil)
	assert.ErrorIs(t, err, digger.ErrNoExample)
}

func TestDigInlineObjectPropertyWithoutExampleIsError(t *testing.T) {
	// An object-kind property declared inline (no $ref) is not recursed
	// into: it is treated the same as any other inline schema, a leaf that
	// requires an example.
	schema := &model.Schema{
		Kind: model.KindObject,
		Properties: []model.Property{
			{Name: "hq", Schema: &model.Schema{
				Kind: model.KindObject,
				Properties: []model.Property{
					{Name: "address", Schema: leafSchema("1 Infinite Loop")},
				},
			}},
		},
	}

	_, err := digger.Dig(schema, nil)
	assert.ErrorIs(t, err, digger.ErrNoExample)
}

func TestDigUnresolvedReferenceIsError(t *testing.T) {
	schema := &model.Schema{
		Kind: model.KindObject,
		Properties: []model.Property{
			{Name: "hq", Schema: &model.Schema{Ref: "#/components/schemas/Missing"}},
		},
	}

	_, err := digger.Dig(schema, &model.Components{Schemas: map[string]*model.Schema{}})
	assert.ErrorIs(t, err, digger.ErrUnresolvedReference)
}

func TestDigCyclicReferenceIsError(t *testing.T) {
	components := &model.Components{Schemas: map[string]*model.Schema{}}
	components.Schemas["A"] = &model.Schema{
		Kind: model.KindObject,
		Properties: []model.Property{
			{Name: "a", Schema: &model.Schema{Ref: "#/components/schemas/A"}},
		},
	}

	_, err := digger.Dig(components.Schemas["A"], components)
	assert.ErrorIs(t, err, digger.ErrCyclicReference)
}

func TestDigUnsupportedSchemaKindIsError(t *testing.T) {
	_, err := digger.Dig(&model.Schema{Kind: model.KindOther}, nil)
	assert.ErrorIs(t, err, digger.ErrUnsupportedSchemaKind)
}
