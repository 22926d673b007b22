package shuffler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talav/apifuzz/internal/digger"
	"github.com/talav/apifuzz/internal/shuffler"
)

// flatNode builds a root with three leaf children, mirroring the
// email/org/password fixture from original_source/src/testdata/post_login.yml.
func flatNode() *digger.Node {
	root := &digger.Node{Name: "root"}
	root.Children = []*digger.Node{
		{Name: "email", Value: "a@b.com", Parent: root},
		{Name: "org", Value: "acme", Parent: root},
		{Name: "password", Value: "hunter2", Parent: root},
	}

	return root
}

func TestShuffleOneLevelProperties(t *testing.T) {
	variants := shuffler.Shuffle(flatNode())

	require.Len(t, variants, 7)

	assert.Contains(t, variants[0], "email")
	assert.Contains(t, variants[1], "org")
	assert.Contains(t, variants[2], "email")
	assert.Contains(t, variants[2], "org")
	assert.Contains(t, variants[3], "password")
	assert.Contains(t, variants[6], "email")
	assert.Contains(t, variants[6], "org")
	assert.Contains(t, variants[6], "password")
}

// nestedNode builds a root with a single object-kind child "hq" that has
// five leaf children, mirroring post_info_nested_property.yml.
func nestedNode() *digger.Node {
	root := &digger.Node{Name: "root"}
	hq := &digger.Node{Name: "hq", Parent: root}
	hq.Children = []*digger.Node{
		{Name: "address", Value: "1 Infinite Loop", Parent: hq},
		{Name: "postal_code", Value: "95014", Parent: hq},
		{Name: "city", Value: "Cupertino", Parent: hq},
		{Name: "state_region", Value: "CA", Parent: hq},
		{Name: "country", Value: "US", Parent: hq},
	}
	root.Children = []*digger.Node{hq}

	return root
}

func TestShuffleOneAsObject(t *testing.T) {
	variants := shuffler.Shuffle(nestedNode())

	require.Len(t, variants, 32)

	// The sole flat combination: hq present but unexpanded (nil placeholder).
	require.Nil(t, variants[0]["hq"])

	// Every grafted variant carries an expanded hq.
	hq, ok := variants[1]["hq"].(shuffler.Variant)
	require.True(t, ok)
	assert.NotEmpty(t, hq)
}

// nestedPlusFlatNode builds a root with one leaf ("other") alongside the
// same nested "hq" object, mirroring post_info_nested_property_2.yml.
func nestedPlusFlatNode() *digger.Node {
	root := nestedNode()
	root.Children = append([]*digger.Node{{Name: "other", Value: "misc", Parent: root}}, root.Children...)

	return root
}

func TestShuffleOneStringAndOneAsObject(t *testing.T) {
	variants := shuffler.Shuffle(nestedPlusFlatNode())

	require.Len(t, variants, 96)
}
