// Package shuffler expands a digger.Node's Property Tree into every
// non-empty combination of its properties, recursing into object-valued
// children and grafting their own combinations onto every flat combination
// of the parent — not just the ones whose mask happened to select that
// child's bit. That unconditional graft is deliberate: it is what the
// original implementation does (see original_source/src/shuffler.rs) and
// is restated faithfully here, including the resulting variant counts
// (7 / 32 / 96 for the one-level, one-nested-object, and
// one-flat-plus-one-nested-object fixtures the tests exercise).
package shuffler

import "github.com/talav/apifuzz/internal/digger"

// Variant is one generated combination of property name to JSON-ready
// value. An object-kind property's value is either nil (placeholder, when
// its bit is set in a flat combination) or a nested Variant (once grafted
// from a sub-object's own combinations).
type Variant map[string]any

// Shuffle returns every combination combine would generate for node.
func Shuffle(node *digger.Node) []Variant {
	return combine(node)
}

func combine(node *digger.Node) []Variant {
	type leaf struct {
		name  string
		value any
	}

	var leaves []leaf
	var subVariants []struct {
		name     string
		variants []Variant
	}

	for _, child := range node.Children {
		leaves = append(leaves, leaf{name: child.Name, value: child.Value})

		if len(child.Children) > 0 {
			subVariants = append(subVariants, struct {
				name     string
				variants []Variant
			}{name: child.Name, variants: combine(child)})
		}
	}

	n := len(leaves)
	total := (1 << n) - 1

	var combs []Variant
	for mask := 1; mask <= total; mask++ {
		v := make(Variant, n)
		for i, l := range leaves {
			if mask&(1<<i) == 0 {
				continue
			}

			v[l.name] = l.value
		}

		combs = append(combs, v)
	}

	var grafted []Variant
	for _, base := range combs {
		for _, sub := range subVariants {
			for _, variant := range sub.variants {
				merged := make(Variant, len(base)+1)
				for k, v := range base {
					merged[k] = v
				}

				merged[sub.name] = variant
				grafted = append(grafted, merged)
			}
		}
	}

	return append(combs, grafted...)
}
