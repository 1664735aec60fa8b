package vmax

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadMaterialsMapsFields(t *testing.T) {
	root := map[string]any{
		"materials": []any{
			map[string]any{
				"mi":  "Matte",
				"tc":  0.25,
				"sic": 1.5,
				"rc":  0.8,
				"mc":  0.1,
				"sh":  false,
			},
			map[string]any{"mi": "Shiny"},
		},
	}
	mats := ReadMaterials(root, nil)

	assert.Equal(t, "Matte", mats[0].Name)
	assert.Equal(t, 0.25, mats[0].Transmission)
	assert.Equal(t, 1.5, mats[0].Emission)
	assert.Equal(t, 0.8, mats[0].Roughness)
	assert.Equal(t, 0.1, mats[0].Metalness)
	assert.False(t, mats[0].EnableShadows)

	// Missing fields default to zero except shadows.
	assert.Equal(t, "Shiny", mats[1].Name)
	assert.Zero(t, mats[1].Roughness)
	assert.True(t, mats[1].EnableShadows)

	// Untouched slots stay at defaults.
	for i := 2; i < NumMaterial; i++ {
		assert.Empty(t, mats[i].Name)
		assert.True(t, mats[i].EnableShadows)
	}
}

func TestReadMaterialsIntegerReals(t *testing.T) {
	// The tree decoder may surface whole-number reals as integers.
	root := map[string]any{
		"materials": []any{
			map[string]any{"mi": "Emit", "sic": uint64(2)},
		},
	}
	mats := ReadMaterials(root, nil)
	assert.Equal(t, 2.0, mats[0].Emission)
}

func TestReadMaterialsMissingArray(t *testing.T) {
	warned := false
	mats := ReadMaterials(map[string]any{}, func(string, ...any) { warned = true })
	assert.True(t, warned)
	for i := range mats {
		assert.True(t, mats[i].EnableShadows)
	}
}

func TestReadMaterialsExtraEntriesIgnored(t *testing.T) {
	items := make([]any, 10)
	for i := range items {
		items[i] = map[string]any{"mi": "m"}
	}
	mats := ReadMaterials(map[string]any{"materials": items}, nil)
	assert.Equal(t, "m", mats[NumMaterial-1].Name)
}
