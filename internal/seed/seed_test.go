package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/tilegen/internal/model"
)

func draws(s *Seeder, name string, values ...any) []int64 {
	r := s.Rand(name, values...)
	out := make([]int64, 8)
	for i := range out {
		out[i] = r.Int63()
	}
	return out
}

func TestRand_SameKeySameStream(t *testing.T) {
	s := New("level-1")
	n := model.Vec{Z: 1}
	a := draws(s, "tex_patch", n, 64.0, 3, 7, model.TileWhite, false)

	// Drawing an unrelated stream in between must not change the result.
	_ = draws(s, "other", 1)
	b := draws(s, "tex_patch", n, 64.0, 3, 7, model.TileWhite, false)
	assert.Equal(t, a, b)

	c := draws(New("level-1"), "tex_patch", n, 64.0, 3, 7, model.TileWhite, false)
	assert.Equal(t, a, c)
}

func TestRand_DifferentKeysDiffer(t *testing.T) {
	s := New("level-1")
	base := draws(s, "tex_patch", 1, 2)

	assert.NotEqual(t, base, draws(s, "tex_patch", 2, 1))
	assert.NotEqual(t, base, draws(s, "tex_other", 1, 2))
	assert.NotEqual(t, base, draws(New("level-2"), "tex_patch", 1, 2))
	assert.NotEqual(t, draws(s, "k", true), draws(s, "k", false))
}

func TestRand_FloatRounding(t *testing.T) {
	s := New("m")
	assert.Equal(t, draws(s, "k", 1.0), draws(s, "k", 1.0000000001))
	assert.Equal(t, draws(s, "k", 0.0), draws(s, "k", -0.0))
}

func TestRand_UnsupportedTypePanics(t *testing.T) {
	assert.Panics(t, func() {
		New("m").Rand("k", []int{1})
	})
}

func TestTriangular_Range(t *testing.T) {
	r := New("tri").Rand("range")
	for i := 0; i < 1000; i++ {
		x := Triangular(r, 1, 4, 1.5)
		require.GreaterOrEqual(t, x, 1.0)
		require.LessOrEqual(t, x, 4.0)
	}
	assert.Equal(t, 2.0, Triangular(r, 2, 2, 2))
}

func TestWeightedChoice(t *testing.T) {
	r := New("wc").Rand("choice")
	counts := make([]int, 3)
	for i := 0; i < 2000; i++ {
		idx := WeightedChoice(r, []int{0, 1, 3})
		require.NotEqual(t, 0, idx, "zero weight must never be picked")
		counts[idx]++
	}
	assert.Greater(t, counts[2], counts[1])

	assert.Equal(t, -1, WeightedChoice(r, []int{0, 0}))
	assert.Equal(t, -1, WeightedChoice(r, nil))
}
