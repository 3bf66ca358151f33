package rgb12

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWord(t *testing.T) {
	tables := []struct {
		color Color
		word  uint16
	}{
		{Color{0, 0, 0}, 0x0000},
		{Color{15, 15, 15}, 0x0fff},
		{Color{15, 0, 0}, 0x000f},
		{Color{0, 15, 0}, 0x00f0},
		{Color{0, 0, 15}, 0x0f00},
		{Color{1, 2, 3}, 0x0321},
	}
	for _, table := range tables {
		assert.Equal(t, table.word, table.color.Word())
		assert.Equal(t, table.color, FromWord(table.word))
	}
}

func TestFromWordIgnoresReserved(t *testing.T) {
	assert.Equal(t, Color{15, 15, 15}, FromWord(0xffff))
}

func TestFromColor(t *testing.T) {
	tables := []struct {
		in   color.Color
		want Color
	}{
		{color.RGBA{255, 255, 255, 255}, Color{15, 15, 15}},
		{color.RGBA{0, 0, 0, 255}, Color{0, 0, 0}},
		{color.RGBA{255, 0, 0, 255}, Color{15, 0, 0}},
		{color.RGBA{128, 128, 128, 255}, Color{8, 8, 8}},
	}
	for _, table := range tables {
		assert.Equal(t, table.want, FromColor(table.in))
	}
}

func TestRGBA(t *testing.T) {
	r, g, b, a := Color{15, 0, 8}.RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0x0000), g)
	assert.Equal(t, uint32(0x8888), b)
	assert.Equal(t, uint32(0xffff), a)
}

func TestLinearizeRoundTrip(t *testing.T) {
	for _, v := range []Vector{
		{0, 0, 0},
		{1, 1, 1},
		{0.5, 0.25, 0.75},
		{0.02, 0.02, 0.02}, // below the linear segment knee
	} {
		got := Delinearize(Linearize(v))
		for ch := 0; ch < 3; ch++ {
			assert.InDelta(t, v[ch], got[ch], 1e-9)
		}
	}
}

func TestLinearizeDarkens(t *testing.T) {
	v := Linearize(Vector{0.5, 0.5, 0.5})
	assert.InDelta(t, 0.2140, v[0], 1e-3)
}

func TestFromVector(t *testing.T) {
	assert.Equal(t, Color{15, 0, 8}, FromVector(Vector{1, 0, 8.0 / 15}, false))
	assert.Equal(t, Color{0, 0, 0}, FromVector(Vector{-0.5, 0, 0}, false))
	assert.Equal(t, Color{15, 15, 15}, FromVector(Vector{2, 2, 2}, false))
}

func TestVectorRoundTrip(t *testing.T) {
	for _, linear := range []bool{false, true} {
		for r := uint8(0); r < Depth; r++ {
			c := Color{r, 15 - r, r}
			assert.Equal(t, c, FromVector(c.Vector(linear), linear))
		}
	}
}

func TestNearest(t *testing.T) {
	pal := []Vector{
		{0, 0, 0},
		{1, 0, 0},
		{0, 0, 1},
	}

	i, d := Nearest(Vector{0.9, 0, 0}, pal)
	assert.Equal(t, 1, i)
	assert.InDelta(t, 0.01, d, 1e-9)

	i, _ = Nearest(Vector{0.1, 0.1, 0.1}, pal)
	assert.Equal(t, 0, i)
}

func TestNearestTiesBreakLow(t *testing.T) {
	pal := []Vector{
		{0, 0, 0},
		{1, 0, 0},
		{1, 0, 0},
	}
	i, _ := Nearest(Vector{1, 0, 0}, pal)
	assert.Equal(t, 1, i)

	// Equidistant between the first two entries.
	i, _ = Nearest(Vector{0.5, 0, 0}, pal[:2])
	assert.Equal(t, 0, i)
}

func TestPaletteKey(t *testing.T) {
	p := Palette{{1, 2, 3}, {4, 5, 6}}
	q := Palette{{1, 2, 3}, {4, 5, 6}}
	assert.Equal(t, p.Key(), q.Key())
	assert.NotEqual(t, p.Key(), Palette{{4, 5, 6}, {1, 2, 3}}.Key())
}
