package quantize

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodgit/shr/rgb12"
)

func solidRow(c rgb12.Color, width int) []rgb12.Vector {
	row := make([]rgb12.Vector, width)
	for x := range row {
		row[x] = c.Vector(false)
	}
	return row
}

// noisyRows builds a deterministic image with plenty of distinct colors
// per scanline.
func noisyRows(height, width int) [][]rgb12.Vector {
	seed := uint32(1)
	rows := make([][]rgb12.Vector, height)
	for y := range rows {
		row := make([]rgb12.Vector, width)
		for x := range row {
			seed = seed*1664525 + 1013904223
			c := rgb12.Color{
				R: uint8(seed >> 8 & 0x0f),
				G: uint8(seed >> 12 & 0x0f),
				B: uint8(seed >> 16 & 0x0f),
			}
			row[x] = c.Vector(false)
		}
		rows[y] = row
	}
	return rows
}

func TestMedianCutSolid(t *testing.T) {
	p := MedianCut(solidRow(rgb12.Color{R: 12, G: 3, B: 7}, 320), 16, false)
	require.Len(t, p, 1)
	assert.Equal(t, rgb12.Color{R: 12, G: 3, B: 7}, p[0])
}

func TestMedianCutTwoColors(t *testing.T) {
	row := append(solidRow(rgb12.Color{R: 15, G: 0, B: 0}, 160), solidRow(rgb12.Color{R: 0, G: 0, B: 15}, 160)...)
	p := MedianCut(row, 16, false)
	require.Len(t, p, 2)
	assert.Contains(t, p, rgb12.Color{R: 15, G: 0, B: 0})
	assert.Contains(t, p, rgb12.Color{R: 0, G: 0, B: 15})
}

func TestMedianCutReduces(t *testing.T) {
	// 64 distinct grays must reduce to no more than 16 colors.
	row := make([]rgb12.Vector, 64)
	for i := range row {
		g := float64(i) / 63
		row[i] = rgb12.Vector{g, g, g}
	}
	p := MedianCut(row, 16, false)
	require.NotEmpty(t, p)
	assert.True(t, len(p) <= 16)
}

func TestMedianCutDeduplicates(t *testing.T) {
	// Both values round to the same 12-bit level.
	row := []rgb12.Vector{{0.50, 0.50, 0.50}, {0.51, 0.51, 0.51}}
	p := MedianCut(row, 16, false)
	assert.Len(t, p, 1)
}

func TestMedianCutEmpty(t *testing.T) {
	assert.Nil(t, MedianCut(nil, 16, false))
}

func TestMedianCutDeterministic(t *testing.T) {
	rows := noisyRows(1, 320)
	assert.Equal(t, MedianCut(rows[0], 16, false), MedianCut(rows[0], 16, false))
}

func assertValid(t *testing.T, a *Assignment, height int) {
	t.Helper()
	require.Len(t, a.SCB, height)
	require.Len(t, a.Fresh, height)
	require.True(t, len(a.Palettes) <= MaxPalettes)
	for _, id := range a.SCB {
		require.True(t, int(id) < len(a.Palettes))
	}
	for _, p := range a.Palettes {
		require.True(t, len(p) >= 1 && len(p) <= ColorsPerPalette)
	}
}

func TestPerScanlineSolidImage(t *testing.T) {
	rows := make([][]rgb12.Vector, 200)
	for y := range rows {
		rows[y] = solidRow(rgb12.Color{R: 4, G: 8, B: 12}, 320)
	}

	a, err := NewPerScanline(false).Allocate(rows)
	require.NoError(t, err)
	assertValid(t, a, 200)

	assert.Len(t, a.Palettes, 1)
	for y, id := range a.SCB {
		assert.Equal(t, uint8(0), id)
		assert.Equal(t, y == 0, a.Fresh[y])
	}
}

func TestPerScanlineCap(t *testing.T) {
	// 200 scanlines of 200 different solid colors would want 200
	// palettes; merging must bring that within the hardware budget.
	rows := make([][]rgb12.Vector, 200)
	for y := range rows {
		c := rgb12.Color{R: uint8(y % 16), G: uint8(y / 16 % 16), B: uint8(y % 13)}
		rows[y] = solidRow(c, 320)
	}

	a, err := NewPerScanline(false).Allocate(rows)
	require.NoError(t, err)
	assertValid(t, a, 200)
	assert.True(t, len(a.Palettes) <= MaxPalettes)
}

func TestOptimizedInfiniteThreshold(t *testing.T) {
	rows := noisyRows(200, 320)

	a, err := NewOptimized(math.Inf(1), false).Allocate(rows)
	require.NoError(t, err)
	assertValid(t, a, 200)

	assert.Len(t, a.Palettes, 1)
	for y, id := range a.SCB {
		assert.Equal(t, uint8(0), id)
		assert.Equal(t, y == 0, a.Fresh[y])
	}
}

func TestOptimizedZeroThresholdMatchesPerScanline(t *testing.T) {
	rows := noisyRows(200, 320)

	per, err := NewPerScanline(false).Allocate(rows)
	require.NoError(t, err)

	opt, err := NewOptimized(0, false).Allocate(rows)
	require.NoError(t, err)

	assert.Equal(t, per.SCB, opt.SCB)
	assert.Equal(t, per.Palettes, opt.Palettes)
}

func TestOptimizedReusesAcrossConstantRegion(t *testing.T) {
	// Solid top half, varied bottom half: the solid region must share
	// one palette under a generous threshold.
	rows := noisyRows(200, 320)
	for y := 0; y < 100; y++ {
		rows[y] = solidRow(rgb12.Color{R: 2, G: 2, B: 2}, 320)
	}

	a, err := NewOptimized(0.5, false).Allocate(rows)
	require.NoError(t, err)
	assertValid(t, a, 200)

	for y := 1; y < 100; y++ {
		assert.Equal(t, a.SCB[0], a.SCB[y])
		assert.False(t, a.Fresh[y])
	}
}

func TestGlobalFewColors(t *testing.T) {
	// Three distinct colors anywhere in frame collapse to a single
	// shared palette.
	rows := make([][]rgb12.Vector, 200)
	colors := []rgb12.Color{{R: 15, G: 0, B: 0}, {R: 0, G: 15, B: 0}, {R: 0, G: 0, B: 15}}
	for y := range rows {
		row := make([]rgb12.Vector, 320)
		for x := range row {
			row[x] = colors[(x+y)%3].Vector(false)
		}
		rows[y] = row
	}

	a, err := NewGlobal(false).Allocate(rows)
	require.NoError(t, err)
	assertValid(t, a, 200)

	referenced := make(map[uint8]struct{})
	for _, id := range a.SCB {
		referenced[id] = struct{}{}
	}
	assert.True(t, len(referenced) <= 3)

	require.Len(t, a.Palettes, 1)
	assert.Len(t, a.Palettes[0], 3)
}

func TestGlobalManyColors(t *testing.T) {
	rows := noisyRows(200, 320)

	a, err := NewGlobal(false).Allocate(rows)
	require.NoError(t, err)
	assertValid(t, a, 200)
	assert.True(t, len(a.Palettes) > 1)
}

func TestSimilaritySymmetric(t *testing.T) {
	a := rgb12.Palette{{R: 0, G: 0, B: 0}, {R: 15, G: 15, B: 15}}
	b := rgb12.Palette{{R: 1, G: 1, B: 1}, {R: 14, G: 14, B: 14}}
	assert.Equal(t, similarity(a, b, false), similarity(b, a, false))
	assert.Equal(t, 0.0, similarity(a, a, false))
}
