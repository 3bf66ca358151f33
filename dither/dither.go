/*
Package dither maps scanline pixels onto an assigned palette, optionally
spreading quantization error to neighboring pixels.

Every algorithm works on one scanline at a time; adjacent scanlines may
use different palettes so diffused error never crosses a scanline
boundary. Within a scanline pixels are processed strictly left to right,
which is part of the error diffusion contract: permuting the pixel order
changes the output.
*/
package dither

import (
	"fmt"

	"github.com/bodgit/shr/rgb12"
)

// Ditherer maps one scanline of working-space pixels onto a palette,
// returning one palette index per pixel. Implementations carry no state
// between calls and are safe for concurrent use across scanlines.
type Ditherer interface {
	// Scanline dithers the scanline with index y against the palette,
	// given as working-space vectors. y only matters to
	// position-dependent algorithms.
	Scanline(y int, row []rgb12.Vector, palette []rgb12.Vector) ([]uint8, error)
}

// None maps every pixel to its nearest palette color.
type None struct{}

// Scanline implements the Ditherer interface.
func (None) Scanline(_ int, row []rgb12.Vector, palette []rgb12.Vector) ([]uint8, error) {
	if len(palette) == 0 {
		return nil, errEmptyPalette
	}
	out := make([]uint8, len(row))
	for x, v := range row {
		i, _ := rgb12.Nearest(v, palette)
		out[x] = uint8(i)
	}
	return out, nil
}

var errEmptyPalette = fmt.Errorf("dither: empty palette")

// amplitude of the ordered dither threshold offset in working-space
// units; 32 levels out of 255 matches the usual Bayer strength.
const orderedAmplitude = 32.0 / 255.0

// Ordered applies a Bayer threshold matrix to each pixel before the
// nearest color search. It is stateless and order-independent.
type Ordered struct {
	matrix [][]float64
	size   int
}

// NewOrdered returns an ordered Ditherer using a Bayer matrix of the
// given size, one of 2, 4 or 8.
func NewOrdered(size int) (*Ordered, error) {
	m, err := bayer(size)
	if err != nil {
		return nil, err
	}
	return &Ordered{matrix: m, size: size}, nil
}

func bayer(n int) ([][]float64, error) {
	switch n {
	case 2:
		return [][]float64{
			{0.0 / 4, 2.0 / 4},
			{3.0 / 4, 1.0 / 4},
		}, nil
	case 4:
		return [][]float64{
			{0.0 / 16, 8.0 / 16, 2.0 / 16, 10.0 / 16},
			{12.0 / 16, 4.0 / 16, 14.0 / 16, 6.0 / 16},
			{3.0 / 16, 11.0 / 16, 1.0 / 16, 9.0 / 16},
			{15.0 / 16, 7.0 / 16, 13.0 / 16, 5.0 / 16},
		}, nil
	case 8:
		// Recursive construction from the 4x4 matrix. The quadrant
		// offsets are added after the base matrix is normalized, so
		// entries in the lower and right quadrants exceed one.
		m4, _ := bayer(4)
		m8 := make([][]float64, 8)
		for y := range m8 {
			m8[y] = make([]float64, 8)
		}
		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				m8[y][x] = m4[y][x]
				m8[y][x+4] = m4[y][x] + 2.0/4
				m8[y+4][x] = m4[y][x] + 3.0/4
				m8[y+4][x+4] = m4[y][x] + 1.0/4
			}
		}
		return m8, nil
	default:
		return nil, fmt.Errorf("dither: unsupported Bayer matrix size %d", n)
	}
}

// Scanline implements the Ditherer interface.
func (d *Ordered) Scanline(y int, row []rgb12.Vector, palette []rgb12.Vector) ([]uint8, error) {
	if len(palette) == 0 {
		return nil, errEmptyPalette
	}
	out := make([]uint8, len(row))
	for x, v := range row {
		t := (d.matrix[y%d.size][x%d.size] - 0.5) * orderedAmplitude
		v = clamp(v.Add(rgb12.Vector{t, t, t}))
		i, _ := rgb12.Nearest(v, palette)
		out[x] = uint8(i)
	}
	return out, nil
}

func clamp(v rgb12.Vector) rgb12.Vector {
	for i, f := range v {
		switch {
		case f < 0:
			v[i] = 0
		case f > 1:
			v[i] = 1
		}
	}
	return v
}
