/*
Package rgb12 implements the Apple IIgs 12-bit RGB color model along with
the sRGB and linear RGB conversions shared by the palette builder and the
dithering code.

A color has four bits per channel giving a 4096 color space. On disk it
is a 16-bit little-endian word with the red channel in bits 0-3, green in
bits 4-7, blue in bits 8-11 and the top four bits zero.
*/
package rgb12

import (
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

const (
	// Depth is the number of intensity levels per channel.
	Depth = 16

	max = Depth - 1
)

// Color is a 12-bit RGB color with each channel in the range [0, 15].
type Color struct {
	R, G, B uint8
}

// RGBA implements the color.Color interface. Each 4-bit channel is
// replicated across the 16-bit range so that 15 maps to 0xffff.
func (c Color) RGBA() (r, g, b, a uint32) {
	return uint32(c.R&0x0f) * 0x1111, uint32(c.G&0x0f) * 0x1111, uint32(c.B&0x0f) * 0x1111, 0xffff
}

// Word packs the color into its 16-bit wire representation.
func (c Color) Word() uint16 {
	return uint16(c.B&0x0f)<<8 | uint16(c.G&0x0f)<<4 | uint16(c.R&0x0f)
}

// FromWord unpacks a 16-bit wire word into a Color. The reserved top
// four bits are ignored.
func FromWord(w uint16) Color {
	return Color{
		R: uint8(w & 0x0f),
		G: uint8(w >> 4 & 0x0f),
		B: uint8(w >> 8 & 0x0f),
	}
}

// FromColor quantizes any color to the nearest 12-bit color by rounding
// each channel to the nearest of the 16 levels.
func FromColor(c color.Color) Color {
	r, g, b, _ := c.RGBA()
	return Color{
		R: uint8((r*max + 0x7fff) / 0xffff),
		G: uint8((g*max + 0x7fff) / 0xffff),
		B: uint8((b*max + 0x7fff) / 0xffff),
	}
}

// Vector is an RGB triplet in the working color space with each channel
// nominally in [0, 1]. Error diffusion may push channels outside that
// range.
type Vector [3]float64

// Add returns v + o.
func (v Vector) Add(o Vector) Vector {
	return Vector{v[0] + o[0], v[1] + o[1], v[2] + o[2]}
}

// Sub returns v - o.
func (v Vector) Sub(o Vector) Vector {
	return Vector{v[0] - o[0], v[1] - o[1], v[2] - o[2]}
}

// Scale returns v scaled by f.
func (v Vector) Scale(f float64) Vector {
	return Vector{v[0] * f, v[1] * f, v[2] * f}
}

// SqDist returns the squared Euclidean distance between v and o.
func (v Vector) SqDist(o Vector) float64 {
	dr, dg, db := v[0]-o[0], v[1]-o[1], v[2]-o[2]
	return dr*dr + dg*dg + db*db
}

// Linearize converts a gamma-encoded sRGB vector to linear RGB.
func Linearize(v Vector) Vector {
	r, g, b := colorful.Color{R: v[0], G: v[1], B: v[2]}.LinearRgb()
	return Vector{r, g, b}
}

// Delinearize converts a linear RGB vector back to gamma-encoded sRGB,
// clamped to [0, 1].
func Delinearize(v Vector) Vector {
	c := colorful.LinearRgb(v[0], v[1], v[2]).Clamped()
	return Vector{c.R, c.G, c.B}
}

// FromVector quantizes a working-space vector to the nearest 12-bit
// color. Linear vectors pass back through the sRGB curve first so the
// serialized color is what the hardware should display.
func FromVector(v Vector, linear bool) Color {
	if linear {
		v = Delinearize(v)
	}
	return Color{
		R: quantizeChannel(v[0]),
		G: quantizeChannel(v[1]),
		B: quantizeChannel(v[2]),
	}
}

func quantizeChannel(f float64) uint8 {
	if f <= 0 {
		return 0
	}
	if f >= 1 {
		return max
	}
	return uint8(f*max + 0.5)
}

// Vector expands the color into the working space, applying the sRGB to
// linear conversion when linear is true.
func (c Color) Vector(linear bool) Vector {
	v := Vector{float64(c.R&0x0f) / max, float64(c.G&0x0f) / max, float64(c.B&0x0f) / max}
	if linear {
		v = Linearize(v)
	}
	return v
}

// Palette is an ordered set of up to 16 colors.
type Palette []Color

// Vectors expands every palette entry into the working space.
func (p Palette) Vectors(linear bool) []Vector {
	v := make([]Vector, len(p))
	for i, c := range p {
		v[i] = c.Vector(linear)
	}
	return v
}

// Key returns a deterministic byte representation of the palette,
// suitable for deduplicating identical palettes.
func (p Palette) Key() string {
	b := make([]byte, 2*len(p))
	for i, c := range p {
		w := c.Word()
		b[2*i] = byte(w)
		b[2*i+1] = byte(w >> 8)
	}
	return string(b)
}

// Nearest returns the index of the entry in pal closest to v by squared
// Euclidean distance, along with that distance. Ties break towards the
// lowest index.
func Nearest(v Vector, pal []Vector) (int, float64) {
	best, bestDist := 0, math.Inf(1)
	for i, p := range pal {
		if d := v.SqDist(p); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, bestDist
}
