/*
Package quantize implements the median cut palette builder and the
scanline palette allocation strategies used when converting an image to
the Apple IIgs Super Hi-Res 320 mode.

The hardware provides sixteen palette slots of sixteen 12-bit colors and
one palette selection per scanline. An Allocator decides which palette
each of the 200 scanlines uses while keeping the number of distinct
palettes within the slot budget.
*/
package quantize

import (
	"fmt"
	"sort"

	"github.com/bodgit/shr/rgb12"
)

const (
	// MaxPalettes is the number of palette slots the hardware provides.
	MaxPalettes = 16
	// ColorsPerPalette is the number of entries in one palette.
	ColorsPerPalette = 16
)

// PaletteOverflowError reports that merging failed to bring the number
// of distinct palettes within the slot budget. It should be unreachable
// as every merge reduces the count by one.
type PaletteOverflowError struct {
	Count int
}

func (e *PaletteOverflowError) Error() string {
	return fmt.Sprintf("quantize: %d palettes after merging, limit is %d", e.Count, MaxPalettes)
}

type bucket struct {
	pixels []rgb12.Vector
}

// widest returns the channel with the largest value range and that
// range. A range of zero means every pixel is the same color.
func (b *bucket) widest() (int, float64) {
	lo, hi := b.pixels[0], b.pixels[0]
	for _, p := range b.pixels[1:] {
		for ch := 0; ch < 3; ch++ {
			if p[ch] < lo[ch] {
				lo[ch] = p[ch]
			}
			if p[ch] > hi[ch] {
				hi[ch] = p[ch]
			}
		}
	}
	ch, rng := 0, hi[0]-lo[0]
	for c := 1; c < 3; c++ {
		if r := hi[c] - lo[c]; r > rng {
			ch, rng = c, r
		}
	}
	return ch, rng
}

// split sorts the bucket along ch and splits it at the median.
func (b *bucket) split(ch int) (*bucket, *bucket) {
	sort.Slice(b.pixels, func(i, j int) bool {
		p, q := b.pixels[i], b.pixels[j]
		if p[ch] != q[ch] {
			return p[ch] < q[ch]
		}
		// Full ordering keeps the partition deterministic.
		for c := 0; c < 3; c++ {
			if p[c] != q[c] {
				return p[c] < q[c]
			}
		}
		return false
	})
	mid := len(b.pixels) / 2
	return &bucket{pixels: b.pixels[:mid]}, &bucket{pixels: b.pixels[mid:]}
}

func (b *bucket) mean() rgb12.Vector {
	var sum rgb12.Vector
	for _, p := range b.pixels {
		sum = sum.Add(p)
	}
	return sum.Scale(1 / float64(len(b.pixels)))
}

// medianCut partitions the pixel population into at most target buckets
// by repeatedly splitting the bucket with the widest single-channel
// range at its median. It stops early once every remaining bucket holds
// a single distinct color.
func medianCut(pixels []rgb12.Vector, target int) []*bucket {
	buckets := []*bucket{{pixels: append([]rgb12.Vector(nil), pixels...)}}
	for len(buckets) < target {
		best, bestCh, bestRng := -1, 0, 0.0
		for i, b := range buckets {
			if len(b.pixels) < 2 {
				continue
			}
			if ch, rng := b.widest(); rng > bestRng {
				best, bestCh, bestRng = i, ch, rng
			}
		}
		if best < 0 {
			break
		}
		lo, hi := buckets[best].split(bestCh)
		buckets[best] = lo
		buckets = append(buckets, hi)
	}
	return buckets
}

// MedianCut reduces a pixel population to a palette of at most maxColors
// 12-bit colors. Each bucket contributes the mean of its members,
// quantized to 12 bits; buckets collapsing to the same 12-bit color are
// deduplicated so the palette never holds repeated entries.
func MedianCut(pixels []rgb12.Vector, maxColors int, linear bool) rgb12.Palette {
	if len(pixels) == 0 {
		return nil
	}
	var (
		p    rgb12.Palette
		seen = make(map[rgb12.Color]struct{}, maxColors)
	)
	for _, b := range medianCut(pixels, maxColors) {
		c := rgb12.FromVector(b.mean(), linear)
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		p = append(p, c)
	}
	return p
}
