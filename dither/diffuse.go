package dither

import "github.com/bodgit/shr/rgb12"

// tap is one destination of diffused quantization error, relative to
// the pixel being quantized.
type tap struct {
	dx, dy int
	weight int
}

// Kernel is a fixed error diffusion kernel. Weights are expressed as
// weight/denom of the residual.
type Kernel struct {
	name  string
	taps  []tap
	denom int
}

func (k Kernel) String() string {
	return k.name
}

// Propagated returns the fraction of each pixel's residual the kernel
// redistributes. Most kernels redistribute all of it; Atkinson
// deliberately discards 2/8 for its high-contrast look.
func (k Kernel) Propagated() float64 {
	sum := 0
	for _, t := range k.taps {
		sum += t.weight
	}
	return float64(sum) / float64(k.denom)
}

// The classic error diffusion kernels.
var (
	FloydSteinberg = Kernel{"floyd-steinberg", []tap{
		{1, 0, 7},
		{-1, 1, 3}, {0, 1, 5}, {1, 1, 1},
	}, 16}

	Atkinson = Kernel{"atkinson", []tap{
		{1, 0, 1}, {2, 0, 1},
		{-1, 1, 1}, {0, 1, 1}, {1, 1, 1},
		{0, 2, 1},
	}, 8}

	JarvisJudiceNinke = Kernel{"jjn", []tap{
		{1, 0, 7}, {2, 0, 5},
		{-2, 1, 3}, {-1, 1, 5}, {0, 1, 7}, {1, 1, 5}, {2, 1, 3},
		{-2, 2, 1}, {-1, 2, 3}, {0, 2, 5}, {1, 2, 3}, {2, 2, 1},
	}, 48}

	Stucki = Kernel{"stucki", []tap{
		{1, 0, 8}, {2, 0, 4},
		{-2, 1, 2}, {-1, 1, 4}, {0, 1, 8}, {1, 1, 4}, {2, 1, 2},
		{-2, 2, 1}, {-1, 2, 2}, {0, 2, 4}, {1, 2, 2}, {2, 2, 1},
	}, 42}

	Burkes = Kernel{"burkes", []tap{
		{1, 0, 8}, {2, 0, 4},
		{-2, 1, 2}, {-1, 1, 4}, {0, 1, 8}, {1, 1, 4}, {2, 1, 2},
	}, 32}

	Sierra = Kernel{"sierra", []tap{
		{1, 0, 5}, {2, 0, 3},
		{-2, 1, 2}, {-1, 1, 4}, {0, 1, 5}, {1, 1, 4}, {2, 1, 2},
		{-1, 2, 2}, {0, 2, 3}, {1, 2, 2},
	}, 32}

	SierraTwoRow = Kernel{"sierra2", []tap{
		{1, 0, 4}, {2, 0, 3},
		{-2, 1, 1}, {-1, 1, 2}, {0, 1, 3}, {1, 1, 2}, {2, 1, 1},
	}, 16}

	SierraLite = Kernel{"sierra-lite", []tap{
		{1, 0, 2},
		{-1, 1, 1}, {0, 1, 1},
	}, 4}
)

// Diffusion distributes each pixel's quantization residual along the
// scanline according to its kernel. Taps reaching the next scanline or
// past either end of the row are dropped; carried error never crosses a
// palette boundary.
type Diffusion struct {
	kernel Kernel
}

// NewDiffusion returns an error diffusion Ditherer using the given
// kernel.
func NewDiffusion(k Kernel) *Diffusion {
	return &Diffusion{kernel: k}
}

// Scanline implements the Ditherer interface.
func (d *Diffusion) Scanline(_ int, row []rgb12.Vector, palette []rgb12.Vector) ([]uint8, error) {
	if len(palette) == 0 {
		return nil, errEmptyPalette
	}
	buf := append([]rgb12.Vector(nil), row...)
	out := make([]uint8, len(buf))
	for x := range buf {
		i, _ := rgb12.Nearest(buf[x], palette)
		out[x] = uint8(i)
		residual := buf[x].Sub(palette[i])
		for _, t := range d.kernel.taps {
			if t.dy != 0 {
				continue
			}
			nx := x + t.dx
			if nx < 0 || nx >= len(buf) {
				continue
			}
			buf[nx] = buf[nx].Add(residual.Scale(float64(t.weight) / float64(d.kernel.denom)))
		}
	}
	return out, nil
}
