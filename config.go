package shr

import (
	"fmt"
	"math"
	"strings"

	"github.com/bodgit/shr/dither"
	"github.com/bodgit/shr/quantize"
)

// Config controls one conversion pass.
type Config struct {
	// Dither selects the dithering algorithm: one of "none",
	// "ordered" (or the explicit "bayer2"/"bayer4"/"bayer8"),
	// "floyd-steinberg", "atkinson", "jjn", "stucki", "burkes",
	// "sierra", "sierra2" or "sierra-lite".
	Dither string

	// Quantize selects the palette allocation strategy: one of
	// "per-scanline", "global" or "optimized".
	Quantize string

	// ErrorThreshold is the accumulated scanline error below which the
	// optimized strategy reuses the previous scanline's palette. Error
	// is summed squared distance in the working space, where channels
	// span [0, 1]. Only used by the optimized strategy; must not be
	// negative.
	ErrorThreshold float64

	// LinearRGB selects whether color distances and diffused error are
	// computed in linear RGB rather than gamma-encoded sRGB.
	LinearRGB bool
}

// DefaultErrorThreshold suits most images under the optimized strategy;
// lower values favor fidelity, higher values favor palette reuse.
const DefaultErrorThreshold = 0.03

func (c Config) ditherer() (dither.Ditherer, error) {
	switch strings.ToLower(c.Dither) {
	case "none":
		return dither.None{}, nil
	case "ordered", "bayer", "bayer8":
		return dither.NewOrdered(8)
	case "bayer4":
		return dither.NewOrdered(4)
	case "bayer2":
		return dither.NewOrdered(2)
	case "floyd-steinberg":
		return dither.NewDiffusion(dither.FloydSteinberg), nil
	case "atkinson":
		return dither.NewDiffusion(dither.Atkinson), nil
	case "jjn":
		return dither.NewDiffusion(dither.JarvisJudiceNinke), nil
	case "stucki":
		return dither.NewDiffusion(dither.Stucki), nil
	case "burkes":
		return dither.NewDiffusion(dither.Burkes), nil
	case "sierra":
		return dither.NewDiffusion(dither.Sierra), nil
	case "sierra2":
		return dither.NewDiffusion(dither.SierraTwoRow), nil
	case "sierra-lite":
		return dither.NewDiffusion(dither.SierraLite), nil
	default:
		return nil, ConfigurationError(fmt.Sprintf("unknown dither algorithm %q", c.Dither))
	}
}

func (c Config) allocator() (quantize.Allocator, error) {
	switch strings.ToLower(c.Quantize) {
	case "per-scanline":
		return quantize.NewPerScanline(c.LinearRGB), nil
	case "global":
		return quantize.NewGlobal(c.LinearRGB), nil
	case "optimized":
		if math.IsNaN(c.ErrorThreshold) || c.ErrorThreshold < 0 {
			return nil, ConfigurationError(fmt.Sprintf("error threshold must not be negative, have %v", c.ErrorThreshold))
		}
		return quantize.NewOptimized(c.ErrorThreshold, c.LinearRGB), nil
	default:
		return nil, ConfigurationError(fmt.Sprintf("unknown quantize strategy %q", c.Quantize))
	}
}
