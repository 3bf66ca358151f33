package shr

import (
	"fmt"
	"image"
	"runtime"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/bodgit/shr/rgb12"

	shrimage "github.com/bodgit/shr/image"
)

// Convert converts m, which must be exactly 320 by 200 pixels, into a
// .3200 buffer. Each call is one deterministic pass: the image is
// expanded into the working color space, palettes are allocated per
// scanline, every scanline is dithered against its palette and the
// result is packed.
func (c *Converter) Convert(m image.Image, cfg Config) ([]byte, error) {
	d, err := cfg.ditherer()
	if err != nil {
		return nil, err
	}
	alloc, err := cfg.allocator()
	if err != nil {
		return nil, err
	}

	rows, err := workingRows(m, cfg.LinearRGB)
	if err != nil {
		return nil, err
	}

	assignment, err := alloc.Allocate(rows)
	if err != nil {
		return nil, errors.Wrap(err, "allocating scanline palettes")
	}
	c.logger.Printf("%s: %d palettes allocated\n", cfg.Quantize, len(assignment.Palettes))

	raw := new(shrimage.Raw)
	palettes := make([][]rgb12.Vector, len(assignment.Palettes))
	for id, p := range assignment.Palettes {
		if err := raw.SetPalette(id, p); err != nil {
			return nil, errors.Wrapf(err, "palette %d", id)
		}
		palettes[id] = p.Vectors(cfg.LinearRGB)
	}
	copy(raw.SCB[:], assignment.SCB)

	// Every scanline depends only on its own pixels and a read-only
	// palette, so the dithering work fans out across a bounded pool
	// writing to disjoint rows.
	workers := runtime.NumCPU()
	if workers > shrimage.Height {
		workers = shrimage.Height
	}
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			for y := w; y < shrimage.Height; y += workers {
				indices, err := d.Scanline(y, rows[y], palettes[assignment.SCB[y]])
				if err != nil {
					return errors.Wrapf(err, "scanline %d", y)
				}
				copy(raw.Pixels[y][:], indices)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "dithering")
	}

	return raw.Pack(), nil
}

// workingRows validates the image and expands it into one slice of
// working-space pixels per scanline.
func workingRows(m image.Image, linear bool) ([][]rgb12.Vector, error) {
	if m == nil {
		return nil, ValidationError("no image")
	}
	b := m.Bounds()
	if b.Empty() {
		return nil, ValidationError("empty pixel data")
	}
	if b.Dx() != shrimage.Width || b.Dy() != shrimage.Height {
		return nil, ValidationError(fmt.Sprintf("image must be %dx%d, have %dx%d",
			shrimage.Width, shrimage.Height, b.Dx(), b.Dy()))
	}

	rows := make([][]rgb12.Vector, shrimage.Height)
	for y := 0; y < shrimage.Height; y++ {
		row := make([]rgb12.Vector, shrimage.Width)
		for x := 0; x < shrimage.Width; x++ {
			r, g, bl, _ := m.At(b.Min.X+x, b.Min.Y+y).RGBA()
			v := rgb12.Vector{
				float64(r) / 0xffff,
				float64(g) / 0xffff,
				float64(bl) / 0xffff,
			}
			if linear {
				v = rgb12.Linearize(v)
			}
			row[x] = v
		}
		rows[y] = row
	}
	return rows, nil
}
