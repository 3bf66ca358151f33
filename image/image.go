/*
Package image implements an Apple IIgs Super Hi-Res 3200 (.3200) image
decoder and encoder.

The format is defined as 320 by 200 pixels exactly. Up to sixteen 16
color palettes can be defined and each scanline selects one of them
through its scan line control byte (SCB).

The file is written as 32000 bytes of pixel information, a 4-bit palette
index for each pixel with the left pixel of a pair in the high nibble,
followed by the 256 byte SCB array (200 used plus 56 bytes of padding)
holding the palette id in the low four bits, and finally the 512 byte
palette table of 16 palettes of 16 colors where each color is stored as
a little-endian 16-bit word. There is no compression so the file is
always exactly 32768 bytes.

Which nibble holds the left pixel of a pair is fixed to the high nibble,
matching the hardware's left-to-right shift order; it is the documented
assumption every pixel offset in this package relies on.
*/
package image

import (
	"github.com/bodgit/shr/rgb12"
)

const (
	// Width and Height are the fixed dimensions of the 320 mode.
	Width  = 320
	Height = 200

	colorsPerPalette = 16
	maxPalettes      = 16

	rowBytes     = Width >> 1
	pixelBytes   = rowBytes * Height
	scbBytes     = 256
	paletteBytes = maxPalettes * colorsPerPalette * 2

	scbOffset     = pixelBytes
	paletteOffset = scbOffset + scbBytes

	// FileSize is the exact size of a .3200 file.
	FileSize = pixelBytes + scbBytes + paletteBytes
)

// Raw is the decoded contents of a .3200 file.
type Raw struct {
	// Pixels holds one 4-bit palette index per pixel, valid relative
	// to the palette its scanline selects.
	Pixels [Height][Width]uint8
	// SCB holds the palette id selected by each scanline.
	SCB [Height]uint8
	// Palettes is the full palette table.
	Palettes [maxPalettes][colorsPerPalette]rgb12.Color
}

// SetPalette fills palette slot id from p. Slots are 16 colors wide on
// disk; a shorter palette is padded by repeating its final color so any
// in-range pixel index still resolves to a real color.
func (r *Raw) SetPalette(id int, p rgb12.Palette) error {
	if id < 0 || id >= maxPalettes {
		return FormatError("palette id out of range")
	}
	if len(p) == 0 || len(p) > colorsPerPalette {
		return FormatError("palette must have between 1 and 16 colors")
	}
	for i := 0; i < colorsPerPalette; i++ {
		if i < len(p) {
			r.Palettes[id][i] = p[i]
		} else {
			r.Palettes[id][i] = p[len(p)-1]
		}
	}
	return nil
}

// ReferencedPalettes returns the number of distinct palette ids the SCB
// array actually references.
func (r *Raw) ReferencedPalettes() int {
	var seen [maxPalettes]bool
	n := 0
	for _, b := range r.SCB {
		if id := b & 0x0f; !seen[id] {
			seen[id] = true
			n++
		}
	}
	return n
}

// PaletteUsage returns, per palette id, the number of scanlines
// selecting it.
func (r *Raw) PaletteUsage() [maxPalettes]int {
	var usage [maxPalettes]int
	for _, b := range r.SCB {
		usage[b&0x0f]++
	}
	return usage
}
