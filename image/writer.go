package image

import (
	"io"
)

// Pack serializes the image into a fresh buffer of exactly FileSize
// bytes: packed pixel rows, then the SCB array and the palette table.
func (r *Raw) Pack() []byte {
	buf := make([]byte, FileSize)

	for y := 0; y < Height; y++ {
		row := buf[y*rowBytes : (y+1)*rowBytes]
		for x := 0; x < rowBytes; x++ {
			row[x] = r.Pixels[y][2*x]&0x0f<<4 | r.Pixels[y][2*x+1]&0x0f
		}
		buf[scbOffset+y] = r.SCB[y] & 0x0f
	}
	// The 56 trailing SCB bytes stay zero.

	for p := 0; p < maxPalettes; p++ {
		for i := 0; i < colorsPerPalette; i++ {
			o := paletteOffset + (p*colorsPerPalette+i)*2
			w := r.Palettes[p][i].Word()
			buf[o] = byte(w)
			buf[o+1] = byte(w >> 8)
		}
	}

	return buf
}

// Encode writes the image r to w in .3200 format.
func Encode(w io.Writer, r *Raw) error {
	_, err := w.Write(r.Pack())
	return err
}
