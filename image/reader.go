package image

import (
	"errors"
	"image"
	"image/color"
	"io"

	"github.com/bodgit/shr/rgb12"
)

var (
	errNotEnough = errors.New("shr: not enough image data")
	errTooMuch   = errors.New("shr: too much image data")
)

// FormatError reports a buffer that cannot be a .3200 file.
type FormatError string

func (e FormatError) Error() string {
	return "shr: invalid format: " + string(e)
}

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

func upperNibble(b byte) byte {
	return b >> 4 & 0x0f
}

func lowerNibble(b byte) byte {
	return b & 0x0f
}

type decoder struct {
	r io.Reader

	raw Raw
	tmp [FileSize]byte
}

func (d *decoder) parse(buf []byte) {
	for y := 0; y < Height; y++ {
		row := buf[y*rowBytes : (y+1)*rowBytes]
		for x := 0; x < rowBytes; x++ {
			d.raw.Pixels[y][2*x] = upperNibble(row[x])
			d.raw.Pixels[y][2*x+1] = lowerNibble(row[x])
		}
		// High SCB bits are reserved; only the palette id is kept.
		d.raw.SCB[y] = lowerNibble(buf[scbOffset+y])
	}

	for p := 0; p < maxPalettes; p++ {
		for i := 0; i < colorsPerPalette; i++ {
			o := paletteOffset + (p*colorsPerPalette+i)*2
			w := uint16(buf[o]) | uint16(buf[o+1])<<8
			d.raw.Palettes[p][i] = rgb12.FromWord(w)
		}
	}
}

func (d *decoder) decode(r io.Reader) error {
	d.r = r

	if err := readFull(d.r, d.tmp[:]); err != nil {
		if err != io.ErrUnexpectedEOF {
			return err
		}
		return errNotEnough
	}

	if n, err := r.Read(d.tmp[:1]); n != 0 || (err != io.EOF && err != io.ErrUnexpectedEOF) {
		if err != nil {
			return err
		}
		return errTooMuch
	}

	d.parse(d.tmp[:])
	return nil
}

// palette flattens the full palette table into a single 256 color
// palette so that palette id p and pixel index i map to entry p*16+i.
func (d *decoder) palette() color.Palette {
	p := make(color.Palette, 0, maxPalettes*colorsPerPalette)
	for _, pal := range d.raw.Palettes {
		for _, c := range pal {
			p = append(p, c)
		}
	}
	return p
}

func (d *decoder) image() *image.Paletted {
	m := image.NewPaletted(image.Rect(0, 0, Width, Height), d.palette())
	for y := 0; y < Height; y++ {
		bank := d.raw.SCB[y] * colorsPerPalette
		for x := 0; x < Width; x++ {
			m.SetColorIndex(x, y, bank+d.raw.Pixels[y][x])
		}
	}
	return m
}

// Parse unpacks a complete .3200 buffer. Any buffer whose length is not
// exactly FileSize is rejected with a FormatError.
func Parse(buf []byte) (*Raw, error) {
	if len(buf) != FileSize {
		return nil, FormatError("file must be exactly 32768 bytes")
	}
	var d decoder
	d.parse(buf)
	raw := d.raw
	return &raw, nil
}

// Decode reads a .3200 image from r and returns it as an image.Image.
func Decode(r io.Reader) (image.Image, error) {
	var d decoder
	if err := d.decode(r); err != nil {
		return nil, err
	}
	return d.image(), nil
}

// DecodeConfig returns the color model and dimensions of a .3200 image
// without decoding the pixel data into an image.
func DecodeConfig(r io.Reader) (image.Config, error) {
	var d decoder
	if err := d.decode(r); err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: d.palette(),
		Width:      Width,
		Height:     Height,
	}, nil
}
