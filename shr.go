/*
Package shr converts raster images to the Apple IIgs Super Hi-Res 3200
color (.3200) picture format.

The caller supplies an image already resized to 320 by 200 pixels; the
converter builds up to sixteen 16 color palettes from the 12-bit color
space, assigns one palette per scanline, dithers each scanline against
its palette and serializes the result as a 32768 byte buffer.
*/
package shr

import "log"

// Converter converts images to .3200 buffers.
type Converter struct {
	logger *log.Logger
}

// New returns a Converter logging progress to logger.
func New(logger *log.Logger) *Converter {
	return &Converter{
		logger: logger,
	}
}
