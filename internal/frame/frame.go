// Copyright (C) 2024 sixel contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package frame implements C2: a Frame owns a pixel buffer plus
// metadata and performs in-place format/colorspace conversions,
// clipping, scaling, and alpha stripping.
//
// Grounded on nightlight's internal/fits.go FITSImage: a struct owning
// a flat data buffer plus metadata, mutated only through named methods
// on the owning goroutine.
package frame

import (
	"github.com/mlnoga/sixel/internal/alloc"
	"github.com/mlnoga/sixel/internal/pixfmt"
	"github.com/mlnoga/sixel/internal/status"
)

// WidthLimit and HeightLimit bound Frame dimensions per spec.md §3.
const (
	WidthLimit  = 1 << 16
	HeightLimit = 1 << 16
)

// Frame owns a pixel buffer and associated metadata.
type Frame struct {
	Width, Height int
	Format        pixfmt.Format
	Colorspace    pixfmt.Colorspace
	Pixels        []byte
	Palette       []byte // ncolors*3 bytes, R,G,B; nil unless Format is palette-indexed
	NColors       int

	Delay             int
	FrameNo           int
	LoopCount         int
	TransparentIndex  int // -1 means "no transparent slot"
	Multiframe        bool

	refcount  int32
	allocator *alloc.Allocator
}

// New returns a zero-dimension Frame bound to the given allocator (nil
// selects the process default).
func New(a *alloc.Allocator) *Frame {
	return &Frame{TransparentIndex: -1, refcount: 1, allocator: alloc.Resolve(a)}
}

// Init populates a freshly created Frame. Fails with BadInput if
// dimensions are non-positive or exceed the configured limits, or if
// the buffer length doesn't match width*height*bytesPerPixel, or if
// palette presence disagrees with the format's palette-indexed-ness.
func (f *Frame) Init(pixels []byte, w, h int, format pixfmt.Format, palette []byte, ncolors int) *status.Error {
	if w <= 0 || w > WidthLimit {
		return status.New(status.BadInput, "width %d out of range [1,%d]", w, WidthLimit)
	}
	if h <= 0 || h > HeightLimit {
		return status.New(status.BadInput, "height %d out of range [1,%d]", h, HeightLimit)
	}
	bpp, berr := pixfmt.Depth(format)
	if berr != nil {
		return berr
	}
	if len(pixels) != w*h*bpp {
		return status.New(status.BadInput, "pixel buffer length %d does not match %dx%d at %d bytes/pixel", len(pixels), w, h, bpp)
	}
	isPal := pixfmt.IsPaletteIndexed(format)
	if isPal && palette == nil {
		return status.New(status.BadInput, "palette-indexed format %d requires a palette", format)
	}
	if !isPal && palette != nil {
		return status.New(status.BadInput, "non-palette format %d must not carry a palette", format)
	}
	if isPal && len(palette) != ncolors*3 {
		return status.New(status.BadInput, "palette length %d does not match ncolors*3=%d", len(palette), ncolors*3)
	}

	f.Width, f.Height = w, h
	f.Format = format
	f.Colorspace = pixfmt.ColorspaceOf(format)
	f.Pixels = pixels
	f.Palette = palette
	f.NColors = ncolors
	if f.TransparentIndex == 0 {
		f.TransparentIndex = -1
	}
	return nil
}

// Retain increments the reference count.
func (f *Frame) Retain() { f.refcount++ }

// Release decrements the reference count and frees the pixel buffer
// through the owning allocator once it reaches zero.
func (f *Frame) Release() {
	f.refcount--
	if f.refcount <= 0 && f.Pixels != nil {
		f.allocator.Free(f.Pixels)
		f.Pixels = nil
	}
}

// bytesPerPixel is a small convenience wrapper; format is assumed valid
// since it can only reach this state via Init/SetPixelFormat.
func (f *Frame) bytesPerPixel() int {
	bpp, _ := pixfmt.Depth(f.Format)
	return bpp
}
