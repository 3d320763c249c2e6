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

// Package pixfmt is the C1 pixel model: the single source of truth for
// byte layout, channel order, and colorspace tagging used by every
// other component. It is purely structural -- no mutable state, no I/O.
package pixfmt

import "github.com/mlnoga/sixel/internal/status"

// Format is the tagged enum over the catalog in spec.md §3.
type Format int

const (
	FormatInvalid Format = iota

	// Palette-indexed
	PAL1
	PAL2
	PAL4
	PAL8

	// Grayscale
	G1
	G2
	G4
	G8
	GA88
	AG88

	// 16-bit packed RGB
	RGB555
	BGR555
	RGB565
	BGR565

	// 24-bit RGB
	RGB888
	BGR888

	// 32-bit RGBA
	RGBA8888
	ARGB8888
	BGRA8888
	ABGR8888

	// float32 forms, one per colorspace
	RGBFLOAT32
	LINEARRGBFLOAT32
	OKLABFLOAT32
)

// Category classifies a format by channel kind, used by components that
// branch on "is this palette-indexed" / "is this float" rather than on
// the specific format.
type Category int

const (
	CategoryPalette Category = iota
	CategoryGray
	CategoryRGB
	CategoryRGBA
	CategoryFloat
)

type entry struct {
	bytesPerPixel int
	depth         int // logical bit depth per index/channel
	category      Category
	hasAlpha      bool
	palette       bool
	float         bool
	// channel offsets in bytes within one pixel; -1 if absent.
	rOff, gOff, bOff, aOff int
}

var catalog = map[Format]entry{
	PAL1: {bytesPerPixel: 1, depth: 1, category: CategoryPalette, palette: true, rOff: -1, gOff: -1, bOff: -1, aOff: -1},
	PAL2: {bytesPerPixel: 1, depth: 2, category: CategoryPalette, palette: true, rOff: -1, gOff: -1, bOff: -1, aOff: -1},
	PAL4: {bytesPerPixel: 1, depth: 4, category: CategoryPalette, palette: true, rOff: -1, gOff: -1, bOff: -1, aOff: -1},
	PAL8: {bytesPerPixel: 1, depth: 8, category: CategoryPalette, palette: true, rOff: -1, gOff: -1, bOff: -1, aOff: -1},

	G1: {bytesPerPixel: 1, depth: 1, category: CategoryGray, rOff: 0, gOff: 0, bOff: 0, aOff: -1},
	G2: {bytesPerPixel: 1, depth: 2, category: CategoryGray, rOff: 0, gOff: 0, bOff: 0, aOff: -1},
	G4: {bytesPerPixel: 1, depth: 4, category: CategoryGray, rOff: 0, gOff: 0, bOff: 0, aOff: -1},
	G8: {bytesPerPixel: 1, depth: 8, category: CategoryGray, rOff: 0, gOff: 0, bOff: 0, aOff: -1},

	GA88: {bytesPerPixel: 2, depth: 8, category: CategoryGray, hasAlpha: true, rOff: 0, gOff: 0, bOff: 0, aOff: 1},
	AG88: {bytesPerPixel: 2, depth: 8, category: CategoryGray, hasAlpha: true, rOff: 1, gOff: 1, bOff: 1, aOff: 0},

	RGB555: {bytesPerPixel: 2, depth: 5, category: CategoryRGB, rOff: 0, gOff: 0, bOff: 0, aOff: -1},
	BGR555: {bytesPerPixel: 2, depth: 5, category: CategoryRGB, rOff: 0, gOff: 0, bOff: 0, aOff: -1},
	RGB565: {bytesPerPixel: 2, depth: 5, category: CategoryRGB, rOff: 0, gOff: 0, bOff: 0, aOff: -1},
	BGR565: {bytesPerPixel: 2, depth: 5, category: CategoryRGB, rOff: 0, gOff: 0, bOff: 0, aOff: -1},

	RGB888: {bytesPerPixel: 3, depth: 8, category: CategoryRGB, rOff: 0, gOff: 1, bOff: 2, aOff: -1},
	BGR888: {bytesPerPixel: 3, depth: 8, category: CategoryRGB, rOff: 2, gOff: 1, bOff: 0, aOff: -1},

	RGBA8888: {bytesPerPixel: 4, depth: 8, category: CategoryRGBA, hasAlpha: true, rOff: 0, gOff: 1, bOff: 2, aOff: 3},
	ARGB8888: {bytesPerPixel: 4, depth: 8, category: CategoryRGBA, hasAlpha: true, rOff: 1, gOff: 2, bOff: 3, aOff: 0},
	BGRA8888: {bytesPerPixel: 4, depth: 8, category: CategoryRGBA, hasAlpha: true, rOff: 2, gOff: 1, bOff: 0, aOff: 3},
	ABGR8888: {bytesPerPixel: 4, depth: 8, category: CategoryRGBA, hasAlpha: true, rOff: 3, gOff: 2, bOff: 1, aOff: 0},

	RGBFLOAT32:       {bytesPerPixel: 12, depth: 32, category: CategoryFloat, float: true, rOff: 0, gOff: 4, bOff: 8, aOff: -1},
	LINEARRGBFLOAT32:  {bytesPerPixel: 12, depth: 32, category: CategoryFloat, float: true, rOff: 0, gOff: 4, bOff: 8, aOff: -1},
	OKLABFLOAT32:      {bytesPerPixel: 12, depth: 32, category: CategoryFloat, float: true, rOff: 0, gOff: 4, bOff: 8, aOff: -1},
}

func lookup(f Format) (entry, *status.Error) {
	e, ok := catalog[f]
	if !ok {
		return entry{}, status.New(status.BadInput, "unsupported pixel format %d", f)
	}
	return e, nil
}

// Depth returns the bytes-per-pixel for fmt.
func Depth(f Format) (int, *status.Error) {
	e, err := lookup(f)
	if err != nil {
		return 0, err
	}
	return e.bytesPerPixel, nil
}

// ChannelOrder returns the byte offsets of R, G, B within one pixel, and
// the alpha offset (-1 if the format carries no alpha channel).
func ChannelOrder(f Format) (rOff, gOff, bOff, aOff int, err *status.Error) {
	e, err := lookup(f)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	return e.rOff, e.gOff, e.bOff, e.aOff, nil
}

// HasAlpha reports whether f carries an alpha channel.
func HasAlpha(f Format) bool {
	e, err := lookup(f)
	return err == nil && e.hasAlpha
}

// IsPaletteIndexed reports whether f is a palette-indexed category.
func IsPaletteIndexed(f Format) bool {
	e, err := lookup(f)
	return err == nil && e.palette
}

// IsFloat reports whether f is one of the float32 forms.
func IsFloat(f Format) bool {
	e, err := lookup(f)
	return err == nil && e.float
}

// CategoryOf returns f's Category.
func CategoryOf(f Format) (Category, *status.Error) {
	e, err := lookup(f)
	if err != nil {
		return 0, err
	}
	return e.category, nil
}
