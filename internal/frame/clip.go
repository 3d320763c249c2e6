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

package frame

import (
	"github.com/mlnoga/sixel/internal/pixfmt"
	"github.com/mlnoga/sixel/internal/status"
)

// Clip crops f to the rectangle (x,y,w,h) in place, first normalizing
// sub-byte packed formats to PAL8/G8 so the crop is a simple byte-range
// copy per row.
func (f *Frame) Clip(x, y, w, h int) *status.Error {
	if w <= 0 || h <= 0 || x < 0 || y < 0 || x+w > f.Width || y+h > f.Height {
		return status.New(status.BadInput, "clip rectangle (%d,%d,%d,%d) out of bounds for %dx%d frame", x, y, w, h, f.Width, f.Height)
	}

	if pixfmt.IsPaletteIndexed(f.Format) && f.Format != pixfmt.PAL8 {
		normalized, canon, err := pixfmt.Normalize(f.Pixels, f.Format, f.Width, f.Height)
		if err != nil {
			return err
		}
		f.allocator.Free(f.Pixels)
		f.Pixels = normalized
		f.Format = canon
	} else if isSubByteGray(f.Format) {
		normalized, canon, err := pixfmt.Normalize(f.Pixels, f.Format, f.Width, f.Height)
		if err != nil {
			return err
		}
		f.allocator.Free(f.Pixels)
		f.Pixels = normalized
		f.Format = canon
	}

	bpp := f.bytesPerPixel()
	out := f.allocator.Alloc(w * h * bpp)
	for row := 0; row < h; row++ {
		srcOff := ((y+row)*f.Width + x) * bpp
		dstOff := row * w * bpp
		copy(out[dstOff:dstOff+w*bpp], f.Pixels[srcOff:srcOff+w*bpp])
	}

	f.allocator.Free(f.Pixels)
	f.Pixels = out
	f.Width, f.Height = w, h
	return nil
}

func isSubByteGray(f pixfmt.Format) bool {
	switch f {
	case pixfmt.G1, pixfmt.G2, pixfmt.G4:
		return true
	default:
		return false
	}
}
