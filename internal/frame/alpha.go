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

// StripAlpha discards the alpha channel, producing RGB888. If bg is
// non-nil, the result is alpha-premultiplied against that background
// color per spec.md §4.2: out = (in*a + bg*(255-a)) >> 8. If bg is nil
// the alpha channel is simply dropped.
func (f *Frame) StripAlpha(bg *[3]byte) *status.Error {
	if !pixfmt.HasAlpha(f.Format) {
		return f.SetPixelFormat(pixfmt.RGB888)
	}

	bpp, derr := pixfmt.Depth(f.Format)
	if derr != nil {
		return derr
	}
	rOff, gOff, bOff, aOff, cerr := pixfmt.ChannelOrder(f.Format)
	if cerr != nil {
		return cerr
	}

	n := f.Width * f.Height
	out := make([]byte, n*3)
	for i := 0; i < n; i++ {
		base := i * bpp
		r, g, b, a := f.Pixels[base+rOff], f.Pixels[base+gOff], f.Pixels[base+bOff], f.Pixels[base+aOff]
		if bg == nil {
			out[i*3], out[i*3+1], out[i*3+2] = r, g, b
			continue
		}
		out[i*3] = premultiply(r, a, bg[0])
		out[i*3+1] = premultiply(g, a, bg[1])
		out[i*3+2] = premultiply(b, a, bg[2])
	}

	f.allocator.Free(f.Pixels)
	f.Pixels = out
	f.Format = pixfmt.RGB888
	f.Colorspace = pixfmt.Gamma
	return nil
}

func premultiply(in, a, bg byte) byte {
	return byte((int(in)*int(a) + int(bg)*(255-int(a))) >> 8)
}
