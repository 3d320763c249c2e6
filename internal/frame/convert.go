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
	"math"

	"github.com/mlnoga/sixel/internal/pixfmt"
	"github.com/mlnoga/sixel/internal/status"
)

// toRGBTriples decodes f's current pixel buffer into one [3]float32 per
// pixel, each channel in [0,1], tagged with f.Colorspace. Palette
// indices are expanded through f.Palette; packed/grayscale formats are
// first run through pixfmt.Normalize.
func (f *Frame) toRGBTriples() ([][3]float32, *status.Error) {
	n := f.Width * f.Height
	out := make([][3]float32, n)

	if pixfmt.IsFloat(f.Format) {
		for i := 0; i < n; i++ {
			base := i * 12
			out[i][0] = math.Float32frombits(le32(f.Pixels[base : base+4]))
			out[i][1] = math.Float32frombits(le32(f.Pixels[base+4 : base+8]))
			out[i][2] = math.Float32frombits(le32(f.Pixels[base+8 : base+12]))
		}
		return out, nil
	}

	if pixfmt.IsPaletteIndexed(f.Format) {
		normalized, _, err := pixfmt.Normalize(f.Pixels, f.Format, f.Width, f.Height)
		if err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			idx := int(normalized[i])
			if idx >= f.NColors {
				return nil, status.New(status.LogicError, "palette index %d out of range for %d colors", idx, f.NColors)
			}
			out[i][0] = float32(f.Palette[idx*3]) / 255
			out[i][1] = float32(f.Palette[idx*3+1]) / 255
			out[i][2] = float32(f.Palette[idx*3+2]) / 255
		}
		return out, nil
	}

	normalized, canon, err := pixfmt.Normalize(f.Pixels, f.Format, f.Width, f.Height)
	if err != nil {
		return nil, err
	}
	bpp, derr := pixfmt.Depth(canon)
	if derr != nil {
		return nil, derr
	}
	rOff, gOff, bOff, _, cerr := pixfmt.ChannelOrder(canon)
	if cerr != nil {
		return nil, cerr
	}
	if bpp == 1 { // grayscale G8
		for i := 0; i < n; i++ {
			v := float32(normalized[i]) / 255
			out[i] = [3]float32{v, v, v}
		}
		return out, nil
	}
	for i := 0; i < n; i++ {
		base := i * bpp
		out[i][0] = float32(normalized[base+rOff]) / 255
		out[i][1] = float32(normalized[base+gOff]) / 255
		out[i][2] = float32(normalized[base+bOff]) / 255
	}
	return out, nil
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func putLe32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func clampByte(v float32) byte {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return byte(v + 0.5)
}

// packRGBTriples encodes triples (in the given colorspace) into target,
// a non-palette format. For float targets the triples are converted to
// the target's implied colorspace and written as raw float32 LE; for
// byte targets the triples are converted to Gamma first.
func packRGBTriples(triples [][3]float32, cs pixfmt.Colorspace, target pixfmt.Format) ([]byte, *status.Error) {
	bpp, err := pixfmt.Depth(target)
	if err != nil {
		return nil, err
	}
	n := len(triples)
	out := make([]byte, n*bpp)

	if pixfmt.IsFloat(target) {
		targetCS := pixfmt.ColorspaceOf(target)
		if targetCS != cs {
			if cerr := pixfmt.ConvertColorspace(triples, cs, targetCS); cerr != nil {
				return nil, cerr
			}
		}
		for i, t := range triples {
			base := i * 12
			putLe32(out[base:base+4], math.Float32bits(t[0]))
			putLe32(out[base+4:base+8], math.Float32bits(t[1]))
			putLe32(out[base+8:base+12], math.Float32bits(t[2]))
		}
		return out, nil
	}

	if cs != pixfmt.Gamma {
		if cerr := pixfmt.ConvertColorspace(triples, cs, pixfmt.Gamma); cerr != nil {
			return nil, cerr
		}
	}

	cat, cerr := pixfmt.CategoryOf(target)
	if cerr != nil {
		return nil, cerr
	}
	switch cat {
	case pixfmt.CategoryGray:
		rOff, gOff, bOff, aOff, oerr := pixfmt.ChannelOrder(target)
		if oerr != nil {
			return nil, oerr
		}
		_ = rOff
		_ = gOff
		_ = bOff
		for i, t := range triples {
			y := clampByte((0.2989*t[0] + 0.5866*t[1] + 0.1145*t[2]) * 255)
			if bpp == 1 {
				out[i] = y
			} else {
				out[i*bpp] = y
				if aOff >= 0 {
					out[i*bpp+aOff] = 255
				}
			}
		}
	case pixfmt.CategoryRGB, pixfmt.CategoryRGBA:
		rOff, gOff, bOff, aOff, oerr := pixfmt.ChannelOrder(target)
		if oerr != nil {
			return nil, oerr
		}
		for i, t := range triples {
			base := i * bpp
			out[base+rOff] = clampByte(t[0] * 255)
			out[base+gOff] = clampByte(t[1] * 255)
			out[base+bOff] = clampByte(t[2] * 255)
			if aOff >= 0 {
				out[base+aOff] = 255
			}
		}
	default:
		return nil, status.New(status.LogicError, "cannot pack RGB triples into format category %v", cat)
	}
	return out, nil
}

// SetPixelFormat converts f to newFmt in place, replacing the pixel
// buffer with a newly made one and releasing the old one through f's
// allocator. Composes:
// (a) no-op if newFmt already equals f.Format (property #6:
//     idempotency); (b) normalize whatever category f currently holds
//     to RGB triples; (c) promote/demote between float32 and byte
//     representations as newFmt requires; (d) convert colorspace when
//     tags differ. Synthesizing a brand-new palette is out of scope
//     here -- that's the palette solver's job (C4) -- so requesting a
//     palette-indexed newFmt that isn't f's current format fails with
//     BadArgument.
func (f *Frame) SetPixelFormat(newFmt pixfmt.Format) *status.Error {
	if newFmt == f.Format {
		return nil // (a)
	}
	if pixfmt.IsPaletteIndexed(newFmt) {
		return status.New(status.BadArgument, "SetPixelFormat cannot synthesize a new palette for format %d; use the palette solver", newFmt)
	}

	triples, err := f.toRGBTriples() // (b)
	if err != nil {
		return err
	}
	cs := f.Colorspace
	newBuf, perr := packRGBTriples(triples, cs, newFmt) // (c) + (d)
	if perr != nil {
		return perr
	}

	old := f.Pixels
	f.allocator.Free(old)
	f.Pixels = newBuf
	f.Format = newFmt
	f.Colorspace = pixfmt.ColorspaceOf(newFmt)
	f.Palette = nil
	f.NColors = 0
	return nil
}
