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
	"image"
	"math"

	"golang.org/x/image/draw"

	"github.com/mlnoga/sixel/internal/pixfmt"
	"github.com/mlnoga/sixel/internal/status"
)

// ResampleMethod enumerates the resamplers Frame.Resize accepts.
type ResampleMethod int

const (
	NEAREST ResampleMethod = iota
	BILINEAR
	BICUBIC
	LANCZOS2
	LANCZOS3
	LANCZOS4
)

// Resize scales f to newW x newH using method, first forcing RGB888 per
// spec.md §4.2. NEAREST/BILINEAR/BICUBIC delegate to
// golang.org/x/image/draw's scalers (already a teacher dependency, used
// there for TIFF encode); LANCZOS{2,3,4} are implemented directly
// against the windowed-sinc kernel since x/image/draw has none.
func (f *Frame) Resize(newW, newH int, method ResampleMethod) *status.Error {
	if newW <= 0 || newW > WidthLimit || newH <= 0 || newH > HeightLimit {
		return status.New(status.BadInput, "invalid target dimensions %dx%d", newW, newH)
	}
	if err := f.SetPixelFormat(pixfmt.RGB888); err != nil {
		return err
	}

	switch method {
	case NEAREST, BILINEAR, BICUBIC:
		return f.resizeViaDraw(newW, newH, method)
	case LANCZOS2, LANCZOS3, LANCZOS4:
		return f.resizeLanczos(newW, newH, lanczosA(method))
	default:
		return status.New(status.BadArgument, "unknown resample method %d", method)
	}
}

func (f *Frame) resizeViaDraw(newW, newH int, method ResampleMethod) *status.Error {
	src := &image.NRGBA{
		Pix:    expandToNRGBA(f.Pixels, f.Width, f.Height),
		Stride: f.Width * 4,
		Rect:   image.Rect(0, 0, f.Width, f.Height),
	}
	dst := image.NewNRGBA(image.Rect(0, 0, newW, newH))

	var scaler draw.Scaler
	switch method {
	case NEAREST:
		scaler = draw.NearestNeighbor
	case BILINEAR:
		scaler = draw.ApproxBiLinear
	case BICUBIC:
		scaler = draw.CatmullRom
	}
	scaler.Scale(dst, dst.Rect, src, src.Rect, draw.Over, nil)

	out := make([]byte, newW*newH*3)
	for i := 0; i < newW*newH; i++ {
		out[i*3] = dst.Pix[i*4]
		out[i*3+1] = dst.Pix[i*4+1]
		out[i*3+2] = dst.Pix[i*4+2]
	}

	f.allocator.Free(f.Pixels)
	f.Pixels = out
	f.Width, f.Height = newW, newH
	return nil
}

func expandToNRGBA(rgb888 []byte, w, h int) []byte {
	n := w * h
	out := make([]byte, n*4)
	for i := 0; i < n; i++ {
		out[i*4] = rgb888[i*3]
		out[i*4+1] = rgb888[i*3+1]
		out[i*4+2] = rgb888[i*3+2]
		out[i*4+3] = 255
	}
	return out
}

func lanczosA(m ResampleMethod) int {
	switch m {
	case LANCZOS2:
		return 2
	case LANCZOS3:
		return 3
	default:
		return 4
	}
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	px := math.Pi * x
	return math.Sin(px) / px
}

func lanczosKernel(x float64, a int) float64 {
	if x <= -float64(a) || x >= float64(a) {
		return 0
	}
	return sinc(x) * sinc(x/float64(a))
}

// resizeLanczos performs separable two-pass Lanczos-a resampling
// directly over the RGB888 buffer.
func (f *Frame) resizeLanczos(newW, newH, a int) *status.Error {
	// horizontal pass: f.Width x f.Height -> newW x f.Height
	horiz := make([]float32, newW*f.Height*3)
	scaleX := float64(f.Width) / float64(newW)
	for y := 0; y < f.Height; y++ {
		for x := 0; x < newW; x++ {
			srcX := (float64(x)+0.5)*scaleX - 0.5
			lo := int(math.Floor(srcX)) - a + 1
			hi := int(math.Floor(srcX)) + a
			var sum [3]float64
			var wsum float64
			for sx := lo; sx <= hi; sx++ {
				w := lanczosKernel(srcX-float64(sx), a)
				if w == 0 {
					continue
				}
				cx := clampInt(sx, 0, f.Width-1)
				base := (y*f.Width + cx) * 3
				sum[0] += w * float64(f.Pixels[base])
				sum[1] += w * float64(f.Pixels[base+1])
				sum[2] += w * float64(f.Pixels[base+2])
				wsum += w
			}
			dbase := (y*newW + x) * 3
			if wsum == 0 {
				wsum = 1
			}
			horiz[dbase] = float32(sum[0] / wsum)
			horiz[dbase+1] = float32(sum[1] / wsum)
			horiz[dbase+2] = float32(sum[2] / wsum)
		}
	}

	// vertical pass: newW x f.Height -> newW x newH
	out := make([]byte, newW*newH*3)
	scaleY := float64(f.Height) / float64(newH)
	for x := 0; x < newW; x++ {
		for y := 0; y < newH; y++ {
			srcY := (float64(y)+0.5)*scaleY - 0.5
			lo := int(math.Floor(srcY)) - a + 1
			hi := int(math.Floor(srcY)) + a
			var sum [3]float64
			var wsum float64
			for sy := lo; sy <= hi; sy++ {
				w := lanczosKernel(srcY-float64(sy), a)
				if w == 0 {
					continue
				}
				cy := clampInt(sy, 0, f.Height-1)
				base := (cy*newW + x) * 3
				sum[0] += w * float64(horiz[base])
				sum[1] += w * float64(horiz[base+1])
				sum[2] += w * float64(horiz[base+2])
				wsum += w
			}
			if wsum == 0 {
				wsum = 1
			}
			dbase := (y*newW + x) * 3
			out[dbase] = clampByte(float32(sum[0] / wsum))
			out[dbase+1] = clampByte(float32(sum[1] / wsum))
			out[dbase+2] = clampByte(float32(sum[2] / wsum))
		}
	}

	f.allocator.Free(f.Pixels)
	f.Pixels = out
	f.Width, f.Height = newW, newH
	return nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
