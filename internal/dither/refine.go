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

package dither

import (
	"github.com/mlnoga/sixel/internal/pixfmt"
	"github.com/mlnoga/sixel/internal/status"
)

// refine runs the §4.5.4 step 5 post-undither pipeline: sRGB -> linear
// -> YCbCr -> gradient-gated bilateral smooth -> weak sharpen (applied
// twice) -> back to linear -> sRGB, using the process-wide gamma LUTs
// from internal/pixfmt.
func refine(rgb []byte, w, h int) ([]byte, *status.Error) {
	if w <= 0 || h <= 0 {
		return nil, status.New(status.BadInput, "refine requires positive dimensions, got %dx%d", w, h)
	}

	toLinear := pixfmt.SRGBToLinearLUT()
	toSRGB := pixfmt.LinearToSRGBLUT()

	y := make([]float64, w*h)
	cb := make([]float64, w*h)
	cr := make([]float64, w*h)

	for i := 0; i < w*h; i++ {
		lr := float64(toLinear[rgb[i*3]])
		lg := float64(toLinear[rgb[i*3+1]])
		lb := float64(toLinear[rgb[i*3+2]])
		yy := 0.299*lr + 0.587*lg + 0.114*lb
		y[i] = yy
		cb[i] = 0.564 * (lb - yy)
		cr[i] = 0.713 * (lr - yy)
	}

	grad := gradientMap(y, w, h)

	y1 := bilateralSmooth(y, grad, w, h, 0.25)
	y2 := gaussianSmooth(y1, w, h)
	y2 = gateBlend(y1, y2, grad)
	relu(y2)
	y3 := sharpenPass(y2, w, h, 0.60)
	y4 := sharpenPass(y3, w, h, 0.40)

	out := make([]byte, w*h*3)
	for i := 0; i < w*h; i++ {
		yy := y4[i]
		lr := yy + 1.403*cr[i]
		lg := yy - 0.344*cb[i] - 0.714*cr[i]
		lb := yy + 1.773*cb[i]
		out[i*3] = encodeLinear(lr, toSRGB)
		out[i*3+1] = encodeLinear(lg, toSRGB)
		out[i*3+2] = encodeLinear(lb, toSRGB)
	}
	return out, nil
}

func encodeLinear(v float64, lut *[256]float32) byte {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	// LUT is indexed by round(linear*255) and holds the sRGB value on
	// the 0-255 scale.
	return byte(lut[int(v*255+0.5)] + 0.5)
}

// gradientMap is the magnitude of a simple central-difference gradient
// of y, used to gate the bilateral smoothing and sharpen passes.
func gradientMap(y []float64, w, h int) []float64 {
	out := make([]float64, w*h)
	for yy := 0; yy < h; yy++ {
		for xx := 0; xx < w; xx++ {
			x0, x1 := clampInt0(xx-1, w), clampInt0(xx+1, w)
			y0, y1 := clampInt0(yy-1, h), clampInt0(yy+1, h)
			gx := y[yy*w+x1] - y[yy*w+x0]
			gy := y[y1*w+xx] - y[y0*w+xx]
			out[yy*w+xx] = abs64(gx) + abs64(gy)
		}
	}
	return out
}

func clampInt0(v, limit int) int {
	if v < 0 {
		return 0
	}
	if v >= limit {
		return limit - 1
	}
	return v
}

func abs64(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// gauss3x3 is a normalized 3x3 Gaussian-ish kernel (binomial approx).
var gauss3x3 = [3][3]float64{
	{1, 2, 1},
	{2, 4, 2},
	{1, 2, 1},
}

const gauss3x3Sum = 16

func gaussianSmooth(y []float64, w, h int) []float64 {
	out := make([]float64, w*h)
	for yy := 0; yy < h; yy++ {
		for xx := 0; xx < w; xx++ {
			var sum float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					px, py := clampInt0(xx+kx, w), clampInt0(yy+ky, h)
					sum += y[py*w+px] * gauss3x3[ky+1][kx+1]
				}
			}
			out[yy*w+xx] = sum / gauss3x3Sum
		}
	}
	return out
}

// bilateralSmooth blends a Gaussian-smoothed value against the
// original using a range weight derived from the local gradient
// (sigma_range = 10 in 8-bit-equivalent linear units), then mixes the
// result back toward the original by beta.
func bilateralSmooth(y, grad []float64, w, h int, beta float64) []float64 {
	smoothed := gaussianSmooth(y, w, h)
	out := make([]float64, w*h)
	const sigmaRange = 10.0 / 255.0
	for i := range y {
		rangeWeight := expNeg(grad[i] * grad[i] / (2 * sigmaRange * sigmaRange))
		blended := y[i]*(1-rangeWeight) + smoothed[i]*rangeWeight
		out[i] = y[i]*(1-beta) + blended*beta
	}
	return out
}

// expNeg approximates exp(-x) for x>=0 via a short series; refine() is
// best-effort cosmetic post-processing so this need not be exact.
func expNeg(x float64) float64 {
	if x > 20 {
		return 0
	}
	// 1/(1+x+x^2/2+x^3/6+x^4/24) approximates e^-x for x>=0.
	return 1 / (1 + x + x*x/2 + x*x*x/6 + x*x*x*x/24)
}

func gateBlend(orig, smoothed, grad []float64) []float64 {
	out := make([]float64, len(orig))
	for i := range orig {
		gate := 1 / (1 + grad[i]*4)
		out[i] = orig[i]*(1-gate) + smoothed[i]*gate
	}
	return out
}

func relu(y []float64) {
	for i := range y {
		if y[i] < 0 {
			y[i] = 0
		}
	}
}

// sharpenPass applies the weak 3x3 sharpen kernel (center 1.5, 8
// neighbors -0.0625) at the given blend strength alpha.
func sharpenPass(y []float64, w, h int, alpha float64) []float64 {
	out := make([]float64, w*h)
	for yy := 0; yy < h; yy++ {
		for xx := 0; xx < w; xx++ {
			var sum float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					px, py := clampInt0(xx+kx, w), clampInt0(yy+ky, h)
					weight := -0.0625
					if kx == 0 && ky == 0 {
						weight = 1.5
					}
					sum += y[py*w+px] * weight
				}
			}
			orig := y[yy*w+xx]
			out[yy*w+xx] = orig*(1-alpha) + sum*alpha
		}
	}
	return out
}
