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

package pixfmt

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/mlnoga/sixel/internal/status"
)

// Colorspace is the tag attached to a Frame/pixel buffer.
type Colorspace int

const (
	Gamma Colorspace = iota
	Linear
	OKLab
)

func (c Colorspace) String() string {
	switch c {
	case Gamma:
		return "Gamma"
	case Linear:
		return "Linear"
	case OKLab:
		return "OKLab"
	default:
		return "Unknown"
	}
}

// ColorspaceOf returns the colorspace implied by a pixel format: float
// variants carry an explicit tag, everything else defaults to Gamma.
func ColorspaceOf(f Format) Colorspace {
	switch f {
	case LINEARRGBFLOAT32:
		return Linear
	case OKLABFLOAT32:
		return OKLab
	default:
		return Gamma
	}
}

// FloatFormatFor selects the float32 pixel format matching cs.
func FloatFormatFor(cs Colorspace) Format {
	switch cs {
	case Linear:
		return LINEARRGBFLOAT32
	case OKLab:
		return OKLABFLOAT32
	default:
		return RGBFLOAT32
	}
}

// Linear-sRGB <-> LMS matrices for OKLab, from Björn Ottosson's
// published derivation (https://bottosson.github.io/posts/oklab/),
// the same constants as the teacher's internal/fits/oklab.go, here
// expressed as gonum matrices so the 3-vector transform is one
// mat.Vector multiply instead of nine scalar multiplies.
var (
	rgbToLMS = mat.NewDense(3, 3, []float64{
		0.4122214708, 0.5363325363, 0.0514459929,
		0.2119034982, 0.6806995451, 0.1073969566,
		0.0883024619, 0.2817188376, 0.6299787005,
	})
	lmsPrimeToOKLab = mat.NewDense(3, 3, []float64{
		0.2104542553, 0.7936177850, -0.0040720468,
		1.9779984951, -2.4285922050, 0.4505937099,
		0.0259040371, 0.7827717662, -0.8086757660,
	})
	oklabToLMSPrime = mat.NewDense(3, 3, []float64{
		1, 0.3963377774, 0.2158037573,
		1, -0.1055613458, -0.0638541728,
		1, -0.0894841775, -1.2914855480,
	})
	lmsToRGB = mat.NewDense(3, 3, []float64{
		4.0767416621, -3.3077115913, 0.2309699292,
		-1.2684380046, 2.6097574011, -0.3413193965,
		-0.0041960863, -0.7034186147, 1.7076147010,
	})
)

func mulVec3(m *mat.Dense, v [3]float64) [3]float64 {
	var out mat.VecDense
	out.MulVec(m, mat.NewVecDense(3, v[:]))
	return [3]float64{out.AtVec(0), out.AtVec(1), out.AtVec(2)}
}

func cbrt(x float64) float64 {
	if x < 0 {
		return -math.Cbrt(-x)
	}
	return math.Cbrt(x)
}

// linearToOKLab converts a linear-sRGB triple (each in [0,1]) to OKLab.
func linearToOKLab(r, g, b float64) (l, a, bb float64) {
	lms := mulVec3(rgbToLMS, [3]float64{r, g, b})
	lmsP := [3]float64{cbrt(lms[0]), cbrt(lms[1]), cbrt(lms[2])}
	out := mulVec3(lmsPrimeToOKLab, lmsP)
	return out[0], out[1], out[2]
}

// oklabToLinear converts an OKLab triple back to linear-sRGB.
func oklabToLinear(l, a, b float64) (r, g, bb float64) {
	lmsP := mulVec3(oklabToLMSPrime, [3]float64{l, a, b})
	lms := [3]float64{lmsP[0] * lmsP[0] * lmsP[0], lmsP[1] * lmsP[1] * lmsP[1], lmsP[2] * lmsP[2] * lmsP[2]}
	out := mulVec3(lmsToRGB, lms)
	return out[0], out[1], out[2]
}

// ConvertColorspace converts a slice of float32 RGB triples (one per
// pixel) from src to dst colorspace in place. Both src and dst must be
// one of {Gamma, Linear, OKLab}; each pixel is always 3 float32 values
// regardless of tag, per FloatFormatFor's contract.
func ConvertColorspace(rgb [][3]float32, src, dst Colorspace) *status.Error {
	if src == dst {
		return nil
	}
	for i := range rgb {
		r, g, b := float64(rgb[i][0]), float64(rgb[i][1]), float64(rgb[i][2])

		// normalize to linear
		switch src {
		case Gamma:
			lut := SRGBToLinearLUT()
			r, g, b = srgbScalarToLinear(r, lut), srgbScalarToLinear(g, lut), srgbScalarToLinear(b, lut)
		case OKLab:
			r, g, b = oklabToLinear(r, g, b)
		case Linear:
			// no-op
		}

		// from linear to dst
		switch dst {
		case Gamma:
			r = linearToSRGBScalar(r)
			g = linearToSRGBScalar(g)
			b = linearToSRGBScalar(b)
		case OKLab:
			r, g, b = linearToOKLab(r, g, b)
		case Linear:
			// no-op
		}

		rgb[i][0], rgb[i][1], rgb[i][2] = float32(r), float32(g), float32(b)
	}
	return nil
}

// srgbScalarToLinear applies the exact transfer function to an
// arbitrary float32 input (not byte quantized); the LUT argument is not
// used.
func srgbScalarToLinear(c float64, _ *[256]float32) float64 {
	if c <= srgbLinearThreshold {
		return c / srgbLinearSlope
	}
	return math.Pow((c+srgbGammaOffset)/srgbGammaScale, srgbGammaExp)
}

func linearToSRGBScalar(c float64) float64 {
	if c <= srgbLinearThreshold/srgbLinearSlope {
		return c * srgbLinearSlope
	}
	return srgbGammaScale*math.Pow(c, 1/srgbGammaExp) - srgbGammaOffset
}
