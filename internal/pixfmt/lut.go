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
	"sync"
)

// Shared process-wide read-only caches. Each is a pure function of a
// constant, so it is safe to compute lazily and publish once: readers
// either see the zero value (uninitialized) or the fully computed
// table, never a partial one, guarded by sync.Once per §5.

var (
	srgbToLinearOnce sync.Once
	srgbToLinearLUT  [256]float32

	linearToSRGBOnce sync.Once
	linearToSRGBLUT  [256]float32

	reversibleOnce sync.Once
	reversibleLUT  [256]byte // nearest reversible-tone value for each input byte
	reversibleGrid [101]byte // Q = { round(n*255/100) : n in 0..100 }
)

// sRGB transfer function breakpoints per IEC 61966-2-1.
const (
	srgbLinearThreshold = 0.04045
	srgbLinearSlope     = 12.92
	srgbGammaOffset     = 0.055
	srgbGammaScale      = 1.055
	srgbGammaExp        = 2.4
)

func srgbToLinear(c float64) float64 {
	if c <= srgbLinearThreshold {
		return c / srgbLinearSlope
	}
	return math.Pow((c+srgbGammaOffset)/srgbGammaScale, srgbGammaExp)
}

func linearToSRGB(c float64) float64 {
	if c <= srgbLinearThreshold/srgbLinearSlope {
		return c * srgbLinearSlope
	}
	return srgbGammaScale*math.Pow(c, 1/srgbGammaExp) - srgbGammaOffset
}

// SRGBToLinearLUT returns the 256-entry sRGB(0-255)->linear(0-1) table.
func SRGBToLinearLUT() *[256]float32 {
	srgbToLinearOnce.Do(func() {
		for i := 0; i < 256; i++ {
			srgbToLinearLUT[i] = float32(srgbToLinear(float64(i) / 255.0))
		}
	})
	return &srgbToLinearLUT
}

// LinearToSRGBLUT returns the 256-entry linear(0-1)->sRGB(0-255) table,
// indexed by round(linear*255).
func LinearToSRGBLUT() *[256]float32 {
	linearToSRGBOnce.Do(func() {
		for i := 0; i < 256; i++ {
			linearToSRGBLUT[i] = float32(255.0 * linearToSRGB(float64(i)/255.0))
		}
	})
	return &linearToSRGBLUT
}

func initReversible() {
	for n := 0; n <= 100; n++ {
		reversibleGrid[n] = byte(math.Round(float64(n) * 255.0 / 100.0))
	}
	for v := 0; v < 256; v++ {
		best, bestDist := reversibleGrid[0], 256
		for _, g := range reversibleGrid {
			d := int(v) - int(g)
			if d < 0 {
				d = -d
			}
			if d < bestDist {
				best, bestDist = g, d
			}
		}
		reversibleLUT[v] = best
	}
}

// ReversibleGrid returns Q = { round(n*255/100) : n in 0..100 }, the 101
// reversible-tone grid points from spec.md §3.
func ReversibleGrid() *[101]byte {
	reversibleOnce.Do(initReversible)
	return &reversibleGrid
}

// SnapReversible rounds v to the nearest member of the reversible-tone
// grid.
func SnapReversible(v byte) byte {
	reversibleOnce.Do(initReversible)
	return reversibleLUT[v]
}

// IsReversible reports whether v is itself a member of the reversible
// grid (testable property §8.2).
func IsReversible(v byte) bool {
	reversibleOnce.Do(initReversible)
	return reversibleLUT[v] == v
}
