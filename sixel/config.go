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

// Package sixel wires the pixel/frame/histogram/palette/dither
// components (internal/pixfmt, internal/frame, internal/histogram,
// internal/palette, internal/dither) into the two public entry points
// an encoder or decoder actually needs: Quantize (forward: frame ->
// indexed pixels + palette) and Reconstruct (inverse: indexed pixels +
// palette -> RGB888).
package sixel

import (
	"github.com/mlnoga/sixel/internal/dither"
	"github.com/mlnoga/sixel/internal/histogram"
	"github.com/mlnoga/sixel/internal/palette"
	"github.com/mlnoga/sixel/internal/quality"
)

// QuantizeConfig aggregates every knob needed to turn a frame into an
// indexed image: the C4 palette configuration and the C5 forward-dither
// configuration.
type QuantizeConfig struct {
	RequestedColors  int
	QuantizeModel    palette.QuantizeModel
	MethodForLargest palette.MethodForLargest
	MethodForRep     palette.MethodForRep
	QualityMode      quality.Mode
	ForcePalette     bool
	UseReversible    bool
	FinalMergeMode   palette.FinalMergeMode
	LUTPolicy        histogram.LUTPolicy

	DitherMethod    dither.Method
	DitherScan      dither.Scan
	OptimizePalette bool
	Complexion      int
}

// DefaultQuantizeConfig returns the spec's documented defaults: Heckbert
// median-cut, AUTO quality, no forced palette, Floyd-Steinberg
// diffusion on a raster scan.
func DefaultQuantizeConfig(requestedColors int) QuantizeConfig {
	return QuantizeConfig{
		RequestedColors:  requestedColors,
		QuantizeModel:    palette.ModelAuto,
		MethodForLargest: palette.LargeAuto,
		MethodForRep:     palette.RepAuto,
		QualityMode:      quality.Auto,
		FinalMergeMode:   palette.MergeAuto,
		LUTPolicy:        histogram.Auto,
		DitherMethod:     dither.FS,
		DitherScan:       dither.Raster,
	}
}

// ReconstructConfig aggregates the k_undither tunables (§4.5.4).
type ReconstructConfig = dither.UnditherConfig

func (c QuantizeConfig) paletteConfig() palette.Config {
	return palette.Config{
		RequestedColors:  c.RequestedColors,
		QuantizeModel:    c.QuantizeModel,
		MethodForLargest: c.MethodForLargest,
		MethodForRep:     c.MethodForRep,
		QualityMode:      c.QualityMode,
		ForcePalette:     c.ForcePalette,
		UseReversible:    c.UseReversible,
		FinalMergeMode:   c.FinalMergeMode,
		LUTPolicy:        c.LUTPolicy,
	}
}

func (c QuantizeConfig) ditherConfig() dither.Config {
	return dither.Config{
		Method:          c.DitherMethod,
		Scan:            c.DitherScan,
		OptimizePalette: c.OptimizePalette,
		Complexion:      c.Complexion,
	}
}
