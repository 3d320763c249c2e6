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

package sixel

import (
	"github.com/mlnoga/sixel/internal/dither"
	"github.com/mlnoga/sixel/internal/frame"
	"github.com/mlnoga/sixel/internal/palette"
	"github.com/mlnoga/sixel/internal/pixfmt"
	"github.com/mlnoga/sixel/internal/status"
)

// QuantizeResult is the encode-path output: a palette-indexed image
// plus the palette it indexes into.
type QuantizeResult struct {
	Indices []byte
	Palette []byte
	NColors int
	Width   int
	Height  int
}

// Quantize runs the full forward pipeline (§2 encode path): force f to
// RGB888, build a palette (C4) over it, then dither f against that
// palette (C5) to produce indices.
func Quantize(f *frame.Frame, cfg QuantizeConfig) (*QuantizeResult, *status.Error) {
	if err := f.SetPixelFormat(pixfmt.RGB888); err != nil {
		return nil, err
	}

	p, err := palette.Build(f.Pixels, cfg.paletteConfig())
	if err != nil {
		return nil, err
	}

	res, derr := dither.Diffuse(f.Pixels, f.Width, f.Height, p.Entries, p.EntryCount, cfg.ditherConfig())
	if derr != nil {
		return nil, derr
	}

	return &QuantizeResult{
		Indices: res.Indices,
		Palette: res.Palette,
		NColors: res.NColors,
		Width:   f.Width,
		Height:  f.Height,
	}, nil
}

// Reconstruct runs the decode post-processing path (§2 decode path):
// k_undither over indexed pixels + palette, producing an RGB888 frame.
func Reconstruct(indices []byte, w, h int, pal []byte, ncolors int, cfg ReconstructConfig) (*frame.Frame, *status.Error) {
	rgb, err := dither.Undither(indices, w, h, pal, ncolors, cfg)
	if err != nil {
		return nil, err
	}

	out := frame.New(nil)
	if ferr := out.Init(rgb, w, h, pixfmt.RGB888, nil, 0); ferr != nil {
		return nil, ferr
	}
	return out, nil
}
