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

// Package dither implements C5: forward error-diffusion/ordered
// dithering against a palette, and the k_undither post-decode
// reconstruction pipeline.
package dither

import (
	"github.com/mlnoga/sixel/internal/status"
)

// Method selects the forward dithering algorithm.
type Method int

const (
	None Method = iota
	Atkinson
	FS
	JaJuNi
	Stucki
	Burkes
	ADither
	XDither
)

// Scan selects column traversal order.
type Scan int

const (
	Raster Scan = iota
	Serpentine
)

// Config aggregates the forward-dither tunables.
type Config struct {
	Method          Method
	Scan            Scan
	OptimizePalette bool
	Complexion      int // 0-100, biases lookup toward skin tones per spec.md glossary
}

// Result is the forward-dither output: one index per pixel plus the
// palette those indices resolve against (identical to the input
// palette unless OptimizePalette compacted it).
type Result struct {
	Indices []byte
	Palette []byte
	NColors int
}

// Diffuse quantizes an RGB888 image against palette (ncolors*3 bytes,
// RGB order) and returns one palette index per pixel.
func Diffuse(rgb []byte, w, h int, palette []byte, ncolors int, cfg Config) (*Result, *status.Error) {
	if w <= 0 || h <= 0 {
		return nil, status.New(status.BadInput, "diffuse requires positive dimensions, got %dx%d", w, h)
	}
	if ncolors <= 0 || len(palette) != ncolors*3 {
		return nil, status.New(status.BadInput, "palette buffer length %d does not match ncolors*3=%d", len(palette), ncolors*3)
	}
	if len(rgb) != w*h*3 {
		return nil, status.New(status.BadInput, "rgb buffer length %d does not match %dx%dx3", len(rgb), w, h)
	}

	indices := make([]byte, w*h)
	cache := newLookupCache(ncolors)

	switch cfg.Method {
	case ADither, XDither:
		orderedDither(rgb, w, h, palette, ncolors, cfg, cache, indices)
	case None:
		for i := 0; i < w*h; i++ {
			idx, _ := cache.lookup(rgb[i*3], rgb[i*3+1], rgb[i*3+2], palette, ncolors, cfg.Complexion)
			indices[i] = idx
		}
	default:
		diffuseErrorKernel(rgb, w, h, palette, ncolors, cfg, cache, indices)
	}

	if cfg.OptimizePalette {
		remapped, compactPalette, used := remapFirstUseOrder(indices, palette, ncolors)
		return &Result{Indices: remapped, Palette: compactPalette, NColors: used}, nil
	}
	return &Result{Indices: indices, Palette: palette, NColors: ncolors}, nil
}
