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

// Package palette implements C4: the two quantizers (median-cut,
// k-means++) and their shared final-merge stage.
package palette

import (
	"sort"

	"github.com/mlnoga/sixel/internal/histogram"
	"github.com/mlnoga/sixel/internal/pixfmt"
	"github.com/mlnoga/sixel/internal/quality"
	"github.com/mlnoga/sixel/internal/status"
)

// PaletteMax is the hard ceiling on palette size (§3).
const PaletteMax = 256

// MethodForLargest selects how median-cut picks the split dimension.
type MethodForLargest int

const (
	LargeNorm MethodForLargest = iota
	LargeLum
	LargeAuto
)

// MethodForRep selects how a median-cut box is reduced to one color.
type MethodForRep int

const (
	RepCenterBox MethodForRep = iota
	RepAverageColors
	RepAveragePixels
	RepAuto
)

// QuantizeModel selects the top-level solver.
type QuantizeModel int

const (
	Heckbert QuantizeModel = iota
	KMeans
	ModelAuto
)

// FinalMergeMode selects the shared final-merge stage.
type FinalMergeMode int

const (
	MergeWard FinalMergeMode = iota
	MergeHKMeans
	MergeNone
	MergeAuto
)

// Config aggregates every tunable the two solvers and the final-merge
// stage read.
type Config struct {
	RequestedColors int
	QuantizeModel   QuantizeModel
	MethodForLargest MethodForLargest
	MethodForRep     MethodForRep
	QualityMode      quality.Mode
	ForcePalette     bool
	UseReversible    bool
	FinalMergeMode   FinalMergeMode
	LUTPolicy        histogram.LUTPolicy
}

// Palette is the C4 output: a flat RGB triple table plus the resolved
// configuration that produced it.
type Palette struct {
	Entries         []byte // entry_count*3 bytes, R,G,B
	EntryCount      int
	RequestedColors int
	OriginalColors  int // number of unique colors seen before quantization

	MethodForLargest MethodForLargest
	MethodForRep     MethodForRep
	QualityMode      quality.Mode
	ForcePalette     bool
	UseReversible    bool
	QuantizeModel    QuantizeModel
	FinalMergeMode   FinalMergeMode
	LUTPolicy        histogram.LUTPolicy
}

// Validate checks the §3/§8 palette invariants.
func (p *Palette) Validate() *status.Error {
	if p.EntryCount > PaletteMax {
		return status.New(status.LogicError, "palette has %d entries, exceeds PALETTE_MAX %d", p.EntryCount, PaletteMax)
	}
	if len(p.Entries) != p.EntryCount*3 {
		return status.New(status.LogicError, "entries buffer length %d does not match entry_count*3=%d", len(p.Entries), p.EntryCount*3)
	}
	if p.RequestedColors < 1 {
		return status.New(status.LogicError, "requested_colors must be >=1, got %d", p.RequestedColors)
	}
	if p.UseReversible {
		for _, v := range p.Entries {
			if !pixfmt.IsReversible(v) {
				return status.New(status.LogicError, "reversible palette contains non-grid channel value %d", v)
			}
		}
	}
	return nil
}

// clampRequestedColors clamps 0 requested colors up to 1 (§8 boundary
// behavior #11) and down to PaletteMax.
func clampRequestedColors(n int) int {
	if n < 1 {
		return 1
	}
	if n > PaletteMax {
		return PaletteMax
	}
	return n
}

// resolveMethodForLargest implements the original_source/src/palette-heckbert.c
// LARGE_AUTO resolution: NORM unless quality is LOW, in which case the
// cheaper luminance-weighted split is used.
func resolveMethodForLargest(m MethodForLargest, q quality.Mode) MethodForLargest {
	if m != LargeAuto {
		return m
	}
	if q == quality.Low {
		return LargeLum
	}
	return LargeNorm
}

// resolveMethodForRep implements REP_AUTO: average-pixels unless the
// palette must land on the reversible grid, in which case center-box
// values are more predictable.
func resolveMethodForRep(m MethodForRep, useReversible bool) MethodForRep {
	if m != RepAuto {
		return m
	}
	if useReversible {
		return RepCenterBox
	}
	return RepAveragePixels
}

// resolveFinalMergeMode is the single place `final_merge_mode = Auto`
// is decided (§9 open question): it currently resolves to None.
func resolveFinalMergeMode(m FinalMergeMode) FinalMergeMode {
	if m == MergeAuto {
		return MergeNone
	}
	return m
}

// snapEntries rounds every channel byte of entries to the nearest
// reversible-tone grid point, in place.
func snapEntries(entries []byte) {
	for i := range entries {
		entries[i] = pixfmt.SnapReversible(entries[i])
	}
}

// snapFloatReversible clamps a float channel to a byte and snaps it to
// the reversible-tone grid, returning the snapped byte; callers convert
// it back to float for centroid arithmetic.
func snapFloatReversible(v float64) byte {
	return pixfmt.SnapReversible(clampByteF(v))
}

// twoColorFastPath implements the original_source/src/palette.c
// degenerate case: when exactly 2 colors are requested and the
// histogram holds exactly 2 unique colors, skip clustering and return
// them ordered by descending pixel count.
func twoColorFastPath(h *histogram.Histogram, requested int) (*Palette, bool) {
	if requested != 2 || len(h.Entries) != 2 {
		return nil, false
	}
	entries := append([]histogram.Entry(nil), h.Entries...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Count > entries[j].Count })
	out := make([]byte, 0, 6)
	for _, e := range entries {
		r, g, b := histogram.Reconstruct(e.Color, h.Control)
		out = append(out, r, g, b)
	}
	return &Palette{
		Entries:         out,
		EntryCount:      2,
		RequestedColors: 2,
		OriginalColors:  2,
	}, true
}

// Build runs the solver selected by cfg.QuantizeModel (defaulting
// Auto to Heckbert per spec.md §4.4) and applies force-palette
// completion.
func Build(rgb []byte, cfg Config) (*Palette, *status.Error) {
	requested := clampRequestedColors(cfg.RequestedColors)
	cfg.RequestedColors = requested

	model := cfg.QuantizeModel
	if model == ModelAuto {
		model = Heckbert
	}

	var p *Palette
	var err *status.Error
	switch model {
	case Heckbert:
		p, err = buildHeckbert(rgb, cfg)
	case KMeans:
		p, err = buildKMeans(rgb, cfg)
	default:
		return nil, status.New(status.LogicError, "unsupported quantize model %d", model)
	}
	if err != nil {
		return nil, err
	}

	if cfg.ForcePalette && p.EntryCount < requested && p.OriginalColors >= requested {
		if ferr := forcePaletteCompletion(p, rgb, cfg); ferr != nil {
			return nil, ferr
		}
	}
	if cfg.UseReversible {
		snapEntries(p.Entries)
	}
	if verr := p.Validate(); verr != nil {
		return nil, verr
	}
	return p, nil
}
