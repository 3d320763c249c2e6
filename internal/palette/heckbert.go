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

package palette

import (
	"github.com/mlnoga/sixel/internal/histogram"
	"github.com/mlnoga/sixel/internal/status"
)

// box is one median-cut partition: a contiguous run of colorEntries
// plus its cached bounding box and pixel weight.
type box struct {
	colors    []colorEntry
	min, max  [3]float64
	weight    uint64
}

type colorEntry struct {
	rgb   [3]float64
	count uint32
}

func newBox(colors []colorEntry) box {
	b := box{colors: colors}
	b.recompute()
	return b
}

func (b *box) recompute() {
	b.min = [3]float64{255, 255, 255}
	b.max = [3]float64{0, 0, 0}
	b.weight = 0
	for _, c := range b.colors {
		for ch := 0; ch < 3; ch++ {
			if c.rgb[ch] < b.min[ch] {
				b.min[ch] = c.rgb[ch]
			}
			if c.rgb[ch] > b.max[ch] {
				b.max[ch] = c.rgb[ch]
			}
		}
		b.weight += uint64(c.count)
	}
}

func (b *box) spread(ch int) float64 { return b.max[ch] - b.min[ch] }

// largestDimension picks the split channel per LARGE_NORM/LARGE_LUM.
func (b *box) largestDimension(method MethodForLargest) int {
	if method == LargeLum {
		wr, wg, wb := luminWeights()
		w := [3]float64{wr, wg, wb}
		best, bestV := 0, -1.0
		for ch := 0; ch < 3; ch++ {
			v := b.spread(ch) * w[ch]
			if v > bestV {
				bestV, best = v, ch
			}
		}
		return best
	}
	best, bestV := 0, -1.0
	for ch := 0; ch < 3; ch++ {
		if b.spread(ch) > bestV {
			bestV, best = b.spread(ch), ch
		}
	}
	return best
}

// quickselectByChannel partitions colors in place around the
// pixel-weighted median on the given channel, adapting the
// Hoare-scheme quickselect of internal/qsort.go (QSelectFloat32) to
// weighted (count-bearing) entries.
func quickselectByChannel(colors []colorEntry, ch int, targetWeight uint64) int {
	left, right := 0, len(colors)-1
	for left < right {
		mid := (left + right) >> 1
		pivot := colors[mid].rgb[ch]
		l, r := left-1, right+1
		for {
			for {
				l++
				if colors[l].rgb[ch] >= pivot {
					break
				}
			}
			for {
				r--
				if colors[r].rgb[ch] <= pivot {
					break
				}
			}
			if l >= r {
				break
			}
			colors[l], colors[r] = colors[r], colors[l]
		}
		index := r

		var cum uint64
		for i := left; i <= index; i++ {
			cum += uint64(colors[i].count)
		}
		if cum >= targetWeight {
			right = index
		} else {
			left = index + 1
			targetWeight -= cum
		}
		if left == right {
			break
		}
	}
	return left
}

// split divides b into two boxes at the pixel-weighted median of its
// largest dimension.
func (b *box) split(method MethodForLargest) (box, box) {
	ch := b.largestDimension(method)
	half := b.weight / 2
	if half == 0 {
		half = 1
	}
	idx := quickselectByChannel(b.colors, ch, half)
	if idx <= 0 {
		idx = 1
	}
	if idx >= len(b.colors) {
		idx = len(b.colors) - 1
	}
	left := newBox(b.colors[:idx])
	right := newBox(b.colors[idx:])
	return left, right
}

// representative reduces a box to one RGB triple per MethodForRep.
func (b *box) representative(method MethodForRep) [3]byte {
	var out [3]float64
	switch method {
	case RepCenterBox:
		for ch := 0; ch < 3; ch++ {
			out[ch] = (b.min[ch] + b.max[ch]) / 2
		}
	case RepAverageColors:
		for _, c := range b.colors {
			for ch := 0; ch < 3; ch++ {
				out[ch] += c.rgb[ch]
			}
		}
		n := float64(len(b.colors))
		for ch := 0; ch < 3; ch++ {
			out[ch] /= n
		}
	default: // RepAveragePixels
		var w float64
		for _, c := range b.colors {
			cw := float64(c.count)
			w += cw
			for ch := 0; ch < 3; ch++ {
				out[ch] += c.rgb[ch] * cw
			}
		}
		if w == 0 {
			w = 1
		}
		for ch := 0; ch < 3; ch++ {
			out[ch] /= w
		}
	}
	var rgb [3]byte
	for ch := 0; ch < 3; ch++ {
		rgb[ch] = clampByteF(out[ch])
	}
	return rgb
}

func clampByteF(v float64) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v + 0.5)
}

// buildHeckbert implements §4.4.1 median-cut, followed by the shared
// final merge (§4.4.3) when oversplitting is in play.
func buildHeckbert(rgb []byte, cfg Config) (*Palette, *status.Error) {
	h, err := histogram.Build(rgb, histogram.Resolve(cfg.LUTPolicy, cfg.RequestedColors, cfg.UseReversible), cfg.QualityMode)
	if err != nil {
		return nil, err
	}
	if p, ok := twoColorFastPath(h, cfg.RequestedColors); ok {
		return finishPalette(p, cfg), nil
	}

	colors := make([]colorEntry, len(h.Entries))
	for i, e := range h.Entries {
		r, g, b := histogram.Reconstruct(e.Color, h.Control)
		colors[i] = colorEntry{rgb: [3]float64{float64(r), float64(g), float64(b)}, count: e.Count}
	}
	original := len(colors)

	if original <= cfg.RequestedColors {
		entries := make([]byte, 0, original*3)
		for _, c := range colors {
			for ch := 0; ch < 3; ch++ {
				entries = append(entries, clampByteF(c.rgb[ch]))
			}
		}
		p := &Palette{Entries: entries, EntryCount: original, RequestedColors: cfg.RequestedColors, OriginalColors: original}
		return finishPalette(p, cfg), nil
	}

	methodLargest := resolveMethodForLargest(cfg.MethodForLargest, cfg.QualityMode)
	methodRep := resolveMethodForRep(cfg.MethodForRep, cfg.UseReversible)
	resolvedMerge := resolveFinalMergeMode(cfg.FinalMergeMode)

	working := cfg.RequestedColors
	if resolvedMerge != MergeNone {
		working = workingColors(cfg.RequestedColors)
	}
	if working > original {
		working = original
	}

	boxes := []box{newBox(colors)}
	for len(boxes) < working {
		splitIdx, canSplit := pickSplitCandidate(boxes)
		if !canSplit {
			break
		}
		left, right := boxes[splitIdx].split(methodLargest)
		boxes[splitIdx] = left
		boxes = append(boxes, right)
	}

	entries := make([]byte, 0, len(boxes)*3)
	for _, b := range boxes {
		rgbTriple := b.representative(methodRep)
		entries = append(entries, rgbTriple[0], rgbTriple[1], rgbTriple[2])
	}

	p := &Palette{
		Entries:         entries,
		EntryCount:      len(boxes),
		RequestedColors: cfg.RequestedColors,
		OriginalColors:  original,
	}
	p = finishPalette(p, cfg)

	weights := make([]uint64, len(boxes))
	for i, b := range boxes {
		weights[i] = b.weight
	}
	return mergeIfNeeded(p, h, weights, cfg)
}

// pickSplitCandidate selects the highest-weight box with more than one
// unique color, reporting false when no box can be split further.
func pickSplitCandidate(boxes []box) (int, bool) {
	best, bestW := -1, uint64(0)
	for i, b := range boxes {
		if len(b.colors) < 2 {
			continue
		}
		if b.weight >= bestW {
			bestW, best = b.weight, i
		}
	}
	return best, best >= 0
}

// workingColors computes the oversplit target from
// SIXEL_PALETTE_OVERSPLIT_FACTOR.
func workingColors(requested int) int {
	factor := Tunables().OversplitFactor
	w := int(float64(requested)*factor + 0.5)
	if w < requested {
		w = requested
	}
	if w > PaletteMax {
		w = PaletteMax
	}
	return w
}

func finishPalette(p *Palette, cfg Config) *Palette {
	p.MethodForLargest = cfg.MethodForLargest
	p.MethodForRep = cfg.MethodForRep
	p.QualityMode = cfg.QualityMode
	p.ForcePalette = cfg.ForcePalette
	p.UseReversible = cfg.UseReversible
	p.QuantizeModel = Heckbert
	p.FinalMergeMode = resolveFinalMergeMode(cfg.FinalMergeMode)
	p.LUTPolicy = cfg.LUTPolicy
	return p
}
