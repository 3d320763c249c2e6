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
	"gonum.org/v1/gonum/stat"

	"github.com/mlnoga/sixel/internal/histogram"
	"github.com/mlnoga/sixel/internal/status"
)

// cluster is a final-merge working unit: a centroid plus its pixel
// weight, tracked independently of the box/colorEntry types used by
// the two solvers so Ward/HK-means can operate on either's output.
type cluster struct {
	centroid [3]float64
	weight   uint64
}

// mergeIfNeeded reduces p (currently holding working_colors entries)
// down to cfg.RequestedColors via the resolved final-merge strategy,
// then runs SIXEL_PALETTE_FINAL_MERGE_ADDITIONAL_LLOYD_ITER_COUNT extra
// Lloyd passes against the full histogram. A no-op when the entry
// count is already at or below what was requested.
func mergeIfNeeded(p *Palette, h *histogram.Histogram, weights []uint64, cfg Config) (*Palette, *status.Error) {
	if p.EntryCount <= cfg.RequestedColors {
		return p, nil
	}

	clusters := make([]cluster, p.EntryCount)
	for i := 0; i < p.EntryCount; i++ {
		clusters[i] = cluster{
			centroid: [3]float64{float64(p.Entries[i*3]), float64(p.Entries[i*3+1]), float64(p.Entries[i*3+2])},
			weight:   weights[i],
		}
	}

	var reduced []cluster
	var extraLloyd int
	switch p.FinalMergeMode {
	case MergeWard:
		reduced = wardMerge(clusters, cfg.RequestedColors)
		extraLloyd = Tunables().FinalMergeAdditionalLloydWard
	case MergeHKMeans:
		reduced = hkMeansMerge(clusters, cfg.RequestedColors, cfg.UseReversible)
		extraLloyd = Tunables().FinalMergeAdditionalLloydHK
	default:
		return nil, status.New(status.LogicError, "unsupported final merge mode %d", p.FinalMergeMode)
	}

	if extraLloyd > 0 {
		samples := histogramToColorEntries(h)
		centers := make([][3]float64, len(reduced))
		for i, c := range reduced {
			centers[i] = c.centroid
		}
		centers, finalWeights := lloydIterate(samples, centers, extraLloyd, 0, cfg.UseReversible)
		for i := range reduced {
			reduced[i].centroid = centers[i]
			reduced[i].weight = finalWeights[i]
		}
	}

	entries := make([]byte, 0, len(reduced)*3)
	for _, c := range reduced {
		entries = append(entries, clampByteF(c.centroid[0]), clampByteF(c.centroid[1]), clampByteF(c.centroid[2]))
	}
	p.Entries = entries
	p.EntryCount = len(reduced)
	return p, nil
}

func histogramToColorEntries(h *histogram.Histogram) []colorEntry {
	out := make([]colorEntry, len(h.Entries))
	for i, e := range h.Entries {
		r, g, b := histogram.Reconstruct(e.Color, h.Control)
		out[i] = colorEntry{rgb: [3]float64{float64(r), float64(g), float64(b)}, count: e.Count}
	}
	return out
}

// wardMerge repeatedly merges the pair minimizing the Ward linkage
// criterion until target clusters remain.
func wardMerge(clusters []cluster, target int) []cluster {
	cs := append([]cluster(nil), clusters...)
	for len(cs) > target {
		bi, bj, bestD := 0, 1, wardCost(cs[0], cs[1])
		for i := 0; i < len(cs); i++ {
			for j := i + 1; j < len(cs); j++ {
				d := wardCost(cs[i], cs[j])
				if d < bestD {
					bestD, bi, bj = d, i, j
				}
			}
		}
		merged := mergeTwo(cs[bi], cs[bj])
		cs[bi] = merged
		cs = append(cs[:bj], cs[bj+1:]...)
	}
	return cs
}

func wardCost(a, b cluster) float64 {
	wi, wj := float64(a.weight), float64(b.weight)
	if wi+wj == 0 {
		return 0
	}
	return (wi * wj / (wi + wj)) * sqDist(a.centroid, b.centroid)
}

func mergeTwo(a, b cluster) cluster {
	wi, wj := float64(a.weight), float64(b.weight)
	var c [3]float64
	for ch := 0; ch < 3; ch++ {
		c[ch] = stat.Mean([]float64{a.centroid[ch], b.centroid[ch]}, []float64{wi, wj})
	}
	return cluster{centroid: c, weight: a.weight + b.weight}
}

// hkMeansMerge seeds k=target centers from the brightest remaining
// clusters (NTSC luminance), then runs weighted Lloyd iterations with
// the clusters themselves as the data points, snapping to the
// reversible grid after each update when requested.
func hkMeansMerge(clusters []cluster, target int, reversible bool) []cluster {
	cs := append([]cluster(nil), clusters...)
	lum := make([]float64, len(cs))
	for i, c := range cs {
		lum[i] = 0.2989*c.centroid[0] + 0.5866*c.centroid[1] + 0.1145*c.centroid[2]
	}
	order := make([]int, len(cs))
	for i := range order {
		order[i] = i
	}
	// simple insertion sort descending by luminance; cluster counts are small.
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && lum[order[j]] > lum[order[j-1]]; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}

	centers := make([][3]float64, 0, target)
	for i := 0; i < target && i < len(order); i++ {
		centers = append(centers, cs[order[i]].centroid)
	}

	samples := make([]colorEntry, len(cs))
	for i, c := range cs {
		samples[i] = colorEntry{rgb: c.centroid, count: uint32(clampCount(c.weight))}
	}

	t := Tunables()
	centers, weights := lloydIterate(samples, centers, t.FinalMergeHKMeansIterMax, t.FinalMergeHKMeansThreshold*t.FinalMergeHKMeansThreshold, reversible)

	out := make([]cluster, len(centers))
	for i, c := range centers {
		out[i] = cluster{centroid: c, weight: weights[i]}
	}
	return out
}

func clampCount(w uint64) uint64 {
	const max32 = 1<<32 - 1
	if w > max32 {
		return max32
	}
	return w
}
