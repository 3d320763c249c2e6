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
	"github.com/valyala/fastrand"
	"gonum.org/v1/gonum/floats"

	"github.com/mlnoga/sixel/internal/histogram"
	"github.com/mlnoga/sixel/internal/status"
)

// maxReservoirSamples bounds the k-means++ sample pool, per spec.md §4.4.2.
const maxReservoirSamples = 50000

// kmeansIterCap returns the Lloyd-iteration cap for a quality mode,
// clamped by SIXEL_PALETTE_KMEANS_ITER_COUNT_MAX.
func kmeansIterCap(q Config) int {
	base := map[int]int{0: 6, 1: 24, 2: 48, 3: 24, 4: 12}[int(q.QualityMode)]
	if base == 0 {
		base = 12
	}
	cap := Tunables().KMeansIterMax
	if base < cap {
		return base
	}
	return cap
}

// reservoirSample draws up to maxReservoirSamples weighted colors from
// h, mirroring nightlight's FastApproxMedian fastrand.RNG{}.Uint32n
// sampling idiom adapted to a weighted population.
func reservoirSample(h *histogram.Histogram, limit int) []colorEntry {
	colors := make([]colorEntry, len(h.Entries))
	for i, e := range h.Entries {
		r, g, b := histogram.Reconstruct(e.Color, h.Control)
		colors[i] = colorEntry{rgb: [3]float64{float64(r), float64(g), float64(b)}, count: e.Count}
	}
	if len(colors) <= limit {
		return colors
	}
	rng := fastrand.RNG{}
	out := make([]colorEntry, limit)
	copy(out, colors[:limit])
	for i := limit; i < len(colors); i++ {
		j := rng.Uint32n(uint32(i + 1))
		if int(j) < limit {
			out[j] = colors[i]
		}
	}
	return out
}

func sqDist(a, b [3]float64) float64 {
	var s float64
	for ch := 0; ch < 3; ch++ {
		d := a[ch] - b[ch]
		s += d * d
	}
	return s
}

// seedKMeansPlusPlus seeds k centers from samples: center 0 uniform,
// the rest chosen with probability proportional to squared distance to
// the nearest existing center.
func seedKMeansPlusPlus(samples []colorEntry, k int) [][3]float64 {
	rng := fastrand.RNG{}
	centers := make([][3]float64, 0, k)
	first := samples[rng.Uint32n(uint32(len(samples)))]
	centers = append(centers, first.rgb)

	dist := make([]float64, len(samples))
	for len(centers) < k {
		var total float64
		for i, s := range samples {
			best := dist[i]
			if len(centers) == 1 {
				best = sqDist(s.rgb, centers[0])
			} else {
				d := sqDist(s.rgb, centers[len(centers)-1])
				if d < best {
					best = d
				}
			}
			dist[i] = best
			total += best * float64(s.count)
		}
		if total <= 0 {
			centers = append(centers, samples[rng.Uint32n(uint32(len(samples)))].rgb)
			continue
		}
		target := float64(rng.Uint32n(1<<31-1)) / float64(1<<31-1) * total
		var cum float64
		chosen := samples[len(samples)-1].rgb
		for i, s := range samples {
			cum += dist[i] * float64(s.count)
			if cum >= target {
				chosen = s.rgb
				break
			}
		}
		centers = append(centers, chosen)
	}
	return centers
}

// lloydIterate runs Lloyd's algorithm to convergence or the iteration
// cap, repairing empty clusters by stealing the farthest sample from
// its own center, and returns the final centers and per-center weight.
func lloydIterate(samples []colorEntry, centers [][3]float64, iterCap int, threshold float64, snap bool) ([][3]float64, []uint64) {
	k := len(centers)
	assign := make([]int, len(samples))
	for iter := 0; iter < iterCap; iter++ {
		for i, s := range samples {
			best, bestD := 0, sqDist(s.rgb, centers[0])
			for c := 1; c < k; c++ {
				d := sqDist(s.rgb, centers[c])
				if d < bestD {
					bestD, best = d, c
				}
			}
			assign[i] = best
		}

		sums := make([][3]float64, k)
		weights := make([]uint64, k)
		for i, s := range samples {
			c := assign[i]
			w := float64(s.count)
			for ch := 0; ch < 3; ch++ {
				sums[c][ch] += s.rgb[ch] * w
			}
			weights[c] += s.count
		}

		for c := 0; c < k; c++ {
			if weights[c] == 0 {
				farthestIdx, farthestD := -1, -1.0
				for i := range samples {
					d := sqDist(samples[i].rgb, centers[assign[i]])
					if d > farthestD {
						farthestD, farthestIdx = d, i
					}
				}
				if farthestIdx >= 0 {
					old := assign[farthestIdx]
					w := float64(samples[farthestIdx].count)
					for ch := 0; ch < 3; ch++ {
						sums[old][ch] -= samples[farthestIdx].rgb[ch] * w
						sums[c][ch] += samples[farthestIdx].rgb[ch] * w
					}
					weights[old] -= samples[farthestIdx].count
					weights[c] += samples[farthestIdx].count
					assign[farthestIdx] = c
				}
			}
		}

		moves := make([]float64, k)
		next := make([][3]float64, k)
		for c := 0; c < k; c++ {
			if weights[c] == 0 {
				next[c] = centers[c]
				continue
			}
			for ch := 0; ch < 3; ch++ {
				next[c][ch] = sums[c][ch] / float64(weights[c])
			}
			if snap {
				for ch := 0; ch < 3; ch++ {
					next[c][ch] = float64(snapFloatReversible(next[c][ch]))
				}
			}
			moves[c] = sqDist(next[c], centers[c])
		}
		centers = next

		if floats.Sum(moves)/float64(k) <= threshold {
			break
		}
	}

	// final weight pass at converged assignment
	weights := make([]uint64, k)
	for i, s := range samples {
		best, bestD := 0, sqDist(s.rgb, centers[0])
		for c := 1; c < k; c++ {
			d := sqDist(s.rgb, centers[c])
			if d < bestD {
				bestD, best = d, c
			}
		}
		weights[best] += s.count
	}
	return centers, weights
}

// buildKMeans implements §4.4.2 followed by the shared final merge.
func buildKMeans(rgb []byte, cfg Config) (*Palette, *status.Error) {
	h, err := histogram.Build(rgb, histogram.Resolve(cfg.LUTPolicy, cfg.RequestedColors, cfg.UseReversible), cfg.QualityMode)
	if err != nil {
		return nil, err
	}
	if p, ok := twoColorFastPath(h, cfg.RequestedColors); ok {
		return finishKMeansPalette(p, cfg), nil
	}

	original := len(h.Entries)
	if original == 0 {
		return nil, status.New(status.LogicError, "k-means solver received an empty histogram")
	}

	samples := reservoirSample(h, maxReservoirSamples)

	working := cfg.RequestedColors
	if resolveFinalMergeMode(cfg.FinalMergeMode) != MergeNone {
		working = workingColors(cfg.RequestedColors)
	}
	if working > original {
		working = original
	}
	if working < 1 {
		working = 1
	}

	centers := seedKMeansPlusPlus(samples, working)
	centers, weights := lloydIterate(samples, centers, kmeansIterCap(cfg), Tunables().KMeansThreshold*Tunables().KMeansThreshold, cfg.UseReversible)

	entries := make([]byte, 0, len(centers)*3)
	for _, c := range centers {
		entries = append(entries, clampByteF(c[0]), clampByteF(c[1]), clampByteF(c[2]))
	}

	p := &Palette{
		Entries:         entries,
		EntryCount:      len(centers),
		RequestedColors: cfg.RequestedColors,
		OriginalColors:  original,
	}
	p = finishKMeansPalette(p, cfg)
	return mergeIfNeeded(p, h, weights, cfg)
}

func finishKMeansPalette(p *Palette, cfg Config) *Palette {
	p.MethodForLargest = cfg.MethodForLargest
	p.MethodForRep = cfg.MethodForRep
	p.QualityMode = cfg.QualityMode
	p.ForcePalette = cfg.ForcePalette
	p.UseReversible = cfg.UseReversible
	p.QuantizeModel = KMeans
	p.FinalMergeMode = resolveFinalMergeMode(cfg.FinalMergeMode)
	p.LUTPolicy = cfg.LUTPolicy
	return p
}
