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

package histogram

import (
	"sort"

	"github.com/pbnjay/memory"

	"github.com/mlnoga/sixel/internal/logging"
	"github.com/mlnoga/sixel/internal/quality"
	"github.com/mlnoga/sixel/internal/status"
)

// Entry is one unique quantized color and its pixel count.
type Entry struct {
	Color uint32
	Count uint32
}

// Histogram is the sparse table of unique packed colors plus the
// Control that produced them.
type Histogram struct {
	Entries []Entry
	Control Control
}

// Pack quantizes one RGB triple under c and returns the packed key.
// Channel i occupies bits [i*bits, (i+1)*bits), with channel 0 (red)
// least significant -- the reverse of typical input byte order, per
// spec.md §3.
func Pack(r, g, b byte, c Control) uint32 {
	qr := quantizeChannel(r, c)
	qg := quantizeChannel(g, c)
	qb := quantizeChannel(b, c)
	bits := uint(c.ChannelBits)
	return qr | qg<<bits | qb<<(2*bits)
}

func quantizeChannel(v byte, c Control) uint32 {
	if c.ChannelShift == 0 {
		return uint32(v) & c.ChannelMask
	}
	rounded := uint32(v) + uint32(1<<uint(c.ChannelShift-1))
	q := rounded >> uint(c.ChannelShift)
	if q > c.ChannelMask {
		q = c.ChannelMask
	}
	return q
}

// Reconstruct recovers a representative RGB triple from a packed key:
// the inverse of Pack, except the top quantization bucket maps to 255
// rather than its rounded midpoint (so the brightest bucket reaches
// full white/saturation).
func Reconstruct(key uint32, c Control) (r, g, b byte) {
	bits := uint(c.ChannelBits)
	qr := key & c.ChannelMask
	qg := (key >> bits) & c.ChannelMask
	qb := (key >> (2 * bits)) & c.ChannelMask
	return dequantizeChannel(qr, c), dequantizeChannel(qg, c), dequantizeChannel(qb, c)
}

func dequantizeChannel(q uint32, c Control) byte {
	if q == c.ChannelMask {
		return 255
	}
	v := q << uint(c.ChannelShift)
	if c.ChannelShift > 0 {
		v |= 1 << uint(c.ChannelShift-1)
	}
	if v > 255 {
		v = 255
	}
	return byte(v)
}

// sample density per quality mode, per spec.md §3.
func maxSamples(q quality.Mode) int {
	switch q {
	case quality.Low:
		return 18383
	case quality.High:
		return 1118383
	case quality.Full, quality.HighColor, quality.Auto:
		return 4003079
	default:
		return 4003079
	}
}

// scaledMaxSamples applies pbnjay/memory's free-memory reading to scale
// FULL-density sampling down on memory constrained hosts, mirroring
// nightlight's cmd/nightlight/main.go startup banner.
func scaledMaxSamples(q quality.Mode) int {
	n := maxSamples(q)
	if q != quality.Full {
		return n
	}
	freeMiB := memory.FreeMemory() / 1024 / 1024
	if freeMiB < 512 {
		logging.Printf("histogram: only %d MiB free, scaling FULL sampling density down from %d\n", freeMiB, n)
		return maxSamples(quality.High)
	}
	return n
}

// Build samples up to a quality-mode-dependent number of pixels from
// rgb (tightly packed RGB888 triples) and accumulates them into a
// sparse histogram under control.
func Build(rgb []byte, control Control, q quality.Mode) (*Histogram, *status.Error) {
	if len(rgb)%3 != 0 {
		return nil, status.New(status.BadArgument, "rgb buffer length %d is not a multiple of 3", len(rgb))
	}
	depth := 3
	length := len(rgb) / depth
	if length == 0 {
		return &Histogram{Control: control}, nil
	}

	maxS := scaledMaxSamples(q)
	step := length / maxS
	if step < 1 {
		step = 1
	}

	counts := make(map[uint32]uint32, minInt(length, maxS))
	packInto(rgb, length, step, control, counts)

	entries := make([]Entry, 0, len(counts))
	for k, v := range counts {
		entries = append(entries, Entry{Color: k, Count: v})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Count > entries[j].Count })

	return &Histogram{Entries: entries, Control: control}, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// ReconstructedColors returns the representative RGB triples for every
// histogram entry, in the same order as h.Entries, optionally snapped
// to the reversible-tone grid by the caller via control.ReversibleRounding
// (the snap itself is applied by the palette package, which owns the
// reversible LUT; this only decodes the packed bucket).
func (h *Histogram) ReconstructedColors() [][3]byte {
	out := make([][3]byte, len(h.Entries))
	for i, e := range h.Entries {
		r, g, b := Reconstruct(e.Color, h.Control)
		out[i] = [3]byte{r, g, b}
	}
	return out
}

// TotalCount returns the sum of all entry counts (the number of sampled
// pixels actually counted, after striding).
func (h *Histogram) TotalCount() uint64 {
	var total uint64
	for _, e := range h.Entries {
		total += uint64(e.Count)
	}
	return total
}
