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

// forcePaletteCompletion implements §4.4.4: pad p with the histogram's
// highest-count colors not already present, cycling through the list
// if necessary, until p.RequestedColors entries exist.
func forcePaletteCompletion(p *Palette, rgb []byte, cfg Config) *status.Error {
	h, err := histogram.Build(rgb, histogram.Resolve(cfg.LUTPolicy, cfg.RequestedColors, cfg.UseReversible), cfg.QualityMode)
	if err != nil {
		return err
	}
	if len(h.Entries) == 0 {
		return nil
	}

	present := make(map[[3]byte]bool, p.EntryCount)
	for i := 0; i < p.EntryCount; i++ {
		present[[3]byte{p.Entries[i*3], p.Entries[i*3+1], p.Entries[i*3+2]}] = true
	}

	losers := make([][3]byte, 0, len(h.Entries))
	for _, e := range h.Entries { // h.Entries is already sorted by count desc
		r, g, b := histogram.Reconstruct(e.Color, h.Control)
		rgb3 := [3]byte{r, g, b}
		if !present[rgb3] {
			losers = append(losers, rgb3)
		}
	}
	if len(losers) == 0 {
		losers = append(losers, [3]byte{p.Entries[0], p.Entries[1], p.Entries[2]})
	}

	i := 0
	for p.EntryCount < p.RequestedColors && p.EntryCount < PaletteMax {
		c := losers[i%len(losers)]
		p.Entries = append(p.Entries, c[0], c[1], c[2])
		p.EntryCount++
		i++
	}
	return nil
}
