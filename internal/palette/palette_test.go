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
	"testing"

	"github.com/mlnoga/sixel/internal/histogram"
	"github.com/mlnoga/sixel/internal/pixfmt"
	"github.com/mlnoga/sixel/internal/quality"
)

func baseConfig(requested int) Config {
	return Config{
		RequestedColors: requested,
		QuantizeModel:   Heckbert,
		MethodForLargest: LargeNorm,
		MethodForRep:     RepAveragePixels,
		QualityMode:      quality.Auto,
		FinalMergeMode:   MergeNone,
		LUTPolicy:        histogram.CertLUT,
	}
}

// S1 — median-cut, 2x2 RGB to 2-color palette.
func TestMedianCutTwoColorRequest(t *testing.T) {
	rgb := []byte{
		255, 0, 0,
		0, 255, 0,
		0, 0, 255,
		255, 255, 255,
	}
	cfg := baseConfig(2)
	p, err := Build(rgb, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if p.EntryCount != 2 {
		t.Fatalf("expected 2 entries, got %d", p.EntryCount)
	}
}

// S2 — k-means++, 4x1 gradient.
func TestKMeansGradientTwoCenters(t *testing.T) {
	rgb := []byte{
		0, 0, 0,
		85, 85, 85,
		170, 170, 170,
		255, 255, 255,
	}
	cfg := baseConfig(2)
	cfg.QuantizeModel = KMeans
	p, err := Build(rgb, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if p.EntryCount != 2 {
		t.Fatalf("expected 2 centers, got %d", p.EntryCount)
	}
	lo, hi := int(p.Entries[0]), int(p.Entries[3])
	if lo > hi {
		lo, hi = hi, lo
	}
	if abs(lo-42) > 4 || abs(hi-212) > 4 {
		t.Fatalf("expected centers near 42 and 212, got %d and %d", lo, hi)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// S5 — reversible grid snap.
func TestReversibleSnapAppliesToEveryByte(t *testing.T) {
	rgb := []byte{
		10, 20, 30,
		200, 210, 220,
		50, 60, 70,
	}
	cfg := baseConfig(3)
	cfg.UseReversible = true
	p, err := Build(rgb, cfg)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range p.Entries {
		if !pixfmt.IsReversible(v) {
			t.Fatalf("byte %d is not on the reversible grid", v)
		}
	}
}

// S6 — Ward final merge reducing an oversplit working set back down.
func TestWardMergeReducesToRequested(t *testing.T) {
	rgb := make([]byte, 0, 1024*3)
	for i := 0; i < 1024; i++ {
		c := byte((i % 32) * 8)
		rgb = append(rgb, c, c, c)
	}
	cfg := baseConfig(8)
	cfg.FinalMergeMode = MergeWard
	p, err := Build(rgb, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if p.EntryCount != 8 {
		t.Fatalf("expected final merge to reduce to 8 entries, got %d", p.EntryCount)
	}
}

// Invariant #1: entry_count never exceeds min(requested, PALETTE_MAX).
func TestEntryCountNeverExceedsRequested(t *testing.T) {
	rgb := make([]byte, 0, 300*3)
	for i := 0; i < 300; i++ {
		rgb = append(rgb, byte(i%256), byte((i*3)%256), byte((i*7)%256))
	}
	cfg := baseConfig(16)
	p, err := Build(rgb, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if p.EntryCount > 16 {
		t.Fatalf("entry_count %d exceeds requested 16", p.EntryCount)
	}
}

// Invariant #1 force_palette branch: with enough unique colors, forcing
// must land exactly on requested_colors.
func TestForcePaletteReachesExactCount(t *testing.T) {
	rgb := make([]byte, 0, 300*3)
	for i := 0; i < 300; i++ {
		rgb = append(rgb, byte(i%256), byte((i*5)%256), byte((i*11)%256))
	}
	cfg := baseConfig(16)
	cfg.ForcePalette = true
	p, err := Build(rgb, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if p.EntryCount != 16 {
		t.Fatalf("expected forced palette to reach 16 entries, got %d", p.EntryCount)
	}
}

// twoColorFastPath behavior directly.
func TestTwoColorFastPathOrdersByCountDesc(t *testing.T) {
	h := &histogram.Histogram{
		Control: histogram.Resolve(histogram.CertLUT, 2, false),
		Entries: []histogram.Entry{
			{Color: histogram.Pack(10, 10, 10, histogram.Resolve(histogram.CertLUT, 2, false)), Count: 5},
			{Color: histogram.Pack(200, 200, 200, histogram.Resolve(histogram.CertLUT, 2, false)), Count: 50},
		},
	}
	p, ok := twoColorFastPath(h, 2)
	if !ok {
		t.Fatal("expected fast path to trigger")
	}
	if p.Entries[0] != 200 {
		t.Fatalf("expected highest-count color first, got %d", p.Entries[0])
	}
}
