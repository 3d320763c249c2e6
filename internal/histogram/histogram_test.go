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
	"testing"

	"github.com/mlnoga/sixel/internal/quality"
)

func TestPackReconstructRoundTrip(t *testing.T) {
	c := Resolve(Bit5, 256, false)
	for _, v := range []byte{0, 1, 7, 8, 127, 128, 200, 254, 255} {
		key := Pack(v, v, v, c)
		r, _, _ := Reconstruct(key, c)
		// reconstruction must land within one quantization bucket of v
		diff := int(r) - int(v)
		if diff < 0 {
			diff = -diff
		}
		if diff > (1 << uint(c.ChannelShift)) {
			t.Fatalf("v=%d reconstructed to %d, bucket width %d", v, r, 1<<uint(c.ChannelShift))
		}
	}
}

func TestPackInjectiveOnQuantizedColors(t *testing.T) {
	c := Resolve(Bit6, 256, false)
	seen := make(map[uint32][3]uint32)
	step := byte(1 << uint(c.ChannelShift))
	for r := byte(0); ; r += step {
		for g := byte(0); ; g += step {
			for b := byte(0); ; b += step {
				key := Pack(r, g, b, c)
				if prev, ok := seen[key]; ok {
					t.Fatalf("collision: (%d,%d,%d) and %v both pack to %d", r, g, b, prev, key)
				}
				seen[key] = [3]uint32{uint32(r), uint32(g), uint32(b)}
				if b > 255-step {
					break
				}
			}
			if g > 255-step {
				break
			}
		}
		if r > 255-step {
			break
		}
	}
}

func TestBuildEmpty(t *testing.T) {
	h, err := Build(nil, Resolve(Auto, 16, false), quality.Auto)
	if err != nil {
		t.Fatal(err)
	}
	if len(h.Entries) != 0 {
		t.Fatalf("expected empty histogram, got %d entries", len(h.Entries))
	}
}

func TestBuildCountsAllUniqueColors(t *testing.T) {
	rgb := []byte{
		255, 0, 0,
		0, 255, 0,
		0, 0, 255,
		255, 255, 255,
	}
	h, err := Build(rgb, Resolve(CertLUT, 256, false), quality.Full)
	if err != nil {
		t.Fatal(err)
	}
	if len(h.Entries) != 4 {
		t.Fatalf("expected 4 distinct colors, got %d", len(h.Entries))
	}
	if h.TotalCount() != 4 {
		t.Fatalf("expected total count 4, got %d", h.TotalCount())
	}
}
