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
	"testing"

	"github.com/mlnoga/sixel/internal/dither"
	"github.com/mlnoga/sixel/internal/frame"
	"github.com/mlnoga/sixel/internal/palette"
	"github.com/mlnoga/sixel/internal/pixfmt"
)

func TestQuantizeThenReconstructRoundTrips(t *testing.T) {
	w, h := 2, 2
	rgb := []byte{
		255, 0, 0,
		0, 255, 0,
		0, 0, 255,
		255, 255, 255,
	}
	f := frame.New(nil)
	if err := f.Init(append([]byte(nil), rgb...), w, h, pixfmt.RGB888, nil, 0); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultQuantizeConfig(4)
	cfg.QuantizeModel = palette.Heckbert
	cfg.DitherMethod = dither.None

	res, err := Quantize(f, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Indices) != w*h {
		t.Fatalf("expected %d indices, got %d", w*h, len(res.Indices))
	}

	out, rerr := Reconstruct(res.Indices, w, h, res.Palette, res.NColors, ReconstructConfig{})
	if rerr != nil {
		t.Fatal(rerr)
	}
	if out.Width != w || out.Height != h {
		t.Fatalf("expected %dx%d output, got %dx%d", w, h, out.Width, out.Height)
	}
}
