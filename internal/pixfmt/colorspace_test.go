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

package pixfmt

import "testing"

func TestReversibleGridMembership(t *testing.T) {
	grid := ReversibleGrid()
	for _, v := range grid {
		if !IsReversible(v) {
			t.Fatalf("grid value %d not reported reversible", v)
		}
	}
}

func TestSnapReversibleIsIdempotent(t *testing.T) {
	for v := 0; v < 256; v++ {
		snapped := SnapReversible(byte(v))
		if SnapReversible(snapped) != snapped {
			t.Fatalf("snap(%d)=%d is not a fixed point", v, snapped)
		}
	}
}

func TestGammaLinearRoundTrip(t *testing.T) {
	// Property #9: a -> b -> a is within 1 LSB over a representative
	// sweep. Only the 256 diagonal values r=g=b are swept, not 256^3;
	// the gamma/linear functions are scalar per channel, so the diagonal
	// already exercises every transfer-function breakpoint.
	for v := 0; v < 256; v++ {
		buf := [][3]float32{{float32(v) / 255, float32(v) / 255, float32(v) / 255}}
		orig := buf[0]
		if err := ConvertColorspace(buf, Gamma, Linear); err != nil {
			t.Fatalf("gamma->linear: %v", err)
		}
		if err := ConvertColorspace(buf, Linear, Gamma); err != nil {
			t.Fatalf("linear->gamma: %v", err)
		}
		diff := buf[0][0] - orig[0]
		if diff < 0 {
			diff = -diff
		}
		if diff > 1.0/255.0+1e-4 {
			t.Fatalf("round trip v=%d: got %v want ~%v (diff %v)", v, buf[0][0], orig[0], diff)
		}
	}
}

func TestOKLabRoundTrip(t *testing.T) {
	for v := 0; v < 256; v += 17 {
		buf := [][3]float32{{float32(v) / 255, float32(v) / 255, float32(v) / 255}}
		orig := buf[0]
		if err := ConvertColorspace(buf, Linear, OKLab); err != nil {
			t.Fatalf("linear->oklab: %v", err)
		}
		if err := ConvertColorspace(buf, OKLab, Linear); err != nil {
			t.Fatalf("oklab->linear: %v", err)
		}
		diff := buf[0][0] - orig[0]
		if diff < 0 {
			diff = -diff
		}
		if diff > 1.0/255.0+1e-3 {
			t.Fatalf("oklab round trip v=%d: got %v want ~%v", v, buf[0][0], orig[0])
		}
	}
}

func TestNormalizePacked16(t *testing.T) {
	// white in RGB565 -> 0xFFFF -> (255,255,255) in RGB888
	src := []byte{0xFF, 0xFF}
	out, fmtOut, err := Normalize(src, RGB565, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if fmtOut != RGB888 {
		t.Fatalf("expected RGB888, got %v", fmtOut)
	}
	if out[0] != 255 || out[1] != 255 || out[2] != 255 {
		t.Fatalf("expected white, got %v", out)
	}
}

func TestNormalizePalette(t *testing.T) {
	// PAL4, two pixels packed into one byte: index 3, index 10 (masked to 4 bits -> 10)
	src := []byte{0x3A}
	out, fmtOut, err := Normalize(src, PAL4, 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	if fmtOut != PAL8 {
		t.Fatalf("expected PAL8, got %v", fmtOut)
	}
	if out[0] != 3 || out[1] != 0xA {
		t.Fatalf("expected [3 10], got %v", out)
	}
}
