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

package frame

import (
	"testing"

	"github.com/mlnoga/sixel/internal/pixfmt"
	"github.com/mlnoga/sixel/internal/status"
)

func TestInitRejectsBadDimensions(t *testing.T) {
	cases := []struct{ w, h int }{{0, 1}, {1, 0}, {-1, 1}, {WidthLimit + 1, 1}, {1, HeightLimit + 1}}
	for _, c := range cases {
		f := New(nil)
		err := f.Init(make([]byte, 3), c.w, c.h, pixfmt.RGB888, nil, 0)
		if err == nil || err.Kind != status.BadInput {
			t.Fatalf("w=%d h=%d: expected BadInput, got %v", c.w, c.h, err)
		}
	}
}

func TestStripAlphaDiscardsAlpha(t *testing.T) {
	f := New(nil)
	pixels := []byte{10, 20, 30, 128, 200, 100, 50, 0}
	if err := f.Init(pixels, 1, 2, pixfmt.RGBA8888, nil, 0); err != nil {
		t.Fatal(err)
	}
	if err := f.StripAlpha(nil); err != nil {
		t.Fatal(err)
	}
	if f.Format != pixfmt.RGB888 {
		t.Fatalf("expected RGB888, got %v", f.Format)
	}
	want := []byte{10, 20, 30, 200, 100, 50}
	for i := range want {
		if f.Pixels[i] != want[i] {
			t.Fatalf("byte %d: got %d want %d", i, f.Pixels[i], want[i])
		}
	}
}

func TestSetPixelFormatIdempotent(t *testing.T) {
	f := New(nil)
	pixels := []byte{10, 20, 30, 40, 50, 60}
	if err := f.Init(pixels, 1, 2, pixfmt.RGB888, nil, 0); err != nil {
		t.Fatal(err)
	}
	before := append([]byte(nil), f.Pixels...)
	if err := f.SetPixelFormat(pixfmt.RGB888); err != nil {
		t.Fatal(err)
	}
	for i := range before {
		if f.Pixels[i] != before[i] {
			t.Fatalf("no-op conversion changed byte %d: %d -> %d", i, before[i], f.Pixels[i])
		}
	}
}

func TestClipOutOfBounds(t *testing.T) {
	f := New(nil)
	pixels := make([]byte, 4*4*3)
	if err := f.Init(pixels, 4, 4, pixfmt.RGB888, nil, 0); err != nil {
		t.Fatal(err)
	}
	if err := f.Clip(2, 2, 4, 4); err == nil {
		t.Fatal("expected BadInput for out-of-bounds clip")
	}
	if err := f.Clip(1, 1, 2, 2); err != nil {
		t.Fatal(err)
	}
	if f.Width != 2 || f.Height != 2 {
		t.Fatalf("unexpected dims after clip: %dx%d", f.Width, f.Height)
	}
}
