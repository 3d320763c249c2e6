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

package main

import (
	"flag"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"time"

	"github.com/pbnjay/memory"

	"github.com/mlnoga/sixel/internal/dither"
	"github.com/mlnoga/sixel/internal/frame"
	"github.com/mlnoga/sixel/internal/logging"
	"github.com/mlnoga/sixel/internal/palette"
	"github.com/mlnoga/sixel/internal/pixfmt"
	"github.com/mlnoga/sixel/internal/quality"
	"github.com/mlnoga/sixel/internal/status"
	"github.com/mlnoga/sixel/sixel"
)

const version = "0.1.0"

var totalMiBs = memory.TotalMemory() / 1024 / 1024

var colors = flag.Int64("colors", 256, "requested palette size, 1..256")
var model = flag.String("model", "auto", "quantizer: auto, heckbert, kmeans")
var diffuse = flag.String("diffuse", "fs", "dither method: none, atkinson, fs, jajuni, stucki, burkes, adither, xdither")
var scan = flag.String("scan", "raster", "scan order: raster, serpentine")
var force = flag.Bool("force", false, "force_palette: pad to exactly -colors entries when possible")
var reversible = flag.Bool("reversible", false, "snap palette channels to the reversible tone grid")
var qualityFlag = flag.String("quality", "auto", "sampling quality: low, high, full, highcolor, auto")
var out = flag.String("out", "out.raw", "write quantized indices + palette header to `file`")
var log = flag.String("log", "", "also log to `file`")

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `sixelquant %s

Usage: %s [-flag value] input.png

Quantizes an image to a palette-indexed SIXEL-ready representation.
`, version, os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *log != "" {
		if err := logging.AlsoToFile(*log); err != nil {
			fmt.Fprintf(os.Stderr, "could not open log file %s: %s\n", *log, err.Error())
		}
	}
	logging.Printf("sixelquant %s, %d MiB physical memory\n", version, totalMiBs)

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	start := time.Now()
	if err := run(flag.Arg(0)); err != nil {
		logging.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
	logging.Printf("done in %v\n", time.Since(start))
}

func run(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return err
	}

	fr, serr := fromImage(img)
	if serr != nil {
		return fmt.Errorf("%s", serr.Error())
	}

	cfg := sixel.DefaultQuantizeConfig(int(*colors))
	cfg.QuantizeModel = parseModel(*model)
	cfg.DitherMethod = parseDiffuse(*diffuse)
	cfg.DitherScan = parseScan(*scan)
	cfg.ForcePalette = *force
	cfg.UseReversible = *reversible
	cfg.QualityMode = parseQuality(*qualityFlag)

	res, qerr := sixel.Quantize(fr, cfg)
	if qerr != nil {
		return fmt.Errorf("%s", qerr.Error())
	}

	logging.Printf("quantized %dx%d to %d colors\n", res.Width, res.Height, res.NColors)
	return writeRaw(*out, res)
}

// fromImage converts a decoded stdlib image.Image into a frame.Frame,
// mirroring the pack-then-Init convention used by the frame package's
// own tests.
func fromImage(img image.Image) (*frame.Frame, *status.Error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	rgb := make([]byte, w*h*3)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			rgb[i], rgb[i+1], rgb[i+2] = byte(r>>8), byte(g>>8), byte(bl>>8)
			i += 3
		}
	}
	fr := frame.New(nil)
	if err := fr.Init(rgb, w, h, pixfmt.RGB888, nil, 0); err != nil {
		return nil, err
	}
	return fr, nil
}

func parseModel(s string) palette.QuantizeModel {
	switch s {
	case "heckbert":
		return palette.Heckbert
	case "kmeans":
		return palette.KMeans
	default:
		return palette.ModelAuto
	}
}

func parseDiffuse(s string) dither.Method {
	switch s {
	case "none":
		return dither.None
	case "atkinson":
		return dither.Atkinson
	case "fs":
		return dither.FS
	case "jajuni":
		return dither.JaJuNi
	case "stucki":
		return dither.Stucki
	case "burkes":
		return dither.Burkes
	case "adither":
		return dither.ADither
	case "xdither":
		return dither.XDither
	default:
		return dither.FS
	}
}

func parseScan(s string) dither.Scan {
	if s == "serpentine" {
		return dither.Serpentine
	}
	return dither.Raster
}

func parseQuality(s string) quality.Mode {
	switch s {
	case "low":
		return quality.Low
	case "high":
		return quality.High
	case "full":
		return quality.Full
	case "highcolor":
		return quality.HighColor
	default:
		return quality.Auto
	}
}

func writeRaw(path string, res *sixel.QuantizeResult) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()
	header := []byte{byte(res.NColors), byte(res.Width >> 8), byte(res.Width), byte(res.Height >> 8), byte(res.Height)}
	if _, err := out.Write(header); err != nil {
		return err
	}
	if _, err := out.Write(res.Palette); err != nil {
		return err
	}
	_, err = out.Write(res.Indices)
	return err
}
