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

// Package previewsrv exposes a debug HTTP surface over the sixel
// quantization pipeline, in the style of nightlight's internal/rest
// package: a thin gin router handing requests straight to the core
// library and writing results back as JSON.
package previewsrv

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/mlnoga/sixel/internal/dither"
	"github.com/mlnoga/sixel/internal/frame"
	"github.com/mlnoga/sixel/internal/histogram"
	"github.com/mlnoga/sixel/internal/palette"
	"github.com/mlnoga/sixel/internal/pixfmt"
	"github.com/mlnoga/sixel/internal/quality"
)

// Serve starts the debug preview API and blocks, listening on :8080
// unless the PORT environment variable says otherwise (gin's own
// default).
func Serve() {
	r := gin.Default()
	api := r.Group("/api")
	{
		v1 := api.Group("/v1")
		{
			v1.GET("/ping", getPing)
			v1.POST("/quantize", postQuantize)
		}
	}
	r.Run()
}

func getPing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// quantizeRequest is the JSON body accepted by POST /api/v1/quantize:
// a flat RGB888 buffer plus dimensions and the palette request size.
type quantizeRequest struct {
	Width           int    `json:"width" binding:"required"`
	Height          int    `json:"height" binding:"required"`
	RGB             []byte `json:"rgb" binding:"required"`
	RequestedColors int    `json:"requestedColors" binding:"required"`
	Method          string `json:"method"` // "heckbert" | "kmeans"
	Dither          string `json:"dither"` // "none" | "fs" | "atkinson" | ...
}

type quantizeResponse struct {
	Indices []byte `json:"indices"`
	Palette []byte `json:"palette"`
	NColors int     `json:"nColors"`
}

func postQuantize(c *gin.Context) {
	var req quantizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	f := frame.New(nil)
	if ferr := f.Init(req.RGB, req.Width, req.Height, pixfmt.RGB888, nil, 0); ferr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": ferr.Error()})
		return
	}

	pcfg := palette.Config{
		RequestedColors: req.RequestedColors,
		QuantizeModel:   parseModel(req.Method),
		QualityMode:     quality.Auto,
		FinalMergeMode:  palette.MergeAuto,
		LUTPolicy:       histogram.Auto,
	}
	p, perr := palette.Build(f.Pixels, pcfg)
	if perr != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": perr.Error()})
		return
	}

	dcfg := dither.Config{Method: parseDitherMethod(req.Dither), Scan: dither.Raster}
	res, derr := dither.Diffuse(f.Pixels, f.Width, f.Height, p.Entries, p.EntryCount, dcfg)
	if derr != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": derr.Error()})
		return
	}

	c.JSON(http.StatusOK, quantizeResponse{Indices: res.Indices, Palette: res.Palette, NColors: res.NColors})
	debug.FreeOSMemory()
}

func parseModel(s string) palette.QuantizeModel {
	switch s {
	case "kmeans":
		return palette.KMeans
	case "heckbert":
		return palette.Heckbert
	default:
		return palette.ModelAuto
	}
}

func parseDitherMethod(s string) dither.Method {
	switch s {
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
	case "none", "":
		return dither.None
	default:
		return dither.FS
	}
}
