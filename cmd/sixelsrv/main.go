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
	"os"
	"runtime/debug"

	"github.com/pbnjay/memory"

	"github.com/mlnoga/sixel/internal/logging"
	"github.com/mlnoga/sixel/internal/previewsrv"
)

const version = "0.1.0"

var totalMiBs = memory.TotalMemory() / 1024 / 1024

var log = flag.String("log", "previewsrv.log", "also log to `file`")

func main() {
	debug.SetGCPercent(10)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `sixelsrv %s

Usage: %s [-flag value]

Serves a debug HTTP preview API over the palette/dither pipeline.

Flags:
`, version, os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *log != "" {
		if err := logging.AlsoToFile(*log); err != nil {
			fmt.Fprintf(os.Stderr, "could not open log file %s: %s\n", *log, err.Error())
		}
	}
	logging.Printf("sixelsrv %s, %d MiB physical memory\n", version, totalMiBs)

	previewsrv.Serve()
}
