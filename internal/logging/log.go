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

// Package logging implements the singleton log writer shared by the
// pipeline's components. It mirrors nightlight's internal/log.go:
// writes go to stdout and, optionally, are duplicated to a file. Unlike
// the teacher's CLI-only log, this one is called from library code, so
// it has no Fatal-style helper and never calls os.Exit.
package logging

import (
	"bufio"
	"fmt"
	"os"
)

var logFile   *bufio.Writer
var logFileOS *os.File

// AlsoToFile duplicates subsequent log output to fileName, truncating
// any existing content. Closes and flushes a previously configured file
// first.
func AlsoToFile(fileName string) error {
	if logFile != nil {
		if err := logFile.Flush(); err != nil {
			return err
		}
		if err := logFileOS.Close(); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(fileName, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0666)
	if err != nil {
		return err
	}
	logFileOS = f
	logFile = bufio.NewWriter(f)
	return nil
}

func Printf(format string, args ...interface{}) (n int, err error) {
	n, err = fmt.Printf(format, args...)
	if err != nil || logFile == nil {
		return n, err
	}
	return fmt.Fprintf(logFile, format, args...)
}

func Println(args ...interface{}) (n int, err error) {
	n, err = fmt.Println(args...)
	if err != nil || logFile == nil {
		return n, err
	}
	return fmt.Fprintln(logFile, args...)
}

func Print(args ...interface{}) (n int, err error) {
	n, err = fmt.Print(args...)
	if err != nil || logFile == nil {
		return n, err
	}
	return fmt.Fprint(logFile, args...)
}

// Sync flushes and syncs the log file, if one is configured.
func Sync() error {
	if logFile == nil {
		return nil
	}
	if err := logFile.Flush(); err != nil {
		return err
	}
	return logFileOS.Sync()
}
