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

// Package alloc implements the §6 allocator capability set threaded
// through every long-lived Frame/Palette, plus a scoped scratch-buffer
// helper that releases on every exit path including error paths.
//
// The capability set mirrors nightlight's internal/pool.go, which pools
// constant-sized []byte/[]float32/... slices behind a map of
// sync.Pool keyed by size. Here the pool sits behind an explicit
// Alloc/Calloc/Realloc/Free interface, so a caller may supply its own
// allocator. Frame releases replaced pixel buffers through it and Clip
// allocates its new buffer through it; Frame's other conversions
// (SetPixelFormat, StripAlpha, Resize) and the palette and dither
// stages allocate their buffers with make.
package alloc

import "sync"

// Allocator is the capability set threaded through Frame and Palette.
// Any method may be nil, in which case Default's behavior is used; Free
// must tolerate being called with a nil-valued slice.
type Allocator struct {
	Alloc   func(size int) []byte
	Calloc  func(size int) []byte
	Realloc func(buf []byte, newSize int) []byte
	Free    func(buf []byte)
}

// pools of constant-sized byte slices, bucketed by capacity, to reduce
// allocation overhead on the hot Frame/Palette buffer churn path.
var bytePools = struct {
	sync.RWMutex
	m map[int]*sync.Pool
}{m: make(map[int]*sync.Pool)}

func sizedBytePool(size int) *sync.Pool {
	bytePools.RLock()
	p := bytePools.m[size]
	bytePools.RUnlock()
	if p != nil {
		return p
	}
	bytePools.Lock()
	defer bytePools.Unlock()
	if p = bytePools.m[size]; p != nil {
		return p
	}
	p = &sync.Pool{New: func() interface{} { return make([]byte, size) }}
	bytePools.m[size] = p
	return p
}

func poolAlloc(size int) []byte {
	if size <= 0 {
		return nil
	}
	buf := sizedBytePool(size).Get().([]byte)
	return buf[:size]
}

func poolCalloc(size int) []byte {
	buf := poolAlloc(size)
	for i := range buf {
		buf[i] = 0
	}
	return buf
}

func poolFree(buf []byte) {
	if buf == nil {
		return
	}
	sizedBytePool(cap(buf)).Put(buf[:cap(buf)])
}

func poolRealloc(buf []byte, newSize int) []byte {
	n := poolAlloc(newSize)
	copy(n, buf)
	poolFree(buf)
	return n
}

// Default is the process-default allocator, backed by a size-bucketed
// sync.Pool exactly like nightlight's internal/pool.go.
var Default = &Allocator{
	Alloc:   poolAlloc,
	Calloc:  poolCalloc,
	Realloc: poolRealloc,
	Free:    poolFree,
}

// Resolve returns Default if a is nil; otherwise it returns a copy of a
// with each nil Alloc/Calloc/Free taken from Default. A nil Realloc is
// composed from the resolved Alloc and Free (e.g. a custom Alloc/Free
// pair gets a Realloc built on that pair).
func Resolve(a *Allocator) *Allocator {
	if a == nil {
		return Default
	}
	r := &Allocator{Alloc: a.Alloc, Calloc: a.Calloc, Realloc: a.Realloc, Free: a.Free}
	if r.Alloc == nil {
		r.Alloc = Default.Alloc
	}
	if r.Calloc == nil {
		r.Calloc = Default.Calloc
	}
	if r.Free == nil {
		r.Free = Default.Free
	}
	if r.Realloc == nil {
		alloc, free := r.Alloc, r.Free
		r.Realloc = func(buf []byte, newSize int) []byte {
			n := alloc(newSize)
			copy(n, buf)
			free(buf)
			return n
		}
	}
	return r
}

// Scratch acquires a scratch buffer of size bytes from a and guarantees
// its release via the returned release function, which callers must
// invoke with defer immediately after checking the error from whatever
// scoped operation follows -- including on error exit paths.
func Scratch(a *Allocator, size int) (buf []byte, release func()) {
	r := Resolve(a)
	buf = r.Alloc(size)
	return buf, func() { r.Free(buf) }
}
