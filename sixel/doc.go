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

// Package sixel is the public facade over the color and output
// pipeline: palette construction, dithering, and post-decode
// reconstruction for DEC SIXEL graphics. Wire-format parsing and
// emission, file I/O, and TTY probing are external collaborators (see
// internal/previewsrv for a debug HTTP surface over this package).
package sixel
