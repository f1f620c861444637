// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package regionpack

import (
	"errors"
	"fmt"
	"io"
)

// RegionReader performs a single forward pass over a region's chunk
// bodies, in on-disk (location) order. It is not safe for random access
// and not safe for concurrent use.
//
// Once a read fails, the reader is tainted: its position in the
// underlying stream is indeterminate, and any further call to ReadNext
// is a contract violation.
type RegionReader struct {
	r         io.Reader
	table     RegionTable
	pos       int64
	nextIndex int
	tainted   bool
}

// NewRegionReader parses the 8192-byte region header from r and returns a
// reader positioned to stream the chunk bodies that follow, in ascending
// on-disk order.
func NewRegionReader(r io.Reader) (*RegionReader, error) {
	table, err := ParseRegionTable(r)
	if err != nil {
		return nil, err
	}
	return &RegionReader{
		r:     r,
		table: table,
		pos:   HeaderSize,
	}, nil
}

// Peek returns the next chunk's descriptor and logical position without
// consuming it. ok is false once every chunk has been read.
func (z *RegionReader) Peek() (info ChunkInfo, pos int, ok bool) {
	if z.nextIndex >= len(z.table.Entries) {
		return ChunkInfo{}, 0, false
	}
	e := z.table.Entries[z.nextIndex]
	return e.Info, e.Pos, true
}

// ReadNext skips to and copies the next chunk's full sector-padded body
// (as reported by its ChunkInfo) into w, advancing past it. ok is false
// once every chunk has been read, in which case w is untouched.
//
// Calling ReadNext on a tainted reader is a contract violation: a prior
// call must have returned a non-nil error.
func (z *RegionReader) ReadNext(w io.Writer) (info ChunkInfo, pos int, ok bool, err error) {
	if z.tainted {
		return ChunkInfo{}, 0, false, fmt.Errorf("%w: read on tainted RegionReader", ErrContractViolation)
	}

	e, p, ok := z.Peek()
	if !ok {
		return ChunkInfo{}, 0, false, nil
	}

	location := int64(e.Location())
	if location < z.pos {
		z.tainted = true
		return ChunkInfo{}, 0, false, fmt.Errorf("%w: chunk at pos=%d located before current stream position", ErrMalformedRegion, p)
	}

	if location > z.pos {
		if err := skipReader(z.r, location-z.pos); err != nil {
			z.tainted = true
			return ChunkInfo{}, 0, false, errContext("skipping to chunk at pos", p, err)
		}
		z.pos = location
	}

	size := int64(e.Size())
	n, err := io.CopyN(w, z.r, size)
	z.pos += n
	if err != nil {
		z.tainted = true
		wrapped := ioErr("copying chunk body", err)
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			wrapped = eofErr("copying chunk body", err)
		}
		return ChunkInfo{}, 0, false, errContext("reading chunk body at pos", p, wrapped)
	}

	z.nextIndex++
	return e, p, true, nil
}
