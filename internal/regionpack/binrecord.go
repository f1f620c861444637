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

import "io"

// BinHeaderSize is the fixed size in bytes of a BinHeader.
const BinHeaderSize = 16

// BinHeader is the fixed 16-byte prefix of a bin-format record: a chunk's
// logical position, its region timestamp carried over verbatim, and the
// length in bytes of the decompressed payload that follows it in the
// stream.
type BinHeader struct {
	Pos       uint32 // little-endian on disk
	Timestamp uint32 // big-endian on disk, carried over from the region
	Length    uint64 // little-endian on disk
}

// ReadBinHeader reads a 16-byte BinHeader from r. No validation beyond the
// length-driven read itself is performed here; callers validate Pos and
// uniqueness.
func ReadBinHeader(r io.Reader) (BinHeader, error) {
	var buf [BinHeaderSize]byte
	if err := readExact(r, buf[:], "reading bin record header"); err != nil {
		return BinHeader{}, err
	}
	return BinHeader{
		Pos:       getU32LE(buf[0:4]),
		Timestamp: getU32BE(buf[4:8]),
		Length:    getU64LE(buf[8:16]),
	}, nil
}

// WriteTo writes the 16-byte on-disk form of h to w.
func (h BinHeader) WriteTo(w io.Writer) (int64, error) {
	var buf [BinHeaderSize]byte
	putU32LE(buf[0:4], h.Pos)
	putU32BE(buf[4:8], h.Timestamp)
	putU64LE(buf[8:16], h.Length)
	n, err := w.Write(buf[:])
	if err != nil {
		return int64(n), ioErr("writing bin record header", err)
	}
	return int64(n), nil
}
