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
	"bytes"
	"errors"
	"fmt"
	"io"
)

// SeekWriter is the io.Writer a Decompact destination must additionally
// support: seeking to an absolute offset (to reserve, then later fill in,
// the header table) and seeking forward from the current position (to
// skip over sector padding already accounted for but not yet written).
type SeekWriter interface {
	io.Writer
	io.Seeker
}

// Decompact reads a bin-format stream from r and writes an equivalent
// region to w: every record is re-compressed with Zlib, sector-padded,
// and appended to the body; once the stream is exhausted, Decompact seeks
// back to the start of w and writes the header table last, so it
// atomically reflects exactly the set of records consumed.
//
// w must support Seek; a pipe or other append-only sink cannot satisfy
// this contract. Decompact does not create, truncate,
// or remove files: callers own w's lifecycle, including removing a
// partially written destination on error.
func Decompact(r io.Reader, w SeekWriter) (int64, error) {
	if _, err := w.Seek(HeaderSize, io.SeekStart); err != nil {
		return 0, ioErr("seeking past header reservation", err)
	}

	var slots [MaxChunkCount]*ChunkInfo
	location := int64(HeaderSize)
	var lastPad int64
	var scratch bytes.Buffer
	var compressed bytes.Buffer
	var total int64

	for {
		header, err := ReadBinHeader(r)
		if err != nil {
			// io.ReadFull distinguishes a zero-byte read (clean io.EOF) from
			// a partial one (io.ErrUnexpectedEOF): only the former means
			// "no more records"; the latter is a truncated stream.
			if IsCleanEOF(err) {
				break
			}
			return total, errContext("reading bin record header at location", location, err)
		}

		if header.Pos >= MaxChunkCount {
			return total, fmt.Errorf("%w: pos %d out of range", ErrMalformedBin, header.Pos)
		}
		if slots[header.Pos] != nil {
			return total, fmt.Errorf("%w: duplicate pos %d", ErrMalformedBin, header.Pos)
		}

		scratch.Reset()
		if _, err := io.CopyN(&scratch, r, int64(header.Length)); err != nil {
			wrapped := ioErr("reading bin record payload", err)
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				wrapped = eofErr("reading bin record payload", err)
			}
			return total, errContext("decompacting record at pos", header.Pos, wrapped)
		}

		compressed.Reset()
		compressedLen, compressionType, err := CompressChunk(&scratch, &compressed)
		if err != nil {
			return total, errContext("decompacting record at pos", header.Pos, err)
		}

		dataSize := compressedLen + 5 // 4-byte length field + 1 compression-type byte

		var prefix [5]byte
		putU32BE(prefix[0:4], uint32(dataSize-4))
		prefix[4] = compressionType
		if n, err := w.Write(prefix[:]); err != nil {
			total += int64(n)
			return total, errContext("decompacting record at pos", header.Pos, ioErr("writing chunk prefix", err))
		}
		total += int64(len(prefix))

		if n, err := w.Write(compressed.Bytes()); err != nil {
			total += int64(n)
			return total, errContext("decompacting record at pos", header.Pos, ioErr("writing chunk body", err))
		}
		total += int64(compressed.Len())

		pad := padLen(dataSize, SectorSize)
		if pad > 0 {
			if _, err := w.Seek(pad, io.SeekCurrent); err != nil {
				return total, errContext("decompacting record at pos", header.Pos, ioErr("seeking past chunk padding", err))
			}
			total += pad
		}
		lastPad = pad

		size := uint64(dataSize + pad)
		info, err := NewChunkInfo(uint64(location), size, header.Timestamp)
		if err != nil {
			return total, errContext("decompacting record at pos", header.Pos, err)
		}
		slots[header.Pos] = &info

		location += dataSize + pad
	}

	// Seeking past the final chunk's padding does not extend w; write its
	// last padding byte so the output ends at the last sector boundary.
	if lastPad > 0 {
		if _, err := w.Seek(-1, io.SeekCurrent); err != nil {
			return total, ioErr("seeking to final padding byte", err)
		}
		if _, err := w.Write([]byte{0}); err != nil {
			return total, ioErr("writing final padding byte", err)
		}
	}

	if _, err := w.Seek(0, io.SeekStart); err != nil {
		return total, ioErr("seeking to header for finalization", err)
	}

	if err := SerializeRegionTable(slots[:], w); err != nil {
		return total, err
	}
	total += HeaderSize

	return total, nil
}

// IsCleanEOF reports whether err ultimately wraps a plain io.EOF returned
// by ReadBinHeader's very first read attempt (i.e. zero bytes were read,
// meaning the stream is exhausted rather than truncated mid-header).
func IsCleanEOF(err error) bool {
	return errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF)
}
