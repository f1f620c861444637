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

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// RpackHeaderSize is the fixed size in bytes of an Rpack container
// header: one compression-type byte followed by 31 reserved bytes that
// must be zero.
const RpackHeaderSize = 32

// Rpack outer compression types.
const (
	RpackNone byte = 0
	RpackZstd byte = 1
	RpackLZ4  byte = 2
)

// rpackDecoder wraps an io.Reader with the outer codec selected by an
// Rpack header's compression-type byte.
func rpackDecoder(compressionType byte, r io.Reader) (io.ReadCloser, error) {
	switch compressionType {
	case RpackNone:
		return io.NopCloser(r), nil
	case RpackLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case RpackZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("%w: opening zstd stream: %w", ErrCompression, err)
		}
		return zstdReadCloser{zr}, nil
	default:
		return nil, fmt.Errorf("%w: unknown rpack compression type %d", ErrUnknownCompression, compressionType)
	}
}

// rpackEncoder wraps an io.Writer with the outer codec selected by
// compressionType. The returned WriteCloser's Close must be called to
// flush trailing codec framing.
func rpackEncoder(compressionType byte, w io.Writer) (io.WriteCloser, error) {
	switch compressionType {
	case RpackNone:
		return nopWriteCloser{w}, nil
	case RpackLZ4:
		return lz4.NewWriter(w), nil
	case RpackZstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("%w: opening zstd stream: %w", ErrCompression, err)
		}
		return zw, nil
	default:
		return nil, fmt.Errorf("%w: unknown rpack compression type %d", ErrUnknownCompression, compressionType)
	}
}

type zstdReadCloser struct {
	d *zstd.Decoder
}

func (z zstdReadCloser) Read(p []byte) (int, error) { return z.d.Read(p) }

func (z zstdReadCloser) Close() error {
	z.d.Close()
	return nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// RpackReader reads a stream of framed BinRecord-shaped records from
// behind an Rpack outer codec. Its reader contract is authoritative even
// where the original implementation left the reader side unfinished:
// records are read one at a time with Next, returning io.EOF once the
// inner stream is cleanly exhausted.
type RpackReader struct {
	compressionType byte
	inner           io.ReadCloser
}

// OpenRpackReader reads the 32-byte Rpack header from r (validating that
// the 31 reserved bytes are present, though their content is ignored) and
// wraps the remainder with the outer codec named by the header.
func OpenRpackReader(r io.Reader) (*RpackReader, error) {
	var header [RpackHeaderSize]byte
	if err := readExact(r, header[:], "reading rpack header"); err != nil {
		return nil, err
	}

	inner, err := rpackDecoder(header[0], r)
	if err != nil {
		return nil, err
	}

	return &RpackReader{compressionType: header[0], inner: inner}, nil
}

// Next reads one record's header and payload, writing the payload to w.
// It returns io.EOF once the stream is cleanly exhausted with no partial
// record pending.
func (rr *RpackReader) Next(w io.Writer) (BinHeader, error) {
	header, err := ReadBinHeader(rr.inner)
	if err != nil {
		if IsCleanEOF(err) {
			return BinHeader{}, io.EOF
		}
		return BinHeader{}, err
	}
	if _, err := io.CopyN(w, rr.inner, int64(header.Length)); err != nil {
		if errors.Is(err, io.EOF) {
			// A short payload is a truncated record, not a clean end of stream.
			return BinHeader{}, eofErr("reading rpack record payload", io.ErrUnexpectedEOF)
		}
		return BinHeader{}, ioErr("reading rpack record payload", err)
	}
	return header, nil
}

// Close releases resources held by the outer codec. It does not close the
// underlying reader passed to OpenRpackReader.
func (rr *RpackReader) Close() error {
	return rr.inner.Close()
}

// RpackWriter writes a stream of framed BinRecord-shaped records behind
// an Rpack outer codec, symmetric with RpackReader.
type RpackWriter struct {
	inner io.WriteCloser
}

// NewRpackWriter writes the 32-byte Rpack header (compressionType plus 31
// zero reserved bytes) to w and wraps the remainder with the
// corresponding outer codec.
func NewRpackWriter(compressionType byte, w io.Writer) (*RpackWriter, error) {
	var header [RpackHeaderSize]byte
	header[0] = compressionType
	if _, err := w.Write(header[:]); err != nil {
		return nil, ioErr("writing rpack header", err)
	}

	inner, err := rpackEncoder(compressionType, w)
	if err != nil {
		return nil, err
	}

	return &RpackWriter{inner: inner}, nil
}

// WriteRecord writes one record (header plus the contents of r) to the
// rpack stream.
func (rw *RpackWriter) WriteRecord(header BinHeader, r io.Reader) error {
	if _, err := header.WriteTo(rw.inner); err != nil {
		return err
	}
	if _, err := io.Copy(rw.inner, r); err != nil {
		return ioErr("writing rpack record payload", err)
	}
	return nil
}

// Close flushes and closes the outer codec. It does not close the
// underlying writer passed to NewRpackWriter.
func (rw *RpackWriter) Close() error {
	if err := rw.inner.Close(); err != nil {
		return fmt.Errorf("%w: closing rpack stream: %w", ErrCompression, err)
	}
	return nil
}
