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
	"fmt"
	"io"

	kgzip "github.com/klauspost/compress/gzip"
	kzlib "github.com/klauspost/compress/zlib"
)

// Compression type bytes, as laid out in a ChunkPayload prefix.
const (
	CompressionGZip         byte = 1
	CompressionZlib         byte = 2
	CompressionUncompressed byte = 3
	CompressionLZ4          byte = 4 // reserved; always fails to decode

	// zlibCompressLevel is the level used by CompressChunk, per the
	// canonical (non-GZip) behavior resolved in the format's design notes.
	zlibCompressLevel = 3
)

// DecompressChunk decompresses data (the compressed bytes of a single
// chunk, with the compression-type byte already stripped) according to
// compressionType, writing the decompressed bytes to w. It returns the
// number of bytes written.
//
// data must not include any sector padding; callers are responsible for
// trimming to the length declared by the chunk's ChunkPayload header.
func DecompressChunk(data []byte, compressionType byte, w io.Writer) (int64, error) {
	switch compressionType {
	case CompressionGZip:
		zr, err := kgzip.NewReader(&byteReader{data})
		if err != nil {
			return 0, fmt.Errorf("%w: opening gzip stream: %w", ErrCompression, err)
		}
		defer zr.Close()
		n, err := io.Copy(w, zr)
		if err != nil {
			return n, fmt.Errorf("%w: decompressing gzip stream: %w", ErrCompression, err)
		}
		return n, nil
	case CompressionZlib:
		zr, err := kzlib.NewReader(&byteReader{data})
		if err != nil {
			return 0, fmt.Errorf("%w: opening zlib stream: %w", ErrCompression, err)
		}
		defer zr.Close()
		n, err := io.Copy(w, zr)
		if err != nil {
			return n, fmt.Errorf("%w: decompressing zlib stream: %w", ErrCompression, err)
		}
		return n, nil
	case CompressionUncompressed:
		n, err := w.Write(data)
		if err != nil {
			return int64(n), ioErr("copying uncompressed chunk", err)
		}
		return int64(n), nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownCompression, compressionType)
	}
}

// CompressChunk compresses all of r with Zlib at level 3 and writes the
// compressed bytes to w. It returns the number of compressed bytes
// written and the compression-type byte (always CompressionZlib).
func CompressChunk(r io.Reader, w io.Writer) (int64, byte, error) {
	counter := &countingWriter{w: w}
	zw, err := kzlib.NewWriterLevel(counter, zlibCompressLevel)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: initializing zlib writer: %w", ErrCompression, err)
	}
	if _, err := io.Copy(zw, r); err != nil {
		return 0, 0, fmt.Errorf("%w: compressing: %w", ErrCompression, err)
	}
	if err := zw.Close(); err != nil {
		return 0, 0, fmt.Errorf("%w: closing zlib writer: %w", ErrCompression, err)
	}
	return counter.n, CompressionZlib, nil
}

// byteReader is a minimal io.Reader over a byte slice, used instead of
// bytes.Reader where only sequential reads are needed (keeps the
// dependency surface of this file limited to what it actually uses).
type byteReader struct {
	b []byte
}

func (r *byteReader) Read(p []byte) (int, error) {
	if len(r.b) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.b)
	r.b = r.b[n:]
	return n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
