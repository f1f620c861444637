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
	"fmt"
	"io"
)

// sliceWriter writes sequentially into a fixed-capacity byte slice,
// tracking how much has been written. It never grows or reallocates,
// matching the contract that RegionReader.ReadNext copies exactly
// ChunkInfo.Size() bytes.
type sliceWriter struct {
	buf []byte
	n   int
}

func (s *sliceWriter) Write(p []byte) (int, error) {
	if s.n+len(p) > len(s.buf) {
		return 0, fmt.Errorf("%w: chunk body overflowed scratch buffer", ErrContractViolation)
	}
	n := copy(s.buf[s.n:], p)
	s.n += n
	return n, nil
}

// Compact reads a region from r and writes its bin-format equivalent to
// w: every populated chunk, decompressed, in ascending on-disk location
// order (not ascending pos). It returns the number of bytes written to w.
//
// Compact owns two scratch buffers for the duration of the call: one
// holding each chunk's raw sector-padded body (which grows monotonically
// to the largest chunk seen and is 4-byte aligned for ChunkPayload
// parsing), and one holding each chunk's decompressed bytes (cleared
// after every record). Peak extra memory is bounded by roughly twice the
// largest chunk in the region.
func Compact(r io.Reader, w io.Writer) (int64, error) {
	region, err := NewRegionReader(r)
	if err != nil {
		return 0, err
	}

	var scratch []byte
	var decompressed bytes.Buffer
	var total int64

	for {
		info, pos, ok := region.Peek()
		if !ok {
			break
		}

		need := alignUp4(int64(info.Size()))
		if int64(len(scratch)) < need {
			scratch = append(scratch, make([]byte, need-int64(len(scratch)))...)
		}

		sw := &sliceWriter{buf: scratch[:info.Size()]}
		_, _, _, err := region.ReadNext(sw)
		if err != nil {
			return total, errContext("compacting chunk at pos", pos, err)
		}

		payload, err := ParseChunkPayload(sw.buf[:sw.n])
		if err != nil {
			return total, errContext("compacting chunk at pos", pos, err)
		}

		decompressed.Reset()
		if _, err := DecompressChunk(payload.Data, payload.CompressionType, &decompressed); err != nil {
			return total, errContext("compacting chunk at pos", pos, err)
		}

		header := BinHeader{
			Pos:       uint32(pos),
			Timestamp: info.Timestamp,
			Length:    uint64(decompressed.Len()),
		}
		n, err := header.WriteTo(w)
		total += n
		if err != nil {
			return total, errContext("compacting chunk at pos", pos, err)
		}

		m, err := w.Write(decompressed.Bytes())
		total += int64(m)
		if err != nil {
			return total, errContext("compacting chunk at pos", pos, ioErr("writing decompressed payload", err))
		}
	}

	return total, nil
}
