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

import "fmt"

// ChunkPayload is a view over a chunk's sector-padded body: a 4-byte
// big-endian length (covering the compression-type byte and the
// compressed data that follows it), the compression-type byte, the
// compressed data, and trailing zero padding up to the sector boundary.
type ChunkPayload struct {
	// CompressionType is the payload's compression-type byte.
	CompressionType byte

	// Data is the compressed payload, with padding already trimmed.
	Data []byte
}

// ParseChunkPayload interprets buf (a chunk's full sector-padded body, as
// produced by RegionReader.ReadNext) as a ChunkPayload, validating that
// the declared length fits within buf.
func ParseChunkPayload(buf []byte) (ChunkPayload, error) {
	if len(buf) < 5 {
		return ChunkPayload{}, fmt.Errorf("%w: chunk body shorter than its own header", ErrMalformedRegion)
	}

	length := getU32BE(buf[0:4])
	if length == 0 {
		return ChunkPayload{}, fmt.Errorf("%w: zero-length chunk payload", ErrMalformedRegion)
	}
	dataLen := int64(length) - 1
	if dataLen < 0 || 5+dataLen > int64(len(buf)) {
		return ChunkPayload{}, fmt.Errorf("%w: declared payload length %d exceeds chunk body size %d", ErrMalformedRegion, length, len(buf))
	}

	return ChunkPayload{
		CompressionType: buf[4],
		Data:            buf[5 : 5+dataLen],
	}, nil
}
