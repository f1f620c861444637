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

// Package regionpack implements a bidirectional transcoder between a
// sector-aligned region container (the "R" format, laid out like the
// Minecraft Anvil region format) and a streaming flat container of
// decompressed chunks (the "B", or "bin", format).
//
// A region holds up to 1024 independently compressed chunks behind an
// 8192-byte header of packed location/size descriptors and timestamps.
// The bin format carries the same chunks decompressed, each prefixed by
// a small fixed header giving its original position and timestamp, so
// that a region can be reconstructed byte-for-byte equivalent in content
// (though not in on-disk layout or chunk compression) from the stream.
//
// Clients drive the format with [Compact] and [Decompact]. Regions are
// read sequentially only; there is no random-access or in-place editing
// support, by design.
package regionpack

const (
	// SectorSize is the region format's alignment unit in bytes.
	SectorSize = 4096

	// HeaderSize is the size in bytes of a region file's location and
	// timestamp table.
	HeaderSize = 2 * MaxChunkCount * 4

	// MaxChunkCount is the number of chunk slots in a region.
	MaxChunkCount = 1024

	// MaxChunkSectors is the largest sector count a single ChunkInfo can
	// describe (the low 8 bits of locdata).
	MaxChunkSectors = 0xFF

	// MaxChunkBytes is the largest byte size a single chunk slot can
	// describe: MaxChunkSectors sectors.
	MaxChunkBytes = MaxChunkSectors * SectorSize
)
