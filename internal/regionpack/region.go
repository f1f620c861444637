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
	"sort"
)

// ChunkInfo is a region chunk's 64-bit descriptor: a 24-bit sector offset
// and 8-bit sector count packed into locdata, plus a 32-bit timestamp. The
// zero value denotes an absent chunk (locdata == 0); it is never returned
// by ParseRegionTable for a populated slot.
type ChunkInfo struct {
	locdata   uint32
	Timestamp uint32
}

// Location returns the chunk's byte offset within the region file.
func (c ChunkInfo) Location() uint64 {
	return uint64(c.locdata>>8) * SectorSize
}

// Size returns the chunk's sector-padded size in bytes, including the
// trailing zero padding.
func (c ChunkInfo) Size() uint64 {
	return uint64(c.locdata&0xFF) * SectorSize
}

// Empty reports whether this ChunkInfo denotes an absent chunk slot.
func (c ChunkInfo) Empty() bool {
	return c.locdata == 0
}

// NewChunkInfo constructs a ChunkInfo from a byte location, byte size, and
// timestamp. location must be sector-aligned, size must be sector-aligned
// and no more than MaxChunkBytes, and location must fit in 24 sector bits.
// Violating any of these is a contract violation: these are preconditions
// on the caller, not recoverable input errors.
func NewChunkInfo(location, size uint64, timestamp uint32) (ChunkInfo, error) {
	if location%SectorSize != 0 {
		return ChunkInfo{}, fmt.Errorf("%w: location %d not sector-aligned", ErrContractViolation, location)
	}
	if size%SectorSize != 0 {
		return ChunkInfo{}, fmt.Errorf("%w: size %d not sector-aligned", ErrContractViolation, size)
	}
	sectors := size / SectorSize
	if sectors > MaxChunkSectors {
		return ChunkInfo{}, fmt.Errorf("%w: size %d exceeds %d bytes", ErrContractViolation, size, MaxChunkBytes)
	}
	sectorOffset := location / SectorSize
	if sectorOffset > 0xFFFFFF {
		return ChunkInfo{}, fmt.Errorf("%w: location %d exceeds 24-bit sector offset", ErrContractViolation, location)
	}

	return ChunkInfo{
		locdata:   uint32(sectorOffset)<<8 | uint32(sectors),
		Timestamp: timestamp,
	}, nil
}

// RegionEntry pairs a populated ChunkInfo with its logical slot (0..1023)
// in the region's header table.
type RegionEntry struct {
	Info ChunkInfo
	Pos  int
}

// RegionTable is the parsed 8192-byte region header: the populated
// entries, sorted ascending by ChunkInfo.Location for sequential
// scanning.
type RegionTable struct {
	Entries []RegionEntry
}

// ParseRegionTable reads exactly HeaderSize bytes from r and returns the
// populated chunk entries sorted by on-disk location. Absent slots
// (locdata == 0) are dropped; each surviving entry retains its original
// table index as Pos.
func ParseRegionTable(r io.Reader) (RegionTable, error) {
	buf := make([]byte, HeaderSize)
	if err := readExact(r, buf, "reading region header"); err != nil {
		return RegionTable{}, err
	}

	locdatas := buf[:MaxChunkCount*4]
	timestamps := buf[MaxChunkCount*4:]

	var entries []RegionEntry
	for i := 0; i < MaxChunkCount; i++ {
		locdata := getU32BE(locdatas[i*4 : i*4+4])
		if locdata == 0 {
			continue
		}
		ts := getU32BE(timestamps[i*4 : i*4+4])
		entries = append(entries, RegionEntry{
			Info: ChunkInfo{locdata: locdata, Timestamp: ts},
			Pos:  i,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Info.Location() < entries[j].Info.Location()
	})

	return RegionTable{Entries: entries}, nil
}

// SerializeRegionTable writes the 8192-byte region header for the given
// slot assignments. slots must have length MaxChunkCount; a nil entry at
// index i writes zero for that slot's locdata and timestamp.
func SerializeRegionTable(slots []*ChunkInfo, w io.Writer) error {
	if len(slots) != MaxChunkCount {
		return fmt.Errorf("%w: expected %d slots, got %d", ErrContractViolation, MaxChunkCount, len(slots))
	}

	buf := make([]byte, HeaderSize)
	for i, c := range slots {
		if c == nil {
			continue
		}
		putU32BE(buf[i*4:i*4+4], c.locdata)
		putU32BE(buf[MaxChunkCount*4+i*4:MaxChunkCount*4+i*4+4], c.Timestamp)
	}

	if _, err := w.Write(buf); err != nil {
		return ioErr("writing region header", err)
	}
	return nil
}
