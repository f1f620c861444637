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
	"io"
	"testing"
)

// TestCompactDecompactRoundTripPreservesContentAndTimestamp builds a
// region with several Zlib-compressed chunks, compacts it, decompacts the
// result, and checks that every record's payload and timestamp survive
// the round trip even though the exact byte layout does not.
func TestCompactDecompactRoundTripPreservesContentAndTimestamp(t *testing.T) {
	t.Parallel()

	type chunk struct {
		pos       int
		timestamp uint32
		data      []byte
	}
	chunks := []chunk{
		{pos: 0, timestamp: 111, data: []byte("small payload")},
		{pos: 17, timestamp: 222, data: bytes.Repeat([]byte("x"), 9000)}, // decompressed size exceeds one sector
		{pos: 1023, timestamp: 333, data: []byte{}},
	}

	slots := make([]*ChunkInfo, MaxChunkCount)
	var body []byte
	location := uint64(HeaderSize)
	for _, c := range chunks {
		if len(c.data) == 0 {
			continue // left out of the region: this slot stays absent
		}
		b := buildChunkBody(t, c.data)
		info, err := NewChunkInfo(location, uint64(len(b)), c.timestamp)
		if err != nil {
			t.Fatal(err)
		}
		slots[c.pos] = &info
		body = append(body, b...)
		location += uint64(len(b))
	}

	var header bytes.Buffer
	if err := SerializeRegionTable(slots, &header); err != nil {
		t.Fatal(err)
	}
	region := append(header.Bytes(), body...)

	var bin bytes.Buffer
	if _, err := Compact(bytes.NewReader(region), &bin); err != nil {
		t.Fatalf("Compact: %v", err)
	}

	out := &memSeekWriter{}
	if _, err := Decompact(bytes.NewReader(bin.Bytes()), out); err != nil {
		t.Fatalf("Decompact: %v", err)
	}

	var recompacted bytes.Buffer
	if _, err := Compact(bytes.NewReader(out.buf), &recompacted); err != nil {
		t.Fatalf("Compact of decompacted region: %v", err)
	}

	want := map[uint32]chunk{}
	for _, c := range chunks {
		if len(c.data) == 0 {
			continue
		}
		want[uint32(c.pos)] = c
	}

	for len(want) > 0 {
		h, err := ReadBinHeader(&recompacted)
		if err != nil {
			t.Fatalf("ReadBinHeader: %v", err)
		}
		payload := make([]byte, h.Length)
		if _, err := io.ReadFull(&recompacted, payload); err != nil {
			t.Fatal(err)
		}
		c, ok := want[h.Pos]
		if !ok {
			t.Fatalf("unexpected record at pos=%d", h.Pos)
		}
		if h.Timestamp != c.timestamp {
			t.Errorf("pos=%d timestamp = %d, want %d", h.Pos, h.Timestamp, c.timestamp)
		}
		if !bytes.Equal(payload, c.data) {
			t.Errorf("pos=%d payload mismatch, len got=%d want=%d", h.Pos, len(payload), len(c.data))
		}
		delete(want, h.Pos)
	}
}

// TestDecompactOutputIsSectorAlignedAndNonOverlapping checks that every
// entry produced by Decompact starts at a sector boundary and that no two
// entries' [Location, Location+Size) ranges overlap.
func TestDecompactOutputIsSectorAlignedAndNonOverlapping(t *testing.T) {
	t.Parallel()

	var in bytes.Buffer
	writeBinRecord(t, &in, 0, 1, []byte("a"))
	writeBinRecord(t, &in, 1, 2, bytes.Repeat([]byte("b"), 5000))
	writeBinRecord(t, &in, 2, 3, []byte("c"))

	out := &memSeekWriter{}
	if _, err := Decompact(&in, out); err != nil {
		t.Fatalf("Decompact: %v", err)
	}

	table, err := ParseRegionTable(bytes.NewReader(out.buf[:HeaderSize]))
	if err != nil {
		t.Fatal(err)
	}

	var prevEnd uint64
	for _, e := range table.Entries {
		if e.Info.Location()%SectorSize != 0 {
			t.Errorf("pos=%d location %d is not sector-aligned", e.Pos, e.Info.Location())
		}
		if e.Info.Location() < prevEnd {
			t.Errorf("pos=%d location %d overlaps previous entry ending at %d", e.Pos, e.Info.Location(), prevEnd)
		}
		prevEnd = e.Info.Location() + e.Info.Size()
	}
	if prevEnd > uint64(len(out.buf)) {
		t.Errorf("last entry ends at %d, past output length %d", prevEnd, len(out.buf))
	}
}

// TestChunkPayloadLengthInvariant checks that a parsed ChunkPayload's Data
// never claims more bytes than size-4, the invariant length <= size-4
// (the 4-byte length prefix is excluded, the compression-type byte is
// included in Data's accounting via the length field, not Data itself).
func TestChunkPayloadLengthInvariant(t *testing.T) {
	t.Parallel()

	body := buildChunkBody(t, []byte("invariant check"))
	payload, err := ParseChunkPayload(body)
	if err != nil {
		t.Fatal(err)
	}
	size := uint64(len(body))
	if uint64(len(payload.Data))+5 > size {
		t.Errorf("len(Data)+5 = %d exceeds chunk size %d", len(payload.Data)+5, size)
	}
}
