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
	"testing"
)

func TestBinHeaderRoundTrip(t *testing.T) {
	t.Parallel()

	want := BinHeader{Pos: 5, Timestamp: 0x01020304, Length: 11}

	var buf bytes.Buffer
	n, err := want.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if n != BinHeaderSize {
		t.Errorf("n = %d, want %d", n, BinHeaderSize)
	}
	if buf.Len() != BinHeaderSize {
		t.Fatalf("len(buf) = %d, want %d", buf.Len(), BinHeaderSize)
	}

	got, err := ReadBinHeader(&buf)
	if err != nil {
		t.Fatalf("ReadBinHeader: %v", err)
	}
	if got != want {
		t.Errorf("ReadBinHeader = %+v, want %+v", got, want)
	}
}

func TestBinHeaderFieldEndianness(t *testing.T) {
	t.Parallel()

	// Pos: u32 LE, Timestamp: u32 BE, Length: u64 LE.
	h := BinHeader{Pos: 1, Timestamp: 1, Length: 1}

	var buf bytes.Buffer
	if _, err := h.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	raw := buf.Bytes()

	wantPos := []byte{1, 0, 0, 0}
	wantTimestamp := []byte{0, 0, 0, 1}
	wantLength := []byte{1, 0, 0, 0, 0, 0, 0, 0}

	if !bytes.Equal(raw[0:4], wantPos) {
		t.Errorf("Pos bytes = % x, want % x", raw[0:4], wantPos)
	}
	if !bytes.Equal(raw[4:8], wantTimestamp) {
		t.Errorf("Timestamp bytes = % x, want % x", raw[4:8], wantTimestamp)
	}
	if !bytes.Equal(raw[8:16], wantLength) {
		t.Errorf("Length bytes = % x, want % x", raw[8:16], wantLength)
	}
}

func TestReadBinHeaderShort(t *testing.T) {
	t.Parallel()

	_, err := ReadBinHeader(bytes.NewReader(make([]byte, BinHeaderSize-1)))
	if !errors.Is(err, ErrUnexpectedEOF) {
		t.Errorf("err = %v, want ErrUnexpectedEOF", err)
	}
}

func TestReadBinHeaderCleanEOF(t *testing.T) {
	t.Parallel()

	_, err := ReadBinHeader(bytes.NewReader(nil))
	if !IsCleanEOF(err) {
		t.Errorf("err = %v, want clean EOF", err)
	}
}
