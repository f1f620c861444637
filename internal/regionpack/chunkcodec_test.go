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
	"compress/gzip"
	"compress/zlib"
	"errors"
	"testing"
)

func TestDecompressChunk(t *testing.T) {
	t.Parallel()

	const want = "hello, chunk"

	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	if _, err := gw.Write([]byte(want)); err != nil {
		t.Fatal(err)
	}
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}

	var zl bytes.Buffer
	zw := zlib.NewWriter(&zl)
	if _, err := zw.Write([]byte(want)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	testCases := []struct {
		name            string
		data            []byte
		compressionType byte
		want            string
		wantErr         error
	}{
		{"gzip", gz.Bytes(), CompressionGZip, want, nil},
		{"zlib", zl.Bytes(), CompressionZlib, want, nil},
		{"uncompressed", []byte(want), CompressionUncompressed, want, nil},
		{"unknown", []byte("garbage"), 0x7F, "", ErrUnknownCompression},
		{"reserved lz4", []byte("garbage"), CompressionLZ4, "", ErrUnknownCompression},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			_, err := DecompressChunk(tc.data, tc.compressionType, &out)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecompressChunk: %v", err)
			}
			if got := out.String(); got != tc.want {
				t.Errorf("decompressed = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestCompressChunkRoundTrip(t *testing.T) {
	t.Parallel()

	const want = "round trip me please"

	var compressed bytes.Buffer
	n, compressionType, err := CompressChunk(bytes.NewReader([]byte(want)), &compressed)
	if err != nil {
		t.Fatalf("CompressChunk: %v", err)
	}
	if compressionType != CompressionZlib {
		t.Errorf("compressionType = %d, want %d (Zlib)", compressionType, CompressionZlib)
	}
	if n != int64(compressed.Len()) {
		t.Errorf("reported n = %d, buffer holds %d", n, compressed.Len())
	}

	var out bytes.Buffer
	if _, err := DecompressChunk(compressed.Bytes(), CompressionZlib, &out); err != nil {
		t.Fatalf("DecompressChunk: %v", err)
	}
	if got := out.String(); got != want {
		t.Errorf("round trip = %q, want %q", got, want)
	}
}
