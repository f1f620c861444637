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
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// readExact reads exactly len(buf) bytes from r, translating a short read
// into ErrUnexpectedEOF. context is used to annotate the error.
func readExact(r io.Reader, buf []byte, context string) error {
	_, err := io.ReadFull(r, buf)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return eofErr(context, err)
		}
		return ioErr(context, err)
	}
	return nil
}

// skipReader discards the next n bytes of r by reading them into a fixed
// 512-byte scratch block, since r is not assumed to support Seek.
func skipReader(r io.Reader, n int64) error {
	var buf [512]byte
	for n > 0 {
		chunk := int64(len(buf))
		if n < chunk {
			chunk = n
		}
		if err := readExact(r, buf[:chunk], "skipping bytes"); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}

// padLen returns the number of zero bytes needed to bring c up to the next
// multiple of sector, or 0 if c already is one.
func padLen(c, sector int64) int64 {
	rem := c % sector
	if rem == 0 {
		return 0
	}
	return sector - rem
}

func putU32BE(buf []byte, v uint32) { binary.BigEndian.PutUint32(buf, v) }
func getU32BE(buf []byte) uint32    { return binary.BigEndian.Uint32(buf) }
func putU32LE(buf []byte, v uint32) { binary.LittleEndian.PutUint32(buf, v) }
func getU32LE(buf []byte) uint32    { return binary.LittleEndian.Uint32(buf) }
func putU64LE(buf []byte, v uint64) { binary.LittleEndian.PutUint64(buf, v) }
func getU64LE(buf []byte) uint64    { return binary.LittleEndian.Uint64(buf) }

// alignUp4 rounds n up to the next multiple of 4, for the 4-byte-aligned
// chunk scratch buffers the region reader requires (see RegionReader.ReadNext).
func alignUp4(n int64) int64 {
	return (n + 3) &^ 3
}

// errContext wraps err with a "while <doing> <detail>" prefix, matching the
// style of the top-level pipeline error wrapping described by the contract
// ("while compacting chunk at pos=X").
func errContext(doing string, detail any, err error) error {
	return fmt.Errorf("while %s=%v: %w", doing, detail, err)
}
