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
)

// errRegionpack is the base error for all regionpack errors, mirroring the
// teacher library's errDictzip sentinel.
var errRegionpack = errors.New("regionpack")

var (
	// ErrIO wraps an underlying stream read/write failure that isn't one of
	// the more specific kinds below.
	ErrIO = fmt.Errorf("%w: io error", errRegionpack)

	// ErrUnexpectedEOF indicates a short read where a fixed-size structure
	// or length-declared payload was required.
	ErrUnexpectedEOF = fmt.Errorf("%w: unexpected EOF", errRegionpack)

	// ErrUnknownCompression indicates a compression-type byte outside the
	// recognized set {1: GZip, 2: Zlib, 3: Uncompressed}. Byte 4 (LZ4) is
	// reserved and also routes here; it is never decoded.
	ErrUnknownCompression = fmt.Errorf("%w: unknown compression type", errRegionpack)

	// ErrMalformedRegion indicates a chunk located before the end of the
	// previous one, or a chunk body whose length prefix is missing, zero,
	// or larger than the chunk. A region header shorter than 8192 bytes, or
	// a chunk extending past the end of the input, is reported as
	// ErrUnexpectedEOF instead.
	ErrMalformedRegion = fmt.Errorf("%w: malformed region", errRegionpack)

	// ErrMalformedBin indicates a bin stream with a duplicate pos, or a pos
	// outside 0..1024.
	ErrMalformedBin = fmt.Errorf("%w: malformed bin stream", errRegionpack)

	// ErrContractViolation indicates a precondition violation in
	// NewChunkInfo, or use of a tainted RegionReader. These represent
	// programmer error, not recoverable input problems.
	ErrContractViolation = fmt.Errorf("%w: contract violation", errRegionpack)

	// ErrCompression indicates a decoder/encoder internal failure that is
	// not simply a short read.
	ErrCompression = fmt.Errorf("%w: compression error", errRegionpack)
)

func ioErr(context string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrIO, context, err)
}

func eofErr(context string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUnexpectedEOF, context, err)
}
