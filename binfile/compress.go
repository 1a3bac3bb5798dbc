// Copyright 2026 The Sigkit Authors
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.

package binfile

import (
	"fmt"
	"runtime"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
)

// payload codec bytes as stored on the wire
const (
	codecNone uint8 = iota
	codecZstd
	codecS2
)

var codecNames = map[string]uint8{
	"none": codecNone,
	"zstd": codecZstd,
	"s2":   codecS2,
}

func codecByte(name string) (uint8, error) {
	c, ok := codecNames[name]
	if !ok {
		return 0, fmt.Errorf("binfile: unknown compression %q", name)
	}
	return c, nil
}

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	e, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
	if err != nil {
		panic(err)
	}
	zstdEncoder = e
	d, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(runtime.GOMAXPROCS(0)))
	if err != nil {
		panic(err)
	}
	zstdDecoder = d
}

// compress appends the encoded form of src to dst.
func compress(codec uint8, src, dst []byte) ([]byte, error) {
	switch codec {
	case codecNone:
		return append(dst, src...), nil
	case codecZstd:
		return zstdEncoder.EncodeAll(src, dst), nil
	case codecS2:
		return append(dst, s2.Encode(nil, src)...), nil
	}
	return nil, fmt.Errorf("binfile: unknown codec byte %d", codec)
}

// decompress decodes src into dst, which must be sized to the
// expected decoded length exactly.
func decompress(codec uint8, src, dst []byte) error {
	switch codec {
	case codecNone:
		if len(src) != len(dst) {
			return fmt.Errorf("binfile: expected %d raw bytes; got %d", len(dst), len(src))
		}
		copy(dst, src)
		return nil
	case codecZstd:
		ret, err := zstdDecoder.DecodeAll(src, dst[:0:len(dst)])
		if err != nil {
			return err
		}
		return intoDst(dst, ret)
	case codecS2:
		ret, err := s2.Decode(dst[:0:len(dst)], src)
		if err != nil {
			return err
		}
		return intoDst(dst, ret)
	}
	return fmt.Errorf("binfile: unknown codec byte %d", codec)
}

// intoDst makes sure the decoded bytes ended up in dst; decoders
// realloc when the destination capacity is too small.
func intoDst(dst, ret []byte) error {
	if len(ret) != len(dst) {
		return fmt.Errorf("binfile: expected %d bytes decompressed; got %d", len(dst), len(ret))
	}
	if len(ret) > 0 && &ret[0] != &dst[0] {
		copy(dst, ret)
	}
	return nil
}
