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

// Package binfile stores named float64 vectors and matrices in a
// compact little-endian stream format.
//
// A stream starts with a fixed header carrying a format version and
// a random stream id, followed by any number of records. Each
// record payload is compressed (zstd, s2, or stored raw), carries a
// siphash checksum of the raw bytes, and can optionally be sealed
// with XChaCha20-Poly1305.
package binfile

import (
	"crypto/cipher"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/dchest/siphash"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"
)

var magic = [4]byte{'S', 'B', 'F', '1'}

const (
	formatVersion = 1

	flagEncrypted = 1 << 0

	// cap on raw record payload size (256 MiB of float64s)
	maxPayload = 1 << 28
)

// fixed siphash-2-4 key for payload checksums
const (
	hashK0 = 0x7369676b69742e62 // "sigkit.b"
	hashK1 = 0x696e66696c653031 // "infile01"
)

// ErrChecksum is returned when a record payload does not match its
// stored checksum.
var ErrChecksum = errors.New("binfile: payload checksum mismatch")

// Kind discriminates record payload shapes.
type Kind uint8

const (
	KindVector Kind = 1
	KindMatrix Kind = 2
)

func (k Kind) String() string {
	switch k {
	case KindVector:
		return "vector"
	case KindMatrix:
		return "matrix"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

type options struct {
	compression string
	key         []byte
}

// An Option adjusts how a stream is written or read.
type Option func(*options)

// WithCompression selects the payload codec for a Writer:
// "none", "zstd" (the default) or "s2". Readers ignore it.
func WithCompression(name string) Option {
	return func(o *options) { o.compression = name }
}

// WithEncryptionKey enables XChaCha20-Poly1305 sealing of record
// payloads with the given 32-byte key. A Reader needs the same key
// to open an encrypted stream.
func WithEncryptionKey(key []byte) Option {
	return func(o *options) { o.key = key }
}

// recordHeader is the fixed on-wire prefix of every record,
// followed by the name bytes and the payload.
type recordHeader struct {
	Kind    uint8
	Codec   uint8
	NameLen uint16
	Rows    uint32
	Cols    uint32
	Sum     uint64
	Payload uint32
}

// Writer appends records to an output stream.
type Writer struct {
	w     io.Writer
	codec uint8
	aead  cipher.AEAD
	id    uuid.UUID
	buf   []byte
}

// NewWriter writes the stream header to w and returns a Writer.
func NewWriter(w io.Writer, opts ...Option) (*Writer, error) {
	o := options{compression: "zstd"}
	for _, f := range opts {
		f(&o)
	}
	codec, err := codecByte(o.compression)
	if err != nil {
		return nil, err
	}
	out := &Writer{w: w, codec: codec, id: uuid.New()}
	var flags uint16
	if o.key != nil {
		aead, err := newAEAD(o.key)
		if err != nil {
			return nil, err
		}
		out.aead = aead
		flags |= flagEncrypted
	}
	hdr := make([]byte, 0, 24)
	hdr = append(hdr, magic[:]...)
	hdr = binary.LittleEndian.AppendUint16(hdr, formatVersion)
	hdr = binary.LittleEndian.AppendUint16(hdr, flags)
	hdr = append(hdr, out.id[:]...)
	if _, err := w.Write(hdr); err != nil {
		return nil, err
	}
	return out, nil
}

// ID returns the random stream id written in the header.
func (w *Writer) ID() uuid.UUID { return w.id }

// PutVector appends v as a named vector record.
func (w *Writer) PutVector(name string, v []float64) error {
	return w.put(name, KindVector, len(v), 1, v)
}

// PutMatrix appends m as a named matrix record, row-major.
func (w *Writer) PutMatrix(name string, m mat.Matrix) error {
	rows, cols := m.Dims()
	data := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			data = append(data, m.At(i, j))
		}
	}
	return w.put(name, KindMatrix, rows, cols, data)
}

func (w *Writer) put(name string, kind Kind, rows, cols int, data []float64) error {
	if len(name) > math.MaxUint16 {
		return fmt.Errorf("binfile: record name too long (%d bytes)", len(name))
	}
	if rows < 0 || cols < 0 || len(data) != rows*cols {
		return fmt.Errorf("binfile: inconsistent dims %dx%d for %d values", rows, cols, len(data))
	}
	if len(data)*8 > maxPayload {
		return fmt.Errorf("binfile: payload too large (%d values)", len(data))
	}
	raw := w.buf[:0]
	for _, v := range data {
		raw = binary.LittleEndian.AppendUint64(raw, math.Float64bits(v))
	}
	w.buf = raw
	sum := siphash.Hash(hashK0, hashK1, raw)
	payload, err := compress(w.codec, raw, nil)
	if err != nil {
		return err
	}
	if w.aead != nil {
		payload, err = seal(w.aead, payload)
		if err != nil {
			return err
		}
	}

	hdr := make([]byte, 0, 24+len(name))
	hdr = append(hdr, uint8(kind), w.codec)
	hdr = binary.LittleEndian.AppendUint16(hdr, uint16(len(name)))
	hdr = binary.LittleEndian.AppendUint32(hdr, uint32(rows))
	hdr = binary.LittleEndian.AppendUint32(hdr, uint32(cols))
	hdr = binary.LittleEndian.AppendUint64(hdr, sum)
	hdr = binary.LittleEndian.AppendUint32(hdr, uint32(len(payload)))
	hdr = append(hdr, name...)
	if _, err := w.w.Write(hdr); err != nil {
		return err
	}
	_, err = w.w.Write(payload)
	return err
}

// Record is one decoded entry of a stream.
type Record struct {
	Name string
	Kind Kind
	Rows int
	Cols int
	Data []float64
}

// Vector returns the record payload as a flat slice.
func (r *Record) Vector() []float64 { return r.Data }

// Matrix returns the record payload as a dense matrix.
func (r *Record) Matrix() *mat.Dense {
	return mat.NewDense(r.Rows, r.Cols, r.Data)
}

// Reader decodes a stream produced by Writer.
type Reader struct {
	r         io.Reader
	aead      cipher.AEAD
	id        uuid.UUID
	encrypted bool
}

// NewReader consumes the stream header from r. Opening an
// encrypted stream requires WithEncryptionKey.
func NewReader(r io.Reader, opts ...Option) (*Reader, error) {
	var o options
	for _, f := range opts {
		f(&o)
	}
	hdr := make([]byte, 24)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return nil, fmt.Errorf("binfile: reading stream header: %w", err)
	}
	if [4]byte(hdr[:4]) != magic {
		return nil, fmt.Errorf("binfile: bad magic %q", hdr[:4])
	}
	version := binary.LittleEndian.Uint16(hdr[4:6])
	if version != formatVersion {
		return nil, fmt.Errorf("binfile: unsupported format version %d", version)
	}
	flags := binary.LittleEndian.Uint16(hdr[6:8])
	out := &Reader{r: r, encrypted: flags&flagEncrypted != 0}
	copy(out.id[:], hdr[8:24])
	if out.encrypted {
		if o.key == nil {
			return nil, errors.New("binfile: stream is encrypted; key required")
		}
		aead, err := newAEAD(o.key)
		if err != nil {
			return nil, err
		}
		out.aead = aead
	}
	return out, nil
}

// ID returns the stream id from the header.
func (r *Reader) ID() uuid.UUID { return r.id }

// Next returns the next record, or io.EOF after the last one.
func (r *Reader) Next() (*Record, error) {
	fixed := make([]byte, 24)
	if _, err := io.ReadFull(r.r, fixed[:1]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, err
	}
	if _, err := io.ReadFull(r.r, fixed[1:]); err != nil {
		return nil, fmt.Errorf("binfile: truncated record header: %w", err)
	}
	kind := Kind(fixed[0])
	if kind != KindVector && kind != KindMatrix {
		return nil, fmt.Errorf("binfile: unknown record kind %d", fixed[0])
	}
	codec := fixed[1]
	nameLen := binary.LittleEndian.Uint16(fixed[2:4])
	rows := binary.LittleEndian.Uint32(fixed[4:8])
	cols := binary.LittleEndian.Uint32(fixed[8:12])
	sum := binary.LittleEndian.Uint64(fixed[12:20])
	payloadLen := binary.LittleEndian.Uint32(fixed[20:24])

	rawLen := uint64(rows) * uint64(cols) * 8
	if rawLen > maxPayload {
		return nil, fmt.Errorf("binfile: record dims %dx%d exceed payload limit", rows, cols)
	}
	if kind == KindVector && cols != 1 {
		return nil, fmt.Errorf("binfile: vector record with %d columns", cols)
	}

	name := make([]byte, nameLen)
	if _, err := io.ReadFull(r.r, name); err != nil {
		return nil, fmt.Errorf("binfile: truncated record name: %w", err)
	}
	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(r.r, payload); err != nil {
		return nil, fmt.Errorf("binfile: truncated record payload: %w", err)
	}
	if r.aead != nil {
		var err error
		payload, err = open(r.aead, payload)
		if err != nil {
			return nil, fmt.Errorf("binfile: opening sealed payload: %w", err)
		}
	}
	raw := make([]byte, rawLen)
	if err := decompress(codec, payload, raw); err != nil {
		return nil, err
	}
	if siphash.Hash(hashK0, hashK1, raw) != sum {
		return nil, ErrChecksum
	}
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
	}
	return &Record{
		Name: string(name),
		Kind: kind,
		Rows: int(rows),
		Cols: int(cols),
		Data: data,
	}, nil
}
