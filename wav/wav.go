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

// Package wav reads and writes PCM wav files as float64 sample
// slices scaled to [-1, 1].
package wav

import (
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"golang.org/x/exp/slices"
)

// ReadMono reads path and returns the first channel as float64
// samples in [-1, 1], along with the sample rate.
func ReadMono(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	dec := gowav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("wav: decoding %s: %w", path, err)
	}
	if dec.Err() != nil {
		return nil, 0, fmt.Errorf("wav: decoding %s: %w", path, dec.Err())
	}
	bits := int(dec.BitDepth)
	if bits == 0 {
		bits = buf.SourceBitDepth
	}
	if bits <= 0 || bits > 32 {
		return nil, 0, fmt.Errorf("wav: %s: unsupported bit depth %d", path, bits)
	}
	scale := float64(int64(1) << (bits - 1))
	ch := buf.Format.NumChannels
	if ch < 1 {
		return nil, 0, fmt.Errorf("wav: %s: no channels", path)
	}
	n := len(buf.Data) / ch
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = float64(buf.Data[i*ch]) / scale
	}
	return out, buf.Format.SampleRate, nil
}

// WriteMono writes samples to path as 16-bit PCM mono at the given
// sample rate. The signal is peak-normalized first: divided by its
// maximum when the positive peak dominates, by the negated minimum
// otherwise. An all-zero signal is written as-is.
func WriteMono(path string, samples []float64, sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("wav: invalid sample rate %d", sampleRate)
	}
	if len(samples) == 0 {
		return fmt.Errorf("wav: no samples to write")
	}
	max := slices.Max(samples)
	min := slices.Min(samples)
	div := 1.0
	switch {
	case max > -min && max > 0:
		div = max
	case min < 0:
		div = -min
	}

	const peak = 32767
	data := make([]int, len(samples))
	for i, v := range samples {
		data[i] = int(math.Round(v / div * peak))
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := gowav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		f.Close()
		return fmt.Errorf("wav: writing %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("wav: finalizing %s: %w", path, err)
	}
	return f.Close()
}
