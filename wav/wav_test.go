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

package wav

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
)

func TestRoundtrip(t *testing.T) {
	const rate = 8000
	src := make([]float64, 4000)
	for i := range src {
		src[i] = 0.25 * math.Sin(0.05*float64(i))
	}
	path := filepath.Join(t.TempDir(), "tone.wav")
	if err := WriteMono(path, src, rate); err != nil {
		t.Fatalf("WriteMono: %v", err)
	}
	got, gotRate, err := ReadMono(path)
	if err != nil {
		t.Fatalf("ReadMono: %v", err)
	}
	if gotRate != rate {
		t.Errorf("sample rate %d, want %d", gotRate, rate)
	}
	if len(got) != len(src) {
		t.Fatalf("got %d samples, want %d", len(got), len(src))
	}
	// writing normalizes to full scale, so compare shapes
	peak := 0.0
	for i := range got {
		if a := math.Abs(got[i]); a > peak {
			peak = a
		}
		want := src[i] / 0.25
		if d := math.Abs(got[i] - want); d > 1e-3 {
			t.Fatalf("sample %d: %g, want %g (within 16-bit quantization)", i, got[i], want)
		}
	}
	if peak < 0.99 {
		t.Errorf("peak after normalization %g, want ~1", peak)
	}
}

func TestWriteNegativePeak(t *testing.T) {
	// when |min| dominates, normalization divides by -min
	src := []float64{0.1, -0.5, 0.2, -0.25}
	path := filepath.Join(t.TempDir(), "neg.wav")
	if err := WriteMono(path, src, 8000); err != nil {
		t.Fatalf("WriteMono: %v", err)
	}
	got, _, err := ReadMono(path)
	if err != nil {
		t.Fatalf("ReadMono: %v", err)
	}
	for i := range got {
		want := src[i] / 0.5
		if d := math.Abs(got[i] - want); d > 1e-3 {
			t.Fatalf("sample %d: %g, want %g", i, got[i], want)
		}
	}
}

func TestWriteZeroSignal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zero.wav")
	if err := WriteMono(path, make([]float64, 128), 8000); err != nil {
		t.Fatalf("WriteMono: %v", err)
	}
	got, _, err := ReadMono(path)
	if err != nil {
		t.Fatalf("ReadMono: %v", err)
	}
	for i, v := range got {
		if v != 0 {
			t.Fatalf("sample %d = %g, want 0", i, v)
		}
	}
}

func TestReadFirstChannel(t *testing.T) {
	// stereo file: ReadMono must pick channel 0
	path := filepath.Join(t.TempDir(), "stereo.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	const rate = 8000
	enc := gowav.NewEncoder(f, rate, 16, 2, 1)
	n := 256
	data := make([]int, 2*n)
	for i := 0; i < n; i++ {
		data[2*i] = 1000 + i // left
		data[2*i+1] = -4000  // right
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	got, gotRate, err := ReadMono(path)
	if err != nil {
		t.Fatalf("ReadMono: %v", err)
	}
	if gotRate != rate {
		t.Errorf("sample rate %d, want %d", gotRate, rate)
	}
	if len(got) != n {
		t.Fatalf("got %d samples, want %d", len(got), n)
	}
	for i := range got {
		want := float64(1000+i) / 32768
		if math.Abs(got[i]-want) > 1e-9 {
			t.Fatalf("sample %d: %g, want %g", i, got[i], want)
		}
	}
}

func TestErrors(t *testing.T) {
	if _, _, err := ReadMono(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Error("expected error for missing file")
	}
	if err := WriteMono(filepath.Join(t.TempDir(), "x.wav"), nil, 8000); err == nil {
		t.Error("expected error for empty signal")
	}
	if err := WriteMono(filepath.Join(t.TempDir(), "x.wav"), []float64{0}, 0); err == nil {
		t.Error("expected error for zero sample rate")
	}
}
