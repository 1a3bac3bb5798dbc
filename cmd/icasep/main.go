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

// Command icasep separates independent components from a set of
// wav recordings of linear mixtures and writes one wav file per
// recovered component.
//
// Usage:
//
//	icasep [-p params.yaml] [-o prefix] [-m matrices.sbf] mix1.wav mix2.wav ...
package main

import (
	"flag"
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"
	"sigs.k8s.io/yaml"

	"github.com/sigkit/sigkit/binfile"
	"github.com/sigkit/sigkit/fastica"
	"github.com/sigkit/sigkit/wav"
)

var (
	dashp string
	dasho string
	dashm string
	dashv bool
)

func init() {
	flag.StringVar(&dashp, "p", "", "yaml parameter file (approach, nonlinearity, ...)")
	flag.StringVar(&dasho, "o", "result", "output file prefix")
	flag.StringVar(&dashm, "m", "", "also dump mixing/separating matrices to this binfile stream")
	flag.BoolVar(&dashv, "v", false, "verbose")
}

func exitf(f string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, f, args...)
	os.Exit(1)
}

// params is the yaml parameter file schema.
type params struct {
	Approach      string  `json:"approach"`      // "symmetric" or "deflation"
	Nonlinearity  string  `json:"nonlinearity"`  // "pow3", "tanh", "gauss", "skew"
	Components    int     `json:"components"`    // 0 = one per input
	MaxIterations int     `json:"maxIterations"` // 0 = default
	Tolerance     float64 `json:"tolerance"`     // 0 = default
	Seed          int64   `json:"seed"`
}

func (p *params) separator() (*fastica.Separator, error) {
	s := &fastica.Separator{
		Components:    p.Components,
		MaxIterations: p.MaxIterations,
		Tolerance:     p.Tolerance,
		Seed:          p.Seed,
	}
	switch p.Approach {
	case "", "symmetric":
		s.Approach = fastica.Symmetric
	case "deflation":
		s.Approach = fastica.Deflation
	default:
		return nil, fmt.Errorf("unknown approach %q", p.Approach)
	}
	switch p.Nonlinearity {
	case "", "pow3":
		s.Nonlinearity = fastica.Pow3
	case "tanh":
		s.Nonlinearity = fastica.Tanh
	case "gauss":
		s.Nonlinearity = fastica.Gauss
	case "skew":
		s.Nonlinearity = fastica.Skew
	default:
		return nil, fmt.Errorf("unknown nonlinearity %q", p.Nonlinearity)
	}
	return s, nil
}

func loadParams(path string) *params {
	p := new(params)
	if path == "" {
		return p
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		exitf("%s\n", err)
	}
	if err := yaml.UnmarshalStrict(buf, p); err != nil {
		exitf("parsing %s: %s\n", path, err)
	}
	return p
}

// loadMixtures reads each wav as one sensor row, truncating all
// rows to the shortest recording.
func loadMixtures(paths []string) (*mat.Dense, int) {
	rows := make([][]float64, len(paths))
	rate := 0
	n := 0
	for i, path := range paths {
		samples, r, err := wav.ReadMono(path)
		if err != nil {
			exitf("%s\n", err)
		}
		if dashv {
			fmt.Fprintf(os.Stderr, "%s: %d samples at %d Hz\n", path, len(samples), r)
		}
		if i == 0 {
			rate = r
			n = len(samples)
		} else if r != rate {
			exitf("%s: sample rate %d does not match %d\n", path, r, rate)
		}
		if len(samples) < n {
			n = len(samples)
		}
		rows[i] = samples
	}
	if n == 0 {
		exitf("no samples in input\n")
	}
	x := mat.NewDense(len(rows), n, nil)
	for i, row := range rows {
		x.SetRow(i, row[:n])
	}
	return x, rate
}

func dumpMatrices(path string, res *fastica.Result) {
	f, err := os.Create(path)
	if err != nil {
		exitf("%s\n", err)
	}
	defer f.Close()
	w, err := binfile.NewWriter(f)
	if err != nil {
		exitf("%s\n", err)
	}
	if err := w.PutMatrix("mixing", res.Mixing); err != nil {
		exitf("writing %s: %s\n", path, err)
	}
	if err := w.PutMatrix("separating", res.Separating); err != nil {
		exitf("writing %s: %s\n", path, err)
	}
	if dashv {
		fmt.Fprintf(os.Stderr, "%s: stream %s\n", path, w.ID())
	}
}

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: icasep [-p params.yaml] [-o prefix] [-m matrices.sbf] mix1.wav mix2.wav ...")
		os.Exit(2)
	}
	sep, err := loadParams(dashp).separator()
	if err != nil {
		exitf("%s\n", err)
	}

	x, rate := loadMixtures(args)
	res, err := sep.Separate(x)
	if err != nil {
		if res == nil {
			exitf("%s\n", err)
		}
		// non-convergence still produced an estimate
		fmt.Fprintf(os.Stderr, "warning: %s\n", err)
	}

	fmt.Printf("mixing matrix =\n%v\n", mat.Formatted(res.Mixing, mat.Prefix(""), mat.Squeeze()))
	fmt.Printf("separating matrix =\n%v\n", mat.Formatted(res.Separating, mat.Prefix(""), mat.Squeeze()))

	comps, _ := res.Components.Dims()
	for i := 0; i < comps; i++ {
		out := fmt.Sprintf("%s%d.wav", dasho, i+1)
		if err := wav.WriteMono(out, mat.Row(nil, i, res.Components), rate); err != nil {
			exitf("%s\n", err)
		}
		if dashv {
			fmt.Fprintf(os.Stderr, "wrote %s\n", out)
		}
	}
	if dashm != "" {
		dumpMatrices(dashm, res)
	}
}
