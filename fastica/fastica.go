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

// Package fastica separates linearly mixed signals into
// statistically independent components using the FastICA
// fixed-point algorithm.
//
// The input is a sensors-by-samples matrix; each row is one
// observed mixture. Separation runs in three stages: row-mean
// centering, PCA whitening, and the fixed-point iteration itself,
// either over all components at once (Symmetric) or one component
// at a time with Gram-Schmidt deflation (Deflation).
package fastica

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/mat"
)

// Approach selects how estimates are updated across components.
type Approach int

const (
	// Symmetric estimates all components in parallel and
	// re-orthogonalizes the whole basis every iteration.
	Symmetric Approach = iota
	// Deflation estimates components one by one, projecting
	// out the ones already found.
	Deflation
)

// Nonlinearity selects the contrast function driving the
// fixed-point update.
type Nonlinearity int

const (
	// Pow3 is the kurtosis-based cubic contrast (the default).
	Pow3 Nonlinearity = iota
	// Tanh is the log-cosh contrast.
	Tanh
	// Gauss is the Gaussian contrast, u*exp(-u^2/2).
	Gauss
	// Skew targets skewed sources with the square contrast.
	Skew
)

// ErrNotConverged is wrapped into the error returned by Separate
// when the fixed-point iteration runs out of iterations. The
// accompanying Result holds the best estimate found so far.
var ErrNotConverged = errors.New("fastica: iteration did not converge")

const (
	defaultMaxIterations = 1000
	defaultTolerance     = 1e-9
)

// Separator configures a separation run. The zero value separates
// all components with the symmetric approach and pow3 contrast.
type Separator struct {
	Approach     Approach
	Nonlinearity Nonlinearity

	// Components is the number of independent components to
	// extract; zero means one per sensor row.
	Components int

	// MaxIterations bounds the fixed-point iteration
	// (per component under Deflation). Zero means 1000.
	MaxIterations int

	// Tolerance is the convergence threshold on the change of
	// the demixing directions between iterations. Zero means 1e-9.
	Tolerance float64

	// InitGuess optionally seeds the iteration with a
	// sensors-by-components matrix in sensor coordinates.
	// When nil the start is random, driven by Seed.
	InitGuess *mat.Dense

	// Seed for the random starting basis. Zero means 1, so that
	// runs are reproducible by default.
	Seed int64
}

// Result holds the outcome of a separation.
type Result struct {
	// Mixing is the estimated sensors-by-components mixing
	// matrix A, with X ~= A * Components + row means.
	Mixing *mat.Dense
	// Separating is the components-by-sensors demixing matrix W.
	Separating *mat.Dense
	// Components are the recovered sources, one per row,
	// computed from the centered input: W * (X - mean).
	Components *mat.Dense
	// Means holds the per-row means removed during centering.
	Means []float64
	// Iterations is the number of fixed-point iterations spent
	// (summed over components under Deflation).
	Iterations int
}

// Separate runs FastICA over x, a sensors-by-samples matrix.
// On ErrNotConverged the returned Result still carries the last
// estimate; any other error leaves the Result nil.
func (s *Separator) Separate(x *mat.Dense) (*Result, error) {
	rows, cols := x.Dims()
	if rows < 2 {
		return nil, fmt.Errorf("fastica: need at least 2 sensor rows, have %d", rows)
	}
	if cols < rows {
		return nil, fmt.Errorf("fastica: need at least as many samples (%d) as sensors (%d)", cols, rows)
	}
	comps := s.Components
	if comps == 0 {
		comps = rows
	}
	if comps < 1 || comps > rows {
		return nil, fmt.Errorf("fastica: component count %d out of range [1, %d]", comps, rows)
	}
	maxIter := s.MaxIterations
	if maxIter == 0 {
		maxIter = defaultMaxIterations
	}
	tol := s.Tolerance
	if tol == 0 {
		tol = defaultTolerance
	}
	contrast, err := s.contrast()
	if err != nil {
		return nil, err
	}

	xc, means := centerRows(x)
	z, white, dewhite, err := whiten(xc, comps)
	if err != nil {
		return nil, err
	}

	b, err := s.initialBasis(white, comps)
	if err != nil {
		return nil, err
	}

	var iters int
	var convErr error
	switch s.Approach {
	case Symmetric:
		iters, convErr = iterateSymmetric(z, b, contrast, tol, maxIter)
	case Deflation:
		iters, convErr = iterateDeflation(z, b, contrast, tol, maxIter)
	default:
		return nil, fmt.Errorf("fastica: unknown approach %d", s.Approach)
	}

	// W = B^T * white, A = dewhite * B
	sep := &mat.Dense{}
	sep.Mul(b.T(), white)
	mix := &mat.Dense{}
	mix.Mul(dewhite, b)
	ics := &mat.Dense{}
	ics.Mul(sep, xc)
	return &Result{
		Mixing:     mix,
		Separating: sep,
		Components: ics,
		Means:      means,
		Iterations: iters,
	}, convErr
}

func (s *Separator) contrast() (contrastFunc, error) {
	switch s.Nonlinearity {
	case Pow3:
		return gPow3, nil
	case Tanh:
		return gTanh, nil
	case Gauss:
		return gGauss, nil
	case Skew:
		return gSkew, nil
	}
	return nil, fmt.Errorf("fastica: unknown nonlinearity %d", s.Nonlinearity)
}

// initialBasis builds the starting orthonormal basis in whitened
// coordinates, either from InitGuess or at random.
func (s *Separator) initialBasis(white *mat.Dense, comps int) (*mat.Dense, error) {
	wr, wc := white.Dims()
	b := mat.NewDense(wr, comps, nil)
	if s.InitGuess != nil {
		gr, gc := s.InitGuess.Dims()
		if gr != wc || gc != comps {
			return nil, fmt.Errorf("fastica: init guess is %dx%d, want %dx%d", gr, gc, wc, comps)
		}
		b.Mul(white, s.InitGuess)
	} else {
		seed := s.Seed
		if seed == 0 {
			seed = 1
		}
		rng := rand.New(rand.NewSource(seed))
		for i := 0; i < wr; i++ {
			for j := 0; j < comps; j++ {
				b.Set(i, j, rng.NormFloat64())
			}
		}
	}
	if err := orthonormalize(b); err != nil {
		return nil, err
	}
	return b, nil
}

// contrastFunc returns g(u) and g'(u) for the fixed-point update.
type contrastFunc func(u float64) (g, gprime float64)

func gPow3(u float64) (float64, float64) {
	return u * u * u, 3 * u * u
}

func gTanh(u float64) (float64, float64) {
	t := math.Tanh(u)
	return t, 1 - t*t
}

func gGauss(u float64) (float64, float64) {
	e := math.Exp(-u * u / 2)
	return u * e, (1 - u*u) * e
}

func gSkew(u float64) (float64, float64) {
	return u * u, 2 * u
}

// iterateSymmetric updates every column of b at once and
// re-orthogonalizes with the symmetric (B^T B)^(-1/2) projection.
// b is comps x comps; z is comps x samples, already white.
func iterateSymmetric(z, b *mat.Dense, g contrastFunc, tol float64, maxIter int) (int, error) {
	dim, n := z.Dims()
	_, comps := b.Dims()
	u := mat.NewDense(comps, n, nil)
	gu := mat.NewDense(comps, n, nil)
	gp := make([]float64, comps)
	next := mat.NewDense(dim, comps, nil)
	old := mat.NewDense(dim, comps, nil)
	dots := mat.NewDense(comps, comps, nil)

	for iter := 1; iter <= maxIter; iter++ {
		old.Copy(b)
		u.Mul(b.T(), z)
		for i := 0; i < comps; i++ {
			sum := 0.0
			for t := 0; t < n; t++ {
				gv, gpv := g(u.At(i, t))
				gu.Set(i, t, gv)
				sum += gpv
			}
			gp[i] = sum / float64(n)
		}
		// B <- Z g(U)^T / n - B diag(mean g')
		next.Mul(z, gu.T())
		for i := 0; i < dim; i++ {
			for j := 0; j < comps; j++ {
				next.Set(i, j, next.At(i, j)/float64(n)-gp[j]*b.At(i, j))
			}
		}
		b.Copy(next)
		if err := orthonormalize(b); err != nil {
			return iter, err
		}
		// direction change, ignoring sign flips
		dots.Mul(b.T(), old)
		delta := 0.0
		for i := 0; i < comps; i++ {
			if d := 1 - math.Abs(dots.At(i, i)); d > delta {
				delta = d
			}
		}
		if delta < tol {
			return iter, nil
		}
	}
	return maxIter, fmt.Errorf("%w after %d iterations", ErrNotConverged, maxIter)
}

// iterateDeflation estimates one column of b at a time, deflating
// against the columns already fixed.
func iterateDeflation(z, b *mat.Dense, g contrastFunc, tol float64, maxIter int) (int, error) {
	dim, n := z.Dims()
	_, comps := b.Dims()
	w := make([]float64, dim)
	nw := make([]float64, dim)
	total := 0
	for c := 0; c < comps; c++ {
		mat.Col(w, c, b)
		normalize(w)
		converged := false
		for iter := 1; iter <= maxIter; iter++ {
			total++
			// nw = E{z g(w.z)} - E{g'(w.z)} w
			for i := range nw {
				nw[i] = 0
			}
			gpSum := 0.0
			for t := 0; t < n; t++ {
				u := 0.0
				for i := 0; i < dim; i++ {
					u += w[i] * z.At(i, t)
				}
				gv, gpv := g(u)
				gpSum += gpv
				for i := 0; i < dim; i++ {
					nw[i] += z.At(i, t) * gv
				}
			}
			for i := 0; i < dim; i++ {
				nw[i] = nw[i]/float64(n) - gpSum/float64(n)*w[i]
			}
			// deflate against the fixed columns
			for p := 0; p < c; p++ {
				dot := 0.0
				for i := 0; i < dim; i++ {
					dot += nw[i] * b.At(i, p)
				}
				for i := 0; i < dim; i++ {
					nw[i] -= dot * b.At(i, p)
				}
			}
			normalize(nw)
			dot := 0.0
			for i := 0; i < dim; i++ {
				dot += nw[i] * w[i]
			}
			copy(w, nw)
			if 1-math.Abs(dot) < tol {
				converged = true
				break
			}
		}
		b.SetCol(c, w)
		if !converged {
			return total, fmt.Errorf("%w for component %d after %d iterations", ErrNotConverged, c, maxIter)
		}
	}
	return total, nil
}

func normalize(v []float64) {
	s := 0.0
	for _, x := range v {
		s += x * x
	}
	s = math.Sqrt(s)
	if s == 0 {
		return
	}
	for i := range v {
		v[i] /= s
	}
}

// centerRows subtracts the mean of each row and returns the
// centered copy along with the removed means.
func centerRows(x *mat.Dense) (*mat.Dense, []float64) {
	rows, cols := x.Dims()
	out := mat.NewDense(rows, cols, nil)
	means := make([]float64, rows)
	for i := 0; i < rows; i++ {
		row := x.RawRowView(i)
		sum := 0.0
		for _, v := range row {
			sum += v
		}
		mu := sum / float64(cols)
		means[i] = mu
		for j, v := range row {
			out.Set(i, j, v-mu)
		}
	}
	return out, means
}

// whiten projects centered data onto the comps strongest principal
// axes and rescales them to unit variance. It returns the whitened
// data, the whitening matrix (comps x sensors) and its
// pseudo-inverse (sensors x comps).
func whiten(xc *mat.Dense, comps int) (z, white, dewhite *mat.Dense, err error) {
	rows, cols := xc.Dims()
	cov := mat.NewSymDense(rows, nil)
	for i := 0; i < rows; i++ {
		for j := i; j < rows; j++ {
			s := 0.0
			for t := 0; t < cols; t++ {
				s += xc.At(i, t) * xc.At(j, t)
			}
			cov.SetSym(i, j, s/float64(cols))
		}
	}
	var es mat.EigenSym
	if !es.Factorize(cov, true) {
		return nil, nil, nil, errors.New("fastica: covariance eigendecomposition failed")
	}
	vals := es.Values(nil)
	var vecs mat.Dense
	es.VectorsTo(&vecs)

	// EigenSym yields ascending order; take the top comps.
	idx := make([]int, rows)
	for i := range idx {
		idx[i] = i
	}
	slices.Reverse(idx)
	idx = idx[:comps]

	white = mat.NewDense(comps, rows, nil)
	dewhite = mat.NewDense(rows, comps, nil)
	for c, k := range idx {
		lambda := vals[k]
		if lambda < 1e-12 {
			return nil, nil, nil, fmt.Errorf("fastica: covariance is degenerate (eigenvalue %g)", lambda)
		}
		s := math.Sqrt(lambda)
		for r := 0; r < rows; r++ {
			white.Set(c, r, vecs.At(r, k)/s)
			dewhite.Set(r, c, vecs.At(r, k)*s)
		}
	}
	z = &mat.Dense{}
	z.Mul(white, xc)
	return z, white, dewhite, nil
}

// orthonormalize replaces b with b (b^T b)^(-1/2), the closest
// orthonormal basis in the Frobenius sense.
func orthonormalize(b *mat.Dense) error {
	rows, comps := b.Dims()
	btb := mat.NewSymDense(comps, nil)
	for i := 0; i < comps; i++ {
		for j := i; j < comps; j++ {
			s := 0.0
			for k := 0; k < rows; k++ {
				s += b.At(k, i) * b.At(k, j)
			}
			btb.SetSym(i, j, s)
		}
	}
	var es mat.EigenSym
	if !es.Factorize(btb, true) {
		return errors.New("fastica: orthonormalization eigendecomposition failed")
	}
	vals := es.Values(nil)
	var vecs mat.Dense
	es.VectorsTo(&vecs)
	invSqrt := mat.NewDense(comps, comps, nil)
	for i := 0; i < comps; i++ {
		for j := 0; j < comps; j++ {
			s := 0.0
			for k := 0; k < comps; k++ {
				if vals[k] <= 0 {
					return errors.New("fastica: basis collapsed during orthonormalization")
				}
				s += vecs.At(i, k) * vecs.At(j, k) / math.Sqrt(vals[k])
			}
			invSqrt.Set(i, j, s)
		}
	}
	var out mat.Dense
	out.Mul(b, invSqrt)
	b.Copy(&out)
	return nil
}
