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

// Package special implements special mathematical functions
// needed by the rest of the toolkit.
package special

import (
	"errors"
	"math"
)

// ErrOverflow is returned by Airy when the argument is beyond
// the representable asymptotic range. The accompanying results
// are saturated (Ai and Ai' underflow to zero; Bi and Bi' are
// pinned at math.MaxFloat64), not exact.
var ErrOverflow = errors.New("special: airy argument overflow")

// Rational minimax approximations follow the Cephes airy routine
// (Stephen L. Moshier, http://www.netlib.org/cephes/).
//
// Peak relative error over [-10, 10] is about 2e-14 for Ai/Ai'
// and 5e-15 for Bi/Bi'; for larger |x| the error grows as x^1.5.

const (
	maxAiry = 25.77                       // Bi overflows beyond this point
	machEp  = 1.11022302462515654042e-16 // 2**-53

	c1    = 0.35502805388781723926    // Ai(0)
	c2    = 0.258819403792806798405   // -Ai'(0)
	sqrt3 = 1.732050807568877293527
	sqpii = 5.64189583547756286948e-1 // 1/sqrt(pi)
)

// Ai/Ai' rational corrections for x >= 2.09, in z = 1/zeta.
var airyAN = [8]float64{
	3.46538101525629032477e-1,
	1.20075952739645805542e1,
	7.62796053615234516538e1,
	1.68089224934630576269e2,
	1.59756391350164413639e2,
	7.05360906840444183113e1,
	1.40264691163389668864e1,
	9.99999999999999995305e-1,
}

var airyAD = [8]float64{
	5.67594532638770212846e-1,
	1.47562562584847203173e1,
	8.45138970141474626562e1,
	1.77318088145400459522e2,
	1.64234692871529701831e2,
	7.14778400825575695274e1,
	1.40959135607834029598e1,
	1.00000000000000000470e0,
}

var airyAPN = [8]float64{
	6.13759184814035759225e-1,
	1.47454670787755323881e1,
	8.20584123476060982430e1,
	1.71184781360976385540e2,
	1.59317847137141783523e2,
	6.99778599330103016170e1,
	1.39470856980481566958e1,
	1.00000000000000000550e0,
}

var airyAPD = [8]float64{
	3.34203677749736953049e-1,
	1.11810297306158156705e1,
	7.11727352147859965283e1,
	1.58778084372838313640e2,
	1.53206427475809220834e2,
	6.86752304592780337944e1,
	1.38498634758259442477e1,
	9.99999999999999994502e-1,
}

// Bi/Bi' corrections for zeta > 16; the denominators have an
// implicit leading 1.0 coefficient (evaluated with p1evl).
var airyBN16 = [5]float64{
	-2.53240795869364152689e-1,
	5.75285167332467384228e-1,
	-3.29907036873225371650e-1,
	6.44404068948199951727e-2,
	-3.82519546641336734394e-3,
}

var airyBD16 = [5]float64{
	-7.15685095054035237902e0,
	1.06039580715664694291e1,
	-5.23246636471251500874e0,
	9.57395864378383833152e-1,
	-5.50828147163549611107e-2,
}

var airyBPPN = [5]float64{
	4.65461162774651610328e-1,
	-1.08992173800493920734e0,
	6.38800117371827987759e-1,
	-1.26844349553102907034e-1,
	7.62487844342109852105e-3,
}

var airyBPPD = [5]float64{
	-8.70622787633159124240e0,
	1.38993162704553213172e1,
	-7.14116144616431159572e0,
	1.34008595960680518666e0,
	-7.84273211323341930448e-2,
}

// Oscillatory-branch corrections for x < -2.09, in zz = 1/zeta^2.
var airyAFN = [9]float64{
	-1.31696323418331795333e-1,
	-6.26456544431912369773e-1,
	-6.93158036036933542233e-1,
	-2.79779981545119124951e-1,
	-4.91900132609500318020e-2,
	-4.06265923594885404393e-3,
	-1.59276496239262096340e-4,
	-2.77649108155232920844e-6,
	-1.67787698489114633780e-8,
}

var airyAFD = [9]float64{
	1.33560420706553243746e1,
	3.26825032795224613948e1,
	2.67367040941499554804e1,
	9.18707402907259625840e0,
	1.47529146771666414581e0,
	1.15687173795188044134e-1,
	4.40291641615211203805e-3,
	7.54720348287414296618e-5,
	4.51850092970580378464e-7,
}

var airyAGN = [11]float64{
	1.97339932091685679179e-2,
	3.91103029615688277255e-1,
	1.06579897599595591108e0,
	9.39169229816650230044e-1,
	3.51465656105547619242e-1,
	6.33888919628925490927e-2,
	5.85804113048388458567e-3,
	2.82851600836737019778e-4,
	6.98793669997260967291e-6,
	8.11789239554389293311e-8,
	3.41551784765923618484e-10,
}

var airyAGD = [10]float64{
	9.30892908077441974853e0,
	1.98352928718312140417e1,
	1.55646628932864612953e1,
	5.47686069422975497931e0,
	9.54293611618961883998e-1,
	8.64580826352392193095e-2,
	4.12656523824222607191e-3,
	1.01259085116509135510e-4,
	1.17166733214413521882e-6,
	4.91834570062930015649e-9,
}

var airyAPFN = [9]float64{
	1.85365624022535566142e-1,
	8.86712188052584095637e-1,
	9.87391981747398547272e-1,
	4.01241082318003734092e-1,
	7.10304926289631174579e-2,
	5.90618657995661810071e-3,
	2.33051409401776799569e-4,
	4.08718778289035454598e-6,
	2.48379932900442457853e-8,
}

var airyAPFD = [9]float64{
	1.47345854687502542552e1,
	3.75423933435489594466e1,
	3.14657751203046424330e1,
	1.09969125207298778536e1,
	1.78885054766999417817e0,
	1.41733275753662636873e-1,
	5.44066067017226003627e-3,
	9.39421290654511171663e-5,
	5.65978713036027009243e-7,
}

var airyAPGN = [11]float64{
	-3.55615429033082288335e-2,
	-6.37311518129435504426e-1,
	-1.70856738884312371053e0,
	-1.50221872117316635393e0,
	-5.63606665822102676611e-1,
	-1.02101031120216891789e-1,
	-9.48396695961445269093e-3,
	-4.60325307486780994357e-4,
	-1.14300836484517375919e-5,
	-1.33415518685547420648e-7,
	-5.63803833958893494476e-10,
}

var airyAPGD = [10]float64{
	9.85865801696130355144e0,
	2.16401867356585941885e1,
	1.73130776389749389525e1,
	6.17872175280828766327e0,
	1.08848694396321495475e0,
	9.95005543440888479402e-2,
	4.78468199683886610842e-3,
	1.18159633322838625562e-4,
	1.37480673554219441465e-6,
	5.79912514929147598821e-9,
}

// Airy returns the two linearly independent solutions Ai(x), Bi(x)
// of the differential equation y''(x) = x*y(x), together with their
// first derivatives Ai'(x) and Bi'(x).
//
// Evaluation is by power series summation for small x and by
// rational minimax approximations of the asymptotic expansions for
// large |x|. For x > 25.77 the result saturates: Ai and Ai'
// underflow to zero, Bi and Bi' are pinned at math.MaxFloat64, and
// ErrOverflow is returned. Every finite x is otherwise a valid
// argument; the function is pure and safe for concurrent use.
func Airy(x float64) (ai, aip, bi, bip float64, err error) {
	if x > maxAiry {
		return 0, 0, math.MaxFloat64, math.MaxFloat64, ErrOverflow
	}

	if x < -2.09 {
		// Oscillatory region: phase/amplitude decomposition
		// around sin(zeta+pi/4) and cos(zeta+pi/4).
		t := math.Sqrt(-x)
		zeta := -2.0 * x * t / 3.0
		t = math.Sqrt(t)
		k := sqpii / t
		z := 1.0 / zeta
		zz := z * z
		uf := 1.0 + zz*polevl(zz, airyAFN[:])/p1evl(zz, airyAFD[:])
		ug := z * polevl(zz, airyAGN[:]) / p1evl(zz, airyAGD[:])
		theta := zeta + 0.25*math.Pi
		f := math.Sin(theta)
		g := math.Cos(theta)
		ai = k * (f*uf - g*ug)
		bi = k * (g*uf + f*ug)
		uf = 1.0 + zz*polevl(zz, airyAPFN[:])/p1evl(zz, airyAPFD[:])
		ug = z * polevl(zz, airyAPGN[:]) / p1evl(zz, airyAPGD[:])
		k = sqpii * t
		aip = -k * (g*uf + f*ug)
		bip = k * (f*uf - g*ug)
		return ai, aip, bi, bip, nil
	}

	// haveAi/haveAip record that the asymptotic branch below has
	// already produced Ai and Ai', so the series fallthrough must
	// not overwrite them.
	var haveAi, haveAip bool

	if x >= 2.09 { // cbrt(9)
		haveAi, haveAip = true, true
		t := math.Sqrt(x)
		zeta := 2.0 * x * t / 3.0
		g := math.Exp(zeta)
		t = math.Sqrt(t)
		k := 2.0 * t * g
		z := 1.0 / zeta
		f := polevl(z, airyAN[:]) / polevl(z, airyAD[:])
		ai = sqpii * f / k
		k = -0.5 * sqpii * t / g
		f = polevl(z, airyAPN[:]) / polevl(z, airyAPD[:])
		aip = f * k

		if x > 8.3203353 { // zeta > 16
			f = z * polevl(z, airyBN16[:]) / p1evl(z, airyBD16[:])
			k = sqpii * g
			bi = k * (1.0 + f) / t
			f = z * polevl(z, airyBPPN[:]) / p1evl(z, airyBPPD[:])
			bip = k * t * (1.0 + f)
			return ai, aip, bi, bip, nil
		}
	}

	// Power series in z = x^3; terminates on the relative size
	// of the last term, which stays under ~30 iterations for the
	// |x| <= 8.33 arguments that reach this point.
	f := 1.0
	g := x
	t := 1.0
	uf := 1.0
	ug := x
	k := 1.0
	z := x * x * x
	for t > machEp {
		uf *= z
		k += 1.0
		uf /= k
		ug *= z
		k += 1.0
		ug /= k
		uf /= k
		f += uf
		k += 1.0
		ug /= k
		g += ug
		t = math.Abs(uf / f)
	}
	uf = c1 * f
	ug = c2 * g
	if !haveAi {
		ai = uf - ug
	}
	bi = sqrt3 * (uf + ug)

	// the derivative series
	k = 4.0
	uf = x * x / 2.0
	ug = z / 3.0
	f = uf
	g = 1.0 + ug
	uf /= 3.0
	t = 1.0
	for t > machEp {
		uf *= z
		ug /= k
		k += 1.0
		ug *= z
		uf /= k
		f += uf
		k += 1.0
		ug /= k
		uf /= k
		g += ug
		k += 1.0
		t = math.Abs(ug / g)
	}
	uf = c1 * f
	ug = c2 * g
	if !haveAip {
		aip = uf - ug
	}
	bip = sqrt3 * (uf + ug)
	return ai, aip, bi, bip, nil
}
