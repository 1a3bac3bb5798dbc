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

package special

// polevl evaluates the polynomial with coefficients coef,
// ordered from the highest degree down to the constant term,
// at x using Horner's method.
func polevl(x float64, coef []float64) float64 {
	ans := coef[0]
	for _, c := range coef[1:] {
		ans = ans*x + c
	}
	return ans
}

// p1evl is polevl for a polynomial whose leading coefficient
// is 1.0 and omitted from coef.
func p1evl(x float64, coef []float64) float64 {
	ans := x + coef[0]
	for _, c := range coef[1:] {
		ans = ans*x + c
	}
	return ans
}
