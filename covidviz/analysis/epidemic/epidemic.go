/*
	Copyright 2025 Google Inc.
	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at
		https://www.apache.org/licenses/LICENSE-2.0
	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

// Package epidemic iterates a discrete infection-growth model.
//
// Each step advances the infected count I in a population N as
//
//	I' = I + N(1 - exp(-I·λ·τ/N)) - γ·I
//
// where λ is the contact rate, τ the transmission probability per contact,
// and γ the recovery rate.
package epidemic

import (
	"fmt"
	"math"
)

// Params parameterizes a model run.
type Params struct {
	// Initial is the infected count at step 0.
	Initial float64
	// Population is the total population size N.
	Population float64
	// Tau is the transmission probability per contact.
	Tau float64
	// Gamma is the per-step recovery rate.
	Gamma float64
	// Lambda is the per-step contact rate.
	Lambda float64
	// Steps is the number of values produced, including the initial one.
	Steps int
}

// DefaultParams returns the parameters the model starts from.
func DefaultParams() Params {
	return Params{
		Initial:    1e3,
		Population: 1e6,
		Tau:        1,
		Gamma:      0,
		Lambda:     50,
		Steps:      1000,
	}
}

// MaxSteps bounds the length of a single run.
const MaxSteps = 100000

// Validate returns an error if the receiver cannot be run.
func (p Params) Validate() error {
	switch {
	case p.Population <= 0:
		return fmt.Errorf("population must be positive, got %g", p.Population)
	case p.Steps <= 0 || p.Steps > MaxSteps:
		return fmt.Errorf("steps must be in (0, %d], got %d", MaxSteps, p.Steps)
	case p.Initial < 0 || p.Tau < 0 || p.Gamma < 0 || p.Lambda < 0:
		return fmt.Errorf("initial, tau, gamma and lambda must be non-negative")
	}
	for _, v := range []float64{p.Initial, p.Population, p.Tau, p.Gamma, p.Lambda} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("parameters must be finite")
		}
	}
	return nil
}

// Run returns the infected count at each of the receiver's Steps, starting
// with Initial.
func (p Params) Run() ([]float64, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	ret := make([]float64, p.Steps)
	i := p.Initial
	for step := range ret {
		ret[step] = i
		i += p.Population*(1-math.Exp(-i*p.Lambda*p.Tau/p.Population)) - p.Gamma*i
	}
	return ret, nil
}
