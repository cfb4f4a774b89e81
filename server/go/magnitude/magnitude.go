/*
	Copyright 2023 Google Inc.
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

// Package magnitude annotates items with a numeric magnitude, used to size
// them relative to their peers, along with a compact rendering of it such
// as "1.2K".
package magnitude

import (
	"math"
	"strconv"

	"github.com/ilhamster/covidviz/server/go/util"
)

const (
	magnitudeKey          = "magnitude"
	formattedMagnitudeKey = "magnitude_formatted"
)

var suffixes = []string{"", "K", "M", "B", "T"}

// round rounds f to one decimal place.
func round(f float64) float64 {
	return math.Round(f*10) / 10
}

// Format renders m compactly, with at most one decimal place and a
// thousands suffix: 950 is "950", 1234 is "1.2K", 2500000 is "2.5M".
func Format(m float64) string {
	if math.IsNaN(m) || math.IsInf(m, 0) {
		return strconv.FormatFloat(m, 'f', -1, 64)
	}
	v, idx := math.Abs(m), 0
	for idx < len(suffixes)-1 && round(v) >= 1000 {
		v /= 1000
		idx++
	}
	return strconv.FormatFloat(math.Copysign(round(v), m), 'f', -1, 64) + suffixes[idx]
}

// Magnitude returns a PropertyUpdate annotating with the provided magnitude
// and its formatted rendering.
func Magnitude(m float64) util.PropertyUpdate {
	return util.Chain(
		util.DoubleProperty(magnitudeKey, m),
		util.StringProperty(formattedMagnitudeKey, Format(m)),
	)
}
