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

// Package style supports attaching SVG presentation attributes, such as
// stroke-width or opacity, to scene elements.  Attribute names follow
// https://developer.mozilla.org/en-US/docs/Web/SVG/Attribute.
//
// Highlighting is purely presentational: a highlighted series is drawn with
// Highlighted(), and its siblings with Dimmed().
package style

import (
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/ilhamster/covidviz/server/go/util"
)

const (
	keyPrefix = "style_"

	// StrokeWidth is the SVG stroke-width attribute.
	StrokeWidth = "stroke-width"
	// Opacity is the SVG opacity attribute.
	Opacity = "opacity"
	// FillOpacity is the SVG fill-opacity attribute.
	FillOpacity = "fill-opacity"
)

// Key returns the scene property key holding the provided attribute.
func Key(attr string) string {
	return keyPrefix + attr
}

// Style is a set of presentation attributes.
type Style struct {
	attrs map[string]string
}

// New returns a new, empty Style.
func New() *Style {
	return &Style{
		attrs: map[string]string{},
	}
}

// With sets the specified attribute in the receiver.
func (s *Style) With(attr, val string) *Style {
	s.attrs[attr] = val
	return s
}

// Define returns a PropertyUpdate attaching the receiver to a datum.
func (s *Style) Define() util.PropertyUpdate {
	updates := make([]util.PropertyUpdate, 0, len(s.attrs))
	for _, attr := range slices.Sorted(maps.Keys(s.attrs)) {
		updates = append(updates, util.StringProperty(Key(attr), s.attrs[attr]))
	}
	return util.Chain(updates...)
}

// Px formats the provided value as a pixel specifier.
func Px(valPx float64) string {
	return fmt.Sprintf("%.2fpx", valPx)
}

// Fraction formats the provided value as a unitless fraction.
func Fraction(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Highlighted returns the style of a series under the pointer.
func Highlighted() *Style {
	return New().With(StrokeWidth, Px(3)).With(Opacity, Fraction(1))
}

// Dimmed returns the style of a series while another is highlighted.
func Dimmed() *Style {
	return New().With(StrokeWidth, Px(1)).With(Opacity, Fraction(.3))
}

// Normal returns the style of a series when nothing is highlighted.
func Normal() *Style {
	return New().With(StrokeWidth, Px(1.5)).With(Opacity, Fraction(.9))
}
