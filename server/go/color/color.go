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

// Package color supports coloring chart elements.
//
// A scene element may carry a primary color (its fill, or its line for line
// series) and a stroke color (outlines and highlight strokes).  Either may
// be given as a fixed HTML color string with Primary or Stroke, or as a
// position in [0, 1] along a color Space defined elsewhere in the scene,
// which the frontend linearly interpolates.
//
// Series that need stable, distinguishable colors draw them from a Palette:
//
//	palette := color.DefaultPalette()
//	for idx, s := range series {
//	  chart.AddSeries(cat, palette.Primary(idx))
//	}
package color

import (
	"hash/fnv"

	"github.com/ilhamster/covidviz/server/go/util"
)

const (
	colorSpaceNamePrefix = "color_space_"

	primaryColorSpaceKey      = "primary_color_space"
	primaryColorSpaceValueKey = "primary_color_space_value"
	primaryColorKey           = "primary_color"

	strokeColorSpaceKey      = "stroke_color_space"
	strokeColorSpaceValueKey = "stroke_color_space_value"
	strokeColorKey           = "stroke_color"
)

// PrimaryColorKey is the property under which fixed primary colors are
// stored.  Renderers read it back from built scenes.
const PrimaryColorKey = primaryColorKey

// Space is a color continuum mapping values in [0, 1] to colors.
type Space struct {
	name   string
	colors []string
}

// NewSpace defines a new color space linearly interpolated between the
// specified colors.
func NewSpace(name string, colors ...string) *Space {
	return &Space{
		name:   name,
		colors: colors,
	}
}

// Name returns the Space's name.
func (s *Space) Name() string {
	return s.name
}

// Define annotates with a definition of the receiving Space.
func (s *Space) Define() util.PropertyUpdate {
	return util.StringsProperty(colorSpaceNamePrefix+s.name, s.colors...)
}

// PrimaryColor colors with the primary color at position v along the
// receiver.  v is clamped to [0, 1].
func (s *Space) PrimaryColor(v float64) util.PropertyUpdate {
	return util.Chain(
		util.StringProperty(primaryColorSpaceKey, colorSpaceNamePrefix+s.name),
		util.DoubleProperty(primaryColorSpaceValueKey, clamp(v)),
	)
}

// StrokeColor colors with the stroke color at position v along the receiver.
// v is clamped to [0, 1].
func (s *Space) StrokeColor(v float64) util.PropertyUpdate {
	return util.Chain(
		util.StringProperty(strokeColorSpaceKey, colorSpaceNamePrefix+s.name),
		util.DoubleProperty(strokeColorSpaceValueKey, clamp(v)),
	)
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// Primary colors with the specified fixed primary color.
func Primary(color string) util.PropertyUpdate {
	return util.StringProperty(primaryColorKey, color)
}

// Stroke colors with the specified fixed stroke color.
func Stroke(color string) util.PropertyUpdate {
	return util.StringProperty(strokeColorKey, color)
}

// Palette is an ordered set of categorical colors.
type Palette []string

// DefaultPalette returns a ten-color categorical palette.
func DefaultPalette() Palette {
	return Palette{
		"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
		"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
	}
}

// At returns the idx'th palette color, cycling.
func (p Palette) At(idx int) string {
	if len(p) == 0 {
		return "black"
	}
	if idx < 0 {
		idx = -idx
	}
	return p[idx%len(p)]
}

// ForID returns a palette color chosen by hashing id, so that a category
// keeps its color regardless of its position in the chart.
func (p Palette) ForID(id string) string {
	hasher := fnv.New32a()
	hasher.Write([]byte(id))
	return p.At(int(hasher.Sum32() % uint32(max(len(p), 1))))
}

// Primary colors with the idx'th palette color.
func (p Palette) Primary(idx int) util.PropertyUpdate {
	return Primary(p.At(idx))
}
