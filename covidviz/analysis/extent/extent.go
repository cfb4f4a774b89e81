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

// Package extent computes the time and value bounds of series data, used to
// scale chart axes.
//
// An extent over no data is reported explicitly, as a false second return,
// rather than as NaN or infinite bounds; callers render such data as 'no
// data' instead of scaling against it.
package extent

import (
	"time"

	"github.com/ilhamster/covidviz/covidviz/analysis/record"
	"github.com/ilhamster/covidviz/covidviz/analysis/series"
)

// Bound is one corner of an Extent.
type Bound struct {
	X time.Time
	Y float64
}

// Extent is the bounding box of a set of points.  Min.X <= Max.X and
// Min.Y <= Max.Y always hold.
type Extent struct {
	Min, Max Bound
}

// Duration returns the width of the receiver's time axis.
func (e Extent) Duration() time.Duration {
	return e.Max.X.Sub(e.Min.X)
}

type options struct {
	included   func(category string) bool
	start, end time.Time
	windowed   bool
}

// Option configures an extent computation.
type Option func(*options)

// Including restricts the computation to categories for which included
// returns true.
func Including(included func(category string) bool) Option {
	return func(o *options) {
		o.included = included
	}
}

// Within restricts the computation to points within [start, end].
func Within(start, end time.Time) Option {
	return func(o *options) {
		o.start, o.end, o.windowed = start, end, true
	}
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *options) includes(category string) bool {
	return o.included == nil || o.included(category)
}

// accumulator grows an Extent point by point.
type accumulator struct {
	ext Extent
	ok  bool
}

func (a *accumulator) add(t time.Time, v float64) {
	if !a.ok {
		a.ext = Extent{Min: Bound{t, v}, Max: Bound{t, v}}
		a.ok = true
		return
	}
	if t.Before(a.ext.Min.X) {
		a.ext.Min.X = t
	}
	if t.After(a.ext.Max.X) {
		a.ext.Max.X = t
	}
	if v < a.ext.Min.Y {
		a.ext.Min.Y = v
	}
	if v > a.ext.Max.Y {
		a.ext.Max.Y = v
	}
}

// Of returns the extent of the provided Map, restricted by any provided
// Options.  It returns false if no points remain.
func Of(m *series.Map, opts ...Option) (Extent, bool) {
	o := newOptions(opts)
	acc := &accumulator{}
	for _, s := range m.All() {
		if !o.includes(s.Category()) {
			continue
		}
		pts := s.Points()
		if o.windowed {
			pts = s.Window(o.start, o.end)
		}
		for _, p := range pts {
			acc.add(p.Timestamp, p.Value)
		}
	}
	return acc.ext, acc.ok
}

// OfEntries returns the extent of the provided entries, restricted by any
// provided Options.  It returns false if no entries remain.
func OfEntries(entries []record.Entry, opts ...Option) (Extent, bool) {
	o := newOptions(opts)
	acc := &accumulator{}
	for _, entry := range entries {
		if !o.includes(entry.Category) {
			continue
		}
		if o.windowed && (entry.Timestamp.Before(o.start) || entry.Timestamp.After(o.end)) {
			continue
		}
		acc.add(entry.Timestamp, entry.Value)
	}
	return acc.ext, acc.ok
}
