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

// Package continuousaxis provides decorator helpers for defining continuous
// axes, and the linear scales that map them onto pixels.  An axis has a name,
// a label, a type which describes that axis' domain, and minimum and maximum
// points along that domain.
package continuousaxis

import (
	"math"
	"time"

	"github.com/ilhamster/covidviz/server/go/category"
	"github.com/ilhamster/covidviz/server/go/util"
)

const (
	axisTypeKey = "axis_type"
	axisMinKey  = "axis_min"
	axisMaxKey  = "axis_max"

	timestampAxisType = "timestamp"
	doubleAxisType    = "double"

	xAxisRenderLabelHeightPxKey   = "x_axis_render_label_height_px"
	xAxisRenderMarkersHeightPxKey = "x_axis_render_markers_height_px"
	yAxisRenderLabelWidthPxKey    = "y_axis_render_label_width_px"
	yAxisRenderMarkersWidthPxKey  = "y_axis_render_markers_width_px"
)

// Domain is the set of types a continuous axis may range over.
type Domain interface {
	float64 | time.Time
}

// XAxisRenderSettings contains configuring an X axis.
type XAxisRenderSettings struct {
	LabelHeightPx   int64
	MarkersHeightPx int64
}

// Apply annotates with the receiving XAxisRenderSettings.
func (x XAxisRenderSettings) Apply() util.PropertyUpdate {
	return util.Chain(
		util.IntegerProperty(xAxisRenderLabelHeightPxKey, x.LabelHeightPx),
		util.IntegerProperty(xAxisRenderMarkersHeightPxKey, x.MarkersHeightPx),
	)
}

// YAxisRenderSettings contains configuring a Y axis.
type YAxisRenderSettings struct {
	LabelWidthPx   int64
	MarkersWidthPx int64
}

// Apply annotates with the receiving YAxisRenderSettings.
func (y YAxisRenderSettings) Apply() util.PropertyUpdate {
	return util.Chain(
		util.IntegerProperty(yAxisRenderLabelWidthPxKey, y.LabelWidthPx),
		util.IntegerProperty(yAxisRenderMarkersWidthPxKey, y.MarkersWidthPx),
	)
}

// Axis is a continuous axis over the domain T.
type Axis[T Domain] struct {
	axisType string
	cat      *category.Category
	Value    func(key string, v T) util.PropertyUpdate
	min, max T
}

func newAxis[T Domain](
	axisType string,
	cat *category.Category,
	valueFn func(key string, v T) util.PropertyUpdate,
	min, max T) *Axis[T] {
	return &Axis[T]{
		axisType: axisType,
		cat:      cat,
		Value:    valueFn,
		min:      min,
		max:      max,
	}
}

// Define annotates with a definition of the receiver.
func (a *Axis[T]) Define() util.PropertyUpdate {
	return util.Chain(
		a.cat.Define(),
		util.StringProperty(axisTypeKey, a.axisType),
		a.Value(axisMinKey, a.min),
		a.Value(axisMaxKey, a.max),
	)
}

// CategoryID returns the category ID of the receiving Axis.
func (a *Axis[T]) CategoryID() string {
	return a.cat.ID()
}

// Extent returns the minimum and maximum of the receiving Axis.
func (a *Axis[T]) Extent() (min, max T) {
	return a.min, a.max
}

// NewTimestampAxis returns a new timestamp Axis with the specified category.
// If the optional extents are provided, the axis' minimum and maximum extents
// will be initialized to the lowest and highest of those extents.
func NewTimestampAxis(cat *category.Category, extents ...time.Time) *Axis[time.Time] {
	var min, max time.Time
	for i, extent := range extents {
		if i == 0 || min.After(extent) {
			min = extent
		}
		if i == 0 || max.Before(extent) {
			max = extent
		}
	}
	return newAxis[time.Time](
		timestampAxisType, cat,
		func(key string, v time.Time) util.PropertyUpdate {
			return util.TimestampProperty(key, v)
		}, min, max)
}

// NewDoubleAxis returns a new double Axis with the specified category.
// If the optional extents are provided, the axis' minimum and maximum extents
// will be initialized to the lowest and highest of those extents.
func NewDoubleAxis(cat *category.Category, extents ...float64) *Axis[float64] {
	var min, max float64 = math.MaxFloat64, -math.MaxFloat64
	for _, extent := range extents {
		if min > extent {
			min = extent
		}
		if max < extent {
			max = extent
		}
	}
	return newAxis[float64](
		doubleAxisType, cat,
		func(key string, v float64) util.PropertyUpdate {
			return util.DoubleProperty(key, v)
		}, min, max)
}

// Scale linearly maps the domain [D0, D1] onto the range [R0, R1].
type Scale struct {
	D0, D1 float64
	R0, R1 float64
}

// NewScale returns a Scale mapping [d0, d1] onto [r0, r1].
func NewScale(d0, d1, r0, r1 float64) Scale {
	return Scale{D0: d0, D1: d1, R0: r0, R1: r1}
}

// Apply maps the domain value d into the range.  A zero-width domain maps
// every value to R0.
func (s Scale) Apply(d float64) float64 {
	if s.D1 == s.D0 {
		return s.R0
	}
	return s.R0 + (d-s.D0)*(s.R1-s.R0)/(s.D1-s.D0)
}

// Invert maps the range value r back into the domain.  A zero-width range
// maps every value to D0.
func (s Scale) Invert(r float64) float64 {
	if s.R1 == s.R0 {
		return s.D0
	}
	return s.D0 + (r-s.R0)*(s.D1-s.D0)/(s.R1-s.R0)
}

// TimeScale is a Scale whose domain is a span of time.
type TimeScale struct {
	s Scale
}

// seconds returns t as fractional seconds since the Unix epoch.  Unlike
// UnixNano, it does not overflow outside the years 1678 through 2262.
func seconds(t time.Time) float64 {
	return float64(t.Unix()) + float64(t.Nanosecond())/1e9
}

// NewTimeScale returns a TimeScale mapping [start, end] onto [r0, r1].
func NewTimeScale(start, end time.Time, r0, r1 float64) TimeScale {
	return TimeScale{
		s: NewScale(seconds(start), seconds(end), r0, r1),
	}
}

// Apply maps t into the range.
func (ts TimeScale) Apply(t time.Time) float64 {
	return ts.s.Apply(seconds(t))
}

// Invert maps the range value r back to a time, in UTC.
func (ts TimeScale) Invert(r float64) time.Time {
	d := ts.s.Invert(r)
	sec := math.Floor(d)
	return time.Unix(int64(sec), int64(math.Round((d-sec)*1e9))).UTC()
}
