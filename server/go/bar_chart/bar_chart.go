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

// Package barchart defines a bar chart with a discrete category axis and a
// continuous value axis.
//
// BarChart is constructed into a provided DataBuilder db with:
//
//	bc := New(db, valueAxis, renderSettings, properties...)
//
// where valueAxis is a continuousaxis.Axis, renderSettings is a
// RenderSettings.  Chart-level decorations may be applied in the properties,
// or added later with `bc.With(properties...)`.  Once constructed, new
// categories are added into the chart with:
//
//	bcCat := bc.Category(cat, properties...)
//
// where cat is a category.Category.  Decorators such as coloring may be
// applied in the properties, or added later with `bcCat.With(properties...)`.
// Categories should be displayed in definition order.  A bar is added to a
// category with:
//
//	bar := bcCat.Bar(lowerExtent, upperExtent)
//
// Bars within a category should be displayed in definition order, each in
// its own lane, and may be individually styled with `bar.With(properties...)`.
package barchart

import (
	"github.com/ilhamster/covidviz/server/go/category"
	categoryaxis "github.com/ilhamster/covidviz/server/go/category_axis"
	continuousaxis "github.com/ilhamster/covidviz/server/go/continuous_axis"
	"github.com/ilhamster/covidviz/server/go/util"
)

// Bar datum keys.
const (
	DataTypeKey       = "bar_chart_data_type"
	BarType           = "bar_chart_bar"
	BarLowerExtentKey = "bar_chart_bar_lower_extent"
	BarUpperExtentKey = "bar_chart_bar_upper_extent"
)

// Rendering property keys.
const (
	barWidthCatPxKey   = "bar_chart_bar_width_cat_px"
	barPaddingCatPxKey = "bar_chart_bar_padding_cat_px"
)

// RenderSettings is a collection of rendering settings for bar chart.  A bar
// chart is rendered on a two-dimensional plane, with one continuous axis
// showing values ('val') and one discrete axis showing the categories, or
// lanes, into which the bars are rendered.
type RenderSettings struct {
	// The width of a bar along the category axis.
	BarWidthCatPx int64
	// The padding between adjacent bars along the category axis.
	BarPaddingCatPx            int64
	CategoryAxisRenderSettings *categoryaxis.RenderSettings
	XAxisRenderSettings        continuousaxis.XAxisRenderSettings
}

// Defines the receiver as a set of property updates.
func (rs *RenderSettings) define() util.PropertyUpdate {
	return util.Chain(
		util.IntegerProperty(barWidthCatPxKey, rs.BarWidthCatPx),
		util.IntegerProperty(barPaddingCatPxKey, rs.BarPaddingCatPx),
		rs.CategoryAxisRenderSettings.Define(),
		rs.XAxisRenderSettings.Apply(),
	)
}

// BarChart represents a bar chart with one continuous value axis and one
// discrete category axis.
type BarChart[T continuousaxis.Domain] struct {
	db        util.DataBuilder
	valueAxis *continuousaxis.Axis[T]
}

// New returns a new BarChart populating the provided DataBuilder, and using
// the provided value axis and render settings.
func New[T continuousaxis.Domain](db util.DataBuilder, valueAxis *continuousaxis.Axis[T], renderSettings *RenderSettings, properties ...util.PropertyUpdate) *BarChart[T] {
	return &BarChart[T]{
		db: db.With(
			valueAxis.Define(),
			renderSettings.define(),
		).With(
			properties...,
		),
		valueAxis: valueAxis,
	}
}

// With annotates the receiver with the provided properties.
func (bc *BarChart[T]) With(properties ...util.PropertyUpdate) *BarChart[T] {
	bc.db.With(properties...)
	return bc
}

// Category adds a new category lane, with the provided Category, to the
// receiver.
func (bc *BarChart[T]) Category(category *category.Category, properties ...util.PropertyUpdate) *Category[T] {
	db := bc.db.Child().
		With(category.Define())
	return (&Category[T]{
		db:        db,
		valueAxis: bc.valueAxis,
	}).With(properties...)
}

// Category represents a category lane within a bar chart.
type Category[T continuousaxis.Domain] struct {
	db        util.DataBuilder
	valueAxis *continuousaxis.Axis[T]
}

// With annotates the receiver with the provided properties.
func (c *Category[T]) With(properties ...util.PropertyUpdate) *Category[T] {
	c.db.With(properties...)
	return c
}

// Bar returns a new bar added into the receiving Category.
func (c *Category[T]) Bar(lower, upper T) *Bar {
	return &Bar{
		db: c.db.Child().With(
			util.StringProperty(DataTypeKey, BarType),
			c.valueAxis.Value(BarLowerExtentKey, lower),
			c.valueAxis.Value(BarUpperExtentKey, upper),
		),
	}
}

// Bar represents a single bar within a Category.
type Bar struct {
	db util.DataBuilder
}

// With annotates the receiver with the provided properties.
func (b *Bar) With(properties ...util.PropertyUpdate) *Bar {
	b.db.With(properties...)
	return b
}
