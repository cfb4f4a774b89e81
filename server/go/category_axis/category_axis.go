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

// Package categoryaxis provides helpers for defining category axis data.
package categoryaxis

import "github.com/ilhamster/covidviz/server/go/util"

const (
	categoryLabelValPxKey    = "category_label_val_px"
	categoryPaddingCatPxKey  = "category_padding_cat_px"
	categoryMinWidthCatPxKey = "category_min_width_cat_px"
)

// RenderSettings is a collection of rendering settings for category axes.  A
// category axis is a graph axis showing one lane per category along the
// category ('Cat') axis.  The other, non-category, axis is termed the value
// ('Val') axis.
//
// These settings are defined as extents, in units of pixels, along these two
// axes, so are suffixed 'ValPx' for a pixel extent along the value axis, or
// 'CatPx' for a pixel extent along the category axis.
type RenderSettings struct {
	// The space, along the value axis, reserved for category labels.
	CategoryLabelValPx int64
	// The padding between adjacent categories along the category axis.
	CategoryPaddingCatPx int64
	// The minimum width of a category along the category axis.
	CategoryMinWidthCatPx int64
}

// Define applies the receiver as a set of properties.
func (rs *RenderSettings) Define() util.PropertyUpdate {
	if rs == nil {
		return util.EmptyUpdate
	}
	return util.Chain(
		util.IntegerProperty(categoryLabelValPxKey, rs.CategoryLabelValPx),
		util.IntegerProperty(categoryPaddingCatPxKey, rs.CategoryPaddingCatPx),
		util.IntegerProperty(categoryMinWidthCatPxKey, rs.CategoryMinWidthCatPx),
	)
}
