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

// Package category supports declaring data categories: chart series, legend
// entries, bars, and axes.  A DataBuilder may Define one Category, and
// other DataBuilders may Tag themselves as pertaining to categories defined
// elsewhere.  Categories also carry the interactive visibility state the
// frontend needs to draw them: whether they are excluded from the chart and
// whether they are highlighted.
package category

import (
	"github.com/ilhamster/covidviz/server/go/util"
)

const (
	categoryDefinedIDKey   = "category_defined_id"
	categoryDescriptionKey = "category_description"
	categoryDisplayNameKey = "category_display_name"
	categoryIDsKey         = "category_ids"
	categoryExcludedKey    = "category_excluded"
	categoryHighlightedKey = "category_highlighted"
)

// Category defines a data category.
type Category struct {
	id, displayName, description string
}

// New returns a new Category with the provided ID, display name, and
// description.
func New(id, displayName, description string) *Category {
	return &Category{
		id:          id,
		displayName: displayName,
		description: description,
	}
}

// Define defines the receiver.  If multiple categories are Defined on the
// same DataBuilder, only the last takes effect.
func (c *Category) Define() util.PropertyUpdate {
	return util.Chain(
		util.StringProperty(categoryDefinedIDKey, c.id),
		util.StringProperty(categoryDisplayNameKey, c.displayName),
		util.StringProperty(categoryDescriptionKey, c.description),
	)
}

// ID returns the category's ID.
func (c *Category) ID() string {
	return c.id
}

// DisplayName returns the category's display name.
func (c *Category) DisplayName() string {
	return c.displayName
}

// Tag annotates an item as belonging to the receiver.  Multiple Categories
// may Tag the same item in succession.
func (c *Category) Tag() util.PropertyUpdate {
	return util.StringsPropertyExtended(categoryIDsKey, c.id)
}

// Tag annotates with the provided set of Categories.
func Tag(cats ...*Category) util.PropertyUpdate {
	ids := make([]string, len(cats))
	for i, cat := range cats {
		ids[i] = cat.id
	}
	return util.StringsPropertyExtended(categoryIDsKey, ids...)
}

// Visibility annotates a defined category with whether it is excluded from
// the chart and whether it is highlighted.
func Visibility(excluded, highlighted bool) util.PropertyUpdate {
	return util.Chain(
		util.BoolProperty(categoryExcludedKey, excluded),
		util.BoolProperty(categoryHighlightedKey, highlighted),
	)
}
