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

// Package label supports labeling and tooltipping renderable items.
//
// Formats are strings in which `$(key)` is replaced by the frontend with the
// value of the property `key` on the labeled item or its ancestors.
package label

import (
	"fmt"

	"github.com/ilhamster/covidviz/server/go/util"
)

const (
	labelFormatKey   = "label_format"
	tooltipFormatKey = "tooltip_format"
)

// Format labels with the provided label format.
func Format(labelFormat string) util.PropertyUpdate {
	return util.StringProperty(labelFormatKey, labelFormat)
}

// Tooltip attaches the provided tooltip format, shown on pointer hover.
func Tooltip(tooltipFormat string) util.PropertyUpdate {
	return util.StringProperty(tooltipFormatKey, tooltipFormat)
}

// Ref returns the format reference to the property key.
func Ref(key string) string {
	return fmt.Sprintf("$(%s)", key)
}
