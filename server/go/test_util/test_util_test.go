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

package testutil

import (
	"testing"

	"github.com/ilhamster/covidviz/server/go/util"
)

func TestCompareUpdates(t *testing.T) {
	for _, test := range []struct {
		description string
		got, want   []util.PropertyUpdate
		different   bool
	}{{
		description: "equal simple updates",
		got:         []util.PropertyUpdate{util.StringProperty("state", "NY")},
		want:        []util.PropertyUpdate{util.StringProperty("state", "NY")},
	}, {
		description: "order independence",
		got: []util.PropertyUpdate{
			util.StringProperty("state", "NY"),
			util.DoubleProperty("positive", 5),
		},
		want: []util.PropertyUpdate{
			util.DoubleProperty("positive", 5),
			util.StringProperty("state", "NY"),
		},
	}, {
		description: "redefinition",
		got: []util.PropertyUpdate{
			util.IntegerProperty("count", 5),
			util.IntegerProperty("count", 10),
		},
		want: []util.PropertyUpdate{util.IntegerProperty("count", 10)},
	}, {
		description: "unequal strings",
		got:         []util.PropertyUpdate{util.StringProperty("state", "NY")},
		want:        []util.PropertyUpdate{util.StringProperty("state", "NJ")},
		different:   true,
	}, {
		description: "unequal types",
		got:         []util.PropertyUpdate{util.IntegerProperty("positive", 10)},
		want:        []util.PropertyUpdate{util.DoubleProperty("positive", 10)},
		different:   true,
	}} {
		t.Run(test.description, func(t *testing.T) {
			diff := CompareUpdates(t, test.got, test.want)
			if test.different != (diff != "") {
				t.Errorf("CompareUpdates() yielded unexpected diff '%s'", diff)
			}
		})
	}
}

func TestCompareResponsesAcceptsBothBuilderKinds(t *testing.T) {
	err := CompareResponses(t,
		func(db util.DataBuilder) {
			db.With(util.StringProperty("chart", "xy")).Child().With(util.IntegerProperty("n", 1))
		},
		func(db TestDataBuilder) {
			db.With(util.StringProperty("chart", "xy")).Child().With(util.IntegerProperty("n", 1))
		})
	if err != nil {
		t.Fatalf("CompareResponses() yielded unexpected error %s", err)
	}
}
