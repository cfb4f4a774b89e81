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

// Package testutil provides helpers for testing scene construction: a
// fluent TestDataBuilder for writing expected scenes by hand, and
// comparison functions that diff scenes independently of string-table
// ordering.
package testutil

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ilhamster/covidviz/server/go/util"
)

// TestDataBuilder is implemented by types that can assemble scenes in tests.
type TestDataBuilder interface {
	With(updates ...util.PropertyUpdate) TestDataBuilder
	Child() TestDataBuilder
	AndChild() TestDataBuilder
	Parent() TestDataBuilder
}

// testDataBuilder fluently assembles a Datum tree, remembering its parent so
// that siblings can be added with AndChild.
type testDataBuilder struct {
	db     util.DataBuilder
	parent *testDataBuilder
}

// NewTestDataBuilder wraps the provided DataBuilder.
func NewTestDataBuilder(db util.DataBuilder) TestDataBuilder {
	return &testDataBuilder{db: db}
}

// With applies the provided PropertyUpdates to the receiver in order.
func (tdb *testDataBuilder) With(updates ...util.PropertyUpdate) TestDataBuilder {
	tdb.db.With(updates...)
	return tdb
}

// Child adds a child Datum to the receiver and returns a builder for it.
func (tdb *testDataBuilder) Child() TestDataBuilder {
	return &testDataBuilder{
		db:     tdb.db.Child(),
		parent: tdb,
	}
}

// AndChild adds a sibling of the receiver.  If the receiver has no parent, it
// adds a child to the receiver instead.
func (tdb *testDataBuilder) AndChild() TestDataBuilder {
	if tdb.parent == nil {
		return tdb.Child()
	}
	return tdb.parent.Child()
}

// Parent returns the parent of the receiver, or the receiver itself if it has
// no parent.
func (tdb *testDataBuilder) Parent() TestDataBuilder {
	if tdb.parent == nil {
		return tdb
	}
	return tdb.parent
}

func dataOf(d any) (*util.Data, error) {
	switch v := d.(type) {
	case *util.DataResponseBuilder:
		return v.Data()
	case *util.Data:
		return v, nil
	}
	return nil, fmt.Errorf("argument must be a *util.DataResponseBuilder or a *util.Data, got %T", d)
}

// CompareDataResponses compares got and want, each of which must be a
// *util.DataResponseBuilder or a *util.Data, reporting any difference on t.
// Problems other than a difference, such as a build failure, are returned.
func CompareDataResponses(t *testing.T, got, want any) error {
	t.Helper()
	gotData, err := dataOf(got)
	if err != nil {
		return err
	}
	wantData, err := dataOf(want)
	if err != nil {
		return err
	}
	if diff := cmp.Diff(wantData.PrettyPrint(), gotData.PrettyPrint()); diff != "" {
		t.Errorf("Got data %s, diff (-want +got):\n%s", gotData.PrettyPrint(), diff)
	}
	return nil
}

func build(t *testing.T, drb *util.DataResponseBuilder, buildFn any) {
	t.Helper()
	root := drb.DataSeries(&util.DataSeriesRequest{})
	switch fn := buildFn.(type) {
	case func(util.DataBuilder):
		fn(root)
	case func(TestDataBuilder):
		fn(NewTestDataBuilder(root))
	default:
		t.Fatalf("builder must be func(util.DataBuilder) or func(testutil.TestDataBuilder), got %T", buildFn)
	}
}

// CompareResponses builds a single-series response with each of buildGot and
// buildWant, which must each be a func(util.DataBuilder) or a
// func(TestDataBuilder), and compares the two.
func CompareResponses(t *testing.T, buildGot, buildWant any) error {
	t.Helper()
	gotDrb := util.NewDataResponseBuilder()
	build(t, gotDrb, buildGot)
	wantDrb := util.NewDataResponseBuilder()
	build(t, wantDrb, buildWant)
	return CompareDataResponses(t, gotDrb, wantDrb)
}

// CompareUpdates reports whether applying got and want to empty datums
// yields the same properties.  It returns a description of the difference,
// or the empty string if there is none.
func CompareUpdates(t *testing.T, got, want []util.PropertyUpdate) string {
	t.Helper()
	drb := util.NewDataResponseBuilder()
	root := drb.DataSeries(&util.DataSeriesRequest{})
	root.Child().With(got...)
	root.Child().With(want...)
	data, err := drb.Data()
	if err != nil {
		t.Fatalf("failed to build updates: %s", err)
	}
	children := data.DataSeries[0].Root.Children
	return cmp.Diff(
		children[1].PrettyPrint("", data.StringTable),
		children[0].PrettyPrint("", data.StringTable))
}
