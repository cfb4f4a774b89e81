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

package util

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Datum is a single node in a scene: a set of properties, keyed by
// string-table index, and an ordered list of children.
type Datum struct {
	Properties map[int64]*V
	Children   []*Datum
}

// Property returns the value stored under the provided key name, resolving
// the key through the provided string table.  Values holding string indices
// are resolved to literal strings.
func (d *Datum) Property(st []string, key string) (*V, bool) {
	for k, v := range d.Properties {
		if st[k] != key {
			continue
		}
		switch v.T {
		case StringIndexValueType:
			return StringValue(st[v.V.(int64)]), true
		case StringIndicesValueType:
			idxs := v.V.([]int64)
			strs := make([]string, len(idxs))
			for i, idx := range idxs {
				strs[i] = st[idx]
			}
			return StringsValue(strs...), true
		}
		return v, true
	}
	return nil, false
}

// PrettyPrint returns the receiver deterministically prettyprinted, with
// properties in increasing key-name order.  Only for use in tests.
func (d *Datum) PrettyPrint(indent string, st []string) string {
	keys := make([]int64, 0, len(d.Properties))
	for k := range d.Properties {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b int64) int {
		return strings.Compare(st[a], st[b])
	})
	lines := make([]string, 0, len(keys)+2*len(d.Children))
	for _, k := range keys {
		lines = append(lines,
			fmt.Sprintf("%sProp '%s': %s", indent, st[k], d.Properties[k].PrettyPrint(st)))
	}
	for _, child := range d.Children {
		lines = append(lines,
			indent+"Child:",
			child.PrettyPrint(indent+"  ", st))
	}
	return strings.Join(lines, "\n")
}

// MarshalJSON encodes a Datum compactly as:
//
//	type KV = [number, V]
//	type Datum = [
//	  KV[],                        ; its Properties, by increasing key
//	  Datum[],                     ; its Children
//	]
func (d *Datum) MarshalJSON() ([]byte, error) {
	keys := make([]int64, 0, len(d.Properties))
	for k := range d.Properties {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	props := make([]any, len(keys))
	for i, k := range keys {
		props[i] = []any{k, d.Properties[k]}
	}
	children := d.Children
	if children == nil {
		children = []*Datum{}
	}
	return json.Marshal([]any{props, children})
}

func (d *Datum) fromAny(encoded []any) error {
	if len(encoded) != 2 {
		return fmt.Errorf("datum must have two elements, got %d", len(encoded))
	}
	props, ok := encoded[0].([]any)
	if !ok {
		return fmt.Errorf("datum properties must be an array")
	}
	children, ok := encoded[1].([]any)
	if !ok {
		return fmt.Errorf("datum children must be an array")
	}
	d.Properties = make(map[int64]*V, len(props))
	d.Children = make([]*Datum, len(children))
	for _, prop := range props {
		kv, ok := prop.([]any)
		if !ok || len(kv) != 2 {
			return fmt.Errorf("datum property must be a [key, value] pair")
		}
		k, err := asInt64(kv[0])
		if err != nil {
			return err
		}
		encodedV, ok := kv[1].([]any)
		if !ok {
			return fmt.Errorf("datum property value must be an array")
		}
		v := &V{}
		if err := v.fromAny(encodedV); err != nil {
			return err
		}
		d.Properties[k] = v
	}
	for i, child := range children {
		encodedChild, ok := child.([]any)
		if !ok {
			return fmt.Errorf("datum child must be an array")
		}
		d.Children[i] = &Datum{}
		if err := d.Children[i].fromAny(encodedChild); err != nil {
			return err
		}
	}
	return nil
}

// UnmarshalJSON unmarshals the provided JSON bytes into the receiving Datum.
func (d *Datum) UnmarshalJSON(data []byte) error {
	var encoded []any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&encoded); err != nil {
		return err
	}
	return d.fromAny(encoded)
}

// DataSeriesRequest is a request for a single data series.
type DataSeriesRequest struct {
	QueryName  string
	SeriesName string
	Options    map[string]*V
}

// DataSeries is the response to a single DataSeriesRequest.
type DataSeries struct {
	SeriesName string
	Root       *Datum
}

// PrettyPrint returns the receiver deterministically prettyprinted.
// Only for use in tests.
func (ds *DataSeries) PrettyPrint(indent string, st []string) string {
	return strings.Join([]string{
		fmt.Sprintf("%sSeries %s", indent, ds.SeriesName),
		indent + "  Root:",
		ds.Root.PrettyPrint(indent+"    ", st),
	}, "\n")
}

// DataRequest is a request for one or more data series, sharing a set of
// global filters.
type DataRequest struct {
	GlobalFilters  map[string]*V
	SeriesRequests []*DataSeriesRequest
}

// DataRequestFromJSON attempts to construct a DataRequest from the provided
// JSON.
func DataRequestFromJSON(j []byte) (*DataRequest, error) {
	ret := &DataRequest{}
	if err := json.Unmarshal(j, ret); err != nil {
		return nil, err
	}
	return ret, nil
}

// Data is a complete response: a string table and the requested series.
type Data struct {
	StringTable []string
	DataSeries  []*DataSeries
}

// Series returns the response series with the provided name.
func (d *Data) Series(name string) (*DataSeries, bool) {
	for _, ds := range d.DataSeries {
		if ds.SeriesName == name {
			return ds, true
		}
	}
	return nil, false
}

// PrettyPrint returns the receiver deterministically prettyprinted.
// Only for use in tests.
func (d *Data) PrettyPrint() string {
	lines := []string{"Data:"}
	for _, series := range d.DataSeries {
		lines = append(lines, series.PrettyPrint("  ", d.StringTable))
	}
	return strings.Join(lines, "\n")
}
