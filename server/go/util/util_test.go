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
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestStringTable(t *testing.T) {
	for _, test := range []struct {
		description string
		additions   []string
		wantTable   []string
	}{{
		description: "unique additions",
		additions:   []string{"AK", "AL", "AR", "AZ", "CA"},
		wantTable:   []string{"AK", "AL", "AR", "AZ", "CA"},
	}, {
		description: "duplicate additions",
		additions:   []string{"NY", "WA", "NY", "NY", "WA"},
		wantTable:   []string{"NY", "WA"},
	}} {
		t.Run(test.description, func(t *testing.T) {
			st := newStringTable()
			for _, str := range test.additions {
				st.index(str)
			}
			gotTable := st.snapshot()
			if diff := cmp.Diff(test.wantTable, gotTable); diff != "" {
				t.Errorf("Got string table %v, diff (-want +got):\n%s", gotTable, diff)
			}
		})
	}
}

func TestParseDataRequest(t *testing.T) {
	for _, test := range []struct {
		description string
		reqJSON     string
		wantReq     *DataRequest
		wantErr     bool
	}{{
		description: "simple requests",
		reqJSON: `{
			"SeriesRequests": [
				{"QueryName": "covid.timeseries", "SeriesName": "1"},
				{"QueryName": "covid.legend", "SeriesName": "2"}
			]
		}`,
		wantReq: &DataRequest{
			SeriesRequests: []*DataSeriesRequest{
				{QueryName: "covid.timeseries", SeriesName: "1"},
				{QueryName: "covid.legend", SeriesName: "2"},
			},
		},
	}, {
		description: "with global filters and options",
		reqJSON: `{
			"GlobalFilters": {
				"str": [1, "hello%20there"],
				"strs": [3, ["NY", "New%20Jersey"]],
				"int": [5, 100],
				"dbl": [6, 3.5],
				"bool": [7, true],
				"ts": [8, [500, 100]]
			},
			"SeriesRequests": [{
				"QueryName": "covid.timeseries",
				"SeriesName": "1",
				"Options": {"chart_type": [1, "area"]}
			}]
		}`,
		wantReq: &DataRequest{
			GlobalFilters: map[string]*V{
				"str":  StringValue("hello%20there"),
				"strs": StringsValue("NY", "New Jersey"),
				"int":  IntegerValue(100),
				"dbl":  DoubleValue(3.5),
				"bool": BoolValue(true),
				"ts":   TimestampValue(time.Unix(500, 100)),
			},
			SeriesRequests: []*DataSeriesRequest{{
				QueryName:  "covid.timeseries",
				SeriesName: "1",
				Options: map[string]*V{
					"chart_type": StringValue("area"),
				},
			}},
		},
	}, {
		description: "unknown value type",
		reqJSON:     `{"GlobalFilters": {"x": [42, 1]}}`,
		wantErr:     true,
	}, {
		description: "malformed timestamp",
		reqJSON:     `{"GlobalFilters": {"x": [8, [1]]}}`,
		wantErr:     true,
	}} {
		t.Run(test.description, func(t *testing.T) {
			req, err := DataRequestFromJSON([]byte(test.reqJSON))
			if (err != nil) != test.wantErr {
				t.Fatalf("DataRequestFromJSON() yielded unexpected error %v", err)
			}
			if err != nil {
				return
			}
			if diff := cmp.Diff(test.wantReq, req, cmp.AllowUnexported(timestamp{})); diff != "" {
				t.Errorf("Got request %v, diff (-want +got):\n%s", req, diff)
			}
		})
	}
}

func TestResponseRoundTrip(t *testing.T) {
	drb := NewDataResponseBuilder()
	db := drb.DataSeries(&DataSeriesRequest{SeriesName: "1"})
	db.With(
		StringProperty("category_defined_id", "NY"),
		DoubleProperty("value", 12.5),
		BoolProperty("no_data", false),
		TimestampProperty("at", time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC)),
	).Child().With(
		StringsProperty("category_ids", "NY", "NJ"),
		IntegerProperty("count", 3),
	)
	data, err := drb.Data()
	if err != nil {
		t.Fatalf("Data() yielded unexpected error %s", err)
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("json.Marshal() yielded unexpected error %s", err)
	}
	decoded := &Data{}
	if err := json.Unmarshal(encoded, decoded); err != nil {
		t.Fatalf("json.Unmarshal() yielded unexpected error %s", err)
	}
	if diff := cmp.Diff(data.PrettyPrint(), decoded.PrettyPrint()); diff != "" {
		t.Errorf("Round trip changed the response, diff (-want +got):\n%s", diff)
	}
	want := `Data:
  Series 1
    Root:
      Prop 'at': 2020-03-01T00:00:00Z
      Prop 'category_defined_id': 'NY'
      Prop 'no_data': false
      Prop 'value': 12.500000
      Child:
        Prop 'category_ids': [ 'NY', 'NJ' ]
        Prop 'count': 3`
	if diff := cmp.Diff(want, decoded.PrettyPrint()); diff != "" {
		t.Errorf("Unexpected pretty-printed response, diff (-want +got):\n%s", diff)
	}
}

func TestNonFiniteDoublesEncodeAsNull(t *testing.T) {
	got, err := json.Marshal(DoubleValue(math.NaN()))
	if err != nil {
		t.Fatalf("json.Marshal() yielded unexpected error %s", err)
	}
	if string(got) != "[6,null]" {
		t.Errorf("Got %s, want [6,null]", got)
	}
	v := &V{}
	if err := json.Unmarshal(got, v); err != nil {
		t.Fatalf("json.Unmarshal() yielded unexpected error %s", err)
	}
	if f, err := ExpectDoubleValue(v); err != nil || !math.IsNaN(f) {
		t.Errorf("Decoded %v, %v; want NaN", f, err)
	}
}

func TestPropertyUpdates(t *testing.T) {
	drb := NewDataResponseBuilder()
	db := drb.DataSeries(&DataSeriesRequest{SeriesName: "s"})
	db.With(
		If(false, StringProperty("skipped", "yes")),
		If(true, StringProperty("kept", "yes")),
		IfElse(false, IntegerProperty("branch", 1), IntegerProperty("branch", 2)),
		StringsPropertyExtended("ids", "a"),
		StringsPropertyExtended("ids", "b", "c"),
		Chain(DoubleProperty("x", 1), DoubleProperty("x", 2)),
	)
	data, err := drb.Data()
	if err != nil {
		t.Fatalf("Data() yielded unexpected error %s", err)
	}
	want := `Data:
  Series s
    Root:
      Prop 'branch': 2
      Prop 'ids': [ 'a', 'b', 'c' ]
      Prop 'kept': 'yes'
      Prop 'x': 2.000000`
	if diff := cmp.Diff(want, data.PrettyPrint()); diff != "" {
		t.Errorf("Unexpected response, diff (-want +got):\n%s", diff)
	}
	root := data.DataSeries[0].Root
	ids, ok := root.Property(data.StringTable, "ids")
	if !ok {
		t.Fatalf("Property('ids') not found")
	}
	if got, _ := ExpectStringsValue(ids); !cmp.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("Property('ids') = %v, want [a b c]", got)
	}
}

func TestErrorPropertyFailsResponse(t *testing.T) {
	drb := NewDataResponseBuilder()
	boom := errors.New("boom")
	drb.DataSeries(&DataSeriesRequest{}).Child().With(
		ErrorProperty(boom),
		StringProperty("after", "ignored"),
	)
	if _, err := drb.Data(); !errors.Is(err, boom) {
		t.Errorf("Data() = %v, want error wrapping %v", err, boom)
	}
}

func TestExpectValues(t *testing.T) {
	if _, err := ExpectIntegerValue(StringValue("x")); err == nil {
		t.Errorf("ExpectIntegerValue(str) should have failed")
	}
	if _, err := ExpectBoolValue(nil); err == nil {
		t.Errorf("ExpectBoolValue(nil) should have failed")
	}
	if f, err := ExpectDoubleValue(IntegerValue(4)); err != nil || f != 4 {
		t.Errorf("ExpectDoubleValue(int 4) = %v, %v; want 4", f, err)
	}
	if s, err := ExpectStringValue(StringValue("hello%20there")); err != nil || s != "hello there" {
		t.Errorf("ExpectStringValue() = %q, %v; want unescaped string", s, err)
	}
	ts := time.Date(2020, time.April, 2, 3, 4, 5, 6, time.UTC)
	if got, err := ExpectTimestampValue(TimestampValue(ts)); err != nil || !got.Equal(ts) {
		t.Errorf("ExpectTimestampValue() = %v, %v; want %v", got, err, ts)
	}
}
