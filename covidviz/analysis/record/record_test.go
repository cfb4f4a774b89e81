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

package record

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseTimestamp(t *testing.T) {
	for _, test := range []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "2020-03-01", want: date(2020, time.March, 1)},
		{in: "20200302", want: date(2020, time.March, 2)},
		{in: "2020-03-04T21:00:00Z", want: time.Date(2020, time.March, 4, 21, 0, 0, 0, time.UTC)},
		{in: "2020-03-04T16:00:00-05:00", want: time.Date(2020, time.March, 4, 21, 0, 0, 0, time.UTC)},
		{in: "2020-03-04T21:00:00.5Z", want: time.Date(2020, time.March, 4, 21, 0, 0, 500000000, time.UTC)},
		{in: "2020-03-04T21:00:00", want: time.Date(2020, time.March, 4, 21, 0, 0, 0, time.UTC)},
		{in: " 2020-03-01 ", want: date(2020, time.March, 1)},
		{in: "not-a-date", wantErr: true},
		{in: "2020-02-30", wantErr: true},
		{in: "", wantErr: true},
	} {
		t.Run(test.in, func(t *testing.T) {
			got, err := ParseTimestamp(test.in)
			if test.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, test.want.Equal(got), "got %v, want %v", got, test.want)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestParse(t *testing.T) {
	for _, test := range []struct {
		description string
		raws        []RawRecord
		want        []Entry
	}{{
		description: "valid records keep their order",
		raws: []RawRecord{
			{Category: "A", Value: 10, Timestamp: "2020-03-01"},
			{Category: "A", Value: 20, Timestamp: "2020-03-02"},
			{Category: "B", Value: 5, Timestamp: "2020-03-01"},
		},
		want: []Entry{
			{Category: "A", Value: 10, Timestamp: date(2020, time.March, 1)},
			{Category: "A", Value: 20, Timestamp: date(2020, time.March, 2)},
			{Category: "B", Value: 5, Timestamp: date(2020, time.March, 1)},
		},
	}, {
		description: "invalid dates are dropped silently",
		raws: []RawRecord{
			{Category: "A", Value: 10, Timestamp: "not-a-date"},
			{Category: "B", Value: 5, Timestamp: "2020-03-01"},
		},
		want: []Entry{
			{Category: "B", Value: 5, Timestamp: date(2020, time.March, 1)},
		},
	}, {
		description: "non-finite values are dropped",
		raws: []RawRecord{
			{Category: "A", Value: math.NaN(), Timestamp: "2020-03-01"},
			{Category: "A", Value: math.Inf(1), Timestamp: "2020-03-02"},
			{Category: "A", Value: 3, Timestamp: "2020-03-03"},
		},
		want: []Entry{
			{Category: "A", Value: 3, Timestamp: date(2020, time.March, 3)},
		},
	}, {
		description: "empty input",
		raws:        nil,
		want:        []Entry{},
	}} {
		t.Run(test.description, func(t *testing.T) {
			got := Parse(test.raws)
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("Parse() diff (-want +got):\n%s", diff)
			}
			assert.LessOrEqual(t, len(got), len(test.raws))
			for _, entry := range got {
				assert.False(t, entry.Timestamp.IsZero())
				assert.False(t, math.IsNaN(entry.Value) || math.IsInf(entry.Value, 0))
			}
		})
	}
}
