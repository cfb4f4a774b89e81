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

package extent

import (
	"testing"
	"time"

	"github.com/ilhamster/covidviz/covidviz/analysis/record"
	"github.com/ilhamster/covidviz/covidviz/analysis/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(n int) time.Time {
	return time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

var entries = []record.Entry{
	{Category: "A", Value: 10, Timestamp: day(0)},
	{Category: "A", Value: 20, Timestamp: day(1)},
	{Category: "B", Value: 5, Timestamp: day(0)},
	{Category: "B", Value: 7, Timestamp: day(3)},
}

func except(excluded ...string) func(string) bool {
	return func(cat string) bool {
		for _, ex := range excluded {
			if cat == ex {
				return false
			}
		}
		return true
	}
}

func TestOf(t *testing.T) {
	m := series.Build(entries, nil)
	for _, test := range []struct {
		description string
		opts        []Option
		want        Extent
		wantOK      bool
	}{{
		description: "full dataset",
		want:        Extent{Min: Bound{day(0), 5}, Max: Bound{day(3), 20}},
		wantOK:      true,
	}, {
		description: "excluding A",
		opts:        []Option{Including(except("A"))},
		want:        Extent{Min: Bound{day(0), 5}, Max: Bound{day(3), 7}},
		wantOK:      true,
	}, {
		description: "excluding B",
		opts:        []Option{Including(except("B"))},
		want:        Extent{Min: Bound{day(0), 10}, Max: Bound{day(1), 20}},
		wantOK:      true,
	}, {
		description: "within a window",
		opts:        []Option{Within(day(1), day(3))},
		want:        Extent{Min: Bound{day(1), 7}, Max: Bound{day(3), 20}},
		wantOK:      true,
	}, {
		description: "everything excluded",
		opts:        []Option{Including(except("A", "B"))},
	}, {
		description: "empty window",
		opts:        []Option{Within(day(10), day(20))},
	}} {
		t.Run(test.description, func(t *testing.T) {
			got, ok := Of(m, test.opts...)
			require.Equal(t, test.wantOK, ok)
			if !ok {
				return
			}
			assert.True(t, test.want.Min.X.Equal(got.Min.X), "Min.X = %v, want %v", got.Min.X, test.want.Min.X)
			assert.True(t, test.want.Max.X.Equal(got.Max.X), "Max.X = %v, want %v", got.Max.X, test.want.Max.X)
			assert.Equal(t, test.want.Min.Y, got.Min.Y)
			assert.Equal(t, test.want.Max.Y, got.Max.Y)

			flat, flatOK := OfEntries(entries, test.opts...)
			require.True(t, flatOK)
			assert.Equal(t, got, flat)
		})
	}
}

func TestEmpty(t *testing.T) {
	_, ok := Of(series.Build(nil, nil))
	assert.False(t, ok)
	_, ok = OfEntries(nil)
	assert.False(t, ok)
}

func TestMinNotAfterMax(t *testing.T) {
	var es []record.Entry
	for i := 0; i < 40; i++ {
		es = append(es, record.Entry{
			Category:  []string{"NY", "NJ", "WA"}[i%3],
			Value:     float64((i * 37) % 17),
			Timestamp: day((i * 13) % 29),
		})
	}
	ext, ok := Of(series.Build(es, nil))
	require.True(t, ok)
	assert.False(t, ext.Max.X.Before(ext.Min.X))
	assert.LessOrEqual(t, ext.Min.Y, ext.Max.Y)
	assert.GreaterOrEqual(t, ext.Duration(), time.Duration(0))

	single, ok := OfEntries(es[:1])
	require.True(t, ok)
	assert.Equal(t, single.Min, single.Max)
}
