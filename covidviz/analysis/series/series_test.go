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

package series

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/ilhamster/covidviz/covidviz/analysis/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(n int) time.Time {
	return time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func entry(cat string, value float64, n int) record.Entry {
	return record.Entry{Category: cat, Value: value, Timestamp: day(n)}
}

// contents renders a Map as category -> ordered values, for comparison.
func contents(m *Map) map[string][]Point {
	ret := map[string][]Point{}
	for _, s := range m.All() {
		ret[s.Category()] = s.Points()
	}
	return ret
}

func TestBuild(t *testing.T) {
	for _, test := range []struct {
		description    string
		entries        []record.Entry
		order          Order
		wantCategories []string
		wantContents   map[string][]Point
	}{{
		description: "groups by category, biggest latest first",
		entries: []record.Entry{
			entry("A", 10, 0),
			entry("A", 20, 1),
			entry("B", 5, 0),
		},
		wantCategories: []string{"A", "B"},
		wantContents: map[string][]Point{
			"A": {{day(0), 10}, {day(1), 20}},
			"B": {{day(0), 5}},
		},
	}, {
		description: "first duplicate wins",
		entries: []record.Entry{
			entry("A", 1, 0),
			entry("A", 2, 0),
		},
		wantCategories: []string{"A"},
		wantContents: map[string][]Point{
			"A": {{day(0), 1}},
		},
	}, {
		description: "out-of-order input sorts ascending",
		entries: []record.Entry{
			entry("NY", 30, 2),
			entry("NY", 10, 0),
			entry("NY", 20, 1),
		},
		wantCategories: []string{"NY"},
		wantContents: map[string][]Point{
			"NY": {{day(0), 10}, {day(1), 20}, {day(2), 30}},
		},
	}, {
		description: "latest ties break by category",
		entries: []record.Entry{
			entry("WA", 5, 0),
			entry("CA", 5, 0),
			entry("NY", 9, 0),
		},
		wantCategories: []string{"NY", "CA", "WA"},
		wantContents: map[string][]Point{
			"CA": {{day(0), 5}},
			"NY": {{day(0), 9}},
			"WA": {{day(0), 5}},
		},
	}, {
		description: "caller-supplied order",
		entries: []record.Entry{
			entry("WA", 5, 0),
			entry("CA", 1, 0),
		},
		order:          ByCategory,
		wantCategories: []string{"CA", "WA"},
		wantContents: map[string][]Point{
			"CA": {{day(0), 1}},
			"WA": {{day(0), 5}},
		},
	}, {
		description:    "empty",
		wantCategories: []string{},
		wantContents:   map[string][]Point{},
	}} {
		t.Run(test.description, func(t *testing.T) {
			m := Build(test.entries, test.order)
			if diff := cmp.Diff(test.wantCategories, m.Categories()); diff != "" {
				t.Errorf("Categories() diff (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(test.wantContents, contents(m)); diff != "" {
				t.Errorf("Build() contents diff (-want +got):\n%s", diff)
			}
			assert.Equal(t, len(test.wantCategories), m.Len())
		})
	}
}

func TestDuplicateTieBreak(t *testing.T) {
	a := entry("A", 111, 3)
	b := entry("A", 222, 3)
	m := Build([]record.Entry{a, b}, nil)
	s, ok := m.Series("A")
	require.True(t, ok)
	v, ok := s.ValueAt(day(3))
	require.True(t, ok)
	assert.Equal(t, a.Value, v)
}

func TestTimestampsFarFromTheEpoch(t *testing.T) {
	early := time.Date(1700, time.January, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2284, time.July, 21, 23, 34, 33, 709551616, time.UTC)
	m := Build([]record.Entry{
		{Category: "A", Value: 1, Timestamp: early},
		{Category: "A", Value: 2, Timestamp: late},
	}, nil)
	s, ok := m.Series("A")
	require.True(t, ok)
	require.Equal(t, 2, s.Len())
	v, ok := s.ValueAt(late)
	require.True(t, ok)
	assert.Equal(t, 2.0, v)
}

func TestIdempotentRegrouping(t *testing.T) {
	entries := []record.Entry{
		entry("NJ", 4, 2), entry("NY", 7, 1), entry("NJ", 1, 0),
		entry("NY", 3, 0), entry("NY", 9, 1), entry("WA", 2, 5),
		entry("NJ", 4, 1),
	}
	for _, order := range []Order{nil, ByCategory} {
		m := Build(entries, order)
		regrouped := Build(m.Flatten(), order)
		if diff := cmp.Diff(m, regrouped, cmp.AllowUnexported(Map{}, Series{})); diff != "" {
			t.Errorf("regrouping changed the map, diff (-want +got):\n%s", diff)
		}
	}
}

func TestStrictlyAscending(t *testing.T) {
	entries := []record.Entry{}
	for i := 0; i < 50; i++ {
		entries = append(entries, entry([]string{"A", "B", "C"}[i%3], float64(i), (i*7)%11))
	}
	m := Build(entries, nil)
	for _, s := range m.All() {
		pts := s.Points()
		for i := 1; i < len(pts); i++ {
			assert.True(t, pts[i-1].Timestamp.Before(pts[i].Timestamp),
				"%s: point %d (%v) not before point %d (%v)", s.Category(), i-1, pts[i-1].Timestamp, i, pts[i].Timestamp)
		}
	}
}

func TestSeriesAccessors(t *testing.T) {
	m := Build([]record.Entry{
		entry("NY", 10, 0), entry("NY", 20, 2), entry("NY", 30, 4),
	}, nil)
	s, ok := m.Series("NY")
	require.True(t, ok)
	_, ok = m.Series("NJ")
	assert.False(t, ok)

	latest, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, Point{day(4), 30}, latest)
	assert.Equal(t, 3, s.Len())

	_, ok = s.ValueAt(day(1))
	assert.False(t, ok)

	for _, test := range []struct {
		description string
		start, end  time.Time
		want        []Point
	}{
		{"inclusive bounds", day(0), day(2), []Point{{day(0), 10}, {day(2), 20}}},
		{"interior", day(1), day(3), []Point{{day(2), 20}}},
		{"all", day(-5), day(10), []Point{{day(0), 10}, {day(2), 20}, {day(4), 30}}},
		{"before", day(-5), day(-1), []Point{}},
		{"inverted", day(4), day(0), nil},
	} {
		t.Run(test.description, func(t *testing.T) {
			got := s.Window(test.start, test.end)
			if len(test.want) == 0 {
				assert.Empty(t, got)
				return
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("Window() diff (-want +got):\n%s", diff)
			}
		})
	}

	flat := m.Flatten()
	if diff := cmp.Diff([]record.Entry{
		entry("NY", 10, 0), entry("NY", 20, 2), entry("NY", 30, 4),
	}, flat); diff != "" {
		t.Errorf("Flatten() diff (-want +got):\n%s", diff)
	}
}
