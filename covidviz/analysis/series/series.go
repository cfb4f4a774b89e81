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

// Package series groups parsed entries into per-category ordered series.
//
// A Map is built once per dataset fetch and is not mutated afterward, so it
// may be shared freely between goroutines.
package series

import (
	"sort"
	"time"

	"github.com/ilhamster/covidviz/covidviz/analysis/record"
)

// Point is a single timestamped value within a Series.
type Point struct {
	Timestamp time.Time
	Value     float64
}

// Series is one category's values, strictly ascending by timestamp.
type Series struct {
	category string
	points   []Point
}

// Category returns the category of the receiver.
func (s *Series) Category() string {
	return s.category
}

// Points returns the receiver's points in ascending timestamp order.  The
// returned slice must not be modified.
func (s *Series) Points() []Point {
	return s.points
}

// Len returns the number of points in the receiver.
func (s *Series) Len() int {
	return len(s.points)
}

// Latest returns the receiver's last point, or false if it has none.
func (s *Series) Latest() (Point, bool) {
	if len(s.points) == 0 {
		return Point{}, false
	}
	return s.points[len(s.points)-1], true
}

// search returns the index of the first point not before t.
func (s *Series) search(t time.Time) int {
	return sort.Search(len(s.points), func(i int) bool {
		return !s.points[i].Timestamp.Before(t)
	})
}

// ValueAt returns the value recorded exactly at t, or false if there is none.
func (s *Series) ValueAt(t time.Time) (float64, bool) {
	idx := s.search(t)
	if idx < len(s.points) && s.points[idx].Timestamp.Equal(t) {
		return s.points[idx].Value, true
	}
	return 0, false
}

// Window returns the receiver's points within [start, end].  The returned
// slice must not be modified.
func (s *Series) Window(start, end time.Time) []Point {
	if end.Before(start) {
		return nil
	}
	from := s.search(start)
	to := sort.Search(len(s.points), func(i int) bool {
		return s.points[i].Timestamp.After(end)
	})
	return s.points[from:to]
}

// Order reports whether series a should be ordered before series b.
type Order func(a, b *Series) bool

// ByCategory orders series lexically by category.
func ByCategory(a, b *Series) bool {
	return a.category < b.category
}

// ByLatestDesc orders series by their latest value, biggest first, breaking
// ties by category.
func ByLatestDesc(a, b *Series) bool {
	al, _ := a.Latest()
	bl, _ := b.Latest()
	if al.Value != bl.Value {
		return al.Value > bl.Value
	}
	return ByCategory(a, b)
}

// Map is an ordered mapping from category to Series.
type Map struct {
	series     []*Series
	byCategory map[string]*Series
}

// instant identifies a moment independent of location, over the full range
// of time.Time.
type instant struct {
	sec  int64
	nsec int
}

func instantOf(t time.Time) instant {
	return instant{sec: t.Unix(), nsec: t.Nanosecond()}
}

// Build groups the provided entries by category, and within each category
// by timestamp.  When more than one entry shares a category and timestamp,
// the first in input order wins.  Categories are ordered by the provided
// Order, or by ByLatestDesc if it is nil.
func Build(entries []record.Entry, order Order) *Map {
	if order == nil {
		order = ByLatestDesc
	}
	m := &Map{
		byCategory: map[string]*Series{},
	}
	seen := map[string]map[instant]struct{}{}
	for _, entry := range entries {
		s, ok := m.byCategory[entry.Category]
		if !ok {
			s = &Series{category: entry.Category}
			m.byCategory[entry.Category] = s
			m.series = append(m.series, s)
			seen[entry.Category] = map[instant]struct{}{}
		}
		key := instantOf(entry.Timestamp)
		if _, dup := seen[entry.Category][key]; dup {
			continue
		}
		seen[entry.Category][key] = struct{}{}
		s.points = append(s.points, Point{
			Timestamp: entry.Timestamp,
			Value:     entry.Value,
		})
	}
	for _, s := range m.series {
		sort.SliceStable(s.points, func(a, b int) bool {
			return s.points[a].Timestamp.Before(s.points[b].Timestamp)
		})
	}
	sort.SliceStable(m.series, func(a, b int) bool {
		return order(m.series[a], m.series[b])
	})
	return m
}

// Len returns the number of categories in the receiver.
func (m *Map) Len() int {
	return len(m.series)
}

// Categories returns the receiver's categories, in order.
func (m *Map) Categories() []string {
	ret := make([]string, len(m.series))
	for i, s := range m.series {
		ret[i] = s.category
	}
	return ret
}

// Series returns the Series for the provided category, or false if there is
// none.
func (m *Map) Series(category string) (*Series, bool) {
	s, ok := m.byCategory[category]
	return s, ok
}

// All returns the receiver's Series, in order.  The returned slice must not
// be modified.
func (m *Map) All() []*Series {
	return m.series
}

// Flatten returns the receiver's contents as entries, in category order and
// then timestamp order.
func (m *Map) Flatten() []record.Entry {
	var ret []record.Entry
	for _, s := range m.series {
		for _, p := range s.points {
			ret = append(ret, record.Entry{
				Category:  s.category,
				Value:     p.Value,
				Timestamp: p.Timestamp,
			})
		}
	}
	return ret
}
