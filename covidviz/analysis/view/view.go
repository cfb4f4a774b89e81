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

// Package view holds the transient interactive state of a chart: which
// categories are excluded, which one is highlighted, the selection gesture,
// and the zoom window.  A State is created when data loads and discarded
// when data is reloaded.
package view

import (
	"fmt"
	"slices"
	"time"

	"github.com/ilhamster/covidviz/covidviz/analysis/selection"
)

// Window is an inclusive span of time.
type Window struct {
	Start, End time.Time
}

// NewWindow returns the Window spanning a and b, in either order.
func NewWindow(a, b time.Time) Window {
	if b.Before(a) {
		a, b = b, a
	}
	return Window{Start: a, End: b}
}

// Contains reports whether t lies within the receiver.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

func (w Window) String() string {
	return fmt.Sprintf("[%s, %s]", w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
}

// State is the view state of a single chart.  It is not safe for concurrent
// use.
type State struct {
	excluded    map[string]struct{}
	highlighted string
	selection   *selection.Machine
	zoom        *Window
}

// New returns a fresh State: nothing excluded, highlighted, selected or
// zoomed.  The provided options configure the selection Machine.
func New(opts ...selection.Option) *State {
	return &State{
		excluded:  map[string]struct{}{},
		selection: selection.New(opts...),
	}
}

// ToggleExcluded flips whether cat is excluded, returning its new status.
func (s *State) ToggleExcluded(cat string) bool {
	if _, ok := s.excluded[cat]; ok {
		delete(s.excluded, cat)
		return false
	}
	s.excluded[cat] = struct{}{}
	return true
}

// Exclude marks each of the provided categories as excluded.
func (s *State) Exclude(cats ...string) {
	for _, cat := range cats {
		s.excluded[cat] = struct{}{}
	}
}

// IsExcluded reports whether cat is excluded.
func (s *State) IsExcluded(cat string) bool {
	_, ok := s.excluded[cat]
	return ok
}

// Included reports whether cat is not excluded.  It is suitable for
// extent.Including.
func (s *State) Included(cat string) bool {
	return !s.IsExcluded(cat)
}

// ExcludedCategories returns the excluded categories in increasing order.
func (s *State) ExcludedCategories() []string {
	ret := make([]string, 0, len(s.excluded))
	for cat := range s.excluded {
		ret = append(ret, cat)
	}
	slices.Sort(ret)
	return ret
}

// Highlight highlights cat, replacing any previous highlight.
func (s *State) Highlight(cat string) {
	s.highlighted = cat
}

// Unhighlight clears the highlight if cat is the highlighted category.
func (s *State) Unhighlight(cat string) {
	if s.highlighted == cat {
		s.highlighted = ""
	}
}

// Highlighted returns the highlighted category, or "" if there is none.
func (s *State) Highlighted() string {
	return s.highlighted
}

// IsHighlighted reports whether cat is the highlighted category.
func (s *State) IsHighlighted(cat string) bool {
	return cat != "" && s.highlighted == cat
}

// Selection returns the receiver's selection Machine.
func (s *State) Selection() *selection.Machine {
	return s.selection
}

// Zoom returns the zoom window, or false if the view is not zoomed.
func (s *State) Zoom() (Window, bool) {
	if s.zoom == nil {
		return Window{}, false
	}
	return *s.zoom, true
}

// SetZoom zooms the view to w.
func (s *State) SetZoom(w Window) {
	s.zoom = &w
}

// ClearZoom returns the view to the full extent.
func (s *State) ClearZoom() {
	s.zoom = nil
}

// Clone returns a deep copy of the receiver.
func (s *State) Clone() *State {
	ret := &State{
		excluded:    make(map[string]struct{}, len(s.excluded)),
		highlighted: s.highlighted,
		selection:   s.selection.Clone(),
	}
	for cat := range s.excluded {
		ret.excluded[cat] = struct{}{}
	}
	if s.zoom != nil {
		zoom := *s.zoom
		ret.zoom = &zoom
	}
	return ret
}
