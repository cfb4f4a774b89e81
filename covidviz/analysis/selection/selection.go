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

// Package selection implements the pointer-driven range selection used to
// zoom charts.
//
// A Machine moves between three states:
//
//	Idle --PointerDown(p)--> Selecting{From: p}
//	Selecting --PointerMove(p)--> Selecting{From, To: p}
//	Selecting --PointerUp--> Selected{Left, Right}  if |To-From| >= MinSpan
//	Selecting --PointerUp--> Idle                   otherwise
//	Selected --PointerDown(p)--> Selecting{From: p}
//	any --DoubleClick--> Idle
//
// Positions are in the caller's units, typically pixels along the chart's X
// axis.  Every transition is constant-time arithmetic.
package selection

import (
	"fmt"
	"math"
)

// DefaultMinSpan is the smallest drag that completes a selection.
const DefaultMinSpan = 1.0

// Kind identifies a selection state.
type Kind int

// Selection states.
const (
	Idle Kind = iota
	Selecting
	Selected
)

func (k Kind) String() string {
	switch k {
	case Idle:
		return "idle"
	case Selecting:
		return "selecting"
	case Selected:
		return "selected"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// State is a snapshot of a Machine.  From and To are set while Selecting; To
// is nil until the pointer has moved.  Left and Right are set when Selected,
// with Left <= Right.
type State struct {
	Kind        Kind
	From, To    *float64
	Left, Right float64
}

func (s State) String() string {
	switch s.Kind {
	case Selecting:
		if s.To == nil {
			return fmt.Sprintf("selecting(%g, -)", *s.From)
		}
		return fmt.Sprintf("selecting(%g, %g)", *s.From, *s.To)
	case Selected:
		return fmt.Sprintf("selected(%g, %g)", s.Left, s.Right)
	}
	return s.Kind.String()
}

// Machine tracks a single selection gesture.  It is not safe for concurrent
// use.
type Machine struct {
	minSpan float64
	state   State
}

// Option configures a Machine.
type Option func(*Machine)

// MinSpan sets the smallest drag that completes a selection.
func MinSpan(span float64) Option {
	return func(m *Machine) {
		m.minSpan = span
	}
}

// New returns a new, Idle Machine.
func New(opts ...Option) *Machine {
	m := &Machine{minSpan: DefaultMinSpan}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the receiver's current state.
func (m *Machine) State() State {
	ret := m.state
	if ret.From != nil {
		from := *ret.From
		ret.From = &from
	}
	if ret.To != nil {
		to := *ret.To
		ret.To = &to
	}
	return ret
}

// Clone returns an independent copy of the receiver.
func (m *Machine) Clone() *Machine {
	return &Machine{
		minSpan: m.minSpan,
		state:   m.State(),
	}
}

// PointerDown begins a new selection at p, discarding any previous one.
func (m *Machine) PointerDown(p float64) {
	m.state = State{Kind: Selecting, From: &p}
}

// PointerMove extends an in-progress selection to p.  It is ignored unless
// a selection is in progress.
func (m *Machine) PointerMove(p float64) {
	if m.state.Kind != Selecting {
		return
	}
	m.state.To = &p
}

// PointerUp completes an in-progress selection, returning true if it spans
// at least the minimum span.  Shorter drags, including clicks without a
// move, return the receiver to Idle.  It is ignored unless a selection is in
// progress.
func (m *Machine) PointerUp() bool {
	if m.state.Kind != Selecting {
		return false
	}
	from, to := *m.state.From, *m.state.From
	if m.state.To != nil {
		to = *m.state.To
	}
	if math.Abs(to-from) < m.minSpan {
		m.state = State{Kind: Idle}
		return false
	}
	m.state = State{
		Kind:  Selected,
		Left:  math.Min(from, to),
		Right: math.Max(from, to),
	}
	return true
}

// DoubleClick resets the receiver to Idle.
func (m *Machine) DoubleClick() {
	m.state = State{Kind: Idle}
}
