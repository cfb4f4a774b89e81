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

package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type step func(m *Machine)

func down(p float64) step { return func(m *Machine) { m.PointerDown(p) } }
func move(p float64) step { return func(m *Machine) { m.PointerMove(p) } }
func up() step            { return func(m *Machine) { m.PointerUp() } }
func dbl() step           { return func(m *Machine) { m.DoubleClick() } }

func TestMachine(t *testing.T) {
	for _, test := range []struct {
		description string
		opts        []Option
		steps       []step
		want        string
	}{{
		description: "starts idle",
		want:        "idle",
	}, {
		description: "zero-width drag returns to idle",
		steps:       []step{down(5), up()},
		want:        "idle",
	}, {
		description: "zero-width drag with a move returns to idle",
		steps:       []step{down(5), move(5), up()},
		want:        "idle",
	}, {
		description: "drag selects",
		steps:       []step{down(2), move(8), up()},
		want:        "selected(2, 8)",
	}, {
		description: "reverse drag normalizes",
		steps:       []step{down(8), move(3), move(2), up()},
		want:        "selected(2, 8)",
	}, {
		description: "exactly the minimum span selects",
		steps:       []step{down(2), move(3), up()},
		want:        "selected(2, 3)",
	}, {
		description: "below a custom minimum span",
		opts:        []Option{MinSpan(10)},
		steps:       []step{down(2), move(8), up()},
		want:        "idle",
	}, {
		description: "selecting tracks the pointer",
		steps:       []step{down(2), move(4), move(6)},
		want:        "selecting(2, 6)",
	}, {
		description: "pressed without moving",
		steps:       []step{down(2)},
		want:        "selecting(2, -)",
	}, {
		description: "moves while idle are ignored",
		steps:       []step{move(4), up()},
		want:        "idle",
	}, {
		description: "pointer down clears a previous selection",
		steps:       []step{down(2), move(8), up(), down(20)},
		want:        "selecting(20, -)",
	}, {
		description: "moves and ups while selected are ignored",
		steps:       []step{down(2), move(8), up(), move(30), up()},
		want:        "selected(2, 8)",
	}, {
		description: "double click resets a selection",
		steps:       []step{down(2), move(8), up(), dbl()},
		want:        "idle",
	}, {
		description: "double click resets a gesture",
		steps:       []step{down(2), move(8), dbl(), up()},
		want:        "idle",
	}} {
		t.Run(test.description, func(t *testing.T) {
			m := New(test.opts...)
			for _, s := range test.steps {
				s(m)
			}
			assert.Equal(t, test.want, m.State().String())
		})
	}
}

func TestPointerUpReportsCompletion(t *testing.T) {
	m := New()
	m.PointerDown(2)
	m.PointerMove(8)
	assert.True(t, m.PointerUp())
	st := m.State()
	assert.Equal(t, Selected, st.Kind)
	assert.Equal(t, 2.0, st.Left)
	assert.Equal(t, 8.0, st.Right)
	assert.False(t, m.PointerUp())

	m.PointerDown(5)
	assert.False(t, m.PointerUp())
	assert.Equal(t, Idle, m.State().Kind)
}

func TestStateIsACopy(t *testing.T) {
	m := New()
	m.PointerDown(1)
	st := m.State()
	*st.From = 100
	assert.Equal(t, 1.0, *m.State().From)
}
