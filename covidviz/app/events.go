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

package app

import "fmt"

// EventType names an interaction event.
type EventType string

// Interaction events.
const (
	PointerDown    EventType = "pointer_down"
	PointerMove    EventType = "pointer_move"
	PointerUp      EventType = "pointer_up"
	DoubleClick    EventType = "double_click"
	PointerEnter   EventType = "pointer_enter"
	PointerLeave   EventType = "pointer_leave"
	ToggleExcluded EventType = "toggle_excluded"
	Resize         EventType = "resize"
)

// Event is a single interaction with a chart.  X is a pointer position, in
// pixels from the left edge of the plot area, for pointer_down and
// pointer_move.  Category names the series for pointer_enter,
// pointer_leave and toggle_excluded.  Width and Height carry the new plot
// size for resize.
type Event struct {
	Type     EventType `json:"type"`
	X        float64   `json:"x,omitempty"`
	Category string    `json:"category,omitempty"`
	Width    int       `json:"width,omitempty"`
	Height   int       `json:"height,omitempty"`
}

func (e Event) String() string {
	switch e.Type {
	case PointerDown, PointerMove:
		return fmt.Sprintf("%s(%g)", e.Type, e.X)
	case PointerEnter, PointerLeave, ToggleExcluded:
		return fmt.Sprintf("%s(%s)", e.Type, e.Category)
	case Resize:
		return fmt.Sprintf("%s(%dx%d)", e.Type, e.Width, e.Height)
	}
	return string(e.Type)
}
