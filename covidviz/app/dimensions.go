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

import "sync"

// Dimensions is the size, in pixels, of a chart's plot area.
type Dimensions struct {
	Width, Height int
}

// DimensionProvider reports the plot size and notifies subscribers when it
// changes.
type DimensionProvider interface {
	// Dimensions returns the current plot size.
	Dimensions() Dimensions
	// Subscribe registers fn to be called with each new plot size.  The
	// returned function unsubscribes fn; it is safe to call more than once.
	Subscribe(fn func(Dimensions)) (unsubscribe func())
}

// Viewport is a DimensionProvider whose size is set explicitly, e.g. from
// client resize events.  It is safe for concurrent use.
type Viewport struct {
	mu     sync.Mutex
	dims   Dimensions
	nextID int
	subs   map[int]func(Dimensions)
}

// NewViewport returns a Viewport of the provided size.
func NewViewport(dims Dimensions) *Viewport {
	return &Viewport{
		dims: dims,
		subs: map[int]func(Dimensions){},
	}
}

// Dimensions returns the current size.
func (v *Viewport) Dimensions() Dimensions {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.dims
}

// Subscribe registers fn for size changes.
func (v *Viewport) Subscribe(fn func(Dimensions)) func() {
	v.mu.Lock()
	defer v.mu.Unlock()
	id := v.nextID
	v.nextID++
	v.subs[id] = fn
	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		delete(v.subs, id)
	}
}

// Subscribers returns the number of current subscribers.
func (v *Viewport) Subscribers() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.subs)
}

// Resize sets the size and notifies subscribers.  Subscribers are called
// without the Viewport's lock held.
func (v *Viewport) Resize(dims Dimensions) {
	v.mu.Lock()
	v.dims = dims
	subs := make([]func(Dimensions), 0, len(v.subs))
	for _, fn := range v.subs {
		subs = append(subs, fn)
	}
	v.mu.Unlock()
	for _, fn := range subs {
		fn(dims)
	}
}
