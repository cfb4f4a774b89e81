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

// Package app holds the lifecycle of a single mounted chart: the one-shot
// dataset load, and the view state driven by interaction events.
package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ilhamster/covidviz/covidviz/analysis/extent"
	"github.com/ilhamster/covidviz/covidviz/analysis/selection"
	"github.com/ilhamster/covidviz/covidviz/analysis/series"
	"github.com/ilhamster/covidviz/covidviz/analysis/view"
	"github.com/ilhamster/covidviz/covidviz/metrics"
	continuousaxis "github.com/ilhamster/covidviz/server/go/continuous_axis"
)

// ErrNotLoaded is returned for interaction events received before the
// dataset has loaded, or after loading has failed.
var ErrNotLoaded = errors.New("dataset not loaded")

// ErrNotMounted is returned for events received by an unmounted Model.
var ErrNotMounted = errors.New("model not mounted")

// State is the load state of a Model: one of Loading, Failed or Loaded.
type State interface {
	isState()
}

// Loading is the State of a Model whose dataset has not yet arrived.
type Loading struct{}

// Failed is the State of a Model whose dataset could not be loaded.
type Failed struct {
	Err error
}

// Loaded is the State of a Model holding its dataset.  View is the model's
// view state when returned from Model.State, and a copy of it otherwise.
type Loaded struct {
	Series *series.Map
	View   *view.State
}

func (Loading) isState() {}
func (Failed) isState()  {}
func (Loaded) isState()  {}

// Loader fetches a dataset.
type Loader interface {
	Fetch(ctx context.Context, dataset string) (*series.Map, error)
}

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the Model's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Model) {
		m.logger = logger.Named("app")
	}
}

// WithMetrics sets the metrics the Model reports events to.
func WithMetrics(mets *metrics.Metrics) Option {
	return func(m *Model) {
		m.metrics = mets
	}
}

// WithSelectionOptions configures the selection machine of each fresh view
// state.
func WithSelectionOptions(opts ...selection.Option) Option {
	return func(m *Model) {
		m.selectionOpts = opts
	}
}

// Model is a single mounted chart.  Its methods are safe for concurrent use;
// events are applied one at a time, in the order they acquire the Model.
type Model struct {
	loader        Loader
	dataset       string
	dims          DimensionProvider
	logger        *zap.Logger
	metrics       *metrics.Metrics
	selectionOpts []selection.Option

	mu          sync.Mutex
	mounted     bool
	unsubscribe func()
	size        Dimensions
	state       State
	// generation is bumped on every load and on unmount.  A load delivers
	// its result only if the generation is unchanged.
	generation uint64
	ready      chan struct{}
}

// New returns a new, unmounted Model of the named dataset.
func New(loader Loader, dataset string, dims DimensionProvider, opts ...Option) *Model {
	m := &Model{
		loader:  loader,
		dataset: dataset,
		dims:    dims,
		logger:  zap.NewNop(),
		state:   Loading{},
		ready:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Dataset returns the name of the receiver's dataset.
func (m *Model) Dataset() string {
	return m.dataset
}

// Mount subscribes to the dimension provider and starts loading the
// dataset.  The load is not cancelled with ctx; its result is discarded if
// the receiver is unmounted first.
func (m *Model) Mount(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mounted {
		return fmt.Errorf("dataset '%s' is already mounted", m.dataset)
	}
	m.mounted = true
	m.state = Loading{}
	m.size = m.dims.Dimensions()
	m.unsubscribe = m.dims.Subscribe(m.resized)
	m.startLoadLocked(ctx)
	return nil
}

// Unmount unsubscribes from the dimension provider.  A load in flight is
// ignored when it completes.  Unmounting an unmounted Model does nothing.
func (m *Model) Unmount() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.mounted {
		return
	}
	m.mounted = false
	m.generation++
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

// Reload refetches the dataset, returning the receiver to Loading with a
// fresh view state once the new dataset arrives.
func (m *Model) Reload(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.mounted {
		return fmt.Errorf("dataset '%s' is not mounted", m.dataset)
	}
	m.state = Loading{}
	m.startLoadLocked(ctx)
	return nil
}

func (m *Model) startLoadLocked(ctx context.Context) {
	m.generation++
	gen := m.generation
	ready := make(chan struct{})
	m.ready = ready
	ctx = context.WithoutCancel(ctx)
	go func() {
		defer close(ready)
		start := time.Now()
		sm, err := m.loader.Fetch(ctx, m.dataset)
		m.deliver(gen, sm, err, time.Since(start))
	}()
}

func (m *Model) deliver(gen uint64, sm *series.Map, err error, took time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.generation {
		m.logger.Debug("discarding stale load",
			zap.String("dataset", m.dataset), zap.Uint64("generation", gen))
		return
	}
	if err != nil {
		m.logger.Warn("load failed", zap.String("dataset", m.dataset), zap.Error(err))
		m.state = Failed{Err: err}
		return
	}
	m.logger.Debug("loaded",
		zap.String("dataset", m.dataset),
		zap.Int("categories", sm.Len()),
		zap.Duration("took", took))
	m.state = Loaded{
		Series: sm,
		View:   view.New(m.selectionOpts...),
	}
}

// Wait blocks until the most recently started load has completed, or ctx is
// done.  Loads started while waiting are waited for too.
func (m *Model) Wait(ctx context.Context) error {
	m.mu.Lock()
	ready := m.ready
	m.mu.Unlock()
	for {
		select {
		case <-ready:
		case <-ctx.Done():
			return ctx.Err()
		}
		m.mu.Lock()
		current := m.ready
		m.mu.Unlock()
		if current == ready {
			return nil
		}
		ready = current
	}
}

// State returns a snapshot of the receiver's load state.  A Loaded snapshot
// carries a copy of the view state.
func (m *Model) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if loaded, ok := m.state.(Loaded); ok {
		return Loaded{
			Series: loaded.Series,
			View:   loaded.View.Clone(),
		}
	}
	return m.state
}

// Dimensions returns the plot size last reported by the dimension provider.
func (m *Model) Dimensions() Dimensions {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.size
}

func (m *Model) resized(dims Dimensions) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.size = dims
}

// Handle applies the provided event to a mounted Model.  Resize events are
// forwarded to the dimension provider, which must support them; all other
// events require the dataset to be loaded.
func (m *Model) Handle(e Event) error {
	m.metrics.CountEvent(string(e.Type))
	m.mu.Lock()
	if !m.mounted {
		m.mu.Unlock()
		return ErrNotMounted
	}
	if e.Type == Resize {
		m.mu.Unlock()
		return m.resize(e)
	}
	defer m.mu.Unlock()
	loaded, ok := m.state.(Loaded)
	if !ok {
		return ErrNotLoaded
	}
	vs := loaded.View
	switch e.Type {
	case PointerDown:
		vs.Selection().PointerDown(e.X)
	case PointerMove:
		vs.Selection().PointerMove(e.X)
	case PointerUp:
		if vs.Selection().PointerUp() {
			m.zoomToSelectionLocked(loaded)
		}
	case DoubleClick:
		vs.Selection().DoubleClick()
		vs.ClearZoom()
	case PointerEnter, PointerLeave, ToggleExcluded:
		if _, ok := loaded.Series.Series(e.Category); !ok {
			return fmt.Errorf("unknown category '%s'", e.Category)
		}
		switch e.Type {
		case PointerEnter:
			vs.Highlight(e.Category)
		case PointerLeave:
			vs.Unhighlight(e.Category)
		default:
			vs.ToggleExcluded(e.Category)
		}
	default:
		return fmt.Errorf("unsupported event type '%s'", e.Type)
	}
	m.logger.Debug("handled event", zap.Stringer("event", e))
	return nil
}

// Resizer is a DimensionProvider that accepts new sizes.
type Resizer interface {
	Resize(dims Dimensions)
}

func (m *Model) resize(e Event) error {
	if e.Width <= 0 || e.Height <= 0 {
		return fmt.Errorf("invalid plot size %dx%d", e.Width, e.Height)
	}
	r, ok := m.dims.(Resizer)
	if !ok {
		return fmt.Errorf("dimension provider does not support resizing")
	}
	// The provider notifies the receiver synchronously, so the receiver's
	// lock must not be held here.
	r.Resize(Dimensions{Width: e.Width, Height: e.Height})
	return nil
}

// domainLocked returns the time span currently shown across the plot: the
// zoom window if one is set, otherwise the extent of the included series.
func (m *Model) domainLocked(loaded Loaded) (view.Window, bool) {
	if zoom, ok := loaded.View.Zoom(); ok {
		return zoom, true
	}
	ext, ok := extent.Of(loaded.Series, extent.Including(loaded.View.Included))
	if !ok {
		return view.Window{}, false
	}
	return view.NewWindow(ext.Min.X, ext.Max.X), true
}

// zoomToSelectionLocked maps the completed pixel selection, clamped to the
// plot, into the time domain and zooms to it.  Nothing happens if nothing is
// plotted or the selection lies wholly off one edge.
func (m *Model) zoomToSelectionLocked(loaded Loaded) {
	domain, ok := m.domainLocked(loaded)
	if !ok || m.size.Width <= 0 {
		return
	}
	width := float64(m.size.Width)
	scale := continuousaxis.NewTimeScale(domain.Start, domain.End, 0, width)
	sel := loaded.View.Selection().State()
	left := math.Max(0, math.Min(sel.Left, width))
	right := math.Max(0, math.Min(sel.Right, width))
	if left == right {
		return
	}
	zoom := view.NewWindow(scale.Invert(left), scale.Invert(right))
	loaded.View.SetZoom(zoom)
	m.logger.Debug("zoomed", zap.Stringer("window", zoom))
}
