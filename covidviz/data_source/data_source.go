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

// Package datasource provides a covidviz data source serving per-category
// time series, and the view state layered over them, as scenes.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/simplelru"
	"go.uber.org/zap"

	"github.com/ilhamster/covidviz/covidviz/analysis/series"
	"github.com/ilhamster/covidviz/covidviz/app"
	"github.com/ilhamster/covidviz/covidviz/metrics"
	"github.com/ilhamster/covidviz/server/go/util"
)

// Supported queries.
const (
	TimeseriesQuery    = "covid.timeseries"
	LatestBarsQuery    = "covid.latest_bars"
	LegendQuery        = "covid.legend"
	ExtentQuery        = "covid.extent"
	SelectionQuery     = "covid.selection"
	EpidemicModelQuery = "covid.epidemic_model"
	SummaryTableQuery  = "covid.summary_table"
)

// Fetcher fetches datasets by name.
type Fetcher interface {
	Fetch(ctx context.Context, dataset string) (*series.Map, error)
}

// Sessions looks up interactive sessions by ID.
type Sessions interface {
	Session(id string) (*app.Model, bool)
}

// Option configures a DataSource.
type Option func(*DataSource)

// WithLogger sets the DataSource's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(ds *DataSource) {
		ds.logger = logger.Named("datasource")
	}
}

// WithMetrics sets the metrics the DataSource reports query latency to.
func WithMetrics(m *metrics.Metrics) Option {
	return func(ds *DataSource) {
		ds.metrics = m
	}
}

// WithSessions allows requests to name a session whose view state they
// should reflect.
func WithSessions(sessions Sessions) Option {
	return func(ds *DataSource) {
		ds.sessions = sessions
	}
}

// DataSource implements querydispatcher.DataSource for COVID-19 data.  It
// caches the most recently used datasets.
type DataSource struct {
	// Guards lru; simplelru is not safe for concurrent use.
	mu sync.Mutex
	// An LRU cache holding the most recently-accessed datasets.
	lru *simplelru.LRU
	// A fetcher used to fetch uncached datasets.
	fetcher  Fetcher
	sessions Sessions
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// New returns a new DataSource with the specified cache capacity, and using
// the provided fetcher.
func New(cap int, fetcher Fetcher, opts ...Option) (*DataSource, error) {
	lru, err := simplelru.NewLRU(cap /*no onEvict policy*/, nil)
	if err != nil {
		return nil, err
	}
	ds := &DataSource{
		lru:     lru,
		fetcher: fetcher,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(ds)
	}
	return ds, nil
}

// SupportedDataSeriesQueries returns the DataSeriesRequest query names
// supported by DataSource.
func (ds *DataSource) SupportedDataSeriesQueries() []string {
	return []string{
		TimeseriesQuery,
		LatestBarsQuery,
		LegendQuery,
		ExtentQuery,
		SelectionQuery,
		EpidemicModelQuery,
		SummaryTableQuery,
	}
}

// Dataset returns the named dataset from the LRU if it's present there.  If
// it isn't, it is fetched and added to the LRU before being returned.
func (ds *DataSource) Dataset(ctx context.Context, name string) (*series.Map, error) {
	ds.mu.Lock()
	smIf, ok := ds.lru.Get(name)
	ds.mu.Unlock()
	if ok {
		sm, ok := smIf.(*series.Map)
		if !ok {
			return nil, fmt.Errorf("cached dataset '%s' didn't contain a series map", name)
		}
		return sm, nil
	}
	sm, err := ds.fetcher.Fetch(ctx, name)
	if err != nil {
		return nil, err
	}
	ds.mu.Lock()
	ds.lru.Add(name, sm)
	ds.mu.Unlock()
	return sm, nil
}

// Forget evicts the named dataset from the cache, so that its next use
// refetches it.
func (ds *DataSource) Forget(name string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.lru.Remove(name)
}

// needsDataset reports whether the provided query reads the dataset.
func needsDataset(queryName string) bool {
	return queryName != EpidemicModelQuery
}

// HandleDataSeriesRequests handles the provided set of DataSeriesRequests, with
// the provided global filters.  It assembles its responses in the provided
// DataResponseBuilder.
func (ds *DataSource) HandleDataSeriesRequests(ctx context.Context, globalFilters map[string]*util.V, drb *util.DataResponseBuilder, reqs []*util.DataSeriesRequest) error {
	// Log how long it takes to handle each DataRequest.
	start := time.Now()
	queryNames := make([]string, 0, len(reqs))
	needed := false
	for _, req := range reqs {
		queryNames = append(queryNames, req.QueryName)
		needed = needed || needsDataset(req.QueryName)
	}
	defer func() {
		ds.logger.Debug("handled queries",
			zap.Strings("queries", queryNames), zap.Duration("took", time.Since(start)))
	}()
	// Build the queryFilters, just once, for all DataSeriesRequests.
	var qf *queryFilters
	if needed {
		var err error
		if qf, err = ds.queryFilters(ctx, globalFilters); err != nil {
			return err
		}
	}
	for _, req := range reqs {
		reqStart := time.Now()
		series := drb.DataSeries(req)
		var err error
		switch req.QueryName {
		case TimeseriesQuery:
			err = handleTimeseriesQuery(qf, series, req.Options)
		case LatestBarsQuery:
			err = handleLatestBarsQuery(qf, series, req.Options)
		case LegendQuery:
			err = handleLegendQuery(qf, series, req.Options)
		case ExtentQuery:
			err = handleExtentQuery(qf, series, req.Options)
		case SelectionQuery:
			err = handleSelectionQuery(qf, series, req.Options)
		case EpidemicModelQuery:
			err = handleEpidemicModelQuery(series, req.Options)
		case SummaryTableQuery:
			err = handleSummaryTableQuery(qf, series, req.Options)
		default:
			err = errors.New("unsupported data query")
		}
		if err != nil {
			return fmt.Errorf("error handling data query %s: %w", req.QueryName, err)
		}
		ds.metrics.ObserveQuery(req.QueryName, time.Since(reqStart).Seconds())
	}
	return nil
}
