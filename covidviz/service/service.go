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

// Package service assembles the covidviz HTTP service: scene queries,
// interactive sessions, rendered charts and metrics.
package service

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ilhamster/covidviz/covidviz/analysis/selection"
	"github.com/ilhamster/covidviz/covidviz/analysis/series"
	"github.com/ilhamster/covidviz/covidviz/app"
	"github.com/ilhamster/covidviz/covidviz/config"
	datasource "github.com/ilhamster/covidviz/covidviz/data_source"
	"github.com/ilhamster/covidviz/covidviz/fetcher"
	"github.com/ilhamster/covidviz/covidviz/metrics"
	"github.com/ilhamster/covidviz/covidviz/render"
	"github.com/ilhamster/covidviz/server/go/handlers"
	querydispatcher "github.com/ilhamster/covidviz/server/go/query_dispatcher"
)

const (
	eventMethod    = "/Event"
	svgChartMethod = "/Chart.svg"
	pngChartMethod = "/Chart.png"
	metricsMethod  = "/metrics"
)

type options struct {
	logger           *zap.Logger
	client           *http.Client
	processCollector bool
}

// Option configures a Service.
type Option func(*options)

// WithLogger sets the Service's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithHTTPClient sets the client used to fetch datasets.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.client = client
	}
}

// WithProcessMetrics additionally exports Go runtime and process metrics.
func WithProcessMetrics() Option {
	return func(o *options) {
		o.processCollector = true
	}
}

// loaderFunc adapts a function to app.Loader.
type loaderFunc func(ctx context.Context, dataset string) (*series.Map, error)

func (lf loaderFunc) Fetch(ctx context.Context, dataset string) (*series.Map, error) {
	return lf(ctx, dataset)
}

// Service is the covidviz HTTP service.
type Service struct {
	cfg          *config.Config
	logger       *zap.Logger
	metrics      *metrics.Metrics
	registry     *prometheus.Registry
	fetcher      *fetcher.Fetcher
	ds           *datasource.DataSource
	qd           *querydispatcher.QueryDispatcher
	sessions     *Sessions
	queryHandler handlers.Handler
	indexHandler handlers.Handler
}

// New returns a new Service configured by cfg.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	o := &options{
		logger: zap.NewNop(),
		client: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(o)
	}
	logger := o.logger.Named("service")
	mets := metrics.New()
	registry := prometheus.NewRegistry()
	registry.MustRegister(mets)
	if o.processCollector {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	f := fetcher.New(cfg.Datasets,
		fetcher.WithHTTPClient(o.client),
		fetcher.WithLogger(o.logger),
		fetcher.WithMetrics(mets),
	)
	var ds *datasource.DataSource
	loader := loaderFunc(func(ctx context.Context, dataset string) (*series.Map, error) {
		return ds.Dataset(ctx, dataset)
	})
	sessions, err := newSessions(cfg.Server.SessionCacheSize, func(dataset string) *app.Model {
		return app.New(loader, dataset,
			app.NewViewport(app.Dimensions{
				Width:  cfg.Selection.PlotWidth,
				Height: cfg.Selection.PlotHeight,
			}),
			app.WithLogger(o.logger),
			app.WithMetrics(mets),
			app.WithSelectionOptions(selection.MinSpan(cfg.Selection.MinSpan)),
		)
	}, mets)
	if err != nil {
		return nil, err
	}
	ds, err = datasource.New(cfg.Server.DatasetCacheSize, f,
		datasource.WithLogger(o.logger),
		datasource.WithMetrics(mets),
		datasource.WithSessions(sessions),
	)
	if err != nil {
		return nil, err
	}
	qd, err := querydispatcher.New(ds)
	if err != nil {
		return nil, err
	}
	s := &Service{
		cfg:      cfg,
		logger:   logger,
		metrics:  mets,
		registry: registry,
		fetcher:  f,
		ds:       ds,
		qd:       qd,
		sessions: sessions,
		indexHandler: handlers.NewIndexHandler(handlers.IndexPage{
			Title:    "covidviz",
			Queries:  qd.SupportedQueries(),
			ChartURL: svgChartMethod,
		}),
	}
	s.queryHandler = handlers.NewQueryHandler(qd).Wrap(s.logRequests)
	return s, nil
}

// logRequests logs each request served by the wrapped handler.
func (s *Service) logRequests(hf handlers.HandlerFunc) handlers.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		hf(w, req)
		s.logger.Debug("Served request",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Duration("took", time.Since(start)))
	}
}

// HandlersByPath returns a mapping of HTTP request path to HTTP handler for
// the receiver's own endpoints.
func (s *Service) HandlersByPath() map[string]func(http.ResponseWriter, *http.Request) {
	return map[string]func(http.ResponseWriter, *http.Request){
		eventMethod:    s.logRequests(s.handleEvent),
		svgChartMethod: s.logRequests(s.chartHandler(render.SVG)),
		pngChartMethod: s.logRequests(s.chartHandler(render.PNG)),
		metricsMethod:  promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}).ServeHTTP,
	}
}

// RegisterHandlers registers all of the Service's handlers on mux.
func (s *Service) RegisterHandlers(mux *http.ServeMux) {
	for _, h := range []handlers.Handler{s.queryHandler, s.indexHandler, s} {
		for path, handler := range h.HandlersByPath() {
			mux.HandleFunc(path, handler)
		}
	}
}

// Sessions returns the Service's live sessions.
func (s *Service) Sessions() *Sessions {
	return s.sessions
}

// Close unmounts every live session.
func (s *Service) Close() {
	s.sessions.Close()
}
