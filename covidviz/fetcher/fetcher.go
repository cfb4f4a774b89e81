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

// Package fetcher fetches COVID case-count datasets over HTTP and shapes them
// into series.
//
// Each fetch is a single unauthenticated GET returning a JSON array of
// objects.  Failures are reported as *FetchError and are not retried.
// Concurrent fetches of the same dataset share one request.
package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/ilhamster/covidviz/covidviz/analysis/record"
	"github.com/ilhamster/covidviz/covidviz/analysis/series"
	"github.com/ilhamster/covidviz/covidviz/config"
	"github.com/ilhamster/covidviz/covidviz/metrics"
)

// FetchError reports a failed dataset fetch: a transport failure, a non-2xx
// response, or an undecodable body.
type FetchError struct {
	Dataset string
	URL     string
	// StatusCode is the HTTP status received, or 0 if none was.
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching dataset '%s' from %s: status %d: %v", e.Dataset, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetching dataset '%s' from %s: %v", e.Dataset, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetcher fetches configured datasets.  It is safe for concurrent use.
type Fetcher struct {
	datasets map[string]config.DatasetConfig
	client   *http.Client
	logger   *zap.Logger
	metrics  *metrics.Metrics
	group    singleflight.Group
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets the HTTP client used for fetches.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithLogger sets the Fetcher's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger.Named("fetcher")
	}
}

// WithMetrics sets the metrics the Fetcher reports to.
func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Fetcher) {
		f.metrics = m
	}
}

// New returns a Fetcher for the provided datasets, keyed by name.
func New(datasets map[string]config.DatasetConfig, opts ...Option) *Fetcher {
	f := &Fetcher{
		datasets: datasets,
		client:   http.DefaultClient,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Dataset returns the configuration of the named dataset, or false if it is
// not configured.
func (f *Fetcher) Dataset(name string) (config.DatasetConfig, bool) {
	ds, ok := f.datasets[name]
	return ds, ok
}

// FetchRecords fetches and decodes the named dataset, also returning the
// number of objects skipped for lacking a category.
func (f *Fetcher) FetchRecords(ctx context.Context, dataset string) ([]record.RawRecord, int, error) {
	ds, ok := f.datasets[dataset]
	if !ok {
		return nil, 0, fmt.Errorf("unknown dataset '%s'", dataset)
	}
	fetchErr := func(status int, err error) error {
		return &FetchError{Dataset: dataset, URL: ds.URL, StatusCode: status, Err: err}
	}
	if ds.Timeout.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ds.Timeout.Duration)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ds.URL, nil)
	if err != nil {
		return nil, 0, fetchErr(0, err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, fetchErr(0, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, 0, fetchErr(resp.StatusCode, fmt.Errorf("%s", http.StatusText(resp.StatusCode)))
	}
	raws, skipped, err := Decode(resp.Body, ds)
	if err != nil {
		return nil, 0, fetchErr(resp.StatusCode, err)
	}
	return raws, skipped, nil
}

// Fetch fetches the named dataset and builds it into a Map, biggest latest
// value first.  Concurrent calls for the same dataset share a single request
// and its result.
func (f *Fetcher) Fetch(ctx context.Context, dataset string) (*series.Map, error) {
	v, err, shared := f.group.Do(dataset, func() (any, error) {
		start := time.Now()
		raws, skipped, err := f.FetchRecords(ctx, dataset)
		if err != nil {
			f.metrics.ObserveFetch(dataset, time.Since(start).Seconds(), 0, err)
			f.logger.Warn("Dataset fetch failed", zap.String("dataset", dataset), zap.Error(err))
			return nil, err
		}
		entries := record.Parse(raws)
		m := series.Build(entries, series.ByLatestDesc)
		dropped := skipped + len(raws) - len(entries)
		f.metrics.ObserveFetch(dataset, time.Since(start).Seconds(), dropped, nil)
		f.logger.Info("Fetched dataset",
			zap.String("dataset", dataset),
			zap.Int("records", len(raws)+skipped),
			zap.Int("dropped", dropped),
			zap.Int("categories", m.Len()),
			zap.Duration("took", time.Since(start)),
		)
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		f.logger.Debug("Shared an in-flight fetch", zap.String("dataset", dataset))
	}
	return v.(*series.Map), nil
}

// Decode reads a JSON array of objects from r, extracting each object's
// category, value and timestamp from the fields named by ds.  Objects with no
// string category are skipped and counted.  Null or non-numeric values decode
// to NaN, and numeric timestamps (e.g. 20200301) to their decimal string.
func Decode(r io.Reader, ds config.DatasetConfig) ([]record.RawRecord, int, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var objs []map[string]any
	if err := dec.Decode(&objs); err != nil {
		return nil, 0, fmt.Errorf("decoding dataset: %w", err)
	}
	ret := make([]record.RawRecord, 0, len(objs))
	skipped := 0
	for _, obj := range objs {
		cat, ok := obj[ds.CategoryField].(string)
		if !ok {
			skipped++
			continue
		}
		ret = append(ret, record.RawRecord{
			Category:  cat,
			Value:     asValue(obj[ds.ValueField]),
			Timestamp: asTimestamp(obj[ds.TimestampField]),
		})
	}
	return ret, skipped, nil
}

func asValue(v any) float64 {
	switch val := v.(type) {
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return math.NaN()
}

func asTimestamp(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	}
	return ""
}
