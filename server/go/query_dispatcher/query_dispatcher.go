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

// Package querydispatcher provides QueryDispatcher, a type for multiplexing
// multiple backend data sources written in Go.
package querydispatcher

import (
	"context"
	"fmt"
	"slices"

	"github.com/ilhamster/covidviz/server/go/util"
	"golang.org/x/sync/errgroup"
)

// DataSource represents a single backend data source.  DataSource instances
// must support concurrent HandleDataSeriesRequests calls.
type DataSource interface {
	// SupportedDataSeriesQueries returns the list of
	// DataSeriesRequest.QueryNames this DataSource is able to handle.  Query
	// names should be unique to their DataSource: e.g., they may be prefixed
	// with the DataSource's domain, as in 'covid.timeseries'.
	SupportedDataSeriesQueries() []string
	// HandleDataSeriesRequests handles a set of DataSeriesRequests with the
	// supplied global filters.  DataSource implementations should use the
	// provided DataResponseBuilder to add and populate a new DataSeries per
	// request.  Any returned error will cancel the entire DataRequest and
	// surface to the client.
	HandleDataSeriesRequests(ctx context.Context, globalFilters map[string]*util.V, drb *util.DataResponseBuilder, reqs []*util.DataSeriesRequest) error
}

// QueryDispatcher multiplexes multiple data query handlers, which may be from
// entirely different datasets, allowing common queries to be satisfied by a
// variety of data providers.
type QueryDispatcher struct {
	dataSources []DataSource
	// Maps data series query names to indices (in dataSources) of the
	// DataSources that handle those queries.
	dataSeriesQueryHandlers map[string]int
}

// New returns a *QueryDispatcher wrapping the provided DataSources.
func New(dss ...DataSource) (*QueryDispatcher, error) {
	qd := &QueryDispatcher{
		dataSeriesQueryHandlers: map[string]int{},
	}
	for dsIdx, ds := range dss {
		qd.dataSources = append(qd.dataSources, ds)
		for _, queryName := range ds.SupportedDataSeriesQueries() {
			if _, ok := qd.dataSeriesQueryHandlers[queryName]; ok {
				return nil, fmt.Errorf(
					"multiple data sources handle query '%s'", queryName)
			}
			qd.dataSeriesQueryHandlers[queryName] = dsIdx
		}
	}
	return qd, nil
}

// SupportedQueries returns the names of all queries the receiver can
// dispatch, in increasing order.
func (qd *QueryDispatcher) SupportedQueries() []string {
	ret := make([]string, 0, len(qd.dataSeriesQueryHandlers))
	for queryName := range qd.dataSeriesQueryHandlers {
		ret = append(ret, queryName)
	}
	slices.Sort(ret)
	return ret
}

// HandleDataRequest distributes the provided DataRequest's constituent
// DataSeriesRequests to their appropriate DataSources for processing, then
// assembles the resulting DataSeries into a single response.  The response's
// series are not ordered; clients should find them by SeriesName.
func (qd *QueryDispatcher) HandleDataRequest(ctx context.Context, req *util.DataRequest) (*util.Data, error) {
	if req == nil {
		return nil, fmt.Errorf("nil data request")
	}
	drb := util.NewDataResponseBuilder()
	// A mapping from DataSource index to the set of DataSeriesRequests that
	// source can handle.
	groupedReqs := map[int][]*util.DataSeriesRequest{}
	for _, seriesReq := range req.SeriesRequests {
		dsIdx, ok := qd.dataSeriesQueryHandlers[seriesReq.QueryName]
		if !ok {
			return nil, fmt.Errorf("unsupported data query '%s'", seriesReq.QueryName)
		}
		groupedReqs[dsIdx] = append(groupedReqs[dsIdx], seriesReq)
	}
	errg, ctx := errgroup.WithContext(ctx)
	for dsIdx, seriesReqs := range groupedReqs {
		ds := qd.dataSources[dsIdx]
		errg.Go(func() error {
			return ds.HandleDataSeriesRequests(ctx, req.GlobalFilters, drb, seriesReqs)
		})
	}
	if err := errg.Wait(); err != nil {
		return nil, err
	}
	return drb.Data()
}
