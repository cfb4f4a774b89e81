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

package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ilhamster/covidviz/covidviz/config"
	datasource "github.com/ilhamster/covidviz/covidviz/data_source"
	"github.com/ilhamster/covidviz/covidviz/render"
	"github.com/ilhamster/covidviz/server/go/util"
	xychart "github.com/ilhamster/covidviz/server/go/xy_chart"
)

const chartSeriesName = "chart"

// ChartRequest describes a chart to render.  If SessionID names a live
// session, the chart reflects that session's view state and Excluded and
// Highlighted are ignored.  A zero Width or Height is taken from the
// session, or else from the configured plot size.
type ChartRequest struct {
	SessionID   string
	Dataset     string
	Query       string
	ChartType   string
	Excluded    []string
	Highlighted string
	// ZoomStart and ZoomEnd restrict the chart to a window of time.  Either
	// may be zero.
	ZoomStart time.Time
	ZoomEnd   time.Time
	Width     int
	Height    int
	Title     string
	Format    render.Format
}

// dataRequest returns the scene request for the receiver.
func (cr ChartRequest) dataRequest() *util.DataRequest {
	filters := map[string]*util.V{}
	if cr.SessionID != "" {
		filters[datasource.SessionIDKey] = util.StringValue(url.QueryEscape(cr.SessionID))
	}
	if cr.Dataset != "" {
		filters[datasource.DatasetKey] = util.StringValue(url.QueryEscape(cr.Dataset))
	}
	if len(cr.Excluded) > 0 {
		filters[datasource.ExcludedCategoriesKey] = util.StringsValue(cr.Excluded...)
	}
	if cr.Highlighted != "" {
		filters[datasource.HighlightedCategoryKey] = util.StringValue(url.QueryEscape(cr.Highlighted))
	}
	if !cr.ZoomStart.IsZero() {
		filters[datasource.ZoomStartTimestampKey] = util.TimestampValue(cr.ZoomStart)
	}
	if !cr.ZoomEnd.IsZero() {
		filters[datasource.ZoomEndTimestampKey] = util.TimestampValue(cr.ZoomEnd)
	}
	opts := map[string]*util.V{}
	if cr.ChartType != "" {
		opts[xychart.ChartTypeKey] = util.StringValue(url.QueryEscape(cr.ChartType))
	}
	query := cr.Query
	if query == "" {
		query = datasource.TimeseriesQuery
	}
	return &util.DataRequest{
		GlobalFilters: filters,
		SeriesRequests: []*util.DataSeriesRequest{{
			QueryName:  query,
			SeriesName: chartSeriesName,
			Options:    opts,
		}},
	}
}

// Render builds the requested chart's scene and draws it to w.
func (s *Service) Render(ctx context.Context, w io.Writer, cr ChartRequest) error {
	if cr.Width <= 0 || cr.Height <= 0 {
		width, height := s.cfg.Selection.PlotWidth, s.cfg.Selection.PlotHeight
		if cr.SessionID != "" {
			if model, ok := s.sessions.Session(cr.SessionID); ok {
				dims := model.Dimensions()
				width, height = dims.Width, dims.Height
			}
		}
		if cr.Width <= 0 {
			cr.Width = width
		}
		if cr.Height <= 0 {
			cr.Height = height
		}
	}
	if cr.Format == "" {
		cr.Format = render.SVG
	}
	data, err := s.qd.HandleDataRequest(ctx, cr.dataRequest())
	if err != nil {
		return err
	}
	return render.Scene(w, data, chartSeriesName, render.Options{
		Format: cr.Format,
		Width:  cr.Width,
		Height: cr.Height,
		Title:  cr.Title,
	})
}

// DateFormat is the format of zoom_start and zoom_end chart parameters.
const DateFormat = "2006-01-02"

func dateParam(q url.Values, key string) (time.Time, error) {
	s := q.Get(key)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parameter '%s' must be a date like %s", key, DateFormat)
	}
	return t, nil
}

func intParam(q url.Values, key string) (int, error) {
	s := q.Get(key)
	if s == "" {
		return 0, nil
	}
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("parameter '%s' must be a non-negative integer", key)
	}
	return i, nil
}

// chartRequestFromQuery reads a ChartRequest from URL query parameters.
// Excluded categories may be repeated or comma-separated.
func chartRequestFromQuery(q url.Values, format render.Format) (ChartRequest, error) {
	cr := ChartRequest{
		SessionID:   q.Get("session"),
		Dataset:     q.Get("dataset"),
		Query:       q.Get("query"),
		ChartType:   q.Get("chart_type"),
		Highlighted: q.Get("highlighted"),
		Title:       q.Get("title"),
		Format:      format,
	}
	for _, excluded := range q["excluded"] {
		for _, cat := range strings.Split(excluded, ",") {
			if cat = strings.TrimSpace(cat); cat != "" {
				cr.Excluded = append(cr.Excluded, cat)
			}
		}
	}
	var err error
	if cr.Width, err = intParam(q, "width"); err != nil {
		return ChartRequest{}, err
	}
	if cr.Height, err = intParam(q, "height"); err != nil {
		return ChartRequest{}, err
	}
	if cr.ZoomStart, err = dateParam(q, "zoom_start"); err != nil {
		return ChartRequest{}, err
	}
	if cr.ZoomEnd, err = dateParam(q, "zoom_end"); err != nil {
		return ChartRequest{}, err
	}
	if cr.SessionID == "" && cr.Dataset == "" {
		cr.Dataset = config.DefaultDataset
	}
	return cr, nil
}

func (s *Service) chartHandler(format render.Format) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, req *http.Request) {
		cr, err := chartRequestFromQuery(req.URL.Query(), format)
		if err != nil {
			http.Error(w, "Failed to parse chart request: "+err.Error(), http.StatusBadRequest)
			return
		}
		var buf bytes.Buffer
		if err := s.Render(req.Context(), &buf, cr); err != nil {
			if errors.Is(err, render.ErrNoData) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			http.Error(w, "Failed to render chart: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", format.ContentType())
		w.Write(buf.Bytes())
	}
}
