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

package datasource

import (
	"context"
	"fmt"

	"github.com/ilhamster/covidviz/covidviz/analysis/extent"
	"github.com/ilhamster/covidviz/covidviz/analysis/series"
	"github.com/ilhamster/covidviz/covidviz/analysis/view"
	"github.com/ilhamster/covidviz/covidviz/app"
	"github.com/ilhamster/covidviz/covidviz/config"
	"github.com/ilhamster/covidviz/server/go/util"
)

// Global filter keys.
const (
	DatasetKey             = "dataset"
	SessionIDKey           = "session_id"
	ExcludedCategoriesKey  = "excluded_categories"
	HighlightedCategoryKey = "highlighted_category"
	ZoomStartTimestampKey  = "zoom_start_timestamp"
	ZoomEndTimestampKey    = "zoom_end_timestamp"
)

// queryFilters is the dataset and view state assembled by queryFilters
// once per DataRequest, prior to handling any individual DataSeriesRequest.
// Neither may be modified.
type queryFilters struct {
	sm   *series.Map
	view *view.State
}

// extentOptions returns the extent options restricting to the receiver's
// included categories and, if zoomed, to its zoom window.
func (qf *queryFilters) extentOptions() []extent.Option {
	opts := []extent.Option{extent.Including(qf.view.Included)}
	if zoom, ok := qf.view.Zoom(); ok {
		opts = append(opts, extent.Within(zoom.Start, zoom.End))
	}
	return opts
}

func (qf *queryFilters) points(s *series.Series) []series.Point {
	if zoom, ok := qf.view.Zoom(); ok {
		return s.Window(zoom.Start, zoom.End)
	}
	return s.Points()
}

func stringFilter(globalFilters map[string]*util.V, key, def string) (string, error) {
	v, ok := globalFilters[key]
	if !ok {
		return def, nil
	}
	ret, err := util.ExpectStringValue(v)
	if err != nil {
		return "", fmt.Errorf("filter option '%s' must be a string", key)
	}
	return ret, nil
}

// queryFilters returns the queryFilters for the provided global filters.
// A request naming a session reads the dataset and view state from that
// session, and ignores the view filters.
func (ds *DataSource) queryFilters(ctx context.Context, globalFilters map[string]*util.V) (*queryFilters, error) {
	sessionID, err := stringFilter(globalFilters, SessionIDKey, "")
	if err != nil {
		return nil, err
	}
	if sessionID != "" {
		return ds.sessionFilters(sessionID)
	}
	dataset, err := stringFilter(globalFilters, DatasetKey, config.DefaultDataset)
	if err != nil {
		return nil, err
	}
	sm, err := ds.Dataset(ctx, dataset)
	if err != nil {
		return nil, err
	}
	vs, err := viewFromGlobalFilters(sm, globalFilters)
	if err != nil {
		return nil, err
	}
	return &queryFilters{sm: sm, view: vs}, nil
}

func (ds *DataSource) sessionFilters(sessionID string) (*queryFilters, error) {
	if ds.sessions == nil {
		return nil, fmt.Errorf("sessions are not supported")
	}
	model, ok := ds.sessions.Session(sessionID)
	if !ok {
		return nil, fmt.Errorf("unknown session '%s'", sessionID)
	}
	switch state := model.State().(type) {
	case app.Loaded:
		return &queryFilters{sm: state.Series, view: state.View}, nil
	case app.Failed:
		return nil, fmt.Errorf("session '%s' failed to load: %w", sessionID, state.Err)
	}
	return nil, fmt.Errorf("session '%s': %w", sessionID, app.ErrNotLoaded)
}

// viewFromGlobalFilters returns a view state constructed from the provided
// global filters.  If only one end of the zoom window is provided, the other
// is taken from the dataset's extent.
func viewFromGlobalFilters(sm *series.Map, globalFilters map[string]*util.V) (*view.State, error) {
	vs := view.New()
	if v, ok := globalFilters[ExcludedCategoriesKey]; ok {
		excluded, err := util.ExpectStringsValue(v)
		if err != nil {
			return nil, fmt.Errorf("filter option '%s' must be strings", ExcludedCategoriesKey)
		}
		vs.Exclude(excluded...)
	}
	highlighted, err := stringFilter(globalFilters, HighlightedCategoryKey, "")
	if err != nil {
		return nil, err
	}
	if highlighted != "" {
		vs.Highlight(highlighted)
	}
	startV, hasStart := globalFilters[ZoomStartTimestampKey]
	endV, hasEnd := globalFilters[ZoomEndTimestampKey]
	if !hasStart && !hasEnd {
		return vs, nil
	}
	ext, ok := extent.Of(sm)
	if !ok {
		// There is nothing to zoom into.
		return vs, nil
	}
	start, end := ext.Min.X, ext.Max.X
	if hasStart {
		if start, err = util.ExpectTimestampValue(startV); err != nil {
			return nil, fmt.Errorf("filter option '%s' must be a timestamp", ZoomStartTimestampKey)
		}
	}
	if hasEnd {
		if end, err = util.ExpectTimestampValue(endV); err != nil {
			return nil, fmt.Errorf("filter option '%s' must be a timestamp", ZoomEndTimestampKey)
		}
	}
	vs.SetZoom(view.NewWindow(start, end))
	return vs, nil
}
