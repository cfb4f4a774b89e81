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
	"fmt"
	"sort"

	"github.com/ilhamster/covidviz/covidviz/analysis/epidemic"
	"github.com/ilhamster/covidviz/covidviz/analysis/extent"
	"github.com/ilhamster/covidviz/covidviz/analysis/selection"
	"github.com/ilhamster/covidviz/covidviz/analysis/series"
	barchart "github.com/ilhamster/covidviz/server/go/bar_chart"
	"github.com/ilhamster/covidviz/server/go/category"
	categoryaxis "github.com/ilhamster/covidviz/server/go/category_axis"
	"github.com/ilhamster/covidviz/server/go/color"
	continuousaxis "github.com/ilhamster/covidviz/server/go/continuous_axis"
	"github.com/ilhamster/covidviz/server/go/label"
	"github.com/ilhamster/covidviz/server/go/magnitude"
	"github.com/ilhamster/covidviz/server/go/payload"
	"github.com/ilhamster/covidviz/server/go/style"
	"github.com/ilhamster/covidviz/server/go/table"
	"github.com/ilhamster/covidviz/server/go/util"
	xychart "github.com/ilhamster/covidviz/server/go/xy_chart"
)

// Response property keys.
const (
	// NoDataKey marks a chart with nothing to plot.
	NoDataKey = "no_data"

	dateKey     = "date"
	positiveKey = "positive"
	stepKey     = "step"
	infectedKey = "infected"

	categoryCountKey   = "category_count"
	latestValueKey     = "latest_value"
	latestTimestampKey = "latest_timestamp"

	extentMinTimestampKey = "extent_min_timestamp"
	extentMaxTimestampKey = "extent_max_timestamp"
	extentMinValueKey     = "extent_min_value"
	extentMaxValueKey     = "extent_max_value"

	selectionStateKey = "selection_state"
	selectionFromKey  = "selection_from"
	selectionToKey    = "selection_to"
	selectionLeftKey  = "selection_left"
	selectionRightKey = "selection_right"
	zoomedKey         = "zoomed"

	sparklinePayload = "sparkline"
)

// Epidemic model option keys.
const (
	initialKey    = "initial"
	populationKey = "population"
	tauKey        = "tau"
	gammaKey      = "gamma"
	lambdaKey     = "lambda"
	stepsKey      = "steps"
)

var (
	dateCat     = category.New(dateKey, "Date", "The date the test results were checked")
	positiveCat = category.New(positiveKey, "Positive", "Cumulative positive test results")
	stepCat     = category.New(stepKey, "Step", "Model iteration")
	infectedCat = category.New(infectedKey, "Infected", "Modeled infected count")

	stateCol  = table.Column(category.New("state", "State", "The reporting state"))
	latestCol = table.Column(category.New("latest", "Latest", "Most recent cumulative positive results"))
	asOfCol   = table.Column(category.New("as_of", "As of", "When the latest results were checked"))
	changeCol = table.Column(category.New("change", "Change", "Change in positive results over the window"))

	palette = color.DefaultPalette()

	xAxisRenderSettings = continuousaxis.XAxisRenderSettings{
		LabelHeightPx:   20,
		MarkersHeightPx: 10,
	}
	yAxisRenderSettings = continuousaxis.YAxisRenderSettings{
		LabelWidthPx:   40,
		MarkersWidthPx: 10,
	}
	barRenderSettings = &barchart.RenderSettings{
		BarWidthCatPx:   16,
		BarPaddingCatPx: 2,
		CategoryAxisRenderSettings: &categoryaxis.RenderSettings{
			CategoryLabelValPx:    40,
			CategoryPaddingCatPx:  2,
			CategoryMinWidthCatPx: 16,
		},
		XAxisRenderSettings: xAxisRenderSettings,
	}
	tableRenderSettings = &table.RenderSettings{
		RowHeightPx: 20,
		FontSizePx:  14,
	}
)

func noData() util.PropertyUpdate {
	return util.BoolProperty(NoDataKey, true)
}

// categoryOf returns the Category for a dataset category.
func categoryOf(cat string) *category.Category {
	return category.New(cat, cat, fmt.Sprintf("Positive test results in %s", cat))
}

// seriesStyle returns the style of a series given the current highlight.
func seriesStyle(qf *queryFilters, cat string) util.PropertyUpdate {
	switch {
	case qf.view.Highlighted() == "":
		return style.Normal().Define()
	case qf.view.IsHighlighted(cat):
		return style.Highlighted().Define()
	}
	return style.Dimmed().Define()
}

// decorate returns the decorations shared by a category's representations
// across charts.
func decorate(qf *queryFilters, cat string) util.PropertyUpdate {
	return util.Chain(
		color.Primary(palette.ForID(cat)),
		category.Visibility(qf.view.IsExcluded(cat), qf.view.IsHighlighted(cat)),
		seriesStyle(qf, cat),
	)
}

func chartType(reqOpts map[string]*util.V) (xychart.ChartType, error) {
	v, ok := reqOpts[xychart.ChartTypeKey]
	if !ok {
		return xychart.Line, nil
	}
	s, err := util.ExpectStringValue(v)
	if err != nil {
		return "", fmt.Errorf("option '%s' must be a string", xychart.ChartTypeKey)
	}
	return xychart.ParseChartType(s)
}

// handleTimeseriesQuery builds an xy chart with one series per included
// category, in dataset order, restricted to the zoom window.
func handleTimeseriesQuery(qf *queryFilters, db util.DataBuilder, reqOpts map[string]*util.V) error {
	ct, err := chartType(reqOpts)
	if err != nil {
		return err
	}
	ext, ok := extent.Of(qf.sm, qf.extentOptions()...)
	if !ok {
		db.With(noData(), xychart.Type(ct))
		return nil
	}
	xMin, xMax := ext.Min.X, ext.Max.X
	if zoom, ok := qf.view.Zoom(); ok {
		xMin, xMax = zoom.Start, zoom.End
	}
	chart := xychart.New(db,
		continuousaxis.NewTimestampAxis(dateCat, xMin, xMax),
		continuousaxis.NewDoubleAxis(positiveCat, ext.Min.Y, ext.Max.Y),
		xychart.Type(ct),
		xAxisRenderSettings.Apply(),
		yAxisRenderSettings.Apply(),
	)
	for _, s := range qf.sm.All() {
		if !qf.view.Included(s.Category()) {
			continue
		}
		xys := chart.AddSeries(categoryOf(s.Category()),
			decorate(qf, s.Category()),
			label.Tooltip(fmt.Sprintf("%s: %s", label.Ref("category_display_name"), label.Ref(positiveKey))),
		)
		for _, p := range qf.points(s) {
			xys.WithPoint(p.Timestamp, p.Value)
		}
	}
	return nil
}

type latest struct {
	cat   string
	point series.Point
}

// handleLatestBarsQuery builds a bar chart of each included category's
// latest value within the zoom window, biggest first.
func handleLatestBarsQuery(qf *queryFilters, db util.DataBuilder, reqOpts map[string]*util.V) error {
	latests := []latest{}
	for _, s := range qf.sm.All() {
		if !qf.view.Included(s.Category()) {
			continue
		}
		pts := qf.points(s)
		if len(pts) == 0 {
			continue
		}
		latests = append(latests, latest{s.Category(), pts[len(pts)-1]})
	}
	if len(latests) == 0 {
		db.With(noData())
		return nil
	}
	sort.SliceStable(latests, func(a, b int) bool {
		if latests[a].point.Value != latests[b].point.Value {
			return latests[a].point.Value > latests[b].point.Value
		}
		return latests[a].cat < latests[b].cat
	})
	extents := []float64{0}
	for _, l := range latests {
		extents = append(extents, l.point.Value)
	}
	bc := barchart.New(db, continuousaxis.NewDoubleAxis(positiveCat, extents...), barRenderSettings)
	for _, l := range latests {
		bc.Category(categoryOf(l.cat), decorate(qf, l.cat)).
			Bar(0, l.point.Value).
			With(
				util.TimestampProperty(latestTimestampKey, l.point.Timestamp),
				label.Tooltip(fmt.Sprintf("%s: %s", label.Ref("category_display_name"), label.Ref(barchart.BarUpperExtentKey))),
			)
	}
	return nil
}

// handleLegendQuery lists every category, included or not, in dataset
// order.
func handleLegendQuery(qf *queryFilters, db util.DataBuilder, reqOpts map[string]*util.V) error {
	db.With(util.IntegerProperty(categoryCountKey, int64(qf.sm.Len())))
	for _, s := range qf.sm.All() {
		cat := s.Category()
		entry := db.Child().With(
			categoryOf(cat).Define(),
			decorate(qf, cat),
		)
		if p, ok := s.Latest(); ok {
			entry.With(
				util.DoubleProperty(latestValueKey, p.Value),
				util.TimestampProperty(latestTimestampKey, p.Timestamp),
			)
		}
	}
	return nil
}

// handleSummaryTableQuery builds a table with a row per category having
// points within the zoom window, in dataset order: its latest value and
// when it was checked, and its change across the window.  Each row carries
// a sparkline payload of the category's points within the window.
func handleSummaryTableQuery(qf *queryFilters, db util.DataBuilder, reqOpts map[string]*util.V) error {
	t := table.New(db, tableRenderSettings, stateCol, latestCol, asOfCol, changeCol)
	rows := 0
	for _, s := range qf.sm.All() {
		cat := s.Category()
		pts := qf.points(s)
		if len(pts) == 0 {
			continue
		}
		rows++
		first, last := pts[0], pts[len(pts)-1]
		row := t.Row(
			table.Cell(stateCol, table.String(cat)),
			table.Cell(latestCol, table.Double(last.Value), magnitude.Magnitude(last.Value)),
			table.Cell(asOfCol, table.Timestamp(last.Timestamp)),
			table.Cell(changeCol, table.Double(last.Value-first.Value)),
		).With(
			categoryOf(cat).Define(),
			decorate(qf, cat),
		)
		spark := payload.New(row, sparklinePayload)
		for _, p := range pts {
			spark.Child().With(
				util.TimestampProperty(dateKey, p.Timestamp),
				util.DoubleProperty(positiveKey, p.Value),
			)
		}
	}
	t.With(util.If(rows == 0, noData()))
	return nil
}

// handleExtentQuery reports the extent of the included categories within
// the zoom window.
func handleExtentQuery(qf *queryFilters, db util.DataBuilder, reqOpts map[string]*util.V) error {
	ext, ok := extent.Of(qf.sm, qf.extentOptions()...)
	db.With(util.IfElse(ok,
		util.Chain(
			util.TimestampProperty(extentMinTimestampKey, ext.Min.X),
			util.TimestampProperty(extentMaxTimestampKey, ext.Max.X),
			util.DoubleProperty(extentMinValueKey, ext.Min.Y),
			util.DoubleProperty(extentMaxValueKey, ext.Max.Y),
		),
		noData(),
	))
	return nil
}

// handleSelectionQuery reports the selection gesture and zoom window.
func handleSelectionQuery(qf *queryFilters, db util.DataBuilder, reqOpts map[string]*util.V) error {
	sel := qf.view.Selection().State()
	db.With(util.StringProperty(selectionStateKey, sel.Kind.String()))
	switch sel.Kind {
	case selection.Selecting:
		db.With(util.DoubleProperty(selectionFromKey, *sel.From))
		if sel.To != nil {
			db.With(util.DoubleProperty(selectionToKey, *sel.To))
		}
	case selection.Selected:
		db.With(
			util.DoubleProperty(selectionLeftKey, sel.Left),
			util.DoubleProperty(selectionRightKey, sel.Right),
		)
	}
	zoom, zoomed := qf.view.Zoom()
	db.With(
		util.BoolProperty(zoomedKey, zoomed),
		util.If(zoomed, util.Chain(
			util.TimestampProperty(ZoomStartTimestampKey, zoom.Start),
			util.TimestampProperty(ZoomEndTimestampKey, zoom.End),
		)),
	)
	return nil
}

func doubleOption(reqOpts map[string]*util.V, key string, def float64) (float64, error) {
	v, ok := reqOpts[key]
	if !ok {
		return def, nil
	}
	ret, err := util.ExpectDoubleValue(v)
	if err != nil {
		return 0, fmt.Errorf("option '%s' must be a number", key)
	}
	return ret, nil
}

// epidemicParams returns the model parameters in the provided options,
// defaulting any that are absent.
func epidemicParams(reqOpts map[string]*util.V) (epidemic.Params, error) {
	p := epidemic.DefaultParams()
	var err error
	for _, opt := range []struct {
		key string
		v   *float64
	}{
		{initialKey, &p.Initial},
		{populationKey, &p.Population},
		{tauKey, &p.Tau},
		{gammaKey, &p.Gamma},
		{lambdaKey, &p.Lambda},
	} {
		if *opt.v, err = doubleOption(reqOpts, opt.key, *opt.v); err != nil {
			return p, err
		}
	}
	if v, ok := reqOpts[stepsKey]; ok {
		steps, err := util.ExpectIntegerValue(v)
		if err != nil {
			return p, fmt.Errorf("option '%s' must be an integer", stepsKey)
		}
		p.Steps = int(steps)
	}
	return p, p.Validate()
}

// handleEpidemicModelQuery builds an xy chart of the modeled infected count
// at each step.
func handleEpidemicModelQuery(db util.DataBuilder, reqOpts map[string]*util.V) error {
	p, err := epidemicParams(reqOpts)
	if err != nil {
		return err
	}
	infected, err := p.Run()
	if err != nil {
		return err
	}
	chart := xychart.New(db,
		continuousaxis.NewDoubleAxis(stepCat, 0, float64(len(infected)-1)),
		continuousaxis.NewDoubleAxis(infectedCat, infected...),
		xychart.Type(xychart.Line),
		xAxisRenderSettings.Apply(),
		yAxisRenderSettings.Apply(),
	)
	s := chart.AddSeries(infectedCat, color.Primary(palette.At(0)))
	for step, i := range infected {
		s.WithPoint(float64(step), i)
	}
	return nil
}
