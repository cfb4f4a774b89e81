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

// Package render draws built chart scenes as SVG or PNG images.  It reads
// only the scene wire format, so any xy chart or bar chart scene may be
// rendered.
package render

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	barchart "github.com/ilhamster/covidviz/server/go/bar_chart"
	"github.com/ilhamster/covidviz/server/go/color"
	"github.com/ilhamster/covidviz/server/go/style"
	"github.com/ilhamster/covidviz/server/go/util"
	xychart "github.com/ilhamster/covidviz/server/go/xy_chart"
)

// ErrNoData is returned when asked to render a scene with nothing to plot.
var ErrNoData = errors.New("no data to render")

const (
	noDataKey              = "no_data"
	axisTypeKey            = "axis_type"
	axisMinKey             = "axis_min"
	axisMaxKey             = "axis_max"
	categoryDefinedIDKey   = "category_defined_id"
	categoryDisplayNameKey = "category_display_name"

	timestampAxisType = "timestamp"

	dateFormat = "2006-01-02"
)

// Format is an image format.
type Format string

// Supported formats.
const (
	SVG Format = "svg"
	PNG Format = "png"
)

// ParseFormat returns the Format named by s.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case SVG:
		return SVG, nil
	case PNG:
		return PNG, nil
	}
	return "", fmt.Errorf("unsupported image format '%s'", s)
}

// ContentType returns the MIME type of images in the receiving Format.
func (f Format) ContentType() string {
	if f == PNG {
		return "image/png"
	}
	return "image/svg+xml"
}

func (f Format) provider() chart.RendererProvider {
	if f == PNG {
		return chart.PNG
	}
	return chart.SVG
}

// Options configures a rendering.
type Options struct {
	Format        Format
	Width, Height int
	Title         string
}

// datum wraps a scene Datum with its response's string table.
type datum struct {
	d  *util.Datum
	st []string
}

func (d datum) prop(key string) (*util.V, bool) {
	return d.d.Property(d.st, key)
}

func (d datum) str(key string) string {
	v, ok := d.prop(key)
	if !ok {
		return ""
	}
	s, err := util.ExpectStringValue(v)
	if err != nil {
		return ""
	}
	return s
}

func (d datum) child(idx int) datum {
	return datum{d: d.d.Children[idx], st: d.st}
}

// Scene renders the named series of the provided response.
func Scene(w io.Writer, data *util.Data, seriesName string, opts Options) error {
	ds, ok := data.Series(seriesName)
	if !ok {
		return fmt.Errorf("response has no series '%s'", seriesName)
	}
	return Datum(w, ds.Root, data.StringTable, opts)
}

// Datum renders the provided chart root, a built xy chart or bar chart.
func Datum(w io.Writer, root *util.Datum, st []string, opts Options) error {
	d := datum{d: root, st: st}
	if v, ok := d.prop(noDataKey); ok {
		if noData, err := util.ExpectBoolValue(v); err == nil && noData {
			return ErrNoData
		}
	}
	if _, ok := d.prop(xychart.ChartTypeKey); ok {
		return renderXYChart(w, d, opts)
	}
	if _, ok := d.prop(axisTypeKey); ok {
		return renderBarChart(w, d, opts)
	}
	return errors.New("scene is neither an xy chart nor a bar chart")
}

// axis is a decoded continuous axis definition.
type axis struct {
	id, name   string
	timestamps bool
	min, max   float64
}

func asFloat(v *util.V) (float64, error) {
	if ts, err := util.ExpectTimestampValue(v); err == nil {
		return chart.TimeToFloat64(ts), nil
	}
	return util.ExpectDoubleValue(v)
}

func decodeAxis(d datum) (*axis, error) {
	a := &axis{
		id:         d.str(categoryDefinedIDKey),
		name:       d.str(categoryDisplayNameKey),
		timestamps: d.str(axisTypeKey) == timestampAxisType,
	}
	minV, okMin := d.prop(axisMinKey)
	maxV, okMax := d.prop(axisMaxKey)
	if !okMin || !okMax {
		return nil, fmt.Errorf("axis '%s' has no extent", a.id)
	}
	var err error
	if a.min, err = asFloat(minV); err != nil {
		return nil, err
	}
	if a.max, err = asFloat(maxV); err != nil {
		return nil, err
	}
	return a, nil
}

// rng returns the receiver's extent as a chart range.  A zero-width extent
// is widened, since go-chart cannot draw one.
func (a *axis) rng() *chart.ContinuousRange {
	lo, hi := a.min, a.max
	if lo == hi {
		pad := math.Max(math.Abs(lo)*.05, 1)
		if a.timestamps {
			pad = float64(12 * time.Hour)
		}
		lo, hi = lo-pad, hi+pad
	}
	return &chart.ContinuousRange{Min: lo, Max: hi}
}

func (a *axis) formatter() chart.ValueFormatter {
	if !a.timestamps {
		return nil
	}
	return func(v interface{}) string {
		switch t := v.(type) {
		case time.Time:
			return t.UTC().Format(dateFormat)
		case float64:
			return time.Unix(0, int64(t)).UTC().Format(dateFormat)
		}
		return ""
	}
}

// parseColor parses a '#rrggbb' or '#rgb' color, falling back to black.
func parseColor(s string) drawing.Color {
	if hex := strings.TrimPrefix(s, "#"); len(hex) == 6 || len(hex) == 3 {
		return drawing.ColorFromHex(hex)
	}
	return drawing.ColorBlack
}

// seriesStyle returns the chart style of a series or bar datum.
func seriesStyle(d datum, area bool) chart.Style {
	col := parseColor(d.str(color.PrimaryColorKey))
	opacity := 1.0
	if v, err := strconv.ParseFloat(d.str(style.Key(style.Opacity)), 64); err == nil {
		opacity = v
	}
	width := 1.5
	if v, err := strconv.ParseFloat(strings.TrimSuffix(d.str(style.Key(style.StrokeWidth)), "px"), 64); err == nil {
		width = v
	}
	ret := chart.Style{
		StrokeColor: col.WithAlpha(uint8(255 * opacity)),
		StrokeWidth: width,
	}
	if area {
		ret.FillColor = col.WithAlpha(uint8(64 * opacity))
	}
	return ret
}

func renderXYChart(w io.Writer, d datum, opts Options) error {
	if len(d.d.Children) == 0 || len(d.child(0).d.Children) != 2 {
		return errors.New("xy chart has no axes")
	}
	axes := d.child(0)
	xAxis, err := decodeAxis(axes.child(0))
	if err != nil {
		return err
	}
	yAxis, err := decodeAxis(axes.child(1))
	if err != nil {
		return err
	}
	area := d.str(xychart.ChartTypeKey) == string(xychart.Area)
	var series []chart.Series
	for idx := 1; idx < len(d.d.Children); idx++ {
		sd := d.child(idx)
		var xs, ys []float64
		var ts []time.Time
		for pidx := range sd.d.Children {
			pd := sd.child(pidx)
			xv, okX := pd.prop(xAxis.id)
			yv, okY := pd.prop(yAxis.id)
			if !okX || !okY {
				continue
			}
			y, err := util.ExpectDoubleValue(yv)
			if err != nil {
				return err
			}
			if xAxis.timestamps {
				t, err := util.ExpectTimestampValue(xv)
				if err != nil {
					return err
				}
				ts = append(ts, t)
			} else {
				x, err := util.ExpectDoubleValue(xv)
				if err != nil {
					return err
				}
				xs = append(xs, x)
			}
			ys = append(ys, y)
		}
		if len(ys) == 0 {
			// go-chart rejects empty series.
			continue
		}
		name := sd.str(categoryDisplayNameKey)
		st := seriesStyle(sd, area)
		if xAxis.timestamps {
			series = append(series, chart.TimeSeries{Name: name, XValues: ts, YValues: ys, Style: st})
		} else {
			series = append(series, chart.ContinuousSeries{Name: name, XValues: xs, YValues: ys, Style: st})
		}
	}
	if len(series) == 0 {
		return ErrNoData
	}
	ch := chart.Chart{
		Title:      opts.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: chart.Style{Padding: chart.Box{Top: 20, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:           xAxis.name,
			Range:          xAxis.rng(),
			ValueFormatter: xAxis.formatter(),
		},
		YAxis: chart.YAxis{
			Name:  yAxis.name,
			Range: yAxis.rng(),
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch.Render(opts.Format.provider(), w)
}

func renderBarChart(w io.Writer, d datum, opts Options) error {
	valueAxis, err := decodeAxis(d)
	if err != nil {
		return err
	}
	var bars []chart.Value
	for cidx := range d.d.Children {
		cd := d.child(cidx)
		for bidx := range cd.d.Children {
			bd := cd.child(bidx)
			if bd.str(barchart.DataTypeKey) != barchart.BarType {
				continue
			}
			uv, ok := bd.prop(barchart.BarUpperExtentKey)
			if !ok {
				continue
			}
			upper, err := util.ExpectDoubleValue(uv)
			if err != nil {
				return err
			}
			st := seriesStyle(cd, false)
			st.FillColor = st.StrokeColor
			bars = append(bars, chart.Value{
				Label: cd.str(categoryDisplayNameKey),
				Value: upper,
				Style: st,
			})
		}
	}
	if len(bars) == 0 {
		return ErrNoData
	}
	bc := chart.BarChart{
		Title:    opts.Title,
		Width:    opts.Width,
		Height:   opts.Height,
		BarWidth: max(opts.Width/(2*len(bars)), 1),
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		YAxis: chart.YAxis{
			Name:  valueAxis.name,
			Range: valueAxis.rng(),
		},
		Bars: bars,
	}
	return bc.Render(opts.Format.provider(), w)
}
