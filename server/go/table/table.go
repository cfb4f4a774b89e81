/*
	Copyright 2023 Google Inc.
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

// Package table builds tabular scenes.  A table is created in a dedicated
// DataBuilder, which must not be used for any other purpose:
//
//	t := table.New(db, renderSettings, stateCol, latestCol)
//	row := t.Row(table.Cell(stateCol, table.String("NY")))
//	row.AddCell(table.Cell(latestCol, table.Double(30)))
//
// Rows and cells may host payloads; see package payload.
//
// The structure of a table in a response is:
//
//	table
//	  properties
//	    * render settings
//	  children
//	    * header
//	    * repeated rows
//
//	header
//	  children
//	    * repeated column definitions (category definition, <decorators>)
//
//	row
//	  properties
//	    * <decorators>
//	  children
//	    * repeated cells and payloads
//
//	cell
//	  properties
//	    * column tag
//	    * cellKey: the cell's value, or
//	      formattedCellKey: a format string referencing cell properties
//	    * <decorators>
//	  children
//	    * repeated payloads
package table

import (
	"time"

	"github.com/ilhamster/covidviz/server/go/category"
	"github.com/ilhamster/covidviz/server/go/util"
)

const (
	cellKey          = "table_cell"
	formattedCellKey = "table_formatted_cell"

	rowHeightPxKey = "table_row_height_px"
	fontSizePxKey  = "table_font_size_px"
)

// Value produces a PropertyUpdate storing a value under a provided key.
type Value func(key string) util.PropertyUpdate

// String returns a string Value.
func String(s string) Value {
	return func(key string) util.PropertyUpdate {
		return util.StringProperty(key, s)
	}
}

// Integer returns an integer Value.
func Integer(i int64) Value {
	return func(key string) util.PropertyUpdate {
		return util.IntegerProperty(key, i)
	}
}

// Double returns a double Value.
func Double(f float64) Value {
	return func(key string) util.PropertyUpdate {
		return util.DoubleProperty(key, f)
	}
}

// Timestamp returns a timestamp Value.
func Timestamp(t time.Time) Value {
	return func(key string) util.PropertyUpdate {
		return util.TimestampProperty(key, t)
	}
}

// RenderSettings is a collection of rendering settings for tables.
type RenderSettings struct {
	// The height of a row in pixels.
	RowHeightPx int64
	// The table text font size in pixels.
	FontSizePx int64
}

func (rs *RenderSettings) define() util.PropertyUpdate {
	if rs == nil {
		return util.EmptyUpdate
	}
	return util.Chain(
		util.IntegerProperty(rowHeightPxKey, rs.RowHeightPx),
		util.IntegerProperty(fontSizePxKey, rs.FontSizePx),
	)
}

// ColumnUpdate is a table column: a category, giving the column's ID,
// display name and description, plus arbitrary column properties.
type ColumnUpdate struct {
	cat        *category.Category
	properties []util.PropertyUpdate
}

// Column returns a new column with the specified category and properties.
func Column(cat *category.Category, properties ...util.PropertyUpdate) *ColumnUpdate {
	return &ColumnUpdate{
		cat:        cat,
		properties: append(properties, cat.Define()),
	}
}

// With annotates the receiving column with the provided properties.
func (cu *ColumnUpdate) With(properties ...util.PropertyUpdate) *ColumnUpdate {
	cu.properties = append(cu.properties, properties...)
	return cu
}

func (cu *ColumnUpdate) define() util.PropertyUpdate {
	return util.Chain(cu.properties...)
}

// CellUpdate is a PropertyUpdate annotating a cell.
type CellUpdate util.PropertyUpdate

// Cell returns a CellUpdate placing a datum in the provided column and
// holding the provided value.  Any provided PropertyUpdates are also
// applied.
func Cell(column *ColumnUpdate, value Value, cellUpdates ...util.PropertyUpdate) CellUpdate {
	return CellUpdate(util.Chain(append(cellUpdates,
		column.cat.Tag(),
		value(cellKey),
	)...))
}

// FormattedCell returns a CellUpdate placing a datum in the provided column
// and holding a format string, such as one built with label.Ref, to be
// expanded against the cell's properties.  Any properties the format
// references should be among the provided PropertyUpdates.
func FormattedCell(column *ColumnUpdate, format string, cellUpdates ...util.PropertyUpdate) CellUpdate {
	return CellUpdate(util.Chain(append(cellUpdates,
		column.cat.Tag(),
		util.StringProperty(formattedCellKey, format),
	)...))
}

// Node is a table under construction.
type Node struct {
	db util.DataBuilder
}

// New defines a new table with the specified columns in the provided
// DataBuilder.
func New(db util.DataBuilder, renderSettings *RenderSettings, columns ...*ColumnUpdate) *Node {
	header := db.Child()
	for _, column := range columns {
		header.Child().With(column.define())
	}
	db.With(renderSettings.define())
	return &Node{db: db}
}

// With annotates the receiving table with the provided properties.
func (n *Node) With(properties ...util.PropertyUpdate) *Node {
	n.db.With(properties...)
	return n
}

// RowNode is a table row under construction.
type RowNode struct {
	db util.DataBuilder
}

// Row adds a row holding the provided cells to the receiver.  Cells added
// here cannot host payloads; use RowNode.AddCell for those.
func (n *Node) Row(cells ...CellUpdate) *RowNode {
	db := n.db.Child()
	for _, cell := range cells {
		db.Child().With(util.PropertyUpdate(cell))
	}
	return &RowNode{db: db}
}

// With annotates the receiving row with the provided properties.
func (rn *RowNode) With(properties ...util.PropertyUpdate) *RowNode {
	rn.db.With(properties...)
	return rn
}

// AddCell adds the provided cell to the receiving row.
func (rn *RowNode) AddCell(cellUpdate CellUpdate) *CellNode {
	return &CellNode{
		db: rn.db.Child().With(util.PropertyUpdate(cellUpdate)),
	}
}

// Payload implements payload.Payloader.
func (rn *RowNode) Payload() util.DataBuilder {
	return rn.db.Child()
}

// CellNode is a table cell to which payloads and properties may be attached.
type CellNode struct {
	db util.DataBuilder
}

// With annotates the receiving cell with the provided properties.
func (cn *CellNode) With(properties ...util.PropertyUpdate) *CellNode {
	cn.db.With(properties...)
	return cn
}

// Payload implements payload.Payloader.
func (cn *CellNode) Payload() util.DataBuilder {
	return cn.db.Child()
}
