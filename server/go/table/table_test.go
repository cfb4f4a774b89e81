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

package table

import (
	"testing"
	"time"

	"github.com/ilhamster/covidviz/server/go/category"
	"github.com/ilhamster/covidviz/server/go/payload"
	testutil "github.com/ilhamster/covidviz/server/go/test_util"
	"github.com/ilhamster/covidviz/server/go/util"
)

var (
	stateCol  = Column(category.New("state", "State", "The reporting state"))
	latestCol = Column(category.New("latest", "Latest", "Most recent positive results"))
	asOfCol   = Column(category.New("as_of", "As of", "When the latest results were checked"))

	sortableLatestCol = Column(category.New("latest", "Latest", "Most recent positive results")).With(
		util.StringProperty("sort_by", "latest"),
		util.StringProperty("sort_direction", "descending"),
	)

	renderSettings = &RenderSettings{
		RowHeightPx: 20,
		FontSizePx:  14,
	}

	march1 = time.Date(2020, time.March, 1, 20, 0, 0, 0, time.UTC)
)

func TestTables(t *testing.T) {
	for _, test := range []struct {
		description   string
		buildTabular  func(db util.DataBuilder)
		buildExplicit func(db testutil.TestDataBuilder)
	}{{
		description: "simple columns",
		buildTabular: func(db util.DataBuilder) {
			New(db, renderSettings, stateCol, latestCol, asOfCol).Row(
				Cell(stateCol, String("NY")),
				Cell(latestCol, Double(30)),
				Cell(asOfCol, Timestamp(march1)),
			)
		},
		buildExplicit: func(db testutil.TestDataBuilder) {
			db.With(
				util.IntegerProperty(rowHeightPxKey, 20),
				util.IntegerProperty(fontSizePxKey, 14),
			).Child(). // column definitions
					Child().With(stateCol.cat.Define()).
					AndChild().With(latestCol.cat.Define()).
					AndChild().With(asOfCol.cat.Define()).
					Parent().Parent(). // back to table root
					Child().           // row 0
					Child().With(      // row 0 cell 0
				stateCol.cat.Tag(),
				util.StringProperty(cellKey, "NY"),
			).AndChild().With( // row 0 cell 1
				latestCol.cat.Tag(),
				util.DoubleProperty(cellKey, 30),
			).AndChild().With( // row 0 cell 2
				asOfCol.cat.Tag(),
				util.TimestampProperty(cellKey, march1),
			)
		},
	}, {
		description: "formatted cell, decorated table, column and row",
		buildTabular: func(db util.DataBuilder) {
			New(db, renderSettings, sortableLatestCol).With(
				util.StringProperty("table_title", "Latest results"),
			).Row(
				FormattedCell(sortableLatestCol,
					"$(positive) in $(state)",
					util.DoubleProperty("positive", 30),
					util.StringProperty("state", "NY"),
				),
			).With(
				util.StringProperty("hover_text", "New York"),
			)
		},
		buildExplicit: func(db testutil.TestDataBuilder) {
			db.With(
				util.StringProperty("table_title", "Latest results"),
				util.IntegerProperty(rowHeightPxKey, 20),
				util.IntegerProperty(fontSizePxKey, 14),
			).Child(). // column definitions
					Child().With(
				latestCol.cat.Define(),
				util.StringProperty("sort_by", "latest"),
				util.StringProperty("sort_direction", "descending"),
			).
				Parent().Parent(). // back to table root
				Child().With(      // row 0
				util.StringProperty("hover_text", "New York"),
			).
				Child().With( // row 0 cell 0
				latestCol.cat.Tag(),
				util.StringProperty(formattedCellKey, "$(positive) in $(state)"),
				util.DoubleProperty("positive", 30),
				util.StringProperty("state", "NY"),
			)
		},
	}, {
		description: "payloads",
		buildTabular: func(db util.DataBuilder) {
			table := New(db, nil, stateCol)
			row := table.Row()
			payload.New(row.AddCell(Cell(stateCol, String("NJ"))), "flag").With(
				util.StringProperty("flag_url", "nj.svg"),
			)
			payload.New(row, "sparkline").With(
				util.IntegerProperty("points", 2),
			)
		},
		buildExplicit: func(db testutil.TestDataBuilder) {
			db.Child(). // column definitions
					Child().With(stateCol.cat.Define())
			row := db.Child() // row 0
			row.Child().With( // row 0 cell 0
				stateCol.cat.Tag(),
				util.StringProperty(cellKey, "NJ"),
			).Child().With( // row 0 cell 0 payload
				util.StringProperty(payload.TypeKey, "flag"),
				util.StringProperty("flag_url", "nj.svg"),
			)
			row.Child().With( // row 0 payload
				util.StringProperty(payload.TypeKey, "sparkline"),
				util.IntegerProperty("points", 2),
			)
		},
	}} {
		t.Run(test.description, func(t *testing.T) {
			if err := testutil.CompareResponses(t, test.buildTabular, test.buildExplicit); err != nil {
				t.Fatalf("encountered unexpected error building the table: %s", err)
			}
		})
	}
}
