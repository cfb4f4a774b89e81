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

package util

import (
	"errors"
	"sync"
	"time"
)

// stringTable interns strings to dense indices.  It is thread-safe.
type stringTable struct {
	mu      sync.RWMutex
	indices map[string]int64
	strs    []string
}

func newStringTable() *stringTable {
	return &stringTable{
		indices: map[string]int64{},
	}
}

// index returns the index of str, interning it if necessary.
func (st *stringTable) index(str string) int64 {
	st.mu.RLock()
	idx, ok := st.indices[str]
	st.mu.RUnlock()
	if ok {
		return idx
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	// Another writer may have interned str between the two locks.
	if idx, ok := st.indices[str]; ok {
		return idx
	}
	idx = int64(len(st.strs))
	st.strs = append(st.strs, str)
	st.indices[str] = idx
	return idx
}

func (st *stringTable) snapshot() []string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return append([]string{}, st.strs...)
}

// errorSink collects the first error raised anywhere in a response.
type errorSink struct {
	mu  sync.Mutex
	err error
}

func (es *errorSink) add(err error) {
	es.mu.Lock()
	defer es.mu.Unlock()
	es.err = errors.Join(es.err, err)
}

func (es *errorSink) failed() bool {
	es.mu.Lock()
	defer es.mu.Unlock()
	return es.err != nil
}

func (es *errorSink) get() error {
	es.mu.Lock()
	defer es.mu.Unlock()
	return es.err
}

// DataResponseBuilder assembles the response to a DataRequest.
type DataResponseBuilder struct {
	st   *stringTable
	errs *errorSink
	mu   sync.Mutex
	d    *Data
}

// NewDataResponseBuilder returns a new, empty DataResponseBuilder.
func NewDataResponseBuilder() *DataResponseBuilder {
	return &DataResponseBuilder{
		st:   newStringTable(),
		errs: &errorSink{},
		d: &Data{
			StringTable: []string{},
			DataSeries:  []*DataSeries{},
		},
	}
}

// DataBuilder is implemented by types that can assemble scene nodes.
type DataBuilder interface {
	With(updates ...PropertyUpdate) DataBuilder
	Child() DataBuilder
}

// DataSeries returns a new DataBuilder for the response to the provided
// DataSeriesRequest.  DataSeries is safe for concurrent use.
func (drb *DataResponseBuilder) DataSeries(req *DataSeriesRequest) DataBuilder {
	db := newDatumBuilder(drb.errs, drb.st)
	drb.mu.Lock()
	drb.d.DataSeries = append(drb.d.DataSeries, &DataSeries{
		SeriesName: req.SeriesName,
		Root:       db.d,
	})
	drb.mu.Unlock()
	return db
}

// Data completes and returns the Data under construction, or the error
// raised while building it.
func (drb *DataResponseBuilder) Data() (*Data, error) {
	if err := drb.errs.get(); err != nil {
		return nil, err
	}
	drb.d.StringTable = drb.st.snapshot()
	return drb.d, nil
}

// PropertyUpdate is a function that updates a provided datumBuilder.  A nil
// PropertyUpdate does nothing.
type PropertyUpdate func(db *datumBuilder) error

// EmptyUpdate is a PropertyUpdate that does nothing.
var EmptyUpdate PropertyUpdate = nil

// datumBuilder assembles a single Datum.
type datumBuilder struct {
	errs *errorSink
	st   *stringTable
	d    *Datum
}

func newDatumBuilder(errs *errorSink, st *stringTable) *datumBuilder {
	return &datumBuilder{
		errs: errs,
		st:   st,
		d: &Datum{
			Properties: map[int64]*V{},
			Children:   []*Datum{},
		},
	}
}

// With applies the provided PropertyUpdates to the receiver in order.  Once
// any update has failed, further updates are ignored.
func (db *datumBuilder) With(updates ...PropertyUpdate) DataBuilder {
	if db.errs.failed() {
		return db
	}
	for _, update := range updates {
		if update == nil {
			continue
		}
		if err := update(db); err != nil {
			db.errs.add(err)
			break
		}
	}
	return db
}

// Child appends a new child Datum to the receiver and returns its builder.
func (db *datumBuilder) Child() DataBuilder {
	child := newDatumBuilder(db.errs, db.st)
	db.d.Children = append(db.d.Children, child.d)
	return child
}

func (db *datumBuilder) set(key string, v *V) {
	db.d.Properties[db.st.index(key)] = v
}

func (db *datumBuilder) get(key string) (*V, bool) {
	v, ok := db.d.Properties[db.st.index(key)]
	return v, ok
}

// If applies the provided PropertyUpdate if the predicate is true.
func If(predicate bool, update PropertyUpdate) PropertyUpdate {
	if predicate {
		return update
	}
	return EmptyUpdate
}

// IfElse applies t if the predicate is true, and f otherwise.
func IfElse(predicate bool, t, f PropertyUpdate) PropertyUpdate {
	if predicate {
		return t
	}
	return f
}

// Chain applies the provided PropertyUpdates in order.
func Chain(updates ...PropertyUpdate) PropertyUpdate {
	return func(db *datumBuilder) error {
		for _, update := range updates {
			if update == nil {
				continue
			}
			if err := update(db); err != nil {
				return err
			}
		}
		return nil
	}
}

// ErrorProperty fails the response under construction with err.
func ErrorProperty(err error) PropertyUpdate {
	return func(db *datumBuilder) error {
		return err
	}
}

// StringProperty sets a string property.  Strings are interned into the
// response's string table.
func StringProperty(key, value string) PropertyUpdate {
	return func(db *datumBuilder) error {
		db.set(key, StringIndexValue(db.st.index(value)))
		return nil
	}
}

// StringsProperty sets a string-slice property.
func StringsProperty(key string, values ...string) PropertyUpdate {
	return func(db *datumBuilder) error {
		idxs := make([]int64, len(values))
		for i, value := range values {
			idxs[i] = db.st.index(value)
		}
		db.set(key, StringIndicesValue(idxs...))
		return nil
	}
}

// StringsPropertyExtended appends to a string-slice property, creating it if
// necessary.
func StringsPropertyExtended(key string, values ...string) PropertyUpdate {
	return func(db *datumBuilder) error {
		existing, ok := db.get(key)
		if !ok {
			return StringsProperty(key, values...)(db)
		}
		if existing.T != StringIndicesValueType {
			return errors.New("cannot extend non-strings property '" + key + "'")
		}
		idxs := append([]int64{}, existing.V.([]int64)...)
		for _, value := range values {
			idxs = append(idxs, db.st.index(value))
		}
		db.set(key, StringIndicesValue(idxs...))
		return nil
	}
}

// IntegerProperty sets an integer property.
func IntegerProperty(key string, value int64) PropertyUpdate {
	return func(db *datumBuilder) error {
		db.set(key, IntegerValue(value))
		return nil
	}
}

// DoubleProperty sets a double property.
func DoubleProperty(key string, value float64) PropertyUpdate {
	return func(db *datumBuilder) error {
		db.set(key, DoubleValue(value))
		return nil
	}
}

// BoolProperty sets a boolean property.
func BoolProperty(key string, value bool) PropertyUpdate {
	return func(db *datumBuilder) error {
		db.set(key, BoolValue(value))
		return nil
	}
}

// TimestampProperty sets a timestamp property.
func TimestampProperty(key string, value time.Time) PropertyUpdate {
	return func(db *datumBuilder) error {
		db.set(key, TimestampValue(value))
		return nil
	}
}
