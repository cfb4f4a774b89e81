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

// Package util defines the scene wire format shared by covidviz data sources
// and the charting frontend:
//
// V, a typed value, with {type}Value constructors (type={String, Strings,
// Integer, Double, Bool, Timestamp}) and Expect{type}Value accessors that
// return an error on a type mismatch;
//
// Datum, a node of a declarative scene: a property map plus ordered
// children;
//
// DataRequest and DataSeriesRequest, the queries a frontend sends;
//
// DataResponseBuilder and DataBuilder, for assembling responses.
package util

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type valueType int

// Enumerated value types.  The numbering is part of the wire format.
const (
	unsetValue valueType = iota
	StringValueType
	StringIndexValueType
	StringsValueType
	StringIndicesValueType
	IntegerValueType
	DoubleValueType
	BoolValueType
	TimestampValueType
)

// V represents a value in a scene request or response.
type V struct {
	V any
	T valueType
}

type timestamp struct {
	UnixSeconds int64
	UnixNanos   int64
}

func (ts timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int64{ts.UnixSeconds, ts.UnixNanos})
}

func (ts timestamp) time() time.Time {
	return time.Unix(ts.UnixSeconds, ts.UnixNanos).UTC()
}

// MarshalJSON encodes a V as the two-element array [type, payload]:
//
//	type V = [number,
//	  null     |                      ; if unset
//	  string   |                      ; if string
//	  number   |                      ; if integer, string index, or double
//	  boolean  |                      ; if bool
//	  string[] |                      ; if strings
//	  number[] |                      ; if string indices
//	  [number, number]                ; if timestamp ([secs, nanos] from epoch)
//	]
//
// Non-finite doubles have no JSON form and are sent as null.
func (v *V) MarshalJSON() ([]byte, error) {
	payload := v.V
	if f, ok := payload.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
		payload = nil
	}
	return json.Marshal([2]any{v.T, payload})
}

func asInt64(x any) (int64, error) {
	n, ok := x.(json.Number)
	if !ok {
		return 0, fmt.Errorf("expected a number, got %T", x)
	}
	return n.Int64()
}

func (v *V) fromAny(got []any) error {
	if len(got) != 2 {
		return fmt.Errorf("value must have two elements, got %d", len(got))
	}
	t, err := asInt64(got[0])
	if err != nil {
		return err
	}
	v.T = valueType(t)
	payload := got[1]
	switch v.T {
	case unsetValue:
		v.V = nil
	case StringValueType:
		s, ok := payload.(string)
		if !ok {
			return fmt.Errorf("string value payload must be a string")
		}
		v.V = s
	case StringIndexValueType, IntegerValueType:
		if v.V, err = asInt64(payload); err != nil {
			return err
		}
	case StringsValueType:
		items, ok := payload.([]any)
		if !ok {
			return fmt.Errorf("strings value payload must be an array")
		}
		strs := make([]string, 0, len(items))
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("strings value must contain only strings")
			}
			unescaped, err := url.QueryUnescape(s)
			if err != nil {
				return err
			}
			strs = append(strs, unescaped)
		}
		v.V = strs
	case StringIndicesValueType:
		items, ok := payload.([]any)
		if !ok {
			return fmt.Errorf("string indices value payload must be an array")
		}
		idxs := make([]int64, len(items))
		for i, item := range items {
			if idxs[i], err = asInt64(item); err != nil {
				return err
			}
		}
		v.V = idxs
	case DoubleValueType:
		if payload == nil {
			v.V = math.NaN()
			return nil
		}
		n, ok := payload.(json.Number)
		if !ok {
			return fmt.Errorf("double value payload must be a number")
		}
		if v.V, err = n.Float64(); err != nil {
			return err
		}
	case BoolValueType:
		b, ok := payload.(bool)
		if !ok {
			return fmt.Errorf("bool value payload must be a boolean")
		}
		v.V = b
	case TimestampValueType:
		parts, ok := payload.([]any)
		if !ok || len(parts) != 2 {
			return fmt.Errorf("timestamp value is improperly formed")
		}
		secs, err := asInt64(parts[0])
		if err != nil {
			return err
		}
		nanos, err := asInt64(parts[1])
		if err != nil {
			return err
		}
		v.V = timestamp{UnixSeconds: secs, UnixNanos: nanos}
	default:
		return fmt.Errorf("unknown value type %d", v.T)
	}
	return nil
}

// UnmarshalJSON unmarshals the provided JSON bytes into the receiving V.
func (v *V) UnmarshalJSON(data []byte) error {
	var got []any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&got); err != nil {
		return err
	}
	return v.fromAny(got)
}

// PrettyPrint returns the receiver, deterministically prettyprinted.
// String-index values prettyprint the same as the corresponding literal
// string values.  Only for use in tests.
func (v *V) PrettyPrint(st []string) string {
	switch v.T {
	case unsetValue:
		return "unset"
	case StringValueType:
		return "'" + v.V.(string) + "'"
	case StringIndexValueType:
		return "'" + st[v.V.(int64)] + "'"
	case StringsValueType:
		return "[ '" + strings.Join(v.V.([]string), "', '") + "' ]"
	case StringIndicesValueType:
		idxs := v.V.([]int64)
		strs := make([]string, len(idxs))
		for i, idx := range idxs {
			strs[i] = st[idx]
		}
		return "[ '" + strings.Join(strs, "', '") + "' ]"
	case IntegerValueType:
		return strconv.FormatInt(v.V.(int64), 10)
	case DoubleValueType:
		return fmt.Sprintf("%.6f", v.V.(float64))
	case BoolValueType:
		return strconv.FormatBool(v.V.(bool))
	case TimestampValueType:
		return v.V.(timestamp).time().Format(time.RFC3339Nano)
	}
	return fmt.Sprintf("unknown(%d)", v.T)
}

// StringValue returns a new Value wrapping the provided string.
func StringValue(str string) *V {
	return &V{V: str, T: StringValueType}
}

// StringIndexValue returns a new Value wrapping the provided string-table
// index.
func StringIndexValue(strIdx int64) *V {
	return &V{V: strIdx, T: StringIndexValueType}
}

// StringsValue returns a new Value wrapping the provided strings.
func StringsValue(strs ...string) *V {
	return &V{V: strs, T: StringsValueType}
}

// StringIndicesValue returns a new Value wrapping the provided string-table
// indices.
func StringIndicesValue(strIdxs ...int64) *V {
	return &V{V: strIdxs, T: StringIndicesValueType}
}

// IntegerValue returns a new Value wrapping the provided int64.
func IntegerValue(i int64) *V {
	return &V{V: i, T: IntegerValueType}
}

// DoubleValue returns a new Value wrapping the provided float64.
func DoubleValue(f float64) *V {
	return &V{V: f, T: DoubleValueType}
}

// BoolValue returns a new Value wrapping the provided bool.
func BoolValue(b bool) *V {
	return &V{V: b, T: BoolValueType}
}

// TimestampValue returns a new Value wrapping the provided time.
func TimestampValue(t time.Time) *V {
	return &V{
		V: timestamp{
			UnixSeconds: t.Unix(),
			UnixNanos:   int64(t.Nanosecond()),
		},
		T: TimestampValueType,
	}
}

// ExpectStringValue expects the provided Value to be a string, returning
// that string (URL-unescaped) or an error if it isn't.
func ExpectStringValue(val *V) (string, error) {
	if val == nil || val.T != StringValueType {
		return "", fmt.Errorf("expected value type 'str'")
	}
	return url.QueryUnescape(val.V.(string))
}

// ExpectStringsValue expects the provided Value to be a Strings, returning
// its string slice, or an error if it isn't.
func ExpectStringsValue(val *V) ([]string, error) {
	if val == nil || val.T != StringsValueType {
		return nil, fmt.Errorf("expected value type 'strs'")
	}
	return val.V.([]string), nil
}

// ExpectIntegerValue expects the provided Value to be an integer, returning
// that integer or an error if it isn't.
func ExpectIntegerValue(val *V) (int64, error) {
	if val == nil || val.T != IntegerValueType {
		return 0, fmt.Errorf("expected value type 'int'")
	}
	return val.V.(int64), nil
}

// ExpectDoubleValue expects the provided Value to be a float64, returning
// that float or an error if it isn't.  Integers are widened.
func ExpectDoubleValue(val *V) (float64, error) {
	if val == nil {
		return 0, fmt.Errorf("expected value type 'dbl'")
	}
	switch val.T {
	case DoubleValueType:
		return val.V.(float64), nil
	case IntegerValueType:
		return float64(val.V.(int64)), nil
	}
	return 0, fmt.Errorf("expected value type 'dbl'")
}

// ExpectBoolValue expects the provided Value to be a bool, returning that
// bool or an error if it isn't.
func ExpectBoolValue(val *V) (bool, error) {
	if val == nil || val.T != BoolValueType {
		return false, fmt.Errorf("expected value type 'bool'")
	}
	return val.V.(bool), nil
}

// ExpectTimestampValue expects the provided Value to be a timestamp,
// returning that timestamp (in UTC) or an error if it isn't.
func ExpectTimestampValue(val *V) (time.Time, error) {
	if val == nil || val.T != TimestampValueType {
		return time.Time{}, fmt.Errorf("expected value type 'timestamp'")
	}
	return val.V.(timestamp).time(), nil
}
