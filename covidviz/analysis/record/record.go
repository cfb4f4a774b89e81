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

// Package record parses raw dataset rows into timestamped entries.
package record

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// RawRecord is a single dataset row as received: a category identifier, a
// numeric value, and an unparsed date string.
type RawRecord struct {
	Category  string
	Value     float64
	Timestamp string
}

// Entry is a RawRecord whose timestamp has been parsed.  Entries are
// immutable once created.
type Entry struct {
	Category  string
	Value     float64
	Timestamp time.Time
}

// Accepted timestamp layouts, tried in order.  RFC 3339 parsing also accepts
// fractional seconds.
var layouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"20060102",
}

// ParseTimestamp parses s as a calendar date or date-time, returning it in
// UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("'%s' is not a valid date", s)
}

// Parse returns an Entry for each provided RawRecord, in order.  Records
// whose timestamp is not a valid date, or whose value is not finite, are
// dropped.
func Parse(raws []RawRecord) []Entry {
	ret := make([]Entry, 0, len(raws))
	for _, raw := range raws {
		if math.IsNaN(raw.Value) || math.IsInf(raw.Value, 0) {
			continue
		}
		ts, err := ParseTimestamp(raw.Timestamp)
		if err != nil {
			continue
		}
		ret = append(ret, Entry{
			Category:  raw.Category,
			Value:     raw.Value,
			Timestamp: ts,
		})
	}
	return ret
}
