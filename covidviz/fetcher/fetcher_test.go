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

package fetcher

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ilhamster/covidviz/covidviz/config"
	"github.com/ilhamster/covidviz/covidviz/metrics"
)

const daily = `[
	{"state": "NY", "positive": 10, "dateChecked": "2020-03-01T20:00:00Z", "date": 20200301},
	{"state": "NY", "positive": 20, "dateChecked": "2020-03-02T20:00:00Z", "date": 20200302},
	{"state": "NJ", "positive": 5, "dateChecked": "2020-03-01T20:00:00Z", "date": 20200301},
	{"state": "NJ", "positive": null, "dateChecked": "2020-03-02T20:00:00Z", "date": 20200302},
	{"state": "WA", "positive": 3, "dateChecked": "not-a-date", "date": 20200302},
	{"positive": 3, "dateChecked": "2020-03-02T20:00:00Z"}
]`

func dataset(url string) config.DatasetConfig {
	ds := config.DefaultDatasetConfig()
	ds.URL = url
	return ds
}

func TestDecode(t *testing.T) {
	ds := config.DefaultDatasetConfig()
	raws, skipped, err := Decode(strings.NewReader(daily), ds)
	require.NoError(t, err)
	require.Len(t, raws, 5, "the row with no category is skipped")
	assert.Equal(t, 1, skipped)
	assert.Equal(t, "NY", raws[0].Category)
	assert.Equal(t, 10.0, raws[0].Value)
	assert.Equal(t, "2020-03-01T20:00:00Z", raws[0].Timestamp)
	assert.True(t, math.IsNaN(raws[3].Value), "null values decode to NaN")

	ds.TimestampField = "date"
	raws, _, err = Decode(strings.NewReader(daily), ds)
	require.NoError(t, err)
	assert.Equal(t, "20200301", raws[0].Timestamp)

	_, _, err = Decode(strings.NewReader(`{"not": "an array"}`), ds)
	assert.Error(t, err)
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(daily))
	}))
	defer srv.Close()

	m := metrics.New()
	f := New(map[string]config.DatasetConfig{
		config.DefaultDataset: dataset(srv.URL),
	}, WithLogger(zaptest.NewLogger(t)), WithMetrics(m))
	sm, err := f.Fetch(context.Background(), config.DefaultDataset)
	require.NoError(t, err)
	assert.Equal(t, []string{"NY", "NJ"}, sm.Categories())
	nj, ok := sm.Series("NJ")
	require.True(t, ok)
	assert.Equal(t, 1, nj.Len(), "the null value is dropped")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Fetches.WithLabelValues(config.DefaultDataset, metrics.OutcomeOK)))
	// The null value, the bad date and the row with no category.
	assert.Equal(t, 3.0, testutil.ToFloat64(m.DroppedRecords.WithLabelValues(config.DefaultDataset)))
}

func TestFetchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		case "/garbage":
			w.Write([]byte("<html>"))
		case "/slow":
			time.Sleep(200 * time.Millisecond)
			w.Write([]byte("[]"))
		}
	}))
	defer srv.Close()

	slow := dataset(srv.URL + "/slow")
	slow.Timeout = config.Duration{Duration: 10 * time.Millisecond}
	f := New(map[string]config.DatasetConfig{
		"missing": dataset(srv.URL + "/missing"),
		"garbage": dataset(srv.URL + "/garbage"),
		"slow":    slow,
		"nowhere": dataset("http://127.0.0.1:0/daily"),
	})
	for _, test := range []struct {
		dataset    string
		wantStatus int
	}{
		{dataset: "missing", wantStatus: http.StatusNotFound},
		{dataset: "garbage", wantStatus: http.StatusOK},
		{dataset: "slow"},
		{dataset: "nowhere"},
	} {
		t.Run(test.dataset, func(t *testing.T) {
			_, err := f.Fetch(context.Background(), test.dataset)
			var fe *FetchError
			require.True(t, errors.As(err, &fe), "got %v, want a *FetchError", err)
			assert.Equal(t, test.dataset, fe.Dataset)
			assert.Equal(t, test.wantStatus, fe.StatusCode)
		})
	}

	_, err := f.Fetch(context.Background(), "unconfigured")
	assert.Error(t, err)
}

func TestConcurrentFetchesShareARequest(t *testing.T) {
	var requests atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		<-release
		w.Write([]byte(daily))
	}))
	defer srv.Close()

	f := New(map[string]config.DatasetConfig{config.DefaultDataset: dataset(srv.URL)})
	var wg sync.WaitGroup
	const callers = 5
	results := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.Fetch(context.Background(), config.DefaultDataset)
		}(i)
	}
	require.Eventually(t, func() bool { return requests.Load() == 1 }, time.Second, time.Millisecond)
	// Give the remaining callers time to join the in-flight fetch.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	for _, err := range results {
		assert.NoError(t, err)
	}
	assert.Less(t, requests.Load(), int32(callers), "concurrent fetches were not collapsed")
}
