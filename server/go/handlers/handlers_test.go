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

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	querydispatcher "github.com/ilhamster/covidviz/server/go/query_dispatcher"
	"github.com/ilhamster/covidviz/server/go/util"
)

type echoDataSource struct{}

func (echoDataSource) SupportedDataSeriesQueries() []string {
	return []string{"echo", "fail"}
}

func (echoDataSource) HandleDataSeriesRequests(ctx context.Context, globalFilters map[string]*util.V, drb *util.DataResponseBuilder, reqs []*util.DataSeriesRequest) error {
	if req, err := RequestOf(ctx); err != nil || req == nil {
		return errors.New("missing http request in context")
	}
	for _, req := range reqs {
		if req.QueryName == "fail" {
			return errors.New("failed")
		}
		msg, err := util.ExpectStringValue(globalFilters["msg"])
		if err != nil {
			return err
		}
		drb.DataSeries(req).With(util.StringProperty("msg", msg))
	}
	return nil
}

func newTestServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	qd, err := querydispatcher.New(echoDataSource{})
	if err != nil {
		t.Fatalf("querydispatcher.New() yielded unexpected error %s", err)
	}
	mux := http.NewServeMux()
	wrapped := &atomic.Int32{}
	for path, h := range NewQueryHandler(qd).Wrap(func(hf HandlerFunc) HandlerFunc {
		return func(w http.ResponseWriter, req *http.Request) {
			wrapped.Add(1)
			hf(w, req)
		}
	}).HandlersByPath() {
		mux.HandleFunc(path, h)
	}
	for path, h := range NewIndexHandler(IndexPage{
		Title:   "covidviz",
		Queries: qd.SupportedQueries(),
	}).HandlersByPath() {
		mux.HandleFunc(path, h)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, wrapped
}

const echoReq = `{"GlobalFilters": {"msg": [1, "hi%20there"]}, "SeriesRequests": [{"QueryName": "echo", "SeriesName": "s"}]}`

func TestGetData(t *testing.T) {
	srv, wrapped := newTestServer(t)
	for _, test := range []struct {
		description string
		do          func() (*http.Response, error)
		wantStatus  int
		wantData    string
	}{{
		description: "form request",
		do: func() (*http.Response, error) {
			return http.Get(srv.URL + "/GetData?req=" + url.QueryEscape(echoReq))
		},
		wantStatus: http.StatusOK,
		wantData: `Data:
  Series s
    Root:
      Prop 'msg': 'hi there'`,
	}, {
		description: "json post",
		do: func() (*http.Response, error) {
			return http.Post(srv.URL+"/GetData", "application/json", strings.NewReader(echoReq))
		},
		wantStatus: http.StatusOK,
		wantData: `Data:
  Series s
    Root:
      Prop 'msg': 'hi there'`,
	}, {
		description: "malformed request",
		do: func() (*http.Response, error) {
			return http.Get(srv.URL + "/GetData?req=" + url.QueryEscape("{not json"))
		},
		wantStatus: http.StatusBadRequest,
	}, {
		description: "failing query",
		do: func() (*http.Response, error) {
			return http.Get(srv.URL + "/GetData?req=" + url.QueryEscape(`{"SeriesRequests": [{"QueryName": "fail"}]}`))
		},
		wantStatus: http.StatusInternalServerError,
	}} {
		t.Run(test.description, func(t *testing.T) {
			resp, err := test.do()
			if err != nil {
				t.Fatalf("request failed: %s", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != test.wantStatus {
				t.Fatalf("Got status %d, want %d", resp.StatusCode, test.wantStatus)
			}
			if test.wantStatus != http.StatusOK {
				return
			}
			data := &util.Data{}
			if err := json.NewDecoder(resp.Body).Decode(data); err != nil {
				t.Fatalf("failed to decode response: %s", err)
			}
			if diff := cmp.Diff(test.wantData, data.PrettyPrint()); diff != "" {
				t.Errorf("Unexpected response, diff (-want +got):\n%s", diff)
			}
		})
	}
	if got := wrapped.Load(); got != 4 {
		t.Errorf("query handler wrapper invoked %d times, want 4", got)
	}
}

func TestIndex(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("request failed: %s", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read index: %s", err)
	}
	for _, want := range []string{"<title>covidviz</title>", "<code>echo</code>", "<code>fail</code>"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("index page missing %q:\n%s", want, body)
		}
	}

	missing, err := http.Get(srv.URL + "/nowhere")
	if err != nil {
		t.Fatalf("request failed: %s", err)
	}
	missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Errorf("Got status %d for an unknown path, want 404", missing.StatusCode)
	}
}
