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

// Package handlers provides HTTP handlers serving scene queries.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	querydispatcher "github.com/ilhamster/covidviz/server/go/query_dispatcher"
	"github.com/ilhamster/covidviz/server/go/util"
)

// HandlerFunc is a HTTP handler function.
type HandlerFunc func(http.ResponseWriter, *http.Request)

// WrapFunc is a function that rewrites a HandlerFunc.
type WrapFunc func(HandlerFunc) HandlerFunc

// Handler describes a covidviz HTTP handler.
type Handler interface {
	HandlersByPath() map[string]func(http.ResponseWriter, *http.Request)
}

// QueryHandler is a Handler for data queries.  It supports a Wrap method that
// wraps all handlers, e.g. adding cookies or metrics.
type QueryHandler interface {
	Handler
	Wrap(...WrapFunc) Handler
}

// SendJSON serializes the provided value and sends it along the provided
// http.ResponseWriter.  Any failures during serialization yield an HTTP
// internal status error.
func SendJSON(w http.ResponseWriter, v any) {
	resp, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Failed to marshal response: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(resp)
}

// queryHandler is an http.Handler serving scene queries.
type queryHandler struct {
	qd       *querydispatcher.QueryDispatcher
	wrappers []WrapFunc
}

// NewQueryHandler returns a new Handler serving scene requests using the
// provided QueryDispatcher.
func NewQueryHandler(qd *querydispatcher.QueryDispatcher) QueryHandler {
	return &queryHandler{
		qd: qd,
	}
}

const (
	dataMethod = "/GetData"
)

type contextKey string

var (
	httpReqKey contextKey = "covidviz_http_req"
)

// RequestOf returns the http Request attached to the provided Context, or nil
// if no Request is attached.  Returns an error if something other than a
// Request is stored in the Context.
func RequestOf(ctx context.Context) (*http.Request, error) {
	reqIf := ctx.Value(httpReqKey)
	if reqIf == nil {
		return nil, nil
	}
	req, ok := reqIf.(*http.Request)
	if !ok {
		return nil, fmt.Errorf("expected *http.Request to be stored in context, but got %T", reqIf)
	}
	return req, nil
}

func (qh *queryHandler) Wrap(wrappers ...WrapFunc) Handler {
	qh.wrappers = append(qh.wrappers, wrappers...)
	return qh
}

// HandlersByPath returns a mapping of HTTP request path to HTTP handler for
// this Handler.
func (qh *queryHandler) HandlersByPath() map[string]func(http.ResponseWriter, *http.Request) {
	var dh HandlerFunc = qh.getDataHandler
	for _, wrapper := range qh.wrappers {
		dh = wrapper(dh)
	}
	return map[string]func(http.ResponseWriter, *http.Request){
		dataMethod: dh,
	}
}

// readDataRequest reads a DataRequest from the 'req' form value or, for JSON
// POSTs, from the request body.
func readDataRequest(req *http.Request) ([]byte, error) {
	if req.Method == http.MethodPost && req.Header.Get("Content-Type") == "application/json" {
		return io.ReadAll(req.Body)
	}
	if err := req.ParseForm(); err != nil {
		return nil, err
	}
	return []byte(req.Form.Get("req")), nil
}

func (qh *queryHandler) getDataHandler(w http.ResponseWriter, req *http.Request) {
	reqJSON, err := readDataRequest(req)
	if err != nil {
		http.Error(w, "Failed to read DataRequest: "+err.Error(), http.StatusBadRequest)
		return
	}
	dataReq, err := util.DataRequestFromJSON(reqJSON)
	if err != nil {
		http.Error(w, "Failed to parse DataRequest: "+err.Error(), http.StatusBadRequest)
		return
	}
	ctx := context.WithValue(req.Context(), httpReqKey, req)
	resp, err := qh.qd.HandleDataRequest(ctx, dataReq)
	if err != nil {
		http.Error(w, "DataRequest failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	SendJSON(w, resp)
}
