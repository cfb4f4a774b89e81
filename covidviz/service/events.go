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

package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ilhamster/covidviz/covidviz/app"
	"github.com/ilhamster/covidviz/covidviz/config"
)

// Session load states, as reported to clients.
const (
	stateLoading = "loading"
	stateError   = "error"
	stateLoaded  = "loaded"
)

// EventRequest is the body of an /Event request.  A request with no
// SessionID, or naming an unknown session, creates a new session on
// Dataset.  Reload refetches the session's dataset before Event, if any,
// is applied.
type EventRequest struct {
	SessionID string     `json:"session_id,omitempty"`
	Dataset   string     `json:"dataset,omitempty"`
	Reload    bool       `json:"reload,omitempty"`
	Event     *app.Event `json:"event,omitempty"`
}

// SessionResponse describes a session after an /Event request.
type SessionResponse struct {
	SessionID   string     `json:"session_id"`
	Dataset     string     `json:"dataset"`
	State       string     `json:"state"`
	Error       string     `json:"error,omitempty"`
	Selection   string     `json:"selection,omitempty"`
	Excluded    []string   `json:"excluded,omitempty"`
	Highlighted string     `json:"highlighted,omitempty"`
	ZoomStart   *time.Time `json:"zoom_start,omitempty"`
	ZoomEnd     *time.Time `json:"zoom_end,omitempty"`
	Width       int        `json:"width"`
	Height      int        `json:"height"`
}

func sessionResponse(id string, model *app.Model) *SessionResponse {
	dims := model.Dimensions()
	resp := &SessionResponse{
		SessionID: id,
		Dataset:   model.Dataset(),
		Width:     dims.Width,
		Height:    dims.Height,
	}
	switch state := model.State().(type) {
	case app.Loading:
		resp.State = stateLoading
	case app.Failed:
		resp.State = stateError
		resp.Error = state.Err.Error()
	case app.Loaded:
		resp.State = stateLoaded
		resp.Selection = state.View.Selection().State().String()
		resp.Excluded = state.View.ExcludedCategories()
		resp.Highlighted = state.View.Highlighted()
		if zoom, ok := state.View.Zoom(); ok {
			resp.ZoomStart, resp.ZoomEnd = &zoom.Start, &zoom.End
		}
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	resp, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Failed to marshal response: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(resp)
}

// session returns the session named by er, creating it if necessary.
func (s *Service) session(req *http.Request, er *EventRequest) (string, *app.Model, error) {
	if er.SessionID != "" {
		if model, ok := s.sessions.Session(er.SessionID); ok {
			return er.SessionID, model, nil
		}
	}
	dataset := er.Dataset
	if dataset == "" {
		dataset = config.DefaultDataset
	}
	if _, ok := s.fetcher.Dataset(dataset); !ok {
		return "", nil, fmt.Errorf("unknown dataset '%s'", dataset)
	}
	id, model, err := s.sessions.Create(req.Context(), dataset)
	if err != nil {
		return "", nil, err
	}
	s.logger.Info("Created session", zap.String("session_id", id), zap.String("dataset", dataset))
	return id, model, nil
}

// handleEvent applies a single interaction event to a session, once its
// dataset has loaded, and responds with the session's resulting state.
func (s *Service) handleEvent(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, "Events must be POSTed", http.StatusMethodNotAllowed)
		return
	}
	er := &EventRequest{}
	if err := json.NewDecoder(req.Body).Decode(er); err != nil {
		http.Error(w, "Failed to parse event request: "+err.Error(), http.StatusBadRequest)
		return
	}
	id, model, err := s.session(req, er)
	if err != nil {
		http.Error(w, "Failed to create session: "+err.Error(), http.StatusBadRequest)
		return
	}
	if er.Reload {
		s.ds.Forget(model.Dataset())
		if err := model.Reload(req.Context()); err != nil {
			http.Error(w, "Failed to reload: "+err.Error(), http.StatusInternalServerError)
			return
		}
	}
	if err := model.Wait(req.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, sessionResponse(id, model))
		return
	}
	if _, failed := model.State().(app.Failed); failed {
		writeJSON(w, http.StatusServiceUnavailable, sessionResponse(id, model))
		return
	}
	status := http.StatusOK
	if er.Event != nil {
		if err := model.Handle(*er.Event); err != nil {
			s.logger.Debug("Event rejected",
				zap.String("session_id", id), zap.Stringer("event", *er.Event), zap.Error(err))
			status = http.StatusBadRequest
			if errors.Is(err, app.ErrNotLoaded) || errors.Is(err, app.ErrNotMounted) {
				status = http.StatusConflict
			}
			resp := sessionResponse(id, model)
			if resp.Error == "" {
				resp.Error = err.Error()
			}
			writeJSON(w, status, resp)
			return
		}
	}
	writeJSON(w, status, sessionResponse(id, model))
}
