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
	"context"
	"fmt"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"

	"github.com/ilhamster/covidviz/covidviz/app"
	"github.com/ilhamster/covidviz/covidviz/metrics"
)

// Sessions holds the most recently used interactive sessions, each a
// mounted app.Model keyed by a random ID.  Evicted sessions are unmounted.
// It is safe for concurrent use.
type Sessions struct {
	lru      *lru.Cache
	newModel func(dataset string) *app.Model
	metrics  *metrics.Metrics
}

func newSessions(size int, newModel func(dataset string) *app.Model, m *metrics.Metrics) (*Sessions, error) {
	cache, err := lru.NewWithEvict(size, func(key, value interface{}) {
		if model, ok := value.(*app.Model); ok {
			model.Unmount()
		}
	})
	if err != nil {
		return nil, err
	}
	return &Sessions{
		lru:      cache,
		newModel: newModel,
		metrics:  m,
	}, nil
}

// Session returns the session with the provided ID, or false if there is
// none.
func (s *Sessions) Session(id string) (*app.Model, bool) {
	modelIf, ok := s.lru.Get(id)
	if !ok {
		return nil, false
	}
	model, ok := modelIf.(*app.Model)
	return model, ok
}

// Create mounts a new session showing the named dataset, returning its ID.
func (s *Sessions) Create(ctx context.Context, dataset string) (string, *app.Model, error) {
	model := s.newModel(dataset)
	if err := model.Mount(ctx); err != nil {
		return "", nil, fmt.Errorf("failed to mount session: %w", err)
	}
	id := uuid.NewString()
	s.lru.Add(id, model)
	s.metrics.SetSessions(s.lru.Len())
	return id, model, nil
}

// Remove unmounts and forgets the session with the provided ID.
func (s *Sessions) Remove(id string) {
	s.lru.Remove(id)
	s.metrics.SetSessions(s.lru.Len())
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	return s.lru.Len()
}

// Close unmounts every session.
func (s *Sessions) Close() {
	s.lru.Purge()
	s.metrics.SetSessions(0)
}
