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

// Package payload attaches embedded data to elements of structured
// responses.  A table row, for example, may carry a sparkline of its
// category's recent values, or a cell may carry a small bar.
//
// Any type able to host a payload implements Payloader.
package payload

import "github.com/ilhamster/covidviz/server/go/util"

const (
	// TypeKey, if present in a Datum's properties, marks that Datum as an
	// embedded payload, and names the payload's type.
	TypeKey = "payload_type"
)

// Payloader is implemented by types able to accept payloads.
type Payloader interface {
	// Payload adds a child to the receiver and returns it.
	Payload() util.DataBuilder
}

// New creates and returns a payload of the specified type under the provided
// parent.
func New(parent Payloader, payloadType string) util.DataBuilder {
	return parent.Payload().With(
		util.StringProperty(TypeKey, payloadType),
	)
}
