// sealcheck
// (C) 2024, Deutsche Telekom IT GmbH
//
// Deutsche Telekom IT GmbH and all other contributors /
// copyright owners license this file to you under the Apache
// License, Version 2.0 (the "License"); you may not use this
// file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package validator

import (
	"math"
	"time"

	"github.com/sealmetrics/sealcheck/pkg/payload"
)

// Outcome is the normalized result of one validated upstream call.
// It is built once and never changed afterwards.
// ResponseData is nil if no response was received, LatestDataDate is reserved and never set.
type Outcome struct {
	EndpointID     string         `json:"endpoint_id" yaml:"endpoint_id"`
	EndpointName   string         `json:"endpoint_name" yaml:"endpoint_name"`
	Success        bool           `json:"success" yaml:"success"`
	StatusCode     int            `json:"status_code" yaml:"status_code"`
	ResponseTimeMs float64        `json:"response_time_ms" yaml:"response_time_ms"`
	Timestamp      time.Time      `json:"timestamp" yaml:"timestamp"`
	RequestURL     string         `json:"request_url" yaml:"request_url"`
	RequestParams  map[string]any `json:"request_params" yaml:"request_params"`
	ResponseData   *payload.Value `json:"response_data" yaml:"response_data"`
	ErrorMessage   *string        `json:"error_message" yaml:"error_message"`
	DataCount      *int           `json:"data_count" yaml:"data_count"`
	LatestDataDate *string        `json:"latest_data_date" yaml:"latest_data_date"`
}

// TokenResult is the result of a token validation
type TokenResult struct {
	Valid    bool            `json:"valid" yaml:"valid"`
	Accounts []payload.Value `json:"accounts" yaml:"accounts"`
	Error    *string         `json:"error" yaml:"error"`
}

// invalidToken returns a failed TokenResult carrying msg
func invalidToken(msg string) TokenResult {
	return TokenResult{
		Valid:    false,
		Accounts: []payload.Value{},
		Error:    &msg,
	}
}

// Milliseconds converts d to milliseconds rounded to two decimals
func Milliseconds(d time.Duration) float64 {
	return math.Round(float64(d)/float64(time.Millisecond)*100) / 100
}

// accounts normalizes the body of a successful accounts response into a list of account records
func accounts(body payload.Value) []payload.Value {
	switch body.Kind() {
	case payload.KindObject:
		if data, ok := body.Field("data"); ok && data.Kind() == payload.KindList {
			return data.Items()
		}
		if isNameMapping(body) {
			members := body.Members()
			accs := make([]payload.Value, 0, len(members))
			for _, m := range members {
				accs = append(accs, payload.Object(
					payload.Member{Key: "id", Value: payload.String(m.Key)},
					payload.Member{Key: "name", Value: m.Value},
				))
			}
			return accs
		}
		return []payload.Value{body}
	case payload.KindList:
		return body.Items()
	default:
		return []payload.Value{}
	}
}

// isNameMapping reports whether every member value of the object is a string.
// An empty object is a name mapping without entries.
func isNameMapping(obj payload.Value) bool {
	for _, m := range obj.Members() {
		if m.Value.Kind() != payload.KindString {
			return false
		}
	}
	return true
}

// dataCount returns the number of records of a collection shaped body
func dataCount(body payload.Value) *int {
	switch body.Kind() {
	case payload.KindObject:
		for _, key := range []string{"data", "items"} {
			if v, ok := body.Field(key); ok && v.Kind() == payload.KindList {
				n := v.Len()
				return &n
			}
		}
	case payload.KindList:
		n := body.Len()
		return &n
	}
	return nil
}

// errorMessage extracts the upstream error description of an error shaped body
func errorMessage(body payload.Value) *string {
	if body.Kind() != payload.KindObject {
		return nil
	}
	for _, key := range []string{"error", "message", "detail"} {
		if v, ok := body.Field(key); ok {
			msg := v.Text()
			return &msg
		}
	}
	return nil
}
