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

package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type testRequest struct {
	Token       string         `json:"api_token"`
	AccountID   string         `json:"account_id"`
	EndpointIDs []string       `json:"endpoint_ids"`
	Limit       int            `json:"limit"`
	Parameters  map[string]any `json:"parameters"`
}

// Test case structure
type test[T any] struct {
	name      string
	input     any
	want      T
	expectErr bool
}

func TestDecode(t *testing.T) {
	tests := []test[testRequest]{
		{
			name: "Valid input",
			input: map[string]any{
				"api_token":    "secret",
				"account_id":   "42",
				"endpoint_ids": []any{"auth_accounts", "report_pages"},
				"limit":        float64(10),
				"parameters":   map[string]any{"date_range": "today"},
			},
			want: testRequest{
				Token:       "secret",
				AccountID:   "42",
				EndpointIDs: []string{"auth_accounts", "report_pages"},
				Limit:       10,
				Parameters:  map[string]any{"date_range": "today"},
			},
			expectErr: false,
		},
		{
			name: "Weakly typed input",
			input: map[string]any{
				"api_token":    "secret",
				"account_id":   float64(42),
				"endpoint_ids": "auth_accounts,report_pages",
				"limit":        "10",
			},
			want: testRequest{
				Token:       "secret",
				AccountID:   "42",
				EndpointIDs: []string{"auth_accounts", "report_pages"},
				Limit:       10,
			},
			expectErr: false,
		},
		{
			name:      "Invalid input type",
			input:     "invalid input",
			want:      testRequest{},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode[testRequest](tt.input)

			if (err != nil) != tt.expectErr {
				t.Errorf("Decode() error = %v, expectErr %v", err, tt.expectErr)
			}

			assert.Equal(t, tt.want, got, "Decode() = %v, want %v", got, tt.want)
		})
	}
}
