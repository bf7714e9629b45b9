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

package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIntoContext(t *testing.T) {
	mockClient := &http.Client{}

	tests := []struct {
		name   string
		client *http.Client
		want   *http.Client
	}{
		{
			name:   "nil client",
			client: nil,
			want:   http.DefaultClient,
		},
		{
			name:   "valid client",
			client: mockClient,
			want:   mockClient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := IntoContext(context.Background(), tt.client)
			if ctx == nil {
				t.Fatal("IntoContext returned a nil context")
			}

			if got := FromContext(ctx); got != tt.want {
				t.Errorf("FromContext() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFromContext_withoutClient(t *testing.T) {
	if got := FromContext(context.Background()); got != http.DefaultClient {
		t.Errorf("FromContext() = %v, want http.DefaultClient", got)
	}
}

func TestNew_userAgent(t *testing.T) {
	tests := []struct {
		name      string
		userAgent string
		header    string
		want      string
	}{
		{
			name:      "sets user agent",
			userAgent: "sealcheck/1.0.0",
			want:      "sealcheck/1.0.0",
		},
		{
			name:      "keeps caller user agent",
			userAgent: "sealcheck/1.0.0",
			header:    "custom/2.0",
			want:      "custom/2.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.Header.Get("User-Agent")
				w.WriteHeader(http.StatusNoContent)
			}))
			defer srv.Close()

			req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, http.NoBody)
			if err != nil {
				t.Fatalf("failed to create request: %v", err)
			}
			if tt.header != "" {
				req.Header.Set("User-Agent", tt.header)
			}

			resp, err := New(tt.userAgent).Do(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			resp.Body.Close()

			if got != tt.want {
				t.Errorf("User-Agent = %q, want %q", got, tt.want)
			}
		})
	}
}
