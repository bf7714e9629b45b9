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
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sealmetrics/sealcheck/pkg/endpoints"
	"github.com/sealmetrics/sealcheck/pkg/payload"
)

const testBaseURL = "https://api.test.com/api"

func TestClient_ValidateToken(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	tests := []struct {
		name         string
		responder    httpmock.Responder
		wantValid    bool
		wantAccounts string
		wantErr      string
	}{
		{
			name:         "data list",
			responder:    httpmock.NewStringResponder(http.StatusOK, `{"data":[{"id":"1"}]}`),
			wantValid:    true,
			wantAccounts: `[{"id":"1"}]`,
		},
		{
			name:         "id to name mapping",
			responder:    httpmock.NewStringResponder(http.StatusOK, `{"123":"Acme","456":"Beta"}`),
			wantValid:    true,
			wantAccounts: `[{"id":"123","name":"Acme"},{"id":"456","name":"Beta"}]`,
		},
		{
			name:         "flat object",
			responder:    httpmock.NewStringResponder(http.StatusOK, `{"foo":"bar","x":1}`),
			wantValid:    true,
			wantAccounts: `[{"foo":"bar","x":1}]`,
		},
		{
			name:         "data that is not a list",
			responder:    httpmock.NewStringResponder(http.StatusOK, `{"data":{"id":"1"}}`),
			wantValid:    true,
			wantAccounts: `[{"data":{"id":"1"}}]`,
		},
		{
			name:         "empty object",
			responder:    httpmock.NewStringResponder(http.StatusOK, `{}`),
			wantValid:    true,
			wantAccounts: `[]`,
		},
		{
			name:         "plain list",
			responder:    httpmock.NewStringResponder(http.StatusOK, `[1,2,3]`),
			wantValid:    true,
			wantAccounts: `[1,2,3]`,
		},
		{
			name:         "scalar",
			responder:    httpmock.NewStringResponder(http.StatusOK, `"accounts"`),
			wantValid:    true,
			wantAccounts: `[]`,
		},
		{
			name:         "unauthorized",
			responder:    httpmock.NewStringResponder(http.StatusUnauthorized, `{"message":"Unauthenticated."}`),
			wantValid:    false,
			wantAccounts: `[]`,
			wantErr:      "Invalid API token",
		},
		{
			name:         "server error",
			responder:    httpmock.NewStringResponder(http.StatusInternalServerError, `oops`),
			wantValid:    false,
			wantAccounts: `[]`,
			wantErr:      "API error: 500",
		},
		{
			name:         "forbidden",
			responder:    httpmock.NewStringResponder(http.StatusForbidden, ``),
			wantValid:    false,
			wantAccounts: `[]`,
			wantErr:      "API error: 403",
		},
		{
			name:         "timeout",
			responder:    httpmock.NewErrorResponder(context.DeadlineExceeded),
			wantValid:    false,
			wantAccounts: `[]`,
			wantErr:      "Request timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpmock.Reset()
			httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/auth/accounts", tt.responder)

			c := NewClient(context.Background(), testBaseURL, "secret")
			got := c.ValidateToken(context.Background())

			assert.Equal(t, tt.wantValid, got.Valid)
			b, err := json.Marshal(got.Accounts)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAccounts, string(b))

			if tt.wantErr == "" {
				assert.Nil(t, got.Error)
			} else {
				require.NotNil(t, got.Error)
				assert.Equal(t, tt.wantErr, *got.Error)
			}
			assert.Equal(t, 1, httpmock.GetTotalCallCount())
		})
	}
}

func TestClient_ValidateToken_failures(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	tests := []struct {
		name      string
		responder httpmock.Responder
		contains  string
	}{
		{
			name:      "connection refused",
			responder: httpmock.NewErrorResponder(errors.New("connection refused")),
			contains:  "connection refused",
		},
		{
			name:      "malformed body",
			responder: httpmock.NewStringResponder(http.StatusOK, `<html>`),
			contains:  "invalid character",
		},
		{
			name:      "deeply nested body",
			responder: httpmock.NewStringResponder(http.StatusOK, strings.Repeat("[", 200_000)),
			contains:  "maximum nesting depth",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/auth/accounts", tt.responder)

			got := NewClient(context.Background(), testBaseURL, "secret").ValidateToken(context.Background())
			assert.False(t, got.Valid)
			assert.Empty(t, got.Accounts)
			require.NotNil(t, got.Error)
			assert.Contains(t, *got.Error, tt.contains)
		})
	}
}

func TestClient_ValidateToken_headers(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/auth/accounts",
		func(req *http.Request) (*http.Response, error) {
			if req.Header.Get("Authorization") != "Bearer secret" {
				return httpmock.NewStringResponse(http.StatusUnauthorized, ""), nil
			}
			if req.Header.Get("Accept") != "application/json" {
				return httpmock.NewStringResponse(http.StatusNotAcceptable, ""), nil
			}
			return httpmock.NewStringResponse(http.StatusOK, `[]`), nil
		})

	got := NewClient(context.Background(), testBaseURL+"/", "secret").ValidateToken(context.Background())
	assert.True(t, got.Valid)
	assert.Nil(t, got.Error)
}

func TestClient_ValidateEndpoint_unknown(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	params := map[string]any{"account_id": "5", "utm_source": ""}
	got := NewClient(context.Background(), testBaseURL, "secret").ValidateEndpoint(context.Background(), "report_nope", params)

	assert.False(t, got.Success)
	assert.Equal(t, 0, got.StatusCode)
	assert.Equal(t, float64(0), got.ResponseTimeMs)
	assert.Equal(t, "Unknown", got.EndpointName)
	assert.Equal(t, "report_nope", got.EndpointID)
	assert.Equal(t, "", got.RequestURL)
	assert.Equal(t, params, got.RequestParams, "unknown endpoints keep the unfiltered parameters")
	assert.Nil(t, got.ResponseData)
	require.NotNil(t, got.ErrorMessage)
	assert.Equal(t, "Unknown endpoint: report_nope", *got.ErrorMessage)
	assert.Equal(t, 0, httpmock.GetTotalCallCount())
}

func TestClient_ValidateEndpoint(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	params := map[string]any{"account_id": "5", "date_range": "today", "limit": 10}
	wantURL := testBaseURL + "/report/acquisition?account_id=5&date_range=today&limit=10"

	tests := []struct {
		name        string
		responder   httpmock.Responder
		wantSuccess bool
		wantStatus  int
		wantData    string
		wantCount   *int
		wantErr     *string
	}{
		{
			name:        "data collection",
			responder:   httpmock.NewStringResponder(http.StatusOK, `{"data":[1,2,3]}`),
			wantSuccess: true,
			wantStatus:  http.StatusOK,
			wantData:    `{"data":[1,2,3]}`,
			wantCount:   intPtr(3),
		},
		{
			name:        "items collection",
			responder:   httpmock.NewStringResponder(http.StatusOK, `{"items":["a"]}`),
			wantSuccess: true,
			wantStatus:  http.StatusOK,
			wantData:    `{"items":["a"]}`,
			wantCount:   intPtr(1),
		},
		{
			name:        "data is not a list but items is",
			responder:   httpmock.NewStringResponder(http.StatusOK, `{"data":{},"items":[1,2]}`),
			wantSuccess: true,
			wantStatus:  http.StatusOK,
			wantData:    `{"data":{},"items":[1,2]}`,
			wantCount:   intPtr(2),
		},
		{
			name:        "plain list",
			responder:   httpmock.NewStringResponder(http.StatusOK, `[1,2]`),
			wantSuccess: true,
			wantStatus:  http.StatusOK,
			wantData:    `[1,2]`,
			wantCount:   intPtr(2),
		},
		{
			name:        "flat object",
			responder:   httpmock.NewStringResponder(http.StatusOK, `{"foo":1}`),
			wantSuccess: true,
			wantStatus:  http.StatusOK,
			wantData:    `{"foo":1}`,
		},
		{
			name:        "plain text",
			responder:   httpmock.NewStringResponder(http.StatusOK, `all good`),
			wantSuccess: true,
			wantStatus:  http.StatusOK,
			wantData:    `"all good"`,
		},
		{
			name:        "created",
			responder:   httpmock.NewStringResponder(http.StatusCreated, `[]`),
			wantSuccess: true,
			wantStatus:  http.StatusCreated,
			wantData:    `[]`,
			wantCount:   intPtr(0),
		},
		{
			name:        "error field",
			responder:   httpmock.NewStringResponder(http.StatusBadRequest, `{"message":"second","error":"first"}`),
			wantSuccess: false,
			wantStatus:  http.StatusBadRequest,
			wantData:    `{"message":"second","error":"first"}`,
			wantErr:     strPtr("first"),
		},
		{
			name:        "message field",
			responder:   httpmock.NewStringResponder(http.StatusUnprocessableEntity, `{"message":"The date range is invalid","detail":"x"}`),
			wantSuccess: false,
			wantStatus:  http.StatusUnprocessableEntity,
			wantData:    `{"message":"The date range is invalid","detail":"x"}`,
			wantErr:     strPtr("The date range is invalid"),
		},
		{
			name:        "detail field",
			responder:   httpmock.NewStringResponder(http.StatusNotFound, `{"detail":{"code":7}}`),
			wantSuccess: false,
			wantStatus:  http.StatusNotFound,
			wantData:    `{"detail":{"code":7}}`,
			wantErr:     strPtr(`{"code":7}`),
		},
		{
			name:        "error without known fields",
			responder:   httpmock.NewStringResponder(http.StatusInternalServerError, `Internal Server Error`),
			wantSuccess: false,
			wantStatus:  http.StatusInternalServerError,
			wantData:    `"Internal Server Error"`,
		},
		{
			name:        "redirect status is not a success",
			responder:   httpmock.NewStringResponder(http.StatusNotModified, ``),
			wantSuccess: false,
			wantStatus:  http.StatusNotModified,
			wantData:    `""`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpmock.Reset()
			httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/report/acquisition", tt.responder)

			got := NewClient(context.Background(), testBaseURL, "secret").
				ValidateEndpoint(context.Background(), endpoints.ReportAcquisition, params)

			assert.Equal(t, endpoints.ReportAcquisition, got.EndpointID)
			assert.Equal(t, "Traffic / Acquisition", got.EndpointName)
			assert.Equal(t, tt.wantSuccess, got.Success)
			assert.Equal(t, tt.wantStatus, got.StatusCode)
			assert.Equal(t, wantURL, got.RequestURL)
			assert.Equal(t, params, got.RequestParams)
			assert.GreaterOrEqual(t, got.ResponseTimeMs, float64(0))
			assert.Equal(t, time.UTC, got.Timestamp.Location())
			assert.Nil(t, got.LatestDataDate)

			require.NotNil(t, got.ResponseData)
			b, err := json.Marshal(got.ResponseData)
			require.NoError(t, err)
			assert.Equal(t, tt.wantData, string(b))

			assert.Equal(t, tt.wantCount, got.DataCount)
			assert.Equal(t, tt.wantErr, got.ErrorMessage)
			assert.Equal(t, 1, httpmock.GetTotalCallCount())
		})
	}
}

func TestClient_ValidateEndpoint_parameterFiltering(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	var query map[string][]string
	httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/report/pages",
		func(req *http.Request) (*http.Response, error) {
			query = req.URL.Query()
			return httpmock.NewStringResponse(http.StatusOK, `[]`), nil
		})

	params := map[string]any{
		"account_id": "5",
		"utm_source": "",
		"limit":      nil,
		"show_utms":  false,
	}
	got := NewClient(context.Background(), testBaseURL, "secret").
		ValidateEndpoint(context.Background(), endpoints.ReportPages, params)

	assert.Equal(t, map[string]any{"account_id": "5", "show_utms": false}, got.RequestParams)
	assert.Equal(t, map[string][]string{"account_id": {"5"}, "show_utms": {"false"}}, query)
	assert.Len(t, params, 4, "the caller's parameters must not be modified")
}

func TestClient_ValidateEndpoint_transportError(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/report/funnel",
		httpmock.NewErrorResponder(errors.New("connection reset by peer")))

	params := map[string]any{"account_id": "5", "report_type": "by_source", "label": ""}
	got := NewClient(context.Background(), testBaseURL, "secret").
		ValidateEndpoint(context.Background(), endpoints.ReportFunnel, params)

	assert.False(t, got.Success)
	assert.Equal(t, 0, got.StatusCode)
	assert.Equal(t, testBaseURL+"/report/funnel", got.RequestURL)
	assert.Equal(t, map[string]any{"account_id": "5", "report_type": "by_source"}, got.RequestParams)
	assert.Nil(t, got.ResponseData)
	assert.Nil(t, got.DataCount)
	require.NotNil(t, got.ErrorMessage)
	assert.Contains(t, *got.ErrorMessage, "connection reset by peer")
}

func TestClient_ValidateEndpoint_deeplyNestedBody(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	body := strings.Repeat("[", 200_000)
	httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/report/pages", httpmock.NewStringResponder(http.StatusOK, body))

	got := NewClient(context.Background(), testBaseURL, "secret").
		ValidateEndpoint(context.Background(), endpoints.ReportPages, map[string]any{"account_id": "acc"})

	assert.True(t, got.Success)
	assert.Equal(t, http.StatusOK, got.StatusCode)
	require.NotNil(t, got.ResponseData)
	assert.Equal(t, payload.KindString, got.ResponseData.Kind())
	assert.Equal(t, body, got.ResponseData.Text())
}

func TestClient_ValidateEndpoint_bodySizeLimit(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	tests := []struct {
		name        string
		body        string
		wantSuccess bool
	}{
		{name: "within the limit", body: `{"data":[1,2]}`, wantSuccess: true},
		{name: "over the limit", body: `{"data":[1,2,3,4,5,6,7,8,9]}`, wantSuccess: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/report/pages", httpmock.NewStringResponder(http.StatusOK, tt.body))

			got := NewClient(context.Background(), testBaseURL, "secret", WithMaxBodySize(16)).
				ValidateEndpoint(context.Background(), endpoints.ReportPages, map[string]any{"account_id": "acc"})

			assert.Equal(t, tt.wantSuccess, got.Success)
			if tt.wantSuccess {
				assert.Nil(t, got.ErrorMessage)
				return
			}
			assert.Equal(t, 0, got.StatusCode)
			assert.Nil(t, got.ResponseData)
			require.NotNil(t, got.ErrorMessage)
			assert.Contains(t, *got.ErrorMessage, ErrBodyTooLarge.Error())
		})
	}
}

func TestClient_ValidateEndpoint_timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(context.Background(), srv.URL, "secret", WithTimeouts(time.Second, 50*time.Millisecond))
	got := c.ValidateEndpoint(context.Background(), endpoints.ReportConversions,
		map[string]any{"account_id": "5", "date_range": "today"})

	assert.False(t, got.Success)
	assert.Equal(t, 0, got.StatusCode)
	require.NotNil(t, got.ErrorMessage)
	assert.Equal(t, "Request timeout (60s)", *got.ErrorMessage)
	assert.Equal(t, srv.URL+"/report/conversions", got.RequestURL)
	assert.Nil(t, got.ResponseData)
	assert.GreaterOrEqual(t, got.ResponseTimeMs, float64(50))
}

func TestClient_ValidateToken_timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(context.Background(), srv.URL, "secret", WithTimeouts(50*time.Millisecond, time.Second))
	got := c.ValidateToken(context.Background())

	assert.False(t, got.Valid)
	require.NotNil(t, got.Error)
	assert.Equal(t, "Request timeout", *got.Error)
}

func TestClient_ValidateEndpoint_ignoresCallerCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		_, _ = io.WriteString(w, `{"data":[]}`)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := NewClient(context.Background(), srv.URL, "secret").
		ValidateEndpoint(ctx, endpoints.ReportROASEvolution, map[string]any{"account_id": "5"})

	assert.True(t, got.Success)
	assert.Equal(t, http.StatusOK, got.StatusCode)
	assert.Equal(t, intPtr(0), got.DataCount)
}

func TestClient_metrics(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/auth/accounts", httpmock.NewStringResponder(http.StatusOK, `[]`))
	httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/report/pages", httpmock.NewStringResponder(http.StatusBadGateway, ``))

	m := NewMetrics()
	c := NewClient(context.Background(), testBaseURL, "secret", WithMetrics(m))

	c.ValidateToken(context.Background())
	c.ValidateEndpoint(context.Background(), endpoints.ReportPages, nil)
	c.ValidateEndpoint(context.Background(), endpoints.ReportPages, nil)
	c.ValidateEndpoint(context.Background(), "unknown", nil)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.tokens.WithLabelValues("valid")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.requests.WithLabelValues(endpoints.ReportPages, "502")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.requests), "unknown endpoints are not recorded")
	assert.Len(t, m.Collectors(), 3)
}

func TestMilliseconds(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want float64
	}{
		{in: 0, want: 0},
		{in: 1234567 * time.Nanosecond, want: 1.23},
		{in: 1235678 * time.Nanosecond, want: 1.24},
		{in: 2 * time.Second, want: 2000},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Milliseconds(tt.in), "Milliseconds(%v)", tt.in)
	}
}

func TestQueryValues(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []string
	}{
		{name: "string", in: "today", want: []string{"today"}},
		{name: "bool", in: true, want: []string{"true"}},
		{name: "int", in: 10, want: []string{"10"}},
		{name: "json float", in: float64(10), want: []string{"10"}},
		{name: "fraction", in: 2.5, want: []string{"2.5"}},
		{name: "number", in: json.Number("7"), want: []string{"7"}},
		{name: "list", in: []any{"a", 1.0}, want: []string{"a", "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, queryValues(tt.in))
		})
	}
}

func intPtr(i int) *int { return &i }

func strPtr(s string) *string { return &s }
