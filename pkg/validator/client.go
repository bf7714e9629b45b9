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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sealmetrics/sealcheck/internal/httpclient"
	"github.com/sealmetrics/sealcheck/internal/logger"
	"github.com/sealmetrics/sealcheck/pkg/endpoints"
	"github.com/sealmetrics/sealcheck/pkg/payload"
)

const (
	defaultTokenTimeout    = 30 * time.Second
	defaultEndpointTimeout = 60 * time.Second
)

// DefaultMaxBodySize is the largest upstream response body read into memory
const DefaultMaxBodySize = 32 << 20

// ErrBodyTooLarge is returned when an upstream response body exceeds the client's size limit
var ErrBodyTooLarge = errors.New("response body exceeds the size limit")

const (
	msgInvalidToken     = "Invalid API token"
	msgTokenTimeout     = "Request timeout"
	msgEndpointTimeout  = "Request timeout (60s)"
	unknownEndpointName = "Unknown"
)

// Client validates a single API token against the reporting API.
// It holds no state between calls and is safe for concurrent use.
type Client struct {
	baseURL         string
	token           string
	client          *http.Client
	tokenTimeout    time.Duration
	endpointTimeout time.Duration
	maxBodySize     int64
	metrics         *Metrics
}

// Option configures a Client
type Option func(*Client)

// WithMetrics records every upstream call in m
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithTimeouts overrides the deadlines of the token and the endpoint validation calls
func WithTimeouts(token, endpoint time.Duration) Option {
	return func(c *Client) {
		c.tokenTimeout = token
		c.endpointTimeout = endpoint
	}
}

// WithMaxBodySize limits the upstream response bodies to n bytes
func WithMaxBodySize(n int64) Option {
	return func(c *Client) {
		c.maxBodySize = n
	}
}

// NewClient creates a client for the reporting API at baseURL authenticating with token.
// The http.Client is taken from the context.
func NewClient(ctx context.Context, baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:         strings.TrimRight(baseURL, "/"),
		token:           token,
		client:          httpclient.FromContext(ctx),
		tokenTimeout:    defaultTokenTimeout,
		endpointTimeout: defaultEndpointTimeout,
		maxBodySize:     DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ValidateToken checks the token by listing the accounts it can access.
// Every failure is reported in the returned TokenResult.
func (c *Client) ValidateToken(ctx context.Context) TokenResult {
	log := logger.FromContext(ctx).With("endpoint", endpoints.AuthAccounts)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.tokenTimeout)
	defer cancel()

	res, err := c.send(ctx, http.MethodGet, c.baseURL+accountsPath(), nil)
	if err != nil {
		log.WarnContext(ctx, "Token validation request failed", "error", err)
		c.metrics.observeToken(false)
		if isTimeout(err) {
			return invalidToken(msgTokenTimeout)
		}
		return invalidToken(err.Error())
	}

	switch res.status {
	case http.StatusOK:
	case http.StatusUnauthorized:
		log.InfoContext(ctx, "Token was rejected by the API")
		c.metrics.observeToken(false)
		return invalidToken(msgInvalidToken)
	default:
		log.WarnContext(ctx, "Unexpected status during token validation", "status", res.status)
		c.metrics.observeToken(false)
		return invalidToken(fmt.Sprintf("API error: %d", res.status))
	}

	body, err := payload.Parse(res.body)
	if err != nil {
		log.WarnContext(ctx, "Failed to parse accounts response", "error", err)
		c.metrics.observeToken(false)
		return invalidToken(err.Error())
	}

	accs := accounts(body)
	log.DebugContext(ctx, "Token is valid", "accounts", len(accs))
	c.metrics.observeToken(true)
	return TokenResult{
		Valid:    true,
		Accounts: accs,
	}
}

// ValidateEndpoint calls the endpoint with the given id and parameters once and
// reports what happened. Parameters that are nil or empty strings are not sent.
func (c *Client) ValidateEndpoint(ctx context.Context, endpointID string, params map[string]any) Outcome {
	log := logger.FromContext(ctx).With("endpoint", endpointID)

	ep, ok := endpoints.Get(endpointID)
	if !ok {
		log.WarnContext(ctx, "Unknown endpoint")
		if params == nil {
			params = map[string]any{}
		}
		msg := fmt.Sprintf("Unknown endpoint: %s", endpointID)
		return Outcome{
			EndpointID:     endpointID,
			EndpointName:   unknownEndpointName,
			Success:        false,
			StatusCode:     0,
			ResponseTimeMs: 0,
			Timestamp:      time.Now().UTC(),
			RequestURL:     "",
			RequestParams:  params,
			ErrorMessage:   &msg,
		}
	}

	target := c.baseURL + ep.Path
	clean := cleanParams(params)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.endpointTimeout)
	defer cancel()

	start := time.Now()
	res, err := c.send(ctx, ep.Method, target, clean)
	elapsed := Milliseconds(time.Since(start))

	if err != nil {
		msg := err.Error()
		if isTimeout(err) {
			msg = msgEndpointTimeout
		}
		log.WarnContext(ctx, "Endpoint request failed", "error", err, "elapsedMs", elapsed)
		o := Outcome{
			EndpointID:     endpointID,
			EndpointName:   ep.Name,
			Success:        false,
			StatusCode:     0,
			ResponseTimeMs: elapsed,
			Timestamp:      time.Now().UTC(),
			RequestURL:     target,
			RequestParams:  clean,
			ErrorMessage:   &msg,
		}
		c.metrics.observeOutcome(&o)
		return o
	}

	data, err := payload.Parse(res.body)
	if err != nil {
		log.DebugContext(ctx, "Response body is not JSON, keeping the raw text", "error", err)
		data = payload.String(string(res.body))
	}

	success := res.status >= 200 && res.status < 300
	o := Outcome{
		EndpointID:     endpointID,
		EndpointName:   ep.Name,
		Success:        success,
		StatusCode:     res.status,
		ResponseTimeMs: elapsed,
		Timestamp:      time.Now().UTC(),
		RequestURL:     res.url,
		RequestParams:  clean,
		ResponseData:   &data,
		DataCount:      dataCount(data),
	}
	if !success {
		o.ErrorMessage = errorMessage(data)
	}

	log.DebugContext(ctx, "Endpoint validated", "status", res.status, "success", success, "elapsedMs", elapsed)
	c.metrics.observeOutcome(&o)
	return o
}

// response is what is left of an upstream response once the body is read
type response struct {
	status int
	url    string
	body   []byte
}

// send issues one request and reads the whole response body
func (c *Client) send(ctx context.Context, method, target string, params map[string]any) (response, error) {
	req, err := c.newRequest(ctx, method, target, params)
	if err != nil {
		return response{}, err
	}

	resp, err := c.client.Do(req) //nolint:bodyclose // closed in defer
	if err != nil {
		return response{}, err
	}
	defer func(b io.ReadCloser) {
		if cErr := b.Close(); cErr != nil {
			logger.FromContext(ctx).Debug("Failed to close response body", "error", cErr)
		}
	}(resp.Body)

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize+1))
	if err != nil {
		return response{}, err
	}
	if int64(len(body)) > c.maxBodySize {
		return response{}, fmt.Errorf("%w of %d bytes", ErrBodyTooLarge, c.maxBodySize)
	}

	sent := req.URL
	if resp.Request != nil && resp.Request.URL != nil {
		sent = resp.Request.URL
	}
	return response{status: resp.StatusCode, url: sent.String(), body: body}, nil
}

// newRequest builds the upstream request: params become the query of a GET and the JSON body of a POST
func (c *Client) newRequest(ctx context.Context, method, target string, params map[string]any) (*http.Request, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, err
	}

	var body io.Reader = http.NoBody
	switch method {
	case http.MethodGet:
		if len(params) > 0 {
			q := u.Query()
			for k, v := range params {
				for _, s := range queryValues(v) {
					q.Add(k, s)
				}
			}
			u.RawQuery = q.Encode()
		}
	case http.MethodPost:
		b, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(b)
	default:
		return nil, fmt.Errorf("unsupported method %s", method)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func accountsPath() string {
	ep, ok := endpoints.Get(endpoints.AuthAccounts)
	if !ok {
		return "/auth/accounts"
	}
	return ep.Path
}

// cleanParams drops every parameter whose value is nil or an empty string
func cleanParams(params map[string]any) map[string]any {
	clean := make(map[string]any, len(params))
	for k, v := range params {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		clean[k] = v
	}
	return clean
}

// queryValues renders a parameter value as query values, lists as repeated values
func queryValues(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case bool:
		return []string{strconv.FormatBool(t)}
	case float64:
		return []string{strconv.FormatFloat(t, 'f', -1, 64)}
	case float32:
		return []string{strconv.FormatFloat(float64(t), 'f', -1, 32)}
	case json.Number:
		return []string{t.String()}
	case []string:
		return t
	case []any:
		values := make([]string, 0, len(t))
		for _, item := range t {
			values = append(values, queryValues(item)...)
		}
		return values
	default:
		return []string{fmt.Sprint(t)}
	}
}

// isTimeout reports whether err is caused by a deadline
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
