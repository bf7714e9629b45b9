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
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains the metric collectors of the upstream calls.
// A nil *Metrics records nothing.
type Metrics struct {
	duration *prometheus.HistogramVec
	requests *prometheus.CounterVec
	tokens   *prometheus.CounterVec
}

// NewMetrics initializes the metric collectors of the validation client
func NewMetrics() *Metrics {
	return &Metrics{
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sealcheck_upstream_request_duration_seconds",
				Help:    "Duration of the validated upstream requests",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"endpoint"},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sealcheck_upstream_requests_total",
				Help: "Count of validated upstream requests by status code, 0 if no response was received",
			},
			[]string{"endpoint", "code"},
		),
		tokens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sealcheck_token_validations_total",
				Help: "Count of token validations by result",
			},
			[]string{"result"},
		),
	}
}

// Collectors returns all metric collectors
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.duration, m.requests, m.tokens}
}

func (m *Metrics) observeOutcome(o *Outcome) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(o.EndpointID).Observe(o.ResponseTimeMs / 1000)
	m.requests.WithLabelValues(o.EndpointID, strconv.Itoa(o.StatusCode)).Inc()
}

func (m *Metrics) observeToken(valid bool) {
	if m == nil {
		return
	}
	result := "invalid"
	if valid {
		result = "valid"
	}
	m.tokens.WithLabelValues(result).Inc()
}
