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

package healthcheck

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sealmetrics/sealcheck/internal/logger"
	"github.com/sealmetrics/sealcheck/pkg/endpoints"
	"github.com/sealmetrics/sealcheck/pkg/validator"
)

// Status is the aggregated status of a health check run
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

const (
	defaultDateRange = "today"
	defaultLimit     = 10
)

// report_type values the health check sends to the reports that need one
var reportTypes = map[string]string{
	endpoints.ReportAcquisition: "Source",
	endpoints.ReportFunnel:      "by_source",
}

// Validator validates a token and single endpoints against the reporting API
type Validator interface {
	ValidateToken(ctx context.Context) validator.TokenResult
	ValidateEndpoint(ctx context.Context, endpointID string, params map[string]any) validator.Outcome
}

// Factory creates a Validator authenticating with the given token
type Factory func(ctx context.Context, token string) Validator

// ClientFactory returns a Factory creating validation clients for the API at baseURL
func ClientFactory(baseURL string, opts ...validator.Option) Factory {
	return func(ctx context.Context, token string) Validator {
		return validator.NewClient(ctx, baseURL, token, opts...)
	}
}

// Summary is the aggregated result of a health check run
type Summary struct {
	OverallStatus  Status              `json:"overall_status" yaml:"overall_status"`
	TotalEndpoints int                 `json:"total_endpoints" yaml:"total_endpoints"`
	Successful     int                 `json:"successful" yaml:"successful"`
	Failed         int                 `json:"failed" yaml:"failed"`
	TotalTimeMs    float64             `json:"total_time_ms" yaml:"total_time_ms"`
	Timestamp      time.Time           `json:"timestamp" yaml:"timestamp"`
	Results        []validator.Outcome `json:"results" yaml:"results"`
}

// Runner runs health checks and batch validations
type Runner struct {
	newValidator Factory
}

// NewRunner creates a Runner using f to create the validator of every run
func NewRunner(f Factory) *Runner {
	return &Runner{newValidator: f}
}

// HealthCheck validates every endpoint of the health check set one after another.
// It returns an *ErrAuthentication without calling any endpoint if the token is invalid.
func (r *Runner) HealthCheck(ctx context.Context, token, accountID string) (Summary, error) {
	ctx, log := runContext(ctx, "health-check")
	v := r.newValidator(ctx, token)

	if err := checkToken(ctx, v); err != nil {
		return Summary{}, err
	}

	ids := endpoints.HealthCheckIDs()
	log.InfoContext(ctx, "Starting health check", "endpoints", len(ids))

	start := time.Now()
	results := make([]validator.Outcome, 0, len(ids))
	for _, id := range ids {
		params := Params(id, accountID, defaultDateRange)
		if rt, ok := reportTypes[id]; ok {
			params["report_type"] = rt
		}
		results = append(results, v.ValidateEndpoint(ctx, id, params))
	}
	elapsed := validator.Milliseconds(time.Since(start))

	s := Summarize(results, elapsed)
	log.InfoContext(ctx, "Health check finished",
		"status", s.OverallStatus, "successful", s.Successful, "failed", s.Failed, "totalTimeMs", s.TotalTimeMs)
	return s, nil
}

// Batch validates the given endpoints concurrently. The outcomes are in the order of ids.
// It returns an *ErrAuthentication without calling any endpoint if the token is invalid.
func (r *Runner) Batch(ctx context.Context, token string, ids []string, accountID, dateRange string) ([]validator.Outcome, error) {
	ctx, log := runContext(ctx, "batch")
	v := r.newValidator(ctx, token)

	if err := checkToken(ctx, v); err != nil {
		return nil, err
	}

	log.InfoContext(ctx, "Starting batch validation", "endpoints", len(ids))
	results := make([]validator.Outcome, len(ids))

	var g errgroup.Group
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			results[i] = v.ValidateEndpoint(ctx, id, Params(id, accountID, dateRange))
			return nil
		})
	}
	// validations report failures as outcomes, so there is no error to handle
	_ = g.Wait()

	log.InfoContext(ctx, "Batch validation finished", "endpoints", len(results))
	return results, nil
}

// Params returns the default parameters to validate the endpoint with.
// The authentication endpoint takes no parameters.
func Params(endpointID, accountID, dateRange string) map[string]any {
	if endpointID == endpoints.AuthAccounts {
		return map[string]any{}
	}
	return map[string]any{
		"account_id": accountID,
		"date_range": dateRange,
		"limit":      defaultLimit,
	}
}

// Summarize aggregates the outcomes of a health check that took totalTimeMs
func Summarize(results []validator.Outcome, totalTimeMs float64) Summary {
	successful := 0
	for i := range results {
		if results[i].Success {
			successful++
		}
	}
	if results == nil {
		results = []validator.Outcome{}
	}

	return Summary{
		OverallStatus:  aggregate(successful, len(results)-successful),
		TotalEndpoints: len(results),
		Successful:     successful,
		Failed:         len(results) - successful,
		TotalTimeMs:    totalTimeMs,
		Timestamp:      time.Now().UTC(),
		Results:        results,
	}
}

func aggregate(successful, failed int) Status {
	switch {
	case failed == 0:
		return StatusHealthy
	case successful == 0:
		return StatusUnhealthy
	default:
		return StatusDegraded
	}
}

func checkToken(ctx context.Context, v Validator) error {
	res := v.ValidateToken(ctx)
	if res.Valid {
		return nil
	}

	reason := "Invalid API token"
	if res.Error != nil && *res.Error != "" {
		reason = *res.Error
	}
	logger.FromContext(ctx).WarnContext(ctx, "Aborting run, token is invalid", "reason", reason)
	return &ErrAuthentication{Reason: reason}
}

// runContext returns a context carrying a logger that is tagged with a new run id
func runContext(ctx context.Context, kind string) (context.Context, *slog.Logger) {
	log := logger.FromContext(ctx).With("run", kind, "runId", uuid.NewString())
	return logger.IntoContext(ctx, log), log
}
