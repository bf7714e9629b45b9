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

package sealcheck

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sealmetrics/sealcheck/pkg/api"
	"github.com/sealmetrics/sealcheck/pkg/endpoints"
	"github.com/sealmetrics/sealcheck/pkg/healthcheck"
	"github.com/sealmetrics/sealcheck/pkg/validator"
)

const (
	urlParamCategory   = "category"
	urlParamEndpointID = "endpoint_id"
)

const (
	tagService   = "Service"
	tagValidator = "Validator"
	tagEndpoints = "Endpoints"
)

// routes returns every route of the validation api
func (s *Sealcheck) routes() []api.Route {
	registry := s.metrics.GetRegistry()

	return []api.Route{
		{Path: "/", Method: http.MethodGet, Handler: s.handleRoot, Summary: "Service information", Tags: []string{tagService}, Response: serviceInfo{}},
		{Path: "/health", Method: http.MethodGet, Handler: s.handleHealth, Summary: "Liveness of the service", Tags: []string{tagService}, Response: healthStatus{}},
		{Path: "/openapi", Method: http.MethodGet, Handler: s.handleOpenAPI, Summary: "OpenAPI document of this api", Tags: []string{tagService}},
		{
			Path:    "/metrics",
			Method:  api.MethodAny,
			Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}).ServeHTTP,
		},

		{
			Path: "/validate/token", Method: http.MethodPost, Handler: s.handleValidateToken,
			Summary: "Validate an API token and list its accounts", Tags: []string{tagValidator},
			Request: tokenRequest{}, Response: validator.TokenResult{},
		},
		{
			Path: "/validate/endpoint", Method: http.MethodPost, Handler: s.handleValidateEndpoint,
			Summary: "Validate a single endpoint with the given parameters", Tags: []string{tagValidator},
			Request: endpointRequest{}, Response: validator.Outcome{},
		},
		{
			Path: "/validate/health-check", Method: http.MethodPost, Handler: s.handleHealthCheck,
			Summary: "Validate every health check endpoint one after another", Tags: []string{tagValidator},
			Request: healthCheckRequest{}, Response: healthcheck.Summary{},
		},
		{
			Path: "/validate/batch", Method: http.MethodPost, Handler: s.handleBatch,
			Summary: "Validate the given endpoints concurrently", Tags: []string{tagValidator},
			Query: []string{"api_token", "account_id", "date_range"}, Request: []string{}, Response: []validator.Outcome{},
		},

		{
			Path: "/endpoints", Method: http.MethodGet, Handler: s.handleListEndpoints,
			Summary: "List all endpoints", Tags: []string{tagEndpoints}, Response: []endpoints.Descriptor{},
		},
		{
			Path: "/endpoints/categories", Method: http.MethodGet, Handler: s.handleCategories,
			Summary: "List all endpoint categories", Tags: []string{tagEndpoints}, Response: []endpoints.CategoryInfo{},
		},
		{
			Path: "/endpoints/category/{" + urlParamCategory + "}", Method: http.MethodGet, Handler: s.handleEndpointsByCategory,
			Summary: "List the endpoints of a category", Tags: []string{tagEndpoints}, Response: []endpoints.Descriptor{},
		},
		{
			Path: "/endpoints/health-check/endpoints", Method: http.MethodGet, Handler: s.handleHealthCheckEndpoints,
			Summary: "List the endpoints validated by the health check", Tags: []string{tagEndpoints}, Response: []endpoints.Descriptor{},
		},
		{
			Path: "/endpoints/{" + urlParamEndpointID + "}", Method: http.MethodGet, Handler: s.handleEndpoint,
			Summary: "Get a single endpoint, null if unknown", Tags: []string{tagEndpoints}, Response: endpoints.Descriptor{},
		},
	}
}
