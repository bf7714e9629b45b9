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
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"gopkg.in/yaml.v3"

	"github.com/sealmetrics/sealcheck/internal/helper"
	"github.com/sealmetrics/sealcheck/internal/logger"
	"github.com/sealmetrics/sealcheck/pkg/api"
	"github.com/sealmetrics/sealcheck/pkg/endpoints"
	"github.com/sealmetrics/sealcheck/pkg/healthcheck"
)

const defaultDateRange = "today"

type encoder interface {
	Encode(v any) error
}

type serviceInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Status  string `json:"status"`
}

type healthStatus struct {
	Status string `json:"status"`
}

type tokenRequest struct {
	APIToken string `json:"api_token"`
}

type endpointRequest struct {
	APIToken   string         `json:"api_token"`
	EndpointID string         `json:"endpoint_id"`
	Parameters map[string]any `json:"parameters"`
}

type healthCheckRequest struct {
	APIToken  string `json:"api_token"`
	AccountID string `json:"account_id"`
}

func (s *Sealcheck) handleRoot(w http.ResponseWriter, r *http.Request) {
	api.WriteJSON(w, r, http.StatusOK, serviceInfo{Name: Name, Version: s.version, Status: "operational"})
}

func (s *Sealcheck) handleHealth(w http.ResponseWriter, r *http.Request) {
	api.WriteJSON(w, r, http.StatusOK, healthStatus{Status: "healthy"})
}

func (s *Sealcheck) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	oapi, err := api.GenerateSpec(r.Context(), api.Info{Title: Name, Description: description, Version: s.version}, s.routes())
	if err != nil {
		log.Error("Failed to create openapi", "error", err)
		api.WriteError(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	var marshaler encoder
	switch r.Header.Get("Accept") {
	case "application/json":
		marshaler = json.NewEncoder(w)
		w.Header().Add("Content-Type", "application/json")
	default:
		marshaler = yaml.NewEncoder(w)
		w.Header().Add("Content-Type", "text/yaml")
	}

	if err = marshaler.Encode(oapi); err != nil {
		log.Error("Failed to marshal openapi", "error", err)
		api.WriteError(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

func (s *Sealcheck) handleValidateToken(w http.ResponseWriter, r *http.Request) {
	req, err := decodeBody[tokenRequest](r, "api_token")
	if err != nil {
		api.WriteError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ctx := s.upstream(r)
	api.WriteJSON(w, r, http.StatusOK, s.newValidator(ctx, req.APIToken).ValidateToken(ctx))
}

func (s *Sealcheck) handleValidateEndpoint(w http.ResponseWriter, r *http.Request) {
	req, err := decodeBody[endpointRequest](r, "api_token", "endpoint_id")
	if err != nil {
		api.WriteError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if _, ok := endpoints.Get(req.EndpointID); !ok {
		api.WriteError(w, r, http.StatusBadRequest, fmt.Sprintf("Unknown endpoint: %s", req.EndpointID))
		return
	}
	if req.Parameters == nil {
		req.Parameters = map[string]any{}
	}

	ctx := s.upstream(r)
	api.WriteJSON(w, r, http.StatusOK, s.newValidator(ctx, req.APIToken).ValidateEndpoint(ctx, req.EndpointID, req.Parameters))
}

func (s *Sealcheck) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	req, err := decodeBody[healthCheckRequest](r, "api_token", "account_id")
	if err != nil {
		api.WriteError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	summary, err := s.runner.HealthCheck(s.upstream(r), req.APIToken, req.AccountID)
	if err != nil {
		writeRunError(w, r, err)
		return
	}
	api.WriteJSON(w, r, http.StatusOK, summary)
}

func (s *Sealcheck) handleBatch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	for _, name := range []string{"api_token", "account_id"} {
		if !query.Has(name) {
			api.WriteError(w, r, http.StatusUnprocessableEntity, fmt.Sprintf("field required: %s", name))
			return
		}
	}
	dateRange := query.Get("date_range")
	if dateRange == "" {
		dateRange = defaultDateRange
	}

	ids, err := decodeEndpointIDs(r)
	if err != nil {
		api.WriteError(w, r, http.StatusUnprocessableEntity, "request body must be a JSON list of endpoint ids")
		return
	}

	res, err := s.runner.Batch(s.upstream(r), query.Get("api_token"), ids, query.Get("account_id"), dateRange)
	if err != nil {
		writeRunError(w, r, err)
		return
	}
	api.WriteJSON(w, r, http.StatusOK, res)
}

func (s *Sealcheck) handleListEndpoints(w http.ResponseWriter, r *http.Request) {
	api.WriteJSON(w, r, http.StatusOK, endpoints.List())
}

func (s *Sealcheck) handleCategories(w http.ResponseWriter, r *http.Request) {
	api.WriteJSON(w, r, http.StatusOK, endpoints.Categories())
}

func (s *Sealcheck) handleEndpointsByCategory(w http.ResponseWriter, r *http.Request) {
	c, err := endpoints.ParseCategory(chi.URLParam(r, urlParamCategory))
	if err != nil {
		api.WriteError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	api.WriteJSON(w, r, http.StatusOK, endpoints.ByCategory(c))
}

func (s *Sealcheck) handleEndpoint(w http.ResponseWriter, r *http.Request) {
	ep, ok := endpoints.Get(chi.URLParam(r, urlParamEndpointID))
	if !ok {
		api.WriteJSON(w, r, http.StatusOK, nil)
		return
	}
	api.WriteJSON(w, r, http.StatusOK, ep)
}

func (s *Sealcheck) handleHealthCheckEndpoints(w http.ResponseWriter, r *http.Request) {
	ids := endpoints.HealthCheckIDs()
	res := make([]*endpoints.Descriptor, 0, len(ids))
	for _, id := range ids {
		if ep, ok := endpoints.Get(id); ok {
			res = append(res, &ep)
			continue
		}
		res = append(res, nil)
	}
	api.WriteJSON(w, r, http.StatusOK, res)
}

// writeRunError maps the error of an aborted health check or batch run to a response
func writeRunError(w http.ResponseWriter, r *http.Request, err error) {
	var authErr *healthcheck.ErrAuthentication
	if errors.As(err, &authErr) {
		api.WriteError(w, r, http.StatusUnauthorized, authErr.Reason)
		return
	}
	logger.FromContext(r.Context()).Error("Run failed", "error", err)
	api.WriteError(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

// decodeBody decodes the JSON object of the request body into T.
// Every required key must be present in the object.
func decodeBody[T any](r *http.Request, required ...string) (T, error) {
	var zero T

	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil || raw == nil {
		return zero, errors.New("request body must be a JSON object")
	}

	for _, key := range required {
		if v, ok := raw[key]; !ok || v == nil {
			return zero, fmt.Errorf("field required: %s", key)
		}
	}

	res, err := helper.Decode[T](raw)
	if err != nil {
		return zero, fmt.Errorf("invalid request body: %w", err)
	}
	return res, nil
}

// decodeEndpointIDs reads a JSON list of strings, numbers and nulls are rejected
func decodeEndpointIDs(r *http.Request) ([]string, error) {
	var raw []*string
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(raw))
	for i, id := range raw {
		if id == nil {
			return nil, fmt.Errorf("endpoint id %d is null", i)
		}
		ids = append(ids, *id)
	}
	return ids, nil
}
