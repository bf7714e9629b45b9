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
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sealmetrics/sealcheck/internal/httpclient"
	"github.com/sealmetrics/sealcheck/internal/logger"
	"github.com/sealmetrics/sealcheck/pkg/api"
	"github.com/sealmetrics/sealcheck/pkg/config"
	"github.com/sealmetrics/sealcheck/pkg/healthcheck"
	"github.com/sealmetrics/sealcheck/pkg/metrics"
	"github.com/sealmetrics/sealcheck/pkg/validator"
)

const (
	// Name is the display name of the service
	Name           = "Sealmetrics API Validator"
	description    = "Validate Sealmetrics API endpoints and ensure they return correct responses"
	defaultVersion = "1.0.0"
)

// Sealcheck serves the validation api
type Sealcheck struct {
	config  *config.Config
	version string
	metrics metrics.Metrics
	api     api.API
	// client is the http client used for all upstream calls
	client       *http.Client
	newValidator healthcheck.Factory
	runner       *healthcheck.Runner
}

// New creates a new Sealcheck from the given config
func New(cfg *config.Config, version string) *Sealcheck {
	if version == "" {
		version = defaultVersion
	}

	m := metrics.NewMetrics()
	vm := validator.NewMetrics()
	if err := m.Register(vm.Collectors()...); err != nil {
		logger.NewLogger().Error("Could not add metrics collectors to registry", "error", err)
	}

	factory := healthcheck.ClientFactory(cfg.Upstream.BaseURL, validator.WithMetrics(vm))
	return &Sealcheck{
		config:       cfg,
		version:      version,
		metrics:      m,
		api:          api.New(cfg.Api),
		client:       httpclient.New(fmt.Sprintf("sealcheck/%s", version)),
		newValidator: factory,
		runner:       healthcheck.NewRunner(factory),
	}
}

// Run serves the api until the context is done or the server fails.
// A done context triggers a graceful shutdown, its error is returned.
func (s *Sealcheck) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)

	if err := s.api.RegisterRoutes(ctx, s.routes()...); err != nil {
		log.Error("Failed to register routes", "error", err)
		return err
	}

	cErr := make(chan error, 1)
	go func() {
		cErr <- s.api.Run(ctx)
	}()

	log.Info("Running sealcheck", "version", s.version, "upstream", s.config.Upstream.BaseURL)
	select {
	case <-ctx.Done():
		return s.shutdown(ctx)
	case err := <-cErr:
		if err != nil && ctx.Err() != nil {
			return s.shutdown(ctx)
		}
		return err
	}
}

func (s *Sealcheck) shutdown(ctx context.Context) error {
	log := logger.FromContext(ctx)
	log.Info("Shutting down sealcheck")

	err := s.api.Shutdown(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Failed to shutdown gracefully", "error", err)
	}
	return err
}

// upstream returns the context for upstream calls of a request
func (s *Sealcheck) upstream(r *http.Request) context.Context {
	return httpclient.IntoContext(r.Context(), s.client)
}
