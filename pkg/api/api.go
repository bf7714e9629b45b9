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

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sealmetrics/sealcheck/internal/logger"
	"github.com/sealmetrics/sealcheck/pkg/config"
)

// MethodAny mounts a route for every http method
const MethodAny = "*"

type API interface {
	Run(ctx context.Context) error
	Shutdown(ctx context.Context) error
	RegisterRoutes(ctx context.Context, routes ...Route) error
}

type api struct {
	server *http.Server
	router chi.Router
	cors   config.CorsConfig
}

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

// New creates the http api listening on the configured address
func New(cfg config.ApiConfig) API {
	r := chi.NewRouter()
	return &api{
		server: &http.Server{Addr: cfg.ListeningAddress, Handler: r, ReadHeaderTimeout: readHeaderTimeout},
		router: r,
		cors:   cfg.Cors,
	}
}

// Run listens for requests until the context is done or the server stops.
// A closed server is not an error.
func (a *api) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)
	if len(a.router.Routes()) == 0 {
		return ErrNoRoutes
	}

	served := make(chan error, 1)
	go func() {
		log.Info("Listening for requests", "address", a.server.Addr)
		served <- a.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("api stopped: %w", ctx.Err())
	case err := <-served:
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("API server closed")
			return nil
		}
		log.Error("API server failed", "error", err)
		return fmt.Errorf("api stopped: %w", err)
	}
}

// Shutdown drains open connections within the shutdown timeout.
// The context's own error is returned alongside any shutdown failure.
func (a *api) Shutdown(ctx context.Context) error {
	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(drainCtx); err != nil {
		logger.FromContext(ctx).Error("Failed to shut down API server", "error", err)
		return fmt.Errorf("shutting down api: %w", errors.Join(ctx.Err(), err))
	}
	return ctx.Err()
}

// Route is a single endpoint of the api.
// The documentation fields are only used to generate the OpenAPI document.
type Route struct {
	Path    string
	Method  string
	Handler http.HandlerFunc

	Summary string
	Tags    []string
	// Query lists the names of the query parameters
	Query []string
	// Request is a value of the request body type, nil if the route takes no body
	Request any
	// Response is a value of the response body type, nil if the body is not JSON
	Response any
}

// RegisterRoutes installs the middleware stack and mounts the given routes.
// Unknown paths and methods are answered with a json detail body.
func (a *api) RegisterRoutes(ctx context.Context, routes ...Route) error {
	a.router.Use(
		middleware.RequestID,
		logger.Middleware(ctx),
		middleware.Recoverer,
		cors.Handler(cors.Options{
			AllowedOrigins:   a.cors.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
		}),
	)

	for _, route := range routes {
		if err := a.mount(route); err != nil {
			return err
		}
	}

	a.router.NotFound(detailHandler(http.StatusNotFound))
	a.router.MethodNotAllowed(detailHandler(http.StatusMethodNotAllowed))
	return nil
}

func (a *api) mount(route Route) error {
	switch route.Method {
	case MethodAny:
		a.router.Handle(route.Path, route.Handler)
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		a.router.Method(route.Method, route.Path, route.Handler)
	default:
		return &ErrUnsupportedMethod{path: route.Path, method: route.Method}
	}
	return nil
}

func detailHandler(code int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, code, http.StatusText(code))
	}
}

// ErrorResponse is the body of every failed api request
type ErrorResponse struct {
	Detail string `json:"detail" yaml:"detail"`
}
