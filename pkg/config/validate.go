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

package config

import (
	"context"
	"errors"
	"net"
	"net/url"

	"github.com/sealmetrics/sealcheck/internal/logger"
)

// Validate validates the config and returns all found problems joined
func (c *Config) Validate(ctx context.Context) error {
	ctx, cancel := logger.NewContextWithLogger(ctx, "configValidation")
	defer cancel()

	return errors.Join(c.Api.Validate(ctx), c.Upstream.Validate(ctx))
}

// Validate validates the api config
func (a *ApiConfig) Validate(ctx context.Context) error {
	log := logger.FromContext(ctx)

	var errs error
	if _, _, err := net.SplitHostPort(a.ListeningAddress); err != nil {
		log.ErrorContext(ctx, "The api listening address is not valid", "address", a.ListeningAddress, "error", err)
		errs = errors.Join(errs, ErrInvalidApiAddress)
	}

	for _, origin := range a.Cors.AllowedOrigins {
		if origin == "*" {
			continue
		}
		if !isHTTPURL(origin) {
			log.ErrorContext(ctx, "The cors origin is not a valid url", "origin", origin)
			errs = errors.Join(errs, ErrInvalidCorsOrigin)
		}
	}
	return errs
}

// Validate validates the upstream config
func (u *UpstreamConfig) Validate(ctx context.Context) error {
	if !isHTTPURL(u.BaseURL) {
		logger.FromContext(ctx).ErrorContext(ctx, "The upstream base url is not a valid url", "url", u.BaseURL)
		return ErrInvalidUpstreamURL
	}
	return nil
}

func isHTTPURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
