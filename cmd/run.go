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

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sealmetrics/sealcheck/internal/logger"
	"github.com/sealmetrics/sealcheck/pkg/config"
	"github.com/sealmetrics/sealcheck/pkg/sealcheck"
)

// NewCmdRun creates a new run command
func NewCmdRun() *cobra.Command {
	defaults := config.NewConfig()

	cmd := &cobra.Command{
		Use:          "run",
		Short:        "Run the validation api",
		Long:         `The validation api will be served with the provided configuration until it is interrupted`,
		SilenceUsage: true,
		RunE:         run(),
	}

	newConfigFlag("api.address", "apiAddress").StringP(cmd, "a", defaults.Api.ListeningAddress, "api: The address the server is listening on")
	newConfigFlag("api.cors.allowedOrigins", "corsOrigins").StringSlice(cmd, defaults.Api.Cors.AllowedOrigins,
		"api: The browser origins that are allowed to call the api")

	return cmd
}

// run is the entry point to start the validation api
func run() func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		log := logger.NewLogger()
		ctx, cancel := signal.NotifyContext(logger.IntoContext(context.Background(), log), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		cfg, err := loadConfig(ctx)
		if err != nil {
			log.Error("Error while loading the config", "error", err)
			return err
		}

		s := sealcheck.New(cfg, cmd.Root().Version)
		if err := s.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("Sealcheck stopped with an error", "error", err)
			return err
		}
		log.Info("Sealcheck stopped")
		return nil
	}
}

// loadConfig builds the config from the defaults, the config file, the environment and the flags
func loadConfig(ctx context.Context) (*config.Config, error) {
	cfg := config.NewConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validation of configuration failed: %w", err)
	}
	return cfg, nil
}
