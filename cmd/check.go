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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sealmetrics/sealcheck/internal/httpclient"
	"github.com/sealmetrics/sealcheck/internal/logger"
	"github.com/sealmetrics/sealcheck/pkg/healthcheck"
)

const (
	outputJSON = "json"
	outputYAML = "yaml"
)

var (
	// ErrCheckFailed is returned when the health check is not healthy or a batch validation failed
	ErrCheckFailed = errors.New("validation failed")
	// ErrInvalidOutput is returned for an unsupported output format
	ErrInvalidOutput = errors.New("invalid output format")
)

type checkFlags struct {
	token     string
	accountID string
	endpoints []string
	dateRange string
	output    string
}

// NewCmdCheck creates a new check command
func NewCmdCheck() *cobra.Command {
	var flags checkFlags

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the API once and print the results",
		Long: "Without --endpoints a health check of all endpoints is run one after another.\n" +
			"With --endpoints the given endpoints are validated concurrently.",
		SilenceUsage: true,
		RunE:         runCheck(&flags),
	}

	cmd.Flags().StringVar(&flags.token, "token", "", "the API token to validate with")
	cmd.Flags().StringVar(&flags.accountID, "account", "", "the account id the reports are requested for")
	cmd.Flags().StringSliceVar(&flags.endpoints, "endpoints", nil, "ids of the endpoints to validate concurrently")
	cmd.Flags().StringVar(&flags.dateRange, "date-range", "today", "the date range of batch validations")
	cmd.Flags().StringVarP(&flags.output, "output", "o", outputJSON, "output format, json or yaml")
	_ = cmd.MarkFlagRequired("token")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

// runCheck is the entry point of a one-shot validation
func runCheck(flags *checkFlags) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if flags.output != outputJSON && flags.output != outputYAML {
			return fmt.Errorf("%w: %s", ErrInvalidOutput, flags.output)
		}

		log := logger.NewLogger()
		ctx, cancel := signal.NotifyContext(logger.IntoContext(context.Background(), log), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		cfg, err := loadConfig(ctx)
		if err != nil {
			log.Error("Error while loading the config", "error", err)
			return err
		}
		ctx = httpclient.IntoContext(ctx, httpclient.New(fmt.Sprintf("sealcheck/%s", cmd.Root().Version)))
		runner := healthcheck.NewRunner(healthcheck.ClientFactory(cfg.Upstream.BaseURL))

		var (
			result any
			ok     bool
		)
		if len(flags.endpoints) == 0 {
			summary, err := runner.HealthCheck(ctx, flags.token, flags.accountID)
			if err != nil {
				return err
			}
			result, ok = summary, summary.OverallStatus == healthcheck.StatusHealthy
		} else {
			outcomes, err := runner.Batch(ctx, flags.token, flags.endpoints, flags.accountID, flags.dateRange)
			if err != nil {
				return err
			}
			ok = true
			for _, o := range outcomes {
				ok = ok && o.Success
			}
			result = outcomes
		}

		if err := writeResult(cmd.OutOrStdout(), flags.output, result); err != nil {
			return err
		}
		if !ok {
			return ErrCheckFailed
		}
		return nil
	}
}

// writeResult encodes v in the given output format
func writeResult(w io.Writer, output string, v any) error {
	switch output {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(v)
	default:
		return fmt.Errorf("%w: %s", ErrInvalidOutput, output)
	}
}
