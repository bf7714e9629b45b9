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
	"time"

	"github.com/spf13/cobra"

	"github.com/sealmetrics/sealcheck/internal/logger"
	"github.com/sealmetrics/sealcheck/pkg/healthz"
)

const healthzTimeout = 10 * time.Second

// ErrUnhealthy is returned when a running instance is not healthy
var ErrUnhealthy = errors.New("sealcheck is unhealthy")

// NewCmdHealthz creates a new healthz command
func NewCmdHealthz() *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:          "healthz",
		Short:        "Check the health of a running instance",
		Long:         `Probes the health, metrics and endpoints routes of the api listening on the given address`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.NewLogger()
			ctx, cancel := context.WithTimeout(logger.IntoContext(context.Background(), log), healthzTimeout)
			defer cancel()

			if err := healthz.NewProber(address).Probe(ctx); err != nil {
				return fmt.Errorf("%w: %w", ErrUnhealthy, err)
			}
			log.Info("Sealcheck is healthy", "address", address)
			return nil
		},
	}

	cmd.Flags().StringVar(&address, "address", ":8080", "the address the api is listening on")

	return cmd
}
