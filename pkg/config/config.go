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

// DefaultBaseURL is the base url of the public reporting API
const DefaultBaseURL = "https://app.sealmetrics.com/api"

// Config is the runtime configuration of the validator
type Config struct {
	Api      ApiConfig      `yaml:"api" mapstructure:"api"`
	Upstream UpstreamConfig `yaml:"upstream" mapstructure:"upstream"`
}

// ApiConfig is the configuration for the validation API
type ApiConfig struct {
	ListeningAddress string     `yaml:"address" mapstructure:"address"`
	Cors             CorsConfig `yaml:"cors" mapstructure:"cors"`
}

// CorsConfig defines which browser origins may call the API
type CorsConfig struct {
	AllowedOrigins []string `yaml:"allowedOrigins" mapstructure:"allowedOrigins"`
}

// UpstreamConfig is the configuration of the validated reporting API
type UpstreamConfig struct {
	BaseURL string `yaml:"baseUrl" mapstructure:"baseUrl"`
}

// NewConfig creates a new Config with the default settings
func NewConfig() *Config {
	return &Config{
		Api: ApiConfig{
			ListeningAddress: ":8080",
			Cors: CorsConfig{
				AllowedOrigins: []string{"http://localhost:3000", "https://api-validator.sealmetrics.com"},
			},
		},
		Upstream: UpstreamConfig{
			BaseURL: DefaultBaseURL,
		},
	}
}
