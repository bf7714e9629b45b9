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

package endpoints

import "net/http"

// Identities of the registered endpoints
const (
	AuthAccounts           = "auth_accounts"
	ReportAcquisition      = "report_acquisition"
	ReportConversions      = "report_conversions"
	ReportMicroconversions = "report_microconversions"
	ReportPages            = "report_pages"
	ReportFunnel           = "report_funnel"
	ReportROASEvolution    = "report_roas_evolution"
)

const (
	defaultReportDateRange  = "last_30_days"
	defaultReportLimit      = 100
	descriptionDateRange    = "Date range for the report"
	descriptionAccountID    = "Account ID"
	descriptionResultsLimit = "Max results to return"
)

// allowed values of the enum parameters
var (
	dateRanges = []string{
		"today",
		"yesterday",
		"last_7_days",
		"last_14_days",
		"last_30_days",
		"last_60_days",
		"last_90_days",
		"this_month",
		"last_month",
		"this_week_monday_sunday",
		"this_week_sunday_saturday",
		"this_year",
		"last_year",
	}
	reportTypes       = []string{"Source", "Medium", "Campaign", "Term"}
	timeUnits         = []string{"daily", "weekly", "monthly"}
	funnelReportTypes = []string{"by_source", "by_medium", "by_campaign", "by_landing"}
)

// DateRanges returns the allowed values of the date_range parameter
func DateRanges() []string { return append([]string(nil), dateRanges...) }

// ReportTypes returns the allowed values of the acquisition report_type parameter
func ReportTypes() []string { return append([]string(nil), reportTypes...) }

// TimeUnits returns the allowed values of the time_unit parameter
func TimeUnits() []string { return append([]string(nil), timeUnits...) }

// FunnelReportTypes returns the allowed values of the funnel report_type parameter
func FunnelReportTypes() []string { return append([]string(nil), funnelReportTypes...) }

// catalog is built once and never modified afterwards.
// All accessors hand out copies.
var catalog = []Descriptor{
	{
		ID:          AuthAccounts,
		Name:        "Get Accounts",
		Description: "Retrieves all accounts accessible with the provided API token",
		Method:      http.MethodGet,
		Path:        "/auth/accounts",
		Category:    CategoryAuthentication,
		Parameters:  []Parameter{},
	},
	{
		ID:          ReportAcquisition,
		Name:        "Traffic / Acquisition",
		Description: "Get traffic and acquisition data by source, medium, campaign, or term",
		Method:      http.MethodGet,
		Path:        "/report/acquisition",
		Category:    CategoryReports,
		Parameters: []Parameter{
			accountID(),
			dateRange(),
			{
				Name:        "report_type",
				Type:        TypeEnum,
				Description: "Group data by source, medium, campaign, or term",
				Options:     reportTypes,
				Default:     "Source",
			},
			filter("utm_source", "Filter by UTM source"),
			filter("utm_medium", "Filter by UTM medium"),
			filter("utm_campaign", "Filter by UTM campaign"),
			limit(),
		},
	},
	{
		ID:          ReportConversions,
		Name:        "Conversions",
		Description: "Get conversion and sales data",
		Method:      http.MethodGet,
		Path:        "/report/conversions",
		Category:    CategoryReports,
		Parameters: []Parameter{
			accountID(),
			dateRange(),
			filter("utm_source", "Filter by UTM source"),
			filter("utm_medium", "Filter by UTM medium"),
			filter("utm_campaign", "Filter by UTM campaign"),
			limit(),
		},
	},
	{
		ID:          ReportMicroconversions,
		Name:        "Microconversions",
		Description: "Get microconversion events (add-to-cart, signups, etc.)",
		Method:      http.MethodGet,
		Path:        "/report/microconversions",
		Category:    CategoryReports,
		Parameters: []Parameter{
			accountID(),
			dateRange(),
			filter("label", "Filter by microconversion label"),
			limit(),
		},
	},
	{
		ID:          ReportPages,
		Name:        "Pages Performance",
		Description: "Get page-level performance metrics",
		Method:      http.MethodGet,
		Path:        "/report/pages",
		Category:    CategoryReports,
		Parameters: []Parameter{
			accountID(),
			dateRange(),
			filter("content_grouping", "Group pages by content category"),
			{
				Name:        "show_utms",
				Type:        TypeBoolean,
				Description: "Include UTM parameters in results",
				Default:     false,
			},
			limit(),
		},
	},
	{
		ID:          ReportFunnel,
		Name:        "Funnel Analysis",
		Description: "Get conversion funnel data",
		Method:      http.MethodGet,
		Path:        "/report/funnel",
		Category:    CategoryReports,
		Parameters: []Parameter{
			accountID(),
			dateRange(),
			{
				Name:        "report_type",
				Type:        TypeEnum,
				Description: "Group funnel data by dimension",
				Options:     funnelReportTypes,
				Default:     "by_source",
			},
		},
	},
	{
		ID:          ReportROASEvolution,
		Name:        "ROAS Evolution",
		Description: "Get ROAS (Return on Ad Spend) over time",
		Method:      http.MethodGet,
		Path:        "/report/roas-evolution",
		Category:    CategoryReports,
		Parameters: []Parameter{
			accountID(),
			dateRange(),
			{
				Name:        "time_unit",
				Type:        TypeEnum,
				Description: "Time granularity",
				Options:     timeUnits,
				Default:     "daily",
			},
		},
	},
}

func accountID() Parameter {
	return Parameter{Name: "account_id", Type: TypeString, Required: true, Description: descriptionAccountID}
}

func dateRange() Parameter {
	return Parameter{
		Name:        "date_range",
		Type:        TypeEnum,
		Required:    true,
		Description: descriptionDateRange,
		Options:     dateRanges,
		Default:     defaultReportDateRange,
	}
}

func limit() Parameter {
	return Parameter{Name: "limit", Type: TypeInteger, Description: descriptionResultsLimit, Default: defaultReportLimit}
}

func filter(name, description string) Parameter {
	return Parameter{Name: name, Type: TypeString, Description: description}
}

// List returns the full catalog.
// Authentication endpoints come first, followed by the reports, in declaration order.
func List() []Descriptor {
	all := make([]Descriptor, len(catalog))
	for i, d := range catalog {
		all[i] = d.clone()
	}
	return all
}

// Get returns the descriptor with the given id.
// The boolean is false if no such endpoint is registered.
func Get(id string) (Descriptor, bool) {
	for _, d := range catalog {
		if d.ID == id {
			return d.clone(), true
		}
	}
	return Descriptor{}, false
}

// ByCategory returns the descriptors of the given category in catalog order
func ByCategory(c Category) []Descriptor {
	matches := []Descriptor{}
	for _, d := range catalog {
		if d.Category == c {
			matches = append(matches, d.clone())
		}
	}
	return matches
}

// HealthCheckIDs returns the ids validated by a health check.
// Every registered endpoint is part of it, in catalog order.
func HealthCheckIDs() []string {
	ids := make([]string, 0, len(catalog))
	for _, d := range catalog {
		ids = append(ids, d.ID)
	}
	return ids
}
