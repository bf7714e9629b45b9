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

import (
	"fmt"
	"strings"
)

// Category groups the endpoints of the reporting API
type Category string

const (
	CategoryAuthentication Category = "authentication"
	CategoryReports        Category = "reports"
	CategoryEvents         Category = "events"
)

// categories holds every category in declaration order
var categories = []Category{CategoryAuthentication, CategoryReports, CategoryEvents}

// ParseCategory returns the category with the given id
func ParseCategory(s string) (Category, error) {
	for _, c := range categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// CategoryInfo is the display form of a category
type CategoryInfo struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Categories returns all categories with their display names
func Categories() []CategoryInfo {
	infos := make([]CategoryInfo, 0, len(categories))
	for _, c := range categories {
		infos = append(infos, CategoryInfo{ID: string(c), Name: title(string(c))})
	}
	return infos
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParameterType is the value type a parameter accepts
type ParameterType string

const (
	TypeString  ParameterType = "string"
	TypeInteger ParameterType = "integer"
	TypeBoolean ParameterType = "boolean"
	TypeEnum    ParameterType = "enum"
)

// Parameter describes one query parameter of an endpoint
type Parameter struct {
	Name        string        `json:"name" yaml:"name"`
	Type        ParameterType `json:"type" yaml:"type"`
	Required    bool          `json:"required" yaml:"required"`
	Description string        `json:"description" yaml:"description"`
	// Options lists the allowed values of an enum parameter
	Options []string `json:"options,omitempty" yaml:"options,omitempty"`
	Default any      `json:"default,omitempty" yaml:"default,omitempty"`
}

// Descriptor is the static description of a remote endpoint
type Descriptor struct {
	ID          string      `json:"id" yaml:"id"`
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description" yaml:"description"`
	Method      string      `json:"method" yaml:"method"`
	Path        string      `json:"path" yaml:"path"`
	Category    Category    `json:"category" yaml:"category"`
	Parameters  []Parameter `json:"parameters" yaml:"parameters"`
}

// clone returns a copy of d that shares no slices with d
func (d Descriptor) clone() Descriptor {
	params := make([]Parameter, len(d.Parameters))
	for i, p := range d.Parameters {
		if p.Options != nil {
			p.Options = append([]string(nil), p.Options...)
		}
		params[i] = p
	}
	d.Parameters = params
	return d
}
