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
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3gen"

	"github.com/sealmetrics/sealcheck/internal/logger"
)

// Info describes the service in the OpenAPI document
type Info struct {
	Title       string
	Description string
	Version     string
}

// GenerateSpec generates the OpenAPI document of the given routes.
// Routes without a REST method are left out.
func GenerateSpec(ctx context.Context, info Info, routes []Route) (openapi3.T, error) {
	log := logger.FromContext(ctx)
	doc := openapi3.T{
		OpenAPI: "3.0.0",
		Info: &openapi3.Info{
			Title:       info.Title,
			Description: info.Description,
			Version:     info.Version,
		},
		Paths:      make(openapi3.Paths),
		Extensions: make(map[string]any),
		Components: &openapi3.Components{
			Schemas: make(openapi3.Schemas),
		},
		Servers: openapi3.Servers{},
	}

	errSchema, err := openapi3gen.NewSchemaRefForValue(ErrorResponse{}, doc.Components.Schemas)
	if err != nil {
		return openapi3.T{}, &ErrCreateOpenapiSchema{name: "ErrorResponse", err: err}
	}

	for _, route := range routes {
		if route.Method != http.MethodGet && route.Method != http.MethodPost {
			continue
		}

		op, err := operation(route, errSchema)
		if err != nil {
			log.Error("Failed to get schema for route", "path", route.Path, "error", err)
			return openapi3.T{}, &ErrCreateOpenapiSchema{name: route.Path, err: err}
		}

		item, ok := doc.Paths[route.Path]
		if !ok {
			item = &openapi3.PathItem{}
			doc.Paths[route.Path] = item
		}
		item.SetOperation(route.Method, op)
	}

	return doc, nil
}

func operation(route Route, errSchema *openapi3.SchemaRef) (*openapi3.Operation, error) {
	op := openapi3.NewOperation()
	op.Summary = route.Summary
	op.Tags = route.Tags

	for _, name := range pathParams(route.Path) {
		op.AddParameter(openapi3.NewPathParameter(name).WithSchema(openapi3.NewStringSchema()))
	}
	for _, name := range route.Query {
		op.AddParameter(openapi3.NewQueryParameter(name).WithSchema(openapi3.NewStringSchema()))
	}

	if route.Request != nil {
		ref, err := openapi3gen.NewSchemaRefForValue(route.Request, openapi3.Schemas{})
		if err != nil {
			return nil, err
		}
		op.RequestBody = &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchemaRef(ref),
		}
	}

	desc := fmt.Sprintf("Successful %s %s", route.Method, route.Path)
	ok := openapi3.NewResponse().WithDescription(desc)
	if route.Response != nil {
		ref, err := openapi3gen.NewSchemaRefForValue(route.Response, openapi3.Schemas{})
		if err != nil {
			return nil, err
		}
		ok = ok.WithJSONSchemaRef(ref)
	}
	op.AddResponse(http.StatusOK, ok)

	failed := openapi3.NewResponse().WithDescription("Request failed").WithJSONSchemaRef(errSchema)
	op.AddResponse(0, failed)

	return op, nil
}

// pathParams returns the names of the chi url parameters of path in sorted order
func pathParams(path string) []string {
	var names []string
	for _, seg := range strings.Split(path, "/") {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			names = append(names, strings.TrimSuffix(strings.TrimPrefix(seg, "{"), "}"))
		}
	}
	sort.Strings(names)
	return names
}
