package medglot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// CatalogBaseURL prefixes route keys when rendering remediation reports.
const CatalogBaseURL = "https://www.dawadost.example/medicine/"

// IncompleteReport lists source records that cannot be translated until
// their required fields are filled in.
type IncompleteReport struct {
	store  Store
	source Language
}

// NewIncompleteReport creates a report generator for the source language.
func NewIncompleteReport(store Store, source Language) *IncompleteReport {
	return &IncompleteReport{store: store, source: source}
}

// Collect resolves the candidates and returns the route keys whose source
// record is missing required fields.
func (r *IncompleteReport) Collect(ctx context.Context, candidates []Candidate) ([]string, error) {
	var codes []string
	var routes []string
	for _, c := range candidates {
		if c.RouteKey != "" {
			routes = append(routes, c.RouteKey)
		} else if c.ItemCode != "" {
			codes = append(codes, c.ItemCode)
		}
	}
	if len(codes) > 0 {
		routeMap, err := r.store.RouteKeys(ctx, codes)
		if err != nil {
			return nil, err
		}
		for _, code := range codes {
			if route, ok := routeMap[code]; ok {
				routes = append(routes, route)
			}
		}
	}

	return r.store.IncompleteRoutes(ctx, routes, r.source.Code)
}

// RouteURLs renders route keys as catalog URLs.
func RouteURLs(routeKeys []string) []string {
	urls := make([]string, len(routeKeys))
	for i, route := range routeKeys {
		urls[i] = CatalogBaseURL + route
	}
	return urls
}

// WriteIncompleteReport writes the route list as pretty-printed JSON,
// suitable for a separate remediation workflow.
func WriteIncompleteReport(path string, routeKeys []string) error {
	urls := RouteURLs(routeKeys)
	data, err := json.MarshalIndent(urls, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
