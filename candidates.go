package medglot

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Candidate identifies one record to translate, either by catalog item code
// (resolved to a route key through the store) or directly by route key.
type Candidate struct {
	ItemCode string
	RouteKey string
}

// routePattern extracts the route key from a catalog URL.
var routePattern = regexp.MustCompile(`/medicine/([^?]+)`)

// ExtractRouteKey pulls the route key out of a catalog URL.
// Returns "" when the URL carries no /medicine/<routeKey> segment.
func ExtractRouteKey(url string) string {
	m := routePattern.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// ReadCandidates parses the tabular input into an ordered candidate list.
// The first row is the header; a "dd_item_code" column yields item codes,
// a "route_name" or "url" column yields route keys (URLs are unwrapped).
// Blank cells are skipped. The input order is preserved.
func ReadCandidates(r io.Reader) ([]Candidate, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	codeCol, routeCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "dd_item_code", "pos_item_code", "item_code":
			codeCol = i
		case "route_name", "route", "url":
			routeCol = i
		}
	}
	if codeCol < 0 && routeCol < 0 {
		return nil, fmt.Errorf("input has neither an item-code nor a route column: %v", header)
	}

	var out []Candidate
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}

		if codeCol >= 0 && codeCol < len(row) {
			if code := strings.TrimSpace(row[codeCol]); code != "" {
				out = append(out, Candidate{ItemCode: code})
				continue
			}
		}
		if routeCol >= 0 && routeCol < len(row) {
			cell := strings.TrimSpace(row[routeCol])
			if cell == "" {
				continue
			}
			if route := ExtractRouteKey(cell); route != "" {
				out = append(out, Candidate{RouteKey: route})
			} else {
				out = append(out, Candidate{RouteKey: cell})
			}
		}
	}
	return out, nil
}
