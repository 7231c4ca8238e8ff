package medglot

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// formatMarkers matches words denoting serialization markup that must never
// appear in translated scalar text.
var formatMarkers = regexp.MustCompile(`(?i)\b(json|jsonb|markdown)\b`)

// ValidateField structurally verifies a translated value against its source
// counterpart. Any panic during comparison counts as a validation failure.
func ValidateField(field Field, source, translated any) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	if isEmptyValue(source) {
		// Absent fields pass through untranslated.
		return isEmptyValue(translated)
	}

	switch field.Kind {
	case KindString:
		return validateString(field, source, translated)
	case KindStringList:
		_, srcOK := source.([]string)
		_, dstOK := translated.([]string)
		return srcOK && dstOK
	case KindObjectList:
		return validateObjectList(field, source, translated)
	}
	return false
}

func validateString(field Field, source, translated any) bool {
	src, ok := source.(string)
	if !ok {
		return false
	}
	dst, ok := translated.(string)
	if !ok {
		return false
	}

	if startsWithBracket(dst) && !startsWithBracket(src) {
		return false
	}
	if endsWithBracket(dst) && !endsWithBracket(src) {
		return false
	}
	if strings.Contains(dst, "```") || formatMarkers.MatchString(dst) {
		return false
	}

	if field.HTML {
		return sameTagStructure(src, dst)
	}
	return true
}

func startsWithBracket(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{")
}

func endsWithBracket(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasSuffix(s, "]") || strings.HasSuffix(s, "}")
}

// validateObjectList checks that both sides are object lists of equal length
// and that every protected subkey survived byte-identical, item by item.
func validateObjectList(field Field, source, translated any) bool {
	src, ok := source.([]map[string]any)
	if !ok {
		return false
	}
	dst, ok := translated.([]map[string]any)
	if !ok {
		return false
	}
	if len(src) != len(dst) {
		return false
	}

	for i := range src {
		for _, key := range field.Protected {
			srcVal, srcHas := src[i][key]
			dstVal, dstHas := dst[i][key]
			if srcHas != dstHas {
				return false
			}
			if !srcHas {
				continue
			}
			srcRaw, err := json.Marshal(srcVal)
			if err != nil {
				return false
			}
			dstRaw, err := json.Marshal(dstVal)
			if err != nil {
				return false
			}
			if string(srcRaw) != string(dstRaw) {
				return false
			}
		}
	}
	return true
}

// sameTagStructure reports whether two HTML fragments carry the same element
// tags with the same multiplicities. Plain text on both sides passes.
func sameTagStructure(src, dst string) bool {
	srcTags, err := tagCounts(src)
	if err != nil {
		return false
	}
	dstTags, err := tagCounts(dst)
	if err != nil {
		return false
	}
	if len(srcTags) != len(dstTags) {
		return false
	}
	for tag, n := range srcTags {
		if dstTags[tag] != n {
			return false
		}
	}
	return true
}

func tagCounts(fragment string) (map[string]int, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	doc.Find("body *").Each(func(_ int, sel *goquery.Selection) {
		if tag := goquery.NodeName(sel); tag != "" {
			counts[tag]++
		}
	})
	return counts, nil
}
