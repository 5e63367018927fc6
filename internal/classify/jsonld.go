package classify

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	domain "github.com/donaldgifford/restock-monitor/pkg/types"
)

const ldJSONSelector = `script[type="application/ld+json"]`

// structuredAvailability scans embedded JSON-LD documents for an offer
// availability. Unparsable documents are skipped; the first parse failure is
// returned wrapped in ErrParseAmbiguity so an Unknown verdict can say why.
// It returns Unknown when no document carries an InStock or OutOfStock marker.
func structuredAvailability(body string) (domain.Availability, string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return domain.Unknown, "", fmt.Errorf("%w: %w", domain.ErrParseAmbiguity, err)
	}

	var parseErr error
	result, value := domain.Unknown, ""
	doc.Find(ldJSONSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		nodes, err := decodeLD(s.Text())
		if err != nil {
			if parseErr == nil {
				parseErr = fmt.Errorf("%w: %w", domain.ErrParseAmbiguity, err)
			}
			return true
		}
		for _, node := range nodes {
			avail := offerAvailability(node)
			switch {
			case strings.Contains(avail, "InStock"):
				result, value = domain.InStock, avail
				return false
			case strings.Contains(avail, "OutOfStock"):
				result, value = domain.OutOfStock, avail
				return false
			}
		}
		return true
	})

	if result.Known() {
		return result, value, nil
	}
	return result, value, parseErr
}

// decodeLD returns the top-level objects of a JSON-LD script: the document
// itself, each element of a top-level array, and each @graph member.
func decodeLD(raw string) ([]map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, err
	}

	var out []map[string]any
	var walk func(v any)
	walk = func(v any) {
		switch t := v.(type) {
		case map[string]any:
			out = append(out, t)
			if g, ok := t["@graph"].([]any); ok {
				for _, n := range g {
					walk(n)
				}
			}
		case []any:
			for _, n := range t {
				walk(n)
			}
		}
	}
	walk(v)

	return out, nil
}

// offerAvailability reads offers.availability, taking the first offer when
// offers is a list.
func offerAvailability(node map[string]any) string {
	offers := node["offers"]
	if list, ok := offers.([]any); ok {
		if len(list) == 0 {
			return ""
		}
		offers = list[0]
	}

	m, ok := offers.(map[string]any)
	if !ok {
		return ""
	}

	s, _ := m["availability"].(string)
	return s
}
