// Package classify decides product availability from a fetched page.
//
// The decision procedure is a strict priority list: transport failure, 404,
// other non-200 status, in-stock keywords, out-of-stock keywords, embedded
// JSON-LD offers, and finally Unknown. The classifier never returns an error;
// every failure is an Unknown verdict with a reason.
package classify

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/donaldgifford/restock-monitor/internal/fetch"
	domain "github.com/donaldgifford/restock-monitor/pkg/types"
)

// ReasonUndeterminable is reported when no rule matched.
const ReasonUndeterminable = "undeterminable, page structure may have changed"

// Keywords holds the substring lists scanned in order. The first match wins.
type Keywords struct {
	InStock    []string
	OutOfStock []string
}

// DefaultKeywords returns the Japanese Apple Store purchase and unavailability
// phrases plus the structured-data availability markers.
func DefaultKeywords() Keywords {
	return Keywords{
		InStock: []string{
			"カートに入れる",
			"今すぐ購入",
			`"availability":"InStock"`,
			`"availability": "InStock"`,
		},
		OutOfStock: []string{
			"現在ご注文いただけません",
			"在庫がありません",
			"売り切れ",
			`"availability":"OutOfStock"`,
			`"availability": "OutOfStock"`,
		},
	}
}

// TemporarilyUnavailable are the secondary out-of-stock phrases seen on the
// older product page layout.
func TemporarilyUnavailable() []string {
	return []string{"在庫切れ", "現在ご利用いただけません"}
}

// Classifier maps fetch results to availability verdicts.
type Classifier struct {
	inStock    []string
	outOfStock []string
}

// New creates a Classifier. The keyword slices are copied so later mutation
// by the caller has no effect.
func New(kw Keywords) *Classifier {
	return &Classifier{
		inStock:    append([]string(nil), kw.InStock...),
		outOfStock: append([]string(nil), kw.OutOfStock...),
	}
}

// Classify returns the availability and a human-readable reason.
func (c *Classifier) Classify(res fetch.Result) (domain.Availability, string) {
	if res.Failed() {
		return domain.Unknown, fmt.Sprintf("connection error: %v", res.Err)
	}

	if res.StatusCode == http.StatusNotFound {
		return domain.OutOfStock, "404 Not Found (page unpublished)"
	}

	if res.StatusCode != http.StatusOK {
		return domain.Unknown, fmt.Sprintf("%v: HTTP %d", domain.ErrUnexpectedStatus, res.StatusCode)
	}

	if kw, ok := firstMatch(res.Body, c.inStock); ok {
		return domain.InStock, fmt.Sprintf("in stock (keyword: %s)", kw)
	}

	if kw, ok := firstMatch(res.Body, c.outOfStock); ok {
		return domain.OutOfStock, fmt.Sprintf("out of stock (keyword: %s)", kw)
	}

	avail, value, err := structuredAvailability(res.Body)
	switch {
	case avail == domain.InStock:
		return avail, fmt.Sprintf("in stock (JSON-LD: %s)", value)
	case avail == domain.OutOfStock:
		return avail, fmt.Sprintf("out of stock (JSON-LD: %s)", value)
	case err != nil:
		return domain.Unknown, fmt.Sprintf("%s (%v)", ReasonUndeterminable, err)
	}

	return domain.Unknown, ReasonUndeterminable
}

func firstMatch(body string, keywords []string) (string, bool) {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(body, kw) {
			return kw, true
		}
	}
	return "", false
}
