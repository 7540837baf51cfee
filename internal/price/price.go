package price

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var ErrFeedUnavailable = errors.New("price feed unavailable")

// Snapshot maps a normalized symbol to its last traded price at one fetch instant.
type Snapshot map[string]decimal.Decimal

// Get returns the price for symbol; a missing symbol and an empty feed look the same.
func (s Snapshot) Get(symbol string) (decimal.Decimal, bool) {
	p, ok := s[symbol]
	return p, ok
}

// Feed fetches current prices for every symbol from a single upstream source.
type Feed interface {
	Fetch(ctx context.Context) (Snapshot, error)
}

// NormalizeSymbol turns user input such as "btc" into the canonical "BTCINR".
func NormalizeSymbol(input, quote string) string {
	symbol := strings.ToUpper(strings.TrimSpace(input))
	quote = strings.ToUpper(quote)
	if symbol == "" || strings.HasSuffix(symbol, quote) {
		return symbol
	}
	return symbol + quote
}

// marketSymbol confirms an upstream market trades against quote and returns it normalized.
func marketSymbol(market, quote string) (string, bool) {
	symbol := strings.ToUpper(strings.TrimSpace(market))
	quote = strings.ToUpper(quote)
	if len(symbol) <= len(quote) || !strings.HasSuffix(symbol, quote) {
		return "", false
	}
	return symbol, true
}

func parsePrice(raw string) (decimal.Decimal, bool) {
	raw = strings.Trim(strings.TrimSpace(raw), `"`)
	if raw == "" || raw == "null" {
		return decimal.Zero, false
	}
	p, err := decimal.NewFromString(raw)
	if err != nil || p.IsNegative() {
		return decimal.Zero, false
	}
	return p, true
}
