package helpers

import (
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"strings"
	"time"
)

func EscapeMarkdownV2(text string) string {
	charactersToEscape := []string{"\\", ".", "-", "_", "*", "[", "]", "(", ")", "~", "`", ">", "<", "#", "+", "=", "|", "{", "}", "!"}

	for _, char := range charactersToEscape {
		text = strings.ReplaceAll(text, char, "\\"+char)
	}
	return text
}

// FormatPrice renders a price with thousands separators, using fewer decimals for larger values.
func FormatPrice(price decimal.Decimal, escapeMarkdown bool) string {
	decimals := 6

	abs := price.Abs()
	if abs.GreaterThanOrEqual(decimal.NewFromInt(1000)) {
		decimals = 0
	} else if abs.GreaterThan(decimal.RequireFromString("1.2")) {
		decimals = 2
	} else if !abs.IsZero() && abs.LessThan(decimal.RequireFromString("0.00001")) {
		decimals = 8
	}

	p := message.NewPrinter(language.English)
	formatted := p.Sprintf("%.*f", decimals, price.InexactFloat64())

	if escapeMarkdown {
		return EscapeMarkdownV2(formatted)
	}
	return formatted
}

// FormatThreshold renders a user supplied target with thousands separators,
// keeping every significant digit so distinct targets never look alike.
func FormatThreshold(target decimal.Decimal, escapeMarkdown bool) string {
	whole := target.Truncate(0)
	formatted := humanize.BigComma(whole.BigInt())
	if frac := target.Sub(whole).Abs(); !frac.IsZero() {
		formatted += strings.TrimPrefix(frac.String(), "0")
	}

	if escapeMarkdown {
		return EscapeMarkdownV2(formatted)
	}
	return formatted
}

// FormatDate renders t relative to now, e.g. "3 minutes ago".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return humanize.Time(t)
}
