package commands

import (
	"coindcx-alert-bot/internal/price"
	"coindcx-alert-bot/lib/helpers"
	"coindcx-alert-bot/lib/translation"
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

func CommandPrice(ctx context.Context, feed price.Feed, argument, quote string) (string, error) {
	log.Debugf("processing command /price with argument :%s", argument)

	symbol := price.NormalizeSymbol(strings.TrimSpace(argument), quote)
	if symbol == "" {
		return helpers.EscapeMarkdownV2(translation.Translate("❌ Usage: /price SYMBOL\nExample: /price VIBINR")),
			errors.Wrap(ErrUsage, "command /price")
	}

	snapshot, err := feed.Fetch(ctx)
	if err != nil {
		return helpers.EscapeMarkdownV2(translation.Translate("❌ Prices are unavailable right now, try again later.")),
			errors.Wrap(err, "command /price")
	}

	p, ok := snapshot.Get(symbol)
	if !ok {
		return fmt.Sprintf(translation.Translate("❌ Symbol *%s* not found\\."), helpers.EscapeMarkdownV2(symbol)), nil
	}

	return fmt.Sprintf(
		translation.Translate("📊 *%s* price: ₹%s"),
		helpers.EscapeMarkdownV2(symbol),
		helpers.FormatPrice(p, true),
	), nil
}
