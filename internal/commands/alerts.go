package commands

import (
	"coindcx-alert-bot/internal/price"
	"coindcx-alert-bot/internal/types"
	"coindcx-alert-bot/lib/helpers"
	"coindcx-alert-bot/lib/translation"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

var ErrUsage = errors.New("bad command usage")

// AlertStore is the part of the alert registry the chat commands need.
type AlertStore interface {
	Add(owner int64, symbol string, direction types.Direction, target decimal.Decimal) (int64, error)
	List(owner int64) []types.Alert
	Remove(owner, id int64) bool
}

func CommandHelp() string {
	return helpers.EscapeMarkdownV2(translation.Translate(
		"👋 Welcome to CoinDCX INR Alert Bot!\n\n" +
			"Commands:\n" +
			"/set SYMBOL >=|<= PRICE - create an alert\n" +
			"/alerts - list your alerts\n" +
			"/delete ID - delete an alert\n" +
			"/price SYMBOL - current price\n\n" +
			"Example: /set VIBINR >= 2"))
}

// ParseSetArguments parses "SYMBOL >=|<= PRICE".
func ParseSetArguments(args, quote string) (string, types.Direction, decimal.Decimal, error) {
	fields := strings.Fields(args)
	if len(fields) != 3 {
		return "", 0, decimal.Zero, errors.Wrapf(ErrUsage, "expected 3 arguments, got %d", len(fields))
	}

	symbol := price.NormalizeSymbol(fields[0], quote)
	direction, err := types.ParseDirection(fields[1])
	if err != nil {
		return "", 0, decimal.Zero, err
	}
	target, err := types.ParseThreshold(fields[2])
	if err != nil {
		return "", 0, decimal.Zero, err
	}
	return symbol, direction, target, nil
}

func CommandSet(store AlertStore, chatID int64, args, quote string) (string, error) {
	log.Debugf("processing command /set with argument :%s", args)

	usage := helpers.EscapeMarkdownV2(translation.Translate("❌ Usage: /set SYMBOL >=|<= PRICE\nExample: /set VIBINR >= 2"))

	symbol, direction, target, err := ParseSetArguments(args, quote)
	if err == nil {
		var id int64
		if id, err = store.Add(chatID, symbol, direction, target); err == nil {
			return fmt.Sprintf(
				translation.Translate("✅ Alert \\#%d set: *%s* %s ₹%s"),
				id,
				helpers.EscapeMarkdownV2(symbol),
				helpers.EscapeMarkdownV2(direction.String()),
				helpers.FormatThreshold(target, true),
			), nil
		}
	}

	switch {
	case errors.Is(err, types.ErrInvalidDirection):
		return helpers.EscapeMarkdownV2(translation.Translate("❌ Invalid operator. Use >= or <=")), err
	case errors.Is(err, types.ErrInvalidThreshold):
		return helpers.EscapeMarkdownV2(translation.Translate("❌ Invalid price. Use a non-negative number, e.g. 2 or 0.05")), err
	}
	return usage, errors.Wrap(err, "command /set")
}

func CommandList(store AlertStore, chatID int64) string {
	alerts := store.List(chatID)
	if len(alerts) == 0 {
		return helpers.EscapeMarkdownV2(translation.Translate("You have no active alerts. Create one with /set SYMBOL >= PRICE"))
	}

	var list strings.Builder
	list.WriteString(translation.TranslateN("🔔 *You have %d active alert:*\n\n", "🔔 *You have %d active alerts:*\n\n", len(alerts), len(alerts)))
	for _, a := range alerts {
		list.WriteString(fmt.Sprintf(
			translation.Translate("\\#%d *%s* %s ₹%s _\\(%s\\)_\n"),
			a.ID,
			helpers.EscapeMarkdownV2(a.Symbol),
			helpers.EscapeMarkdownV2(a.Direction.String()),
			helpers.FormatThreshold(a.Target, true),
			helpers.EscapeMarkdownV2(helpers.FormatDate(a.CreatedAt)),
		))
	}
	list.WriteString(helpers.EscapeMarkdownV2(translation.Translate("\nDelete one with /delete ID")))
	return list.String()
}

func CommandDelete(store AlertStore, chatID int64, args string) (string, error) {
	log.Debugf("processing command /delete with argument :%s", args)

	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(args), "#"), 10, 64)
	if err != nil {
		return helpers.EscapeMarkdownV2(translation.Translate("❌ Usage: /delete ID\nSee /alerts for your alert IDs")),
			errors.Wrapf(ErrUsage, "command /delete: %q", args)
	}

	if !store.Remove(chatID, id) {
		return fmt.Sprintf(translation.Translate("⚠️ Alert \\#%d not found\\. It may have already fired\\."), id), nil
	}
	return fmt.Sprintf(translation.Translate("🗑 Alert \\#%d deleted\\."), id), nil
}
