package alert

import (
	"coindcx-alert-bot/internal/types"
	"coindcx-alert-bot/lib/helpers"
	"coindcx-alert-bot/lib/translation"
	"fmt"
)

// RenderNotification builds the MarkdownV2 text sent when m fires.
func RenderNotification(m Match) string {
	icon := "📈"
	if m.Alert.Direction == types.AtOrBelow {
		icon = "📉"
	}

	return fmt.Sprintf(
		translation.Translate("%s *%s* \\= ₹%s \\(%s ₹%s\\)"),
		icon,
		helpers.EscapeMarkdownV2(m.Alert.Symbol),
		helpers.FormatPrice(m.Price, true),
		helpers.EscapeMarkdownV2(m.Alert.Direction.String()),
		helpers.FormatThreshold(m.Alert.Target, true),
	)
}
