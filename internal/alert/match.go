package alert

import (
	"coindcx-alert-bot/internal/price"
	"coindcx-alert-bot/internal/types"
	"sort"

	"github.com/shopspring/decimal"
)

// Match is an alert whose condition holds for the observed price.
type Match struct {
	Owner int64
	Alert types.Alert
	Price decimal.Decimal
}

// Evaluate returns the alerts satisfied by snapshot, ordered by owner and then
// by stored order. Alerts without a price in the snapshot are skipped.
func Evaluate(snapshot price.Snapshot, all map[int64][]types.Alert) []Match {
	owners := make([]int64, 0, len(all))
	for owner := range all {
		owners = append(owners, owner)
	}
	sort.Slice(owners, func(i, j int) bool { return owners[i] < owners[j] })

	var matches []Match
	for _, owner := range owners {
		for _, a := range all[owner] {
			p, ok := snapshot.Get(a.Symbol)
			if !ok {
				continue
			}
			if a.Direction.Satisfied(p, a.Target) {
				matches = append(matches, Match{Owner: owner, Alert: a, Price: p})
			}
		}
	}
	return matches
}
