package alert

import (
	"coindcx-alert-bot/internal/price"
	"coindcx-alert-bot/internal/types"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

func alertFor(id int64, symbol string, dir types.Direction, target int64) types.Alert {
	return types.Alert{ID: id, Symbol: symbol, Direction: dir, Target: decimal.NewFromInt(target)}
}

func TestEvaluateDirections(t *testing.T) {
	cases := []struct {
		name  string
		dir   types.Direction
		price string
		want  bool
	}{
		{"above at target", types.AtOrAbove, "100", true},
		{"above over target", types.AtOrAbove, "150", true},
		{"above just under", types.AtOrAbove, "99.999", false},
		{"below at target", types.AtOrBelow, "100", true},
		{"below under target", types.AtOrBelow, "50", true},
		{"below just over", types.AtOrBelow, "100.001", false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			snapshot := price.Snapshot{"BTCINR": decimal.RequireFromString(c.price)}
			all := map[int64][]types.Alert{1: {alertFor(1, "BTCINR", c.dir, 100)}}

			got := Evaluate(snapshot, all)
			if (len(got) == 1) != c.want {
				t.Errorf("expected match=%v, got %+v", c.want, got)
			}
		})
	}
}

func TestEvaluateSkipsMissingSymbols(t *testing.T) {
	all := map[int64][]types.Alert{1: {alertFor(1, "VIBINR", types.AtOrAbove, 0)}}

	if got := Evaluate(price.Snapshot{"BTCINR": decimal.NewFromInt(1)}, all); len(got) != 0 {
		t.Errorf("alert without a price must not match, got %+v", got)
	}
	if got := Evaluate(price.Snapshot{}, all); len(got) != 0 {
		t.Errorf("empty snapshot must not match, got %+v", got)
	}
	if got := Evaluate(nil, all); len(got) != 0 {
		t.Errorf("nil snapshot must not match, got %+v", got)
	}
}

func TestEvaluateOrderAndDeterminism(t *testing.T) {
	snapshot := price.Snapshot{
		"BTCINR": decimal.NewFromInt(150),
		"ETHINR": decimal.NewFromInt(10),
	}
	all := map[int64][]types.Alert{
		30: {alertFor(1, "ETHINR", types.AtOrBelow, 20)},
		10: {
			alertFor(4, "BTCINR", types.AtOrAbove, 200),
			alertFor(2, "BTCINR", types.AtOrAbove, 100),
			alertFor(3, "ETHINR", types.AtOrBelow, 10),
		},
		20: {alertFor(1, "BTCINR", types.AtOrBelow, 100)},
	}

	first := Evaluate(snapshot, all)

	type key struct{ owner, id int64 }
	var got []key
	for _, m := range first {
		got = append(got, key{m.Owner, m.Alert.ID})
	}
	want := []key{{10, 2}, {10, 3}, {30, 1}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if !first[0].Price.Equal(decimal.NewFromInt(150)) {
		t.Errorf("expected the matched price to be carried, got %s", first[0].Price)
	}

	for i := 0; i < 20; i++ {
		if again := Evaluate(snapshot, all); !reflect.DeepEqual(first, again) {
			t.Fatalf("evaluate is not deterministic: %v vs %v", first, again)
		}
	}
	if len(all[10]) != 3 {
		t.Error("evaluate must not modify its input")
	}
}
