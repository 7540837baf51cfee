package commands

import (
	"coindcx-alert-bot/internal/alert"
	"coindcx-alert-bot/internal/price"
	"coindcx-alert-bot/internal/types"
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type staticFeed struct {
	snapshot price.Snapshot
	err      error
}

func (f staticFeed) Fetch(context.Context) (price.Snapshot, error) {
	return f.snapshot, f.err
}

func TestParseSetArguments(t *testing.T) {
	symbol, dir, target, err := ParseSetArguments("vib >= 2.5", "INR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if symbol != "VIBINR" || dir != types.AtOrAbove || !target.Equal(decimal.RequireFromString("2.5")) {
		t.Errorf("unexpected parse result %s %v %s", symbol, dir, target)
	}

	cases := map[string]error{
		"":               ErrUsage,
		"BTCINR >=":      ErrUsage,
		"BTCINR >= 1 2":  ErrUsage,
		"BTCINR > 1":     types.ErrInvalidDirection,
		"BTCINR <= -1":   types.ErrInvalidThreshold,
		"BTCINR <= lots": types.ErrInvalidThreshold,
		"BTCINR >= NaN":  types.ErrInvalidThreshold,
		"BTCINR >= +Inf": types.ErrInvalidThreshold,
	}
	for args, want := range cases {
		if _, _, _, err := ParseSetArguments(args, "INR"); !errors.Is(err, want) {
			t.Errorf("ParseSetArguments(%q): expected %v, got %v", args, want, err)
		}
	}
}

func TestCommandSetEchoesExactTarget(t *testing.T) {
	store := alert.NewStore(nil)

	for _, target := range []string{"100.001", "99.999"} {
		reply, err := CommandSet(store, 42, "xinr >= "+target, "INR")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := "₹" + strings.ReplaceAll(target, ".", "\\."); !strings.HasSuffix(reply, want) {
			t.Errorf("expected reply ending in %q, got %q", want, reply)
		}
	}

	if list := CommandList(store, 42); !strings.Contains(list, "₹100\\.001") || !strings.Contains(list, "₹99\\.999") {
		t.Errorf("unexpected list %q", list)
	}

	reply, err := CommandSet(store, 42, "xinr >= 1e20000000", "INR")
	if !errors.Is(err, types.ErrInvalidThreshold) || !strings.Contains(reply, "Invalid price") {
		t.Errorf("expected an invalid price reply, got %q, %v", reply, err)
	}
}

func TestCommandSetListDelete(t *testing.T) {
	store := alert.NewStore(nil)

	reply, err := CommandSet(store, 42, "btcinr >= 5000000", "INR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(reply, "\\#1") || !strings.Contains(reply, "BTCINR") || !strings.Contains(reply, "5,000,000") {
		t.Errorf("unexpected reply %q", reply)
	}

	list := CommandList(store, 42)
	if !strings.Contains(list, "\\#1 *BTCINR* \\>\\= ₹5,000,000") {
		t.Errorf("unexpected list %q", list)
	}

	reply, err = CommandDelete(store, 42, "#1")
	if err != nil || !strings.Contains(reply, "deleted") {
		t.Errorf("unexpected delete reply %q, %v", reply, err)
	}
	if len(store.List(42)) != 0 {
		t.Error("alert should be gone")
	}

	reply, err = CommandDelete(store, 42, "1")
	if err != nil || !strings.Contains(reply, "not found") {
		t.Errorf("deleting a missing alert should report not found, got %q, %v", reply, err)
	}

	if _, err := CommandDelete(store, 42, "first"); !errors.Is(err, ErrUsage) {
		t.Errorf("expected ErrUsage, got %v", err)
	}
}

func TestCommandSetErrors(t *testing.T) {
	store := alert.NewStore(nil)

	reply, err := CommandSet(store, 42, "BTCINR > 1", "INR")
	if !errors.Is(err, types.ErrInvalidDirection) || !strings.Contains(reply, "Invalid operator") {
		t.Errorf("unexpected reply %q, %v", reply, err)
	}

	reply, err = CommandSet(store, 42, "BTCINR", "INR")
	if !errors.Is(err, ErrUsage) || !strings.Contains(reply, "Usage") {
		t.Errorf("unexpected reply %q, %v", reply, err)
	}

	if len(store.List(42)) != 0 {
		t.Error("invalid commands must not create alerts")
	}
}

func TestCommandListEmpty(t *testing.T) {
	if reply := CommandList(alert.NewStore(nil), 42); !strings.Contains(reply, "no active alerts") {
		t.Errorf("unexpected reply %q", reply)
	}
}

func TestCommandPrice(t *testing.T) {
	feed := staticFeed{snapshot: price.Snapshot{"VIBINR": decimal.RequireFromString("2.05")}}

	reply, err := CommandPrice(context.Background(), feed, "vib", "INR")
	if err != nil {
		t.Fatal(err)
	}
	if reply != "📊 *VIBINR* price: ₹2\\.05" {
		t.Errorf("unexpected reply %q", reply)
	}

	reply, err = CommandPrice(context.Background(), feed, "DOGEINR", "INR")
	if err != nil || !strings.Contains(reply, "not found") {
		t.Errorf("unexpected reply %q, %v", reply, err)
	}

	_, err = CommandPrice(context.Background(), staticFeed{err: price.ErrFeedUnavailable}, "VIBINR", "INR")
	if !errors.Is(err, price.ErrFeedUnavailable) {
		t.Errorf("expected ErrFeedUnavailable, got %v", err)
	}

	if _, err := CommandPrice(context.Background(), feed, " ", "INR"); !errors.Is(err, ErrUsage) {
		t.Errorf("expected ErrUsage, got %v", err)
	}
}
