package database

import (
	"bytes"
	"coindcx-alert-bot/internal/types"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func openTemp(t *testing.T) *SQLite {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "bot.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleAlerts(owner int64) []types.Alert {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return []types.Alert{
		{ID: 1, Owner: owner, Symbol: "BTCINR", Direction: types.AtOrAbove, Target: decimal.NewFromInt(5000000), CreatedAt: created},
		{ID: 2, Owner: owner, Symbol: "VIBINR", Direction: types.AtOrBelow, Target: decimal.RequireFromString("2.05"), CreatedAt: created},
	}
}

func TestSQLiteSaveAndLoad(t *testing.T) {
	db := openTemp(t)

	if err := db.SaveOwner(42, sampleAlerts(42)); err != nil {
		t.Fatalf("Failed to save alerts: %v", err)
	}
	if err := db.SaveOwner(7, sampleAlerts(7)[:1]); err != nil {
		t.Fatalf("Failed to save alerts: %v", err)
	}

	loaded, err := db.Load()
	if err != nil {
		t.Fatalf("Failed to load alerts: %v", err)
	}
	if len(loaded[42]) != 2 || len(loaded[7]) != 1 {
		t.Fatalf("unexpected alerts loaded: %+v", loaded)
	}

	got := loaded[42][1]
	want := sampleAlerts(42)[1]
	if got.ID != want.ID || got.Owner != 42 || got.Symbol != want.Symbol || got.Direction != want.Direction ||
		!got.Target.Equal(want.Target) || !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("expected %+v, got %+v", want, got)
	}

	// replacing with an empty list removes the chat
	if err := db.SaveOwner(42, nil); err != nil {
		t.Fatalf("Failed to clear alerts: %v", err)
	}
	loaded, _ = db.Load()
	if _, ok := loaded[42]; ok {
		t.Errorf("expected chat 42 to have no alerts, got %+v", loaded[42])
	}
}

func TestSQLiteLoadRejectsCorruptRows(t *testing.T) {
	db := openTemp(t)

	_, err := db.db.Exec(`INSERT INTO alerts (chat_id, alert_id, symbol, direction, target, created_at) VALUES (1, 1, 'BTCINR', '>>', '10', '2026-01-02T03:04:05Z');`)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	if _, err := db.Load(); err == nil {
		t.Error("expected an error for an unknown direction")
	}
}

func TestOpenRejectsGarbageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.db")
	if err := os.WriteFile(path, bytes.Repeat([]byte("not a database "), 512), 0o600); err != nil {
		t.Fatal(err)
	}
	if db, err := Open(path); err == nil {
		db.Close()
		t.Error("expected opening a garbage file to fail")
	}
}

func TestSQLiteMetrics(t *testing.T) {
	db := openTemp(t)

	if v, err := db.GetMetric("commands_processed"); err != nil || v != 0 {
		t.Fatalf("expected missing metric to default to 0, got %f, %v", v, err)
	}

	if err := db.SaveMetric("commands_processed", "", "", 12); err != nil {
		t.Fatal(err)
	}
	if err := db.SaveMetric("commands_processed", "", "", 13); err != nil {
		t.Fatal(err)
	}
	if v, _ := db.GetMetric("commands_processed"); v != 13 {
		t.Errorf("expected 13, got %f", v)
	}

	if err := db.SaveMetricWithLabels("messages_per_channel", "42", "PrivateChat-42", 5); err != nil {
		t.Fatal(err)
	}
	labelled, err := db.GetMetricsWithLabels("messages_per_channel")
	if err != nil {
		t.Fatal(err)
	}
	if labelled["42"]["PrivateChat-42"] != 5 {
		t.Errorf("unexpected labelled metrics %+v", labelled)
	}
}

func TestDecodeOwner(t *testing.T) {
	chatID, list, err := decodeOwner("42", `[{"identity":3,"symbol":"BTCINR","direction":">=","target":"5000000","created_at":"2026-01-02T03:04:05Z"}]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chatID != 42 || len(list) != 1 || list[0].ID != 3 || list[0].Owner != 42 || list[0].Direction != types.AtOrAbove {
		t.Errorf("unexpected decode result %d %+v", chatID, list)
	}

	if _, _, err := decodeOwner("chat", `[]`); err == nil {
		t.Error("expected an error for a non numeric chat ID")
	}
	if _, _, err := decodeOwner("42", `[{"direction":"~"}]`); err == nil {
		t.Error("expected an error for an unknown direction")
	}
}

func TestRedisSaveAndLoad(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping redis integration test")
	}

	r, err := NewRedis(addr, os.Getenv("REDIS_PASSWORD"), 0, "alerts-test-"+time.Now().Format("150405.000000"))
	if err != nil {
		t.Fatalf("Failed to connect to redis: %v", err)
	}
	defer r.Close()
	defer r.SaveOwner(42, nil)

	if err := r.SaveOwner(42, sampleAlerts(42)); err != nil {
		t.Fatalf("Failed to save alerts: %v", err)
	}
	loaded, err := r.Load()
	if err != nil {
		t.Fatalf("Failed to load alerts: %v", err)
	}
	if len(loaded[42]) != 2 || loaded[42][0].Symbol != "BTCINR" {
		t.Errorf("unexpected alerts loaded: %+v", loaded)
	}
}
