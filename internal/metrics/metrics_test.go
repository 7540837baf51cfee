package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

type memStore struct {
	plain    map[string]float64
	labelled map[string]map[string]map[string]float64
}

func newMemStore() *memStore {
	return &memStore{
		plain:    make(map[string]float64),
		labelled: make(map[string]map[string]map[string]float64),
	}
}

func (s *memStore) GetMetric(name string) (float64, error) {
	return s.plain[name], nil
}

func (s *memStore) SaveMetric(name, _, _ string, value float64) error {
	s.plain[name] = value
	return nil
}

func (s *memStore) GetMetricsWithLabels(name string) (map[string]map[string]float64, error) {
	return s.labelled[name], nil
}

func (s *memStore) SaveMetricWithLabels(name, key, value string, v float64) error {
	if s.labelled[name] == nil {
		s.labelled[name] = make(map[string]map[string]float64)
	}
	if s.labelled[name][key] == nil {
		s.labelled[name][key] = make(map[string]float64)
	}
	s.labelled[name][key][value] = v
	return nil
}

func TestSaveAndLoad(t *testing.T) {
	db := newMemStore()

	m := New(prometheus.NewRegistry())
	m.CommandsProcessed.Add(3)
	m.NotificationsSent.Add(2)
	m.ObserveChannel(42, "PrivateChat-42")
	m.ObserveChannel(42, "PrivateChat-42")
	m.Save(db)

	if db.plain["commands_processed"] != 3 {
		t.Errorf("expected 3 commands saved, got %f", db.plain["commands_processed"])
	}
	if got := db.labelled["messages_per_channel"]["42"]["PrivateChat-42"]; got != 2 {
		t.Errorf("expected 2 messages saved for chat 42, got %f", got)
	}

	restored := New(prometheus.NewRegistry())
	restored.Load(db)

	if v := Value(restored.CommandsProcessed); v != 3 {
		t.Errorf("expected restored commands_processed 3, got %f", v)
	}
	if v := Value(restored.NotificationsSent); v != 2 {
		t.Errorf("expected restored notifications_sent 2, got %f", v)
	}
	if v := Value(restored.ChannelsCount); v != 1 {
		t.Errorf("expected 1 known channel, got %f", v)
	}
}
