package metrics

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	log "github.com/sirupsen/logrus"
)

const (
	namespace = "coindcx"
	subsystem = "alert_bot"
)

// Store persists counter values across restarts.
type Store interface {
	GetMetric(metricName string) (float64, error)
	SaveMetric(metricName, labelKey, labelValue string, value float64) error
	GetMetricsWithLabels(metricName string) (map[string]map[string]float64, error)
	SaveMetricWithLabels(metricName, labelKey, labelValue string, value float64) error
}

type Metrics struct {
	CommandsProcessed   prometheus.Counter
	MessagesHandled     prometheus.Counter
	ChannelsCount       prometheus.Gauge
	MessagesPerChannel  *prometheus.CounterVec
	ChannelsSet         map[int64]string
	Cycles              prometheus.Counter
	FeedFailures        prometheus.Counter
	AlertsTriggered     prometheus.Counter
	NotificationsSent   prometheus.Counter
	NotificationsFailed prometheus.Counter
	ActiveAlerts        prometheus.Gauge
	CycleDuration       prometheus.Histogram
	Mutex               sync.Mutex
}

func counter(name, help string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	})
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CommandsProcessed:   counter("commands_processed", "The total number of processed commands"),
		MessagesHandled:     counter("messages_handled", "The total number of handled messages"),
		Cycles:              counter("scheduler_cycles", "The total number of alert scheduler cycles"),
		FeedFailures:        counter("feed_failures", "The total number of failed price feed fetches"),
		AlertsTriggered:     counter("alerts_triggered", "The total number of alerts whose condition matched"),
		NotificationsSent:   counter("notifications_sent", "The total number of delivered alert notifications"),
		NotificationsFailed: counter("notifications_failed", "The total number of alert notifications that failed"),
		ChannelsCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "channels_count",
			Help:      "The current number of unique chats the bot is operating in",
		}),
		ActiveAlerts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "active_alerts",
			Help:      "The number of alerts waiting to trigger",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cycle_duration_seconds",
			Help:      "Time spent in one fetch, match and notify cycle",
			Buckets:   prometheus.DefBuckets,
		}),
		MessagesPerChannel: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "messages_per_channel",
				Help:      "The total number of messages handled per chat",
			},
			[]string{"chat_id", "chat_name"},
		),
		ChannelsSet: make(map[int64]string),
	}

	reg.MustRegister(
		m.CommandsProcessed,
		m.MessagesHandled,
		m.Cycles,
		m.FeedFailures,
		m.AlertsTriggered,
		m.NotificationsSent,
		m.NotificationsFailed,
		m.ChannelsCount,
		m.ActiveAlerts,
		m.CycleDuration,
		m.MessagesPerChannel,
	)

	return m
}

// ObserveChannel counts a message from chatID and tracks the set of known chats.
func (m *Metrics) ObserveChannel(chatID int64, chatName string) {
	m.Mutex.Lock()
	defer m.Mutex.Unlock()

	if _, exists := m.ChannelsSet[chatID]; !exists {
		m.ChannelsSet[chatID] = chatName
		m.ChannelsCount.Set(float64(len(m.ChannelsSet)))
	}
	m.MessagesPerChannel.WithLabelValues(fmt.Sprintf("%d", chatID), chatName).Inc()
}

// counters that survive a restart
func (m *Metrics) persistent() map[string]prometheus.Counter {
	return map[string]prometheus.Counter{
		"commands_processed":   m.CommandsProcessed,
		"messages_handled":     m.MessagesHandled,
		"alerts_triggered":     m.AlertsTriggered,
		"notifications_sent":   m.NotificationsSent,
		"notifications_failed": m.NotificationsFailed,
	}
}

func (m *Metrics) Load(db Store) {
	m.Mutex.Lock()
	defer m.Mutex.Unlock()

	for name, c := range m.persistent() {
		v, err := db.GetMetric(name)
		if err != nil {
			log.Errorf("Failed to load metric %s: %v", name, err)
			continue
		}
		c.Add(v)
	}

	perChannel, err := db.GetMetricsWithLabels("messages_per_channel")
	if err != nil {
		log.Errorf("Failed to load messages_per_channel: %v", err)
	}
	for chatID, names := range perChannel {
		for chatName, value := range names {
			m.MessagesPerChannel.WithLabelValues(chatID, chatName).Add(value)
			var id int64
			if _, err := fmt.Sscan(chatID, &id); err == nil {
				m.ChannelsSet[id] = chatName
			}
		}
	}
	m.ChannelsCount.Set(float64(len(m.ChannelsSet)))

	log.Debug("Metrics loaded from database.")
}

func (m *Metrics) Save(db Store) {
	m.Mutex.Lock()
	defer m.Mutex.Unlock()

	for name, c := range m.persistent() {
		if err := db.SaveMetric(name, "", "", Value(c)); err != nil {
			log.Errorf("Failed to save metric %s: %v", name, err)
		}
	}

	metricChan := make(chan prometheus.Metric)
	go func() {
		m.MessagesPerChannel.Collect(metricChan)
		close(metricChan)
	}()

	for metric := range metricChan {
		metricProto := &dto.Metric{}
		if err := metric.Write(metricProto); err != nil {
			log.Errorf("Failed to read messages_per_channel metric: %v", err)
			continue
		}
		var chatID, chatName string
		for _, label := range metricProto.Label {
			switch label.GetName() {
			case "chat_id":
				chatID = label.GetValue()
			case "chat_name":
				chatName = label.GetValue()
			}
		}
		if err := db.SaveMetricWithLabels("messages_per_channel", chatID, chatName, metricProto.Counter.GetValue()); err != nil {
			log.Errorf("Failed to save messages_per_channel: %v", err)
		}
	}

	log.Debug("Metrics saved to database.")
}

// Value reads the current value of a single counter or gauge.
func Value(metric prometheus.Collector) float64 {
	metricChan := make(chan prometheus.Metric, 1)
	metric.Collect(metricChan)
	close(metricChan)

	metricProto := &dto.Metric{}
	if err := (<-metricChan).Write(metricProto); err != nil {
		log.Errorf("Failed to read metric value: %v", err)
		return 0
	}

	if metricProto.Counter != nil {
		return metricProto.Counter.GetValue()
	} else if metricProto.Gauge != nil {
		return metricProto.Gauge.GetValue()
	}
	return 0
}
