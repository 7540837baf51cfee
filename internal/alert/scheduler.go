package alert

import (
	"coindcx-alert-bot/internal/metrics"
	"coindcx-alert-bot/internal/price"
	"context"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var ErrNotifyFailed = errors.New("notification failed")

// Notifier delivers a text message to an alert owner.
type Notifier interface {
	Notify(ctx context.Context, owner int64, text string) error
}

type SchedulerConfig struct {
	Interval              time.Duration
	FetchTimeout          time.Duration
	NotifyTimeout         time.Duration
	// RetireOnNotifyFailure removes an alert even when its notification could
	// not be delivered (at-most-once). When false the alert stays and fires
	// again on the next cycle (at-least-once).
	RetireOnNotifyFailure bool
}

// Scheduler periodically fetches prices, fires matching alerts and retires them.
type Scheduler struct {
	feed     price.Feed
	store    *Store
	notifier Notifier
	config   SchedulerConfig
	metrics  *metrics.Metrics
}

func NewScheduler(feed price.Feed, store *Store, notifier Notifier, config SchedulerConfig, m *metrics.Metrics) *Scheduler {
	if config.Interval <= 0 {
		config.Interval = 30 * time.Second
	}
	if config.FetchTimeout <= 0 {
		config.FetchTimeout = 10 * time.Second
	}
	if config.NotifyTimeout <= 0 {
		config.NotifyTimeout = 10 * time.Second
	}

	return &Scheduler{
		feed:     feed,
		store:    store,
		notifier: notifier,
		config:   config,
		metrics:  m,
	}
}

// Run executes a cycle immediately and then once per interval until ctx is done.
// Cancellation is only observed between cycles.
func (s *Scheduler) Run(ctx context.Context) error {
	log.Infof("🚀 Alert scheduler started, checking every %s", s.config.Interval)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		s.safeCycle(ctx)

		if ctx.Err() != nil {
			log.Info("🛑 Alert scheduler stopped")
			return nil
		}
		select {
		case <-ctx.Done():
			log.Info("🛑 Alert scheduler stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) safeCycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("🔥 Panic recovered in alert scheduler: %v\n%s", r, debug.Stack())
		}
	}()

	// a started cycle always finishes, so no alert is left notified but not retired
	_, _ = s.RunCycle(context.WithoutCancel(ctx))
}

// RunCycle performs one fetch, match, notify and retire pass and returns the
// number of alerts that fired. A feed failure skips the cycle without
// touching the store.
func (s *Scheduler) RunCycle(ctx context.Context) (int, error) {
	started := time.Now()
	logger := log.WithField("cycle", uuid.NewString())
	s.metrics.Cycles.Inc()
	defer func() {
		s.metrics.CycleDuration.Observe(time.Since(started).Seconds())
		s.metrics.ActiveAlerts.Set(float64(s.store.Count()))
	}()

	logger.Debug("🔄 Checking alerts...")

	fetchCtx, cancel := context.WithTimeout(ctx, s.config.FetchTimeout)
	snapshot, err := s.feed.Fetch(fetchCtx)
	cancel()
	if err != nil {
		s.metrics.FeedFailures.Inc()
		logger.WithError(err).Error("❌ Failed to fetch prices, skipping cycle")
		return 0, err
	}

	matches := Evaluate(snapshot, s.store.SnapshotAll())
	s.metrics.AlertsTriggered.Add(float64(len(matches)))

	var fired int
	for _, m := range matches {
		fields := log.Fields{"owner": m.Owner, "alert_id": m.Alert.ID, "symbol": m.Alert.Symbol}

		if err := s.notify(ctx, m); err != nil {
			s.metrics.NotificationsFailed.Inc()
			logger.WithFields(fields).WithError(err).Error("❌ Failed to send alert notification")
			if !s.config.RetireOnNotifyFailure {
				continue
			}
		} else {
			s.metrics.NotificationsSent.Inc()
			logger.WithFields(fields).Infof("✅ Alert notification sent: %s %s %s at %s",
				m.Alert.Symbol, m.Alert.Direction, m.Alert.Target, m.Price)
		}

		if !s.store.Remove(m.Owner, m.Alert.ID) {
			logger.WithFields(fields).Debug("Alert already removed")
		}
		fired++
	}

	logger.Debugf("✅ Alert check completed: %d prices, %d fired", len(snapshot), fired)
	return fired, nil
}

func (s *Scheduler) notify(ctx context.Context, m Match) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.NotifyTimeout)
	defer cancel()

	if err := s.notifier.Notify(ctx, m.Owner, RenderNotification(m)); err != nil {
		return errors.Wrap(ErrNotifyFailed, err.Error())
	}
	return nil
}
