package main

import (
	"bytes"
	"coindcx-alert-bot/config"
	"coindcx-alert-bot/internal/alert"
	"coindcx-alert-bot/internal/database"
	"coindcx-alert-bot/internal/metrics"
	"coindcx-alert-bot/internal/price"
	"coindcx-alert-bot/internal/telegram"
	"coindcx-alert-bot/lib/translation"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func init() {
	config.InitConfig()
	setupLogging()
}

func main() {
	translation.Configure("locales", config.GetString("lang"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	botMetrics := metrics.New(prometheus.DefaultRegisterer)

	persister, metricsDB := openPersister(config.GetString("store_backend"))
	store := alert.NewStore(persister)
	if metricsDB != nil {
		botMetrics.Load(metricsDB)
	}

	quote := strings.ToUpper(config.GetString("quote_currency"))
	feed := newFeed(config.GetString("feed_source"), quote, config.GetDuration("fetch_timeout"))

	bot, err := telegram.NewBot(telegram.BotConfig{
		Token:          config.GetString("telegram_bot_token"),
		Debug:          config.GetBool("debug"),
		UpdatesTimeout: config.GetInt("updates_timeout"),
		QuoteCurrency:  quote,
		RequestTimeout: config.GetDuration("notify_timeout"),
	}, store, feed)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	updates, err := bot.GetUpdatesChannel()
	if err != nil {
		log.Fatalf("Failed to get updates channel: %v", err)
	}

	scheduler := alert.NewScheduler(feed, store, bot, alert.SchedulerConfig{
		Interval:              config.GetDuration("check_interval"),
		FetchTimeout:          config.GetDuration("fetch_timeout"),
		NotifyTimeout:         config.GetDuration("notify_timeout"),
		RetireOnNotifyFailure: config.GetBool("retire_on_notify_failure"),
	}, botMetrics)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return scheduler.Run(gctx)
	})
	g.Go(func() error {
		handleUpdates(gctx, bot, botMetrics, updates)
		return nil
	})
	g.Go(func() error {
		return launchMetricsAndHealthServer(gctx, config.GetInt("metrics_port"))
	})
	if metricsDB != nil {
		g.Go(func() error {
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					botMetrics.Save(metricsDB)
				}
			}
		})
	}

	if err := g.Wait(); err != nil {
		log.Errorf("Shutting down after error: %v", err)
	}

	if metricsDB != nil {
		botMetrics.Save(metricsDB)
	}
	if err := store.Close(); err != nil {
		log.Errorf("Failed to close alert store: %v", err)
	}
	log.Println("Alerts and metrics saved, shutting down...")
}

func setupLogging() {
	log.SetLevel(log.ErrorLevel)
	if config.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	}
	log.Debug("Starting telegram bot...")
}

// openPersister picks the alert storage backend. Failing to reach it degrades
// to an in-memory store rather than refusing to start.
func openPersister(backend string) (alert.Persister, metrics.Store) {
	switch strings.ToLower(backend) {
	case "memory":
		log.Warn("Alerts are kept in memory only and will not survive a restart")
		return nil, nil
	case "redis":
		r, err := database.NewRedis(
			config.GetString("redis_addr"),
			config.GetString("redis_password"),
			config.GetInt("redis_db"),
			config.GetString("redis_key"),
		)
		if err != nil {
			log.Errorf("Failed to initialize redis, alerts kept in memory: %v", err)
			return nil, nil
		}
		return r, nil
	default:
		db, err := database.Open(config.GetString("db_path"))
		if err != nil {
			log.Errorf("Failed to initialize database, alerts kept in memory: %v", err)
			return nil, nil
		}
		return db, db
	}
}

func newFeed(source, quote string, timeout time.Duration) price.Feed {
	if strings.ToLower(source) == "coinpaprika" {
		return price.NewPaprika(config.GetString("api_pro_key"), quote, timeout)
	}
	return price.NewCoinDCX(config.GetString("ticker_url"), quote, timeout)
}

// maxPriceLookups caps concurrent /price commands waiting on the feed.
const maxPriceLookups = 8

func handleUpdates(ctx context.Context, bot *telegram.Bot, m *metrics.Metrics, updates tgbotapi.UpdatesChannel) {
	dispatcher := telegram.NewDispatcher(maxPriceLookups, func(update tgbotapi.Update) {
		handleCommand(bot, m, update)
	})
	defer dispatcher.Wait()

	for {
		select {
		case <-ctx.Done():
			bot.Stop()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || !update.Message.IsCommand() {
				log.Debug("Received non-message or non-command")
				continue
			}

			m.MessagesHandled.Inc()

			chatID := update.Message.Chat.ID
			chatName := update.Message.Chat.Title
			if chatName == "" {
				chatName = fmt.Sprintf("%s-%d", "PrivateChat", chatID)
			}
			m.ObserveChannel(chatID, chatName)

			dispatcher.Dispatch(update)
		}
	}
}

func handleCommand(bot *telegram.Bot, m *metrics.Metrics, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			stackBuf := make([]byte, 1024)
			stackSize := runtime.Stack(stackBuf, false)
			stackTrace := bytes.TrimRight(stackBuf[:stackSize], "\x00")
			log.Errorf("Recovered from panic: %v\nStack trace: %s", r, stackTrace)
		}
	}()

	text := bot.HandleUpdate(update)
	if text == "" {
		return
	}

	err := bot.SendMessage(telegram.Message{
		ChatID:    update.Message.Chat.ID,
		Text:      text,
		MessageID: update.Message.MessageID,
	})

	if err != nil {
		log.Errorf("Failed to send message: %v", err)
	} else {
		m.CommandsProcessed.Inc()
	}
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func newServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", healthCheckHandler)
	mux.HandleFunc("/", healthCheckHandler)
	return mux
}

func launchMetricsAndHealthServer(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           newServeMux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Infof("Launching metrics and health endpoint on :%d", port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics and health server: %w", err)
	}
	return nil
}
