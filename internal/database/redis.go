package database

import (
	"coindcx-alert-bot/internal/types"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Redis keeps alerts in one hash: field = chat ID, value = JSON array of alerts.
type Redis struct {
	client  *redis.Client
	key     string
	timeout time.Duration
}

func NewRedis(addr, password string, db int, key string) (*Redis, error) {
	r := &Redis{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		key:     key,
		timeout: 5 * time.Second,
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.client.Ping(ctx).Err(); err != nil {
		r.client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	log.Debugf("Redis %s connected, alerts kept under %q", addr, key)
	return r, nil
}

func (r *Redis) Load() (map[int64][]types.Alert, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	fields, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.key, err)
	}

	alerts := make(map[int64][]types.Alert, len(fields))
	for field, value := range fields {
		chatID, list, err := decodeOwner(field, value)
		if err != nil {
			return nil, err
		}
		alerts[chatID] = list
	}
	return alerts, nil
}

func (r *Redis) SaveOwner(chatID int64, alerts []types.Alert) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	field := strconv.FormatInt(chatID, 10)
	if len(alerts) == 0 {
		if err := r.client.HDel(ctx, r.key, field).Err(); err != nil {
			return fmt.Errorf("failed to delete alerts for chat ID %d: %w", chatID, err)
		}
		return nil
	}

	raw, err := json.Marshal(alerts)
	if err != nil {
		return fmt.Errorf("failed to encode alerts for chat ID %d: %w", chatID, err)
	}
	if err := r.client.HSet(ctx, r.key, field, raw).Err(); err != nil {
		return fmt.Errorf("failed to save alerts for chat ID %d: %w", chatID, err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func decodeOwner(field, value string) (int64, []types.Alert, error) {
	chatID, err := strconv.ParseInt(field, 10, 64)
	if err != nil {
		return 0, nil, fmt.Errorf("bad chat ID %q: %w", field, err)
	}

	var list []types.Alert
	if err := json.Unmarshal([]byte(value), &list); err != nil {
		return 0, nil, fmt.Errorf("bad alerts for chat ID %d: %w", chatID, err)
	}
	for i := range list {
		list[i].Owner = chatID
	}
	return chatID, list, nil
}
