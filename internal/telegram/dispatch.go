package telegram

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/semaphore"
)

// Dispatcher feeds updates to a handler. Commands that wait on the price feed
// run on their own goroutine, at most limit at a time, so they never hold up
// store-only commands. Everything else is handled inline and keeps its order.
type Dispatcher struct {
	handle func(tgbotapi.Update)
	sem    *semaphore.Weighted
	wg     sync.WaitGroup
}

func NewDispatcher(limit int, handle func(tgbotapi.Update)) *Dispatcher {
	if limit <= 0 {
		limit = 1
	}
	return &Dispatcher{
		handle: handle,
		sem:    semaphore.NewWeighted(int64(limit)),
	}
}

// Dispatch never blocks on a feed-bound command.
func (d *Dispatcher) Dispatch(u tgbotapi.Update) {
	if !needsFeed(u) {
		d.handle(u)
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.sem.Acquire(context.Background(), 1); err != nil {
			return
		}
		defer d.sem.Release(1)
		d.handle(u)
	}()
}

// Wait blocks until every background command has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func needsFeed(u tgbotapi.Update) bool {
	if u.Message == nil || !u.Message.IsCommand() {
		return false
	}
	switch u.Message.Command() {
	case "price", "p":
		return true
	}
	return false
}
