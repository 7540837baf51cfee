package price

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/coinpaprika/coinpaprika-api-go-client/v2/coinpaprika"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// Paprika reads tickers quoted in the configured currency from CoinPaprika.
type Paprika struct {
	list  func(options *coinpaprika.TickersOptions) ([]*coinpaprika.Ticker, error)
	quote string
}

func NewPaprika(apiProKey, quote string, timeout time.Duration) *Paprika {
	httpClient := &http.Client{Timeout: timeout}

	var client *coinpaprika.Client
	if apiProKey != "" {
		client = coinpaprika.NewClient(httpClient, coinpaprika.WithAPIKey(apiProKey))
	} else {
		client = coinpaprika.NewClient(httpClient)
	}

	return &Paprika{
		list: func(options *coinpaprika.TickersOptions) ([]*coinpaprika.Ticker, error) {
			return client.Tickers.List(options)
		},
		quote: strings.ToUpper(quote),
	}
}

func (p *Paprika) Fetch(ctx context.Context) (Snapshot, error) {
	type result struct {
		tickers []*coinpaprika.Ticker
		err     error
	}

	// the client has no context support, so cancellation is honoured here
	done := make(chan result, 1)
	go func() {
		tickers, err := p.list(&coinpaprika.TickersOptions{Quotes: p.quote})
		done <- result{tickers, err}
	}()

	var r result
	select {
	case <-ctx.Done():
		return nil, errors.Wrap(ErrFeedUnavailable, ctx.Err().Error())
	case r = <-done:
	}
	if r.err != nil {
		return nil, errors.Wrap(ErrFeedUnavailable, r.err.Error())
	}

	snapshot := make(Snapshot, len(r.tickers))
	for _, t := range r.tickers {
		if t == nil || t.Symbol == nil || *t.Symbol == "" {
			continue
		}
		q, ok := t.Quotes[p.quote]
		if !ok || q.Price == nil {
			continue
		}
		if *q.Price < 0 {
			continue
		}
		v := decimal.NewFromFloat(*q.Price)
		symbol := NormalizeSymbol(*t.Symbol, p.quote)
		// CoinPaprika lists several coins under one symbol; the first is the highest ranked
		if _, seen := snapshot[symbol]; seen {
			continue
		}
		snapshot[symbol] = v
	}

	log.Debugf("Fetched %d %s prices from CoinPaprika", len(snapshot), p.quote)
	return snapshot, nil
}
