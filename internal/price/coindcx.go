package price

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const DefaultTickerURL = "https://public.coindcx.com/market_data/ticker"

// CoinDCX reads the public CoinDCX ticker endpoint.
type CoinDCX struct {
	url    string
	quote  string
	client *http.Client
}

func NewCoinDCX(url, quote string, timeout time.Duration) *CoinDCX {
	if url == "" {
		url = DefaultTickerURL
	}
	return &CoinDCX{
		url:    url,
		quote:  quote,
		client: &http.Client{Timeout: timeout},
	}
}

type tickerEntry struct {
	Market    string          `json:"market"`
	LastPrice json.RawMessage `json:"last_price"`
}

// Fetch performs one ticker request. Entries with an unparsable price are dropped.
func (c *CoinDCX) Fetch(ctx context.Context) (Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, errors.Wrap(ErrFeedUnavailable, err.Error())
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(ErrFeedUnavailable, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(ErrFeedUnavailable, "unexpected status %d", resp.StatusCode)
	}

	var tickers []tickerEntry
	if err := json.NewDecoder(resp.Body).Decode(&tickers); err != nil {
		return nil, errors.Wrapf(ErrFeedUnavailable, "decode ticker: %v", err)
	}

	snapshot := make(Snapshot, len(tickers))
	var dropped int
	for _, t := range tickers {
		symbol, ok := marketSymbol(t.Market, c.quote)
		if !ok {
			continue
		}
		p, ok := parsePrice(string(t.LastPrice))
		if !ok {
			dropped++
			continue
		}
		snapshot[symbol] = p
	}

	log.Debugf("Fetched %d %s prices (%d dropped)", len(snapshot), c.quote, dropped)
	return snapshot, nil
}
