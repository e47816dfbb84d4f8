// Package fx fetches the display-currency exchange rate from an
// external quote feed. The rate only decorates order totals; feed
// failures never block order operations.
package fx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fairyhunter13/order-stock-service/internal/config"
	"github.com/fairyhunter13/order-stock-service/internal/obs"
)

// quote mirrors one entry of the feed's JSON array. The sale price
// uses a comma as decimal separator.
type quote struct {
	Casa struct {
		Nombre string `json:"nombre"`
		Venta  string `json:"venta"`
	} `json:"casa"`
}

// Client caches the most recently fetched rate and optionally keeps it
// fresh with a background refresher.
type Client struct {
	url       string
	quoteName string
	hc        *http.Client

	mu   sync.RWMutex
	rate float64
	ok   bool

	cancel context.CancelFunc
	done   chan struct{}
}

// New constructs a Client from configuration. No fetch happens until
// Refresh or Start is called.
func New(cfg config.Config) *Client {
	return &Client{
		url:       cfg.RateURL,
		quoteName: cfg.RateQuoteName,
		hc:        &http.Client{Timeout: cfg.RateTimeout},
	}
}

// Rate returns the last successfully fetched rate. The second return
// is false until one fetch has succeeded.
func (c *Client) Rate() (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rate, c.ok
}

// Refresh fetches the feed once and caches the parsed rate for the
// configured quote name.
func (c *Client) Refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return fmt.Errorf("rate feed: %w", err)
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("rate feed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("rate feed: unexpected status %d", resp.StatusCode)
	}
	var quotes []quote
	if err := json.NewDecoder(resp.Body).Decode(&quotes); err != nil {
		return fmt.Errorf("rate feed: decode: %w", err)
	}
	for _, q := range quotes {
		if q.Casa.Nombre != c.quoteName {
			continue
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(q.Casa.Venta, ",", "."), 64)
		if err != nil {
			return fmt.Errorf("rate feed: parse sale price %q: %w", q.Casa.Venta, err)
		}
		c.mu.Lock()
		c.rate = v
		c.ok = true
		c.mu.Unlock()
		return nil
	}
	return fmt.Errorf("rate feed: quote %q not found", c.quoteName)
}

// Start launches the background refresher: one immediate fetch, then
// one per interval until Stop is called or parent is cancelled.
func (c *Client) Start(parent context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(parent)
	c.cancel = cancel
	c.done = make(chan struct{})
	go c.loop(ctx, interval)
}

func (c *Client) loop(ctx context.Context, interval time.Duration) {
	defer close(c.done)
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		if err := c.Refresh(ctx); err != nil && ctx.Err() == nil {
			obs.Logger.Warn("rate_refresh_failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

// Stop cancels the refresher and waits for it to exit. Stop is a
// no-op when Start was never called.
func (c *Client) Stop() {
	if c.cancel == nil {
		return
	}
	c.cancel()
	<-c.done
}
