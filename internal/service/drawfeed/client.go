package drawfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"DrawPulse/internal/domain/models"
	drepo "DrawPulse/internal/domain/repository"
	xhttp "DrawPulse/pkg/http"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
)

// Config holds draw feed settings for both transport modes.
type Config struct {
	Mode           string // "poll" or "stream"
	BaseURL        string
	WebSocketURL   string
	APIKey         string
	Game           string
	Interval       string
	PollInterval   time.Duration
	RequestTimeout time.Duration
	MaxRetries     int
	ReconnectDelay time.Duration
	PingInterval   time.Duration
}

// New selects the DrawStream implementation for the configured mode.
func New(cfg Config) drepo.DrawStream {
	cfg.Interval = string(drepo.NormalizeInterval(cfg.Interval))
	if cfg.Mode == "stream" {
		return newStreamClient(cfg)
	}
	return newPollClient(cfg)
}

// --- poll mode ---

type pollClient struct {
	cfg       Config
	http      *xhttp.Client
	connected bool

	lastPeriod string
}

func newPollClient(cfg Config) *pollClient {
	if cfg.PollInterval <= 0 {
		// Default to polling at half the draw cadence.
		cfg.PollInterval = drepo.Interval(cfg.Interval).Duration() / 2
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	return &pollClient{
		cfg:  cfg,
		http: xhttp.NewClient(xhttp.WithTimeout(cfg.RequestTimeout)),
	}
}

type drawListResponse struct {
	Code int `json:"code"`
	Data struct {
		List []drawRow `json:"list"`
	} `json:"data"`
}

type drawRow struct {
	IssueNumber string `json:"issueNumber"`
	Number      int    `json:"number"`
	OpenTime    int64  `json:"openTime"` // unix seconds, optional
}

// Connect verifies the API is reachable by fetching one page.
func (c *pollClient) Connect(ctx context.Context) error {
	if _, err := c.fetch(ctx); err != nil {
		return fmt.Errorf("drawfeed connect: %w", err)
	}
	c.connected = true
	log.Printf("drawfeed: poll mode connected")
	return nil
}

func (c *pollClient) fetch(ctx context.Context) ([]drawRow, error) {
	var resp drawListResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.cfg.BaseURL + "/api/draws",
		Headers: map[string]string{
			"Authorization": "Bearer " + c.cfg.APIKey,
		},
		QueryParams: map[string][]string{
			"game":     {c.cfg.Game},
			"interval": {c.cfg.Interval},
		},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Code != 0 {
		return nil, fmt.Errorf("draw api code %d", resp.Code)
	}
	return resp.Data.List, nil
}

// fetchWithRetry wraps fetch in exponential backoff for transient failures.
func (c *pollClient) fetchWithRetry(ctx context.Context) ([]drawRow, error) {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(c.cfg.MaxRetries)),
		ctx,
	)

	var rows []drawRow
	op := func() error {
		var err error
		rows, err = c.fetch(ctx)
		return err
	}
	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}
	return rows, nil
}

// Read polls the API and emits rows newer than the last seen period.
// Rows arrive newest first from the API; emission is oldest first.
func (c *pollClient) Read(ctx context.Context) (<-chan models.DrawResult, <-chan error) {
	results := make(chan models.DrawResult, 256)
	errs := make(chan error, 1)

	go func() {
		defer close(results)
		defer close(errs)

		ticker := time.NewTicker(c.cfg.PollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rows, err := c.fetchWithRetry(ctx)
				if err != nil {
					c.connected = false
					errs <- fmt.Errorf("drawfeed poll: %w", err)
					return
				}
				c.connected = true
				c.emitNew(rows, results)
			}
		}
	}()

	return results, errs
}

func (c *pollClient) emitNew(rows []drawRow, out chan<- models.DrawResult) {
	// Collect unseen rows, stopping at the last emitted period.
	fresh := make([]drawRow, 0, len(rows))
	for _, r := range rows {
		if r.IssueNumber == c.lastPeriod {
			break
		}
		fresh = append(fresh, r)
	}

	// Reverse so downstream sees draws in chronological order.
	for i := len(fresh) - 1; i >= 0; i-- {
		r := fresh[i]
		d := models.DrawResult{
			PeriodID:   r.IssueNumber,
			Number:     r.Number,
			ObservedAt: time.Unix(r.OpenTime, 0),
		}
		if r.OpenTime == 0 {
			d.ObservedAt = time.Now()
		}
		if !d.Valid() {
			continue
		}
		c.lastPeriod = d.PeriodID
		select {
		case out <- d:
		default:
			// drop on backpressure
		}
	}
}

// Reconnect re-verifies the API after a delay.
func (c *pollClient) Reconnect(ctx context.Context) error {
	c.connected = false
	time.Sleep(c.cfg.ReconnectDelay)
	return c.Connect(ctx)
}

// Close is a no-op for the poll client.
func (c *pollClient) Close() error {
	c.connected = false
	return nil
}

// IsConnected indicates status.
func (c *pollClient) IsConnected() bool { return c.connected }

// --- stream mode ---

type streamClient struct {
	cfg       Config
	conn      *websocket.Conn
	connected bool

	lastPeriod string
}

func newStreamClient(cfg Config) *streamClient {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	return &streamClient{cfg: cfg}
}

// Connect establishes the WebSocket connection.
func (c *streamClient) Connect(ctx context.Context) error {
	u := fmt.Sprintf("%s?token=%s", c.cfg.WebSocketURL, c.cfg.APIKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("drawfeed connect: %w", err)
	}
	c.conn = conn
	c.connected = true
	log.Printf("drawfeed: stream mode connected")
	return c.subscribe()
}

func (c *streamClient) subscribe() error {
	if c.conn == nil || !c.connected {
		return fmt.Errorf("drawfeed not connected")
	}
	msg := map[string]string{"type": "subscribe", "game": c.cfg.Game, "interval": c.cfg.Interval}
	if err := c.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("subscribe %s: %w", c.cfg.Game, err)
	}
	log.Printf("drawfeed: subscribed %s", c.cfg.Game)
	return nil
}

type wsDraw struct {
	IssueNumber string `json:"issueNumber"`
	Number      int    `json:"number"`
	OpenTime    int64  `json:"openTime"`
}

type wsMessage struct {
	Type string   `json:"type"`
	Data []wsDraw `json:"data"`
}

// Read streams draw results and errors.
func (c *streamClient) Read(ctx context.Context) (<-chan models.DrawResult, <-chan error) {
	results := make(chan models.DrawResult, 256)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.cfg.PingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if c.conn != nil {
					_ = c.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(results)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if c.conn == nil {
					errs <- fmt.Errorf("drawfeed conn nil")
					return
				}
				_, b, err := c.conn.ReadMessage()
				if err != nil {
					c.connected = false
					errs <- fmt.Errorf("drawfeed read: %w", err)
					return
				}
				var m wsMessage
				if err := json.Unmarshal(b, &m); err != nil {
					// ignore non-draw frames
					continue
				}
				if m.Type != "draw" {
					continue
				}
				for _, w := range m.Data {
					if w.IssueNumber == c.lastPeriod {
						continue
					}
					d := models.DrawResult{
						PeriodID:   w.IssueNumber,
						Number:     w.Number,
						ObservedAt: time.Unix(w.OpenTime, 0),
					}
					if w.OpenTime == 0 {
						d.ObservedAt = time.Now()
					}
					if !d.Valid() {
						continue
					}
					c.lastPeriod = d.PeriodID
					select {
					case results <- d:
					default:
						// drop on backpressure
					}
				}
			}
		}
	}()

	return results, errs
}

// Reconnect closes and reconnects.
func (c *streamClient) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.cfg.ReconnectDelay)
	return c.Connect(ctx)
}

// Close closes the WS connection.
func (c *streamClient) Close() error {
	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *streamClient) IsConnected() bool { return c.connected }
