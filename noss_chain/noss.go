package noss_chain

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// NossChain follows the noscription report feed, which announces the id of the
// latest accepted noss mint event. Mint events reply to that id.
type NossChain struct {
	url        string
	header     http.Header
	dialer     *websocket.Dialer
	retryDelay time.Duration

	eventID atomic.Value

	ready     chan struct{}
	readyOnce sync.Once
}

func NewNossChain(url string) *NossChain {
	header := http.Header{}
	header.Add("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0")
	header.Add("Origin", "https://noscription.org")
	return &NossChain{
		url:        url,
		header:     header,
		dialer:     websocket.DefaultDialer,
		retryDelay: time.Second,
		ready:      make(chan struct{}),
	}
}

// ListenEvent reads the feed until ctx is done, reconnecting whenever the
// connection drops. Every received event id is passed to listenFn.
func (c *NossChain) ListenEvent(ctx context.Context, listenFn ...func(eventID string)) error {
	for {
		conn, err := c.connect(ctx)
		if err != nil {
			return err
		}

		err = c.read(ctx, conn, listenFn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logrus.Errorf("read %s: %s", c.url, err)
	}
}

func (c *NossChain) read(ctx context.Context, conn *websocket.Conn, listenFn []func(string)) error {
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		var msg event
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}
		if msg.EventID == "" {
			continue
		}
		c.eventID.Store(msg.EventID)
		c.readyOnce.Do(func() { close(c.ready) })

		for _, fn := range listenFn {
			fn(msg.EventID)
		}
	}
}

// GetLatestEventID returns "" until the first event has been received.
func (c *NossChain) GetLatestEventID() string {
	id, _ := c.eventID.Load().(string)
	return id
}

// WaitReady blocks until the first event id is known.
func (c *NossChain) WaitReady(ctx context.Context) error {
	select {
	case <-c.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *NossChain) connect(ctx context.Context) (*websocket.Conn, error) {
	for {
		logrus.Infof("connecting to %s", c.url)
		conn, _, err := c.dialer.DialContext(ctx, c.url, c.header)
		if err == nil {
			return conn, nil
		}
		logrus.Errorf("error connecting to websocket: %s", err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.retryDelay):
		}
	}
}

type event struct {
	EventID string `json:"eventId"`
}
