package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// Link is one live bidirectional event stream to the realtime service.
type Link interface {
	WriteEvent(v any) error
	ReadEvent() (Event, error)
	Close() error
}

// Dialer opens Links; tests substitute their own implementation.
type Dialer interface {
	Dial(ctx context.Context, clientID string) (Link, error)
}

// WSDialerConfig configures the production OpenAI Realtime dialer.
type WSDialerConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type WSDialer struct {
	cfg WSDialerConfig
}

func NewWSDialer(cfg WSDialerConfig) *WSDialer {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "wss://api.openai.com/v1/realtime"
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = "gpt-4o-realtime-preview"
	}
	return &WSDialer{cfg: cfg}
}

func (d *WSDialer) Dial(ctx context.Context, _ string) (Link, error) {
	u, err := url.Parse(d.cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse realtime url: %w", err)
	}
	q := u.Query()
	q.Set("model", d.cfg.Model)
	u.RawQuery = q.Encode()

	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+d.cfg.APIKey)
	headers.Set("OpenAI-Beta", "realtime=v1")

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), headers)
	if err != nil {
		return nil, fmt.Errorf("dial realtime websocket: %w", err)
	}
	return &wsLink{conn: conn}, nil
}

type wsLink struct {
	conn      *websocket.Conn
	writeMu   sync.Mutex
	closeOnce sync.Once
}

func (l *wsLink) WriteEvent(v any) error {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()
	return l.conn.WriteJSON(v)
}

func (l *wsLink) ReadEvent() (Event, error) {
	_, data, err := l.conn.ReadMessage()
	if err != nil {
		return Event{}, err
	}
	return decodeEvent(data)
}

func (l *wsLink) Close() error {
	var retErr error
	l.closeOnce.Do(func() {
		retErr = l.conn.Close()
	})
	return retErr
}
