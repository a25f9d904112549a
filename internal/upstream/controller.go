package upstream

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/antoniostano/switchboard/internal/agent"
	"github.com/antoniostano/switchboard/internal/observability"
)

var ErrMissingAPIKey = errors.New("OPENAI_API_KEY is not set")

// Controller owns the upstream link lifecycle for every client and upholds
// the invariant that at most one live link exists per client id.
type Controller struct {
	agents         *agent.Registry
	dialer         Dialer
	apiKey         string
	connectTimeout time.Duration
	opts           SessionOptions
	metrics        *observability.Metrics

	mu    sync.Mutex
	links map[string]Link
}

func NewController(agents *agent.Registry, dialer Dialer, apiKey string, connectTimeout time.Duration, opts SessionOptions, metrics *observability.Metrics) *Controller {
	if connectTimeout <= 0 {
		connectTimeout = 10 * time.Second
	}
	return &Controller{
		agents:         agents,
		dialer:         dialer,
		apiKey:         apiKey,
		connectTimeout: connectTimeout,
		opts:           opts,
		metrics:        metrics,
		links:          make(map[string]Link),
	}
}

// Connect resolves the persona, fully closes any prior link for clientID,
// dials a replacement and sends the session-configuration handshake. On any
// failure no link is registered. The resolved descriptor is returned so the
// caller can acknowledge with the persona actually in effect.
func (c *Controller) Connect(ctx context.Context, clientID, agentID string) (Link, agent.Descriptor, error) {
	desc := c.agents.Resolve(agentID)

	if strings.TrimSpace(c.apiKey) == "" {
		c.metrics.UpstreamErrors.WithLabelValues("credentials").Inc()
		return nil, desc, ErrMissingAPIKey
	}

	// The old link must be gone before the new dial starts so two links for
	// one client are never concurrently open. gorilla's Close tears the
	// connection down synchronously, so no bounded wait is needed here.
	c.mu.Lock()
	old := c.links[clientID]
	delete(c.links, clientID)
	c.mu.Unlock()
	if old != nil {
		_ = old.Close()
	}

	dialCtx, cancel := context.WithTimeout(ctx, c.connectTimeout)
	defer cancel()

	link, err := c.dialer.Dial(dialCtx, clientID)
	if err != nil {
		c.metrics.UpstreamErrors.WithLabelValues("dial").Inc()
		return nil, desc, fmt.Errorf("dial upstream: %w", err)
	}
	if err := link.WriteEvent(newSessionUpdate(c.opts, desc.Instructions, desc.Voice)); err != nil {
		_ = link.Close()
		c.metrics.UpstreamErrors.WithLabelValues("handshake").Inc()
		return nil, desc, fmt.Errorf("send session config: %w", err)
	}

	c.mu.Lock()
	c.links[clientID] = link
	c.mu.Unlock()

	log.Printf("[upstream] connected client %s with agent %s", clientID, desc.ID)
	return link, desc, nil
}

// Send forwards one event on the client's live link. A missing or broken
// link is a logged no-op; the relay stays alive when upstream is down.
func (c *Controller) Send(clientID string, v any) {
	c.mu.Lock()
	link := c.links[clientID]
	c.mu.Unlock()

	if link == nil {
		log.Printf("[upstream] dropping event for client %s: no live link", clientID)
		return
	}
	if err := link.WriteEvent(v); err != nil {
		c.metrics.UpstreamErrors.WithLabelValues("send").Inc()
		log.Printf("[upstream] send failed for client %s: %v", clientID, err)
	}
}

// Connected reports whether a link is registered for clientID.
func (c *Controller) Connected(clientID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.links[clientID]
	return ok
}

// Close tears down the client's link if one exists. Closing an absent or
// already-closed link is a no-op.
func (c *Controller) Close(clientID string) {
	c.mu.Lock()
	link := c.links[clientID]
	delete(c.links, clientID)
	c.mu.Unlock()

	if link != nil {
		_ = link.Close()
	}
}
