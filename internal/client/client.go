// Package client is the character-side sync library: it owns the websocket
// connection to the world server, bounded connect retries, and the
// one-reconnect resend rule for in-flight commands.
package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/aldealabs/aldea/internal/platform/config"
	"github.com/aldealabs/aldea/internal/platform/logger"
	"github.com/aldealabs/aldea/internal/protocol"
)

// Client talks to the world server. All methods are safe for one goroutine;
// a character process owns exactly one Client.
type Client struct {
	url         string
	retries     int
	backoffBase time.Duration
	readTimeout time.Duration
	log         *logger.Logger

	mu   sync.Mutex
	conn *websocket.Conn

	// sleep is swapped in tests to observe backoff without waiting.
	sleep func(time.Duration)
}

// New creates a client from config. It does not connect; call Connect or
// let the first Send do it.
func New(cfg config.ClientConfig, log *logger.Logger) *Client {
	return &Client{
		url:         cfg.ServerURL,
		retries:     cfg.ConnectRetries,
		backoffBase: time.Duration(cfg.BackoffBaseMs) * time.Millisecond,
		readTimeout: time.Duration(cfg.ReadTimeoutS) * time.Second,
		log:         log,
		sleep:       time.Sleep,
	}
}

// Connect dials the server, retrying up to the configured attempt count
// with doubling backoff between attempts. The failure after the final
// attempt is returned as a TransportError.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectLocked(ctx)
}

func (c *Client) connectLocked(ctx context.Context) error {
	var lastErr error
	delay := c.backoffBase
	for attempt := 1; attempt <= c.retries; attempt++ {
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
		if err == nil {
			c.conn = conn
			if c.log != nil {
				c.log.Info("connected to " + c.url)
			}
			return nil
		}
		lastErr = err
		if c.log != nil {
			c.log.Warn(fmt.Sprintf("connect attempt %d/%d failed: %v", attempt, c.retries, err))
		}
		if attempt < c.retries {
			c.sleep(delay)
			delay *= 2
		}
	}
	return &protocol.TransportError{Op: fmt.Sprintf("connect %s after %d attempts", c.url, c.retries), Err: lastErr}
}

// Close tears the connection down.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

// Send performs one request/response exchange. If the exchange fails on an
// established connection, the client reconnects and resends exactly once;
// a second failure surfaces as a TransportError.
func (c *Client) Send(ctx context.Context, req protocol.Request) (protocol.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		if err := c.connectLocked(ctx); err != nil {
			return protocol.Response{}, err
		}
	}

	resp, err := c.exchangeLocked(req)
	if err == nil {
		return resp, nil
	}

	if c.log != nil {
		c.log.Warn(fmt.Sprintf("exchange failed, reconnecting once: %v", err))
	}
	c.conn.Close()
	c.conn = nil
	if cErr := c.connectLocked(ctx); cErr != nil {
		return protocol.Response{}, cErr
	}
	resp, err = c.exchangeLocked(req)
	if err != nil {
		return protocol.Response{}, &protocol.TransportError{Op: "exchange after reconnect", Err: err}
	}
	return resp, nil
}

func (c *Client) exchangeLocked(req protocol.Request) (protocol.Response, error) {
	if err := c.conn.WriteJSON(req); err != nil {
		return protocol.Response{}, err
	}
	if c.readTimeout > 0 {
		c.conn.SetReadDeadline(time.Now().Add(c.readTimeout))
	}
	var resp protocol.Response
	if err := c.conn.ReadJSON(&resp); err != nil {
		return protocol.Response{}, err
	}
	return resp, nil
}

// GetWorldState fetches the full world snapshot.
func (c *Client) GetWorldState(ctx context.Context) (protocol.WorldStateSnapshot, error) {
	resp, err := c.Send(ctx, protocol.Request{Command: protocol.CmdGetWorldState})
	if err != nil {
		return protocol.WorldStateSnapshot{}, err
	}
	if resp.Status != protocol.StatusSuccess || resp.WorldState == nil {
		return protocol.WorldStateSnapshot{}, &protocol.StateError{Reason: "get_world_state refused: " + resp.Message}
	}
	return *resp.WorldState, nil
}

// Register announces a character to the server.
func (c *Client) Register(ctx context.Context, snap protocol.AgentSnapshot) error {
	return c.command(ctx, protocol.CmdRegisterCharacter, snap)
}

// Update syncs a character's current state.
func (c *Client) Update(ctx context.Context, snap protocol.AgentSnapshot) error {
	return c.command(ctx, protocol.CmdUpdateCharacter, snap)
}

func (c *Client) command(ctx context.Context, cmd string, snap protocol.AgentSnapshot) error {
	resp, err := c.Send(ctx, protocol.Request{Command: cmd, Character: &snap})
	if err != nil {
		return err
	}
	if resp.Status != protocol.StatusSuccess {
		return &protocol.StateError{Reason: cmd + " refused: " + resp.Message}
	}
	return nil
}
