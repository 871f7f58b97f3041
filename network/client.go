package network

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/automoto/rollback-arena/shared/messages"
	"github.com/coder/websocket"
	"github.com/leap-fish/necs/router"
	"github.com/leap-fish/necs/transports"
)

// ErrRejected wraps the reason the signaling server gave for refusing a join.
var ErrRejected = errors.New("join rejected")

// ErrLinkClosed is reported once the signaling connection drops after Connect.
var ErrLinkClosed = errors.New("signaling link closed")

var errNotConnected = errors.New("not connected")

// The necs websocket wrapper drops connections that stay silent for about a
// minute, and a peer waiting for its room receives nothing.
const keepaliveInterval = 20 * time.Second

type ClientState int

const (
	StateDisconnected ClientState = iota
	StateConnecting
	StateConnected
	StateJoined // in a room, waiting for the quorum
	StateReady  // room is full, peers are known
	StateError
)

func (s ClientState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateJoined:
		return "waiting for peers"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	}
	return "unknown"
}

// Client is the websocket link to the signaling server. It carries the join
// handshake and afterwards relays session traffic to the other peers in the
// room. All shared fields are protected by mu (router callbacks run on necs
// goroutines).
type Client struct {
	mu sync.RWMutex

	state     ClientState
	lastError error
	peerID    string
	room      string
	conn      *websocket.Conn

	readyCh chan messages.RoomReady // size-1 buffered; the room is ready once
	leftCh  chan messages.PeerLeft
	stopCh  chan struct{} // closed to end the keepalive loop

	// Inputs are never dropped: a gap is a protocol error on the receiving
	// engine, so these are unbounded queues instead of channels.
	inputs    []messages.PeerInput
	checksums []messages.ChecksumReport
}

func NewClient() *Client {
	return &Client{
		state:   StateDisconnected,
		readyCh: make(chan messages.RoomReady, 1),
		leftCh:  make(chan messages.PeerLeft, 8),
	}
}

// Connect dials the signaling server in a background goroutine and asks to
// join the room described by req.
func (c *Client) Connect(url string, req messages.JoinRequest) {
	c.mu.Lock()
	c.state = StateConnecting
	c.lastError = nil
	c.stopCh = make(chan struct{})
	stop := c.stopCh
	c.mu.Unlock()

	go c.keepalive(stop)

	router.OnConnect(func(_ *router.NetworkClient) {
		log.Printf("[client] connected to %s", url)
		c.mu.Lock()
		c.state = StateConnected
		c.mu.Unlock()

		if err := c.SendMessage(req); err != nil {
			c.setError(fmt.Errorf("send join request: %w", err))
		}
	})

	router.On(func(_ *router.NetworkClient, msg messages.JoinAccepted) {
		log.Printf("[client] joined room %q as %s", msg.Room, msg.PeerID)
		c.mu.Lock()
		c.peerID = msg.PeerID
		c.room = msg.Room
		c.state = StateJoined
		c.mu.Unlock()
	})

	router.On(func(_ *router.NetworkClient, msg messages.JoinRejected) {
		log.Printf("[client] join rejected: %s", msg.Reason)
		c.setError(fmt.Errorf("%w: %s", ErrRejected, msg.Reason))
	})

	router.On(func(_ *router.NetworkClient, msg messages.RoomReady) {
		log.Printf("[client] room %q ready with %d peers", msg.Room, len(msg.Peers))
		c.mu.Lock()
		c.state = StateReady
		c.mu.Unlock()
		select {
		case c.readyCh <- msg:
		default:
		}
	})

	router.On(func(_ *router.NetworkClient, msg messages.PeerLeft) {
		log.Printf("[client] peer %s left", msg.PeerID)
		select {
		case c.leftCh <- msg:
		default:
		}
	})

	router.On(func(_ *router.NetworkClient, msg messages.PeerInput) {
		c.mu.Lock()
		c.inputs = append(c.inputs, msg)
		c.mu.Unlock()
	})

	router.On(func(_ *router.NetworkClient, msg messages.ChecksumReport) {
		c.mu.Lock()
		c.checksums = append(c.checksums, msg)
		c.mu.Unlock()
	})

	router.OnDisconnect(func(_ *router.NetworkClient, err error) {
		log.Printf("[client] disconnected: %v", err)
		c.mu.Lock()
		if c.state != StateError && c.state != StateDisconnected {
			c.state = StateDisconnected
			c.lastError = ErrLinkClosed
			if err != nil {
				c.lastError = fmt.Errorf("%w: %v", ErrLinkClosed, err)
			}
		}
		c.conn = nil
		c.mu.Unlock()
		c.stopKeepalive()
	})

	router.OnError(func(_ *router.NetworkClient, err error) {
		log.Printf("[client] error: %v", err)
	})

	go func() {
		transport := transports.NewWsClientTransport(url)
		err := transport.Start(func(conn *websocket.Conn) {
			c.mu.Lock()
			c.conn = conn
			c.mu.Unlock()
		})
		if err != nil {
			c.setError(fmt.Errorf("connection failed: %w", err))
		}
	}()
}

func (c *Client) Disconnect() {
	c.mu.Lock()
	conn := c.conn
	c.state = StateDisconnected
	c.conn = nil
	c.mu.Unlock()
	c.stopKeepalive()

	if conn != nil {
		_ = conn.CloseNow()
	}

	router.ResetRouter()
}

func (c *Client) State() ClientState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Client) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError
}

// PeerID is the identity the signaling server gave us, empty until joined.
func (c *Client) PeerID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.peerID
}

func (c *Client) Room() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.room
}

// Ready returns the room roster once the quorum is reached. Non-blocking;
// it reports true exactly once.
func (c *Client) Ready() (messages.RoomReady, bool) {
	select {
	case msg := <-c.readyCh:
		return msg, true
	default:
		return messages.RoomReady{}, false
	}
}

func (c *Client) SendMessage(msg any) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return errNotConnected
	}

	payload, err := router.Serialize(msg)
	if err != nil {
		return fmt.Errorf("serialize: %w", err)
	}

	return conn.Write(context.Background(), websocket.MessageBinary, payload)
}

func (c *Client) SendInput(msg messages.PeerInput) error {
	return c.SendMessage(msg)
}

func (c *Client) SendChecksum(msg messages.ChecksumReport) error {
	return c.SendMessage(msg)
}

// DrainInputs returns all relayed inputs received since the last call, in
// arrival order. Non-blocking.
func (c *Client) DrainInputs() []messages.PeerInput {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.inputs
	c.inputs = nil
	return out
}

// DrainChecksums returns all relayed checksum reports, non-blocking.
func (c *Client) DrainChecksums() []messages.ChecksumReport {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.checksums
	c.checksums = nil
	return out
}

// DrainPeerLeft returns all pending departure notices, non-blocking.
func (c *Client) DrainPeerLeft() []messages.PeerLeft {
	return drainChan(c.leftCh)
}

// keepalive sends a Keepalive every keepaliveInterval until stop is closed.
// Sends before the connection is up are skipped.
func (c *Client) keepalive(stop <-chan struct{}) {
	ticker := time.NewTicker(keepaliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := c.SendMessage(messages.Keepalive{}); err != nil && !errors.Is(err, errNotConnected) {
				log.Printf("[client] keepalive: %v", err)
			}
		}
	}
}

func (c *Client) stopKeepalive() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopCh != nil {
		close(c.stopCh)
		c.stopCh = nil
	}
}

func (c *Client) setError(err error) {
	c.mu.Lock()
	c.state = StateError
	c.lastError = err
	c.mu.Unlock()
}

func drainChan[T any](ch chan T) []T {
	var out []T
	for {
		select {
		case v := <-ch:
			out = append(out, v)
		default:
			return out
		}
	}
}
