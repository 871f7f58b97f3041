// Package server is the signaling and relay server: it groups peers into
// rooms and, once a room is full, forwards session traffic between them.
package server

import (
	"log"
	"time"

	"github.com/automoto/rollback-arena/shared/messages"
	"github.com/leap-fish/necs/router"
	"github.com/leap-fish/necs/transports"
)

// Server wires Rooms to the necs websocket transport.
type Server struct {
	rooms     *Rooms
	transport *transports.WsServerTransport
	stopCh    chan struct{}
}

func NewServer(version string, roomTTL time.Duration) *Server {
	s := &Server{
		rooms:  NewRooms(version, roomTTL),
		stopCh: make(chan struct{}),
	}
	s.setupRouterCallbacks()
	return s
}

// Start listens on port and blocks until the transport stops.
func (s *Server) Start(port uint) error {
	go s.expireLoop()

	s.transport = transports.NewWsServerTransport(port, "", nil)
	return s.transport.Start()
}

func (s *Server) Stop() {
	close(s.stopCh)
}

func (s *Server) Rooms() *Rooms { return s.rooms }

func (s *Server) setupRouterCallbacks() {
	router.OnConnect(func(client *router.NetworkClient) {
		log.Printf("[signal] client connected: %s", client.Id())
	})

	router.OnDisconnect(func(client *router.NetworkClient, err error) {
		if err != nil {
			log.Printf("[signal] client %s disconnected with error: %v", client.Id(), err)
		}
		s.rooms.Leave(client)
	})

	router.On(func(client *router.NetworkClient, req messages.JoinRequest) {
		s.rooms.Join(client, req)
	})

	router.On(func(client *router.NetworkClient, msg messages.PeerInput) {
		s.rooms.RelayInput(client, msg)
	})

	router.On(func(client *router.NetworkClient, msg messages.ChecksumReport) {
		s.rooms.RelayChecksum(client, msg)
	})

	router.On(func(*router.NetworkClient, messages.Keepalive) {})

	router.OnError(func(client *router.NetworkClient, err error) {
		log.Printf("[signal] client error: %v", err)
	})
}

func (s *Server) expireLoop() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case now := <-ticker.C:
			s.rooms.Expire(now)
		}
	}
}
