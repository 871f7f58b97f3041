package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/automoto/rollback-arena/server"
)

func main() {
	port := flag.Uint("port", 7373, "Server port")
	version := flag.String("version", "", "Required client version (empty = accept any)")
	roomTTL := flag.Duration("room-ttl", 10*time.Minute, "How long a room may wait for its quorum (0 = forever)")
	flag.Parse()

	srv := server.NewServer(*version, *roomTTL)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Shutting down signaling server...")
		srv.Stop()
		os.Exit(0)
	}()

	log.Printf("Starting signaling server on port %d (version: %q, room ttl: %s)", *port, *version, *roomTTL)
	if err := srv.Start(*port); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
