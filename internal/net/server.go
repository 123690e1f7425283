package net

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"

	"lifedeck/internal/catalog"
	"lifedeck/internal/game"
	"lifedeck/internal/log"
)

// Server hosts one game for one TCP client.
type Server struct {
	Port       string
	CardsFile  string // empty means the embedded standard set
	Difficulty string
	Seed       int64
}

// Run starts the server, waits for a client to join, then runs the game.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", ":"+s.Port)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer ln.Close()

	fmt.Printf("Waiting for a player on port %s...\n", s.Port)

	// Accept exactly one connection (the player)
	conn, err := ln.Accept()
	if err != nil {
		return fmt.Errorf("accept: %w", err)
	}
	defer conn.Close()

	fmt.Printf("Player connected from %s\n", conn.RemoteAddr())

	// Read the player's game preferences
	dec := json.NewDecoder(conn)
	var joinMsg ClientMessage
	if err := dec.Decode(&joinMsg); err != nil {
		return fmt.Errorf("read join message: %w", err)
	}
	difficulty := joinMsg.Difficulty
	if difficulty == "" {
		difficulty = s.Difficulty
	}
	seed := joinMsg.Seed
	if seed == 0 {
		seed = s.Seed
	}

	fmt.Printf("Dealing a %s game\n", difficulty)

	logger := log.NewTextLogger(os.Stdout)
	g, err := catalog.NewGame(s.CardsFile, difficulty, seed, logger)
	if err != nil {
		return fmt.Errorf("deal game: %w", err)
	}

	ctrl := NewRemoteController(conn)
	if _, err := game.NewRunner(g, ctrl).Run(ctx); err != nil {
		return fmt.Errorf("game error: %w", err)
	}
	if err := ctrl.SendGameOver(g.Result()); err != nil {
		return fmt.Errorf("send game over: %w", err)
	}
	return nil
}

// RunLocal plays a game in-process: the runner drives one end of a pipe
// while the terminal REPL serves the other.
func RunLocal(ctx context.Context, cardsFile, difficulty string, seed int64) error {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()

	g, err := catalog.NewGame(cardsFile, difficulty, seed, log.NewMemoryLogger())
	if err != nil {
		return err
	}
	ctrl := NewRemoteController(serverConn)

	done := make(chan error, 1)
	go func() {
		_, err := game.NewRunner(g, ctrl).Run(ctx)
		if err == nil {
			err = ctrl.SendGameOver(g.Result())
		}
		done <- err
		// Unblock the REPL if the game ended without a game_over message.
		serverConn.Close()
	}()

	client := &Client{conn: clientConn}
	replErr := client.RunREPL(ctx)
	if err := <-done; err != nil {
		return fmt.Errorf("game error: %w", err)
	}
	return replErr
}
