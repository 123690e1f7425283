package net

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
)

// Client connects to a game server and provides a terminal REPL.
type Client struct {
	conn net.Conn
}

// Connect connects to a server, sends the join handshake, and runs the
// REPL.
func Connect(ctx context.Context, addr, difficulty string, seed int64) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	enc := json.NewEncoder(conn)
	if err := enc.Encode(ClientMessage{Type: "join", Difficulty: difficulty, Seed: seed}); err != nil {
		return fmt.Errorf("send join: %w", err)
	}

	fmt.Println("Connected! Waiting for the game to start...")

	client := &Client{conn: conn}
	return client.RunREPL(ctx)
}

// RunREPL reads server messages and handles them interactively.
func (c *Client) RunREPL(ctx context.Context) error {
	dec := json.NewDecoder(c.conn)
	enc := json.NewEncoder(c.conn)
	reader := bufio.NewReader(os.Stdin)

	for {
		var msg ServerMessage
		if err := dec.Decode(&msg); err != nil {
			return fmt.Errorf("read message: %w", err)
		}

		switch msg.Type {
		case "notify":
			c.renderEvent(msg.Event)

		case "choose_action":
			c.renderState(msg.State)
			c.renderActions(msg.Actions)
			idx := c.readChoice(reader, len(msg.Actions))
			if err := enc.Encode(ClientMessage{Type: "action", Index: idx}); err != nil {
				return fmt.Errorf("send action: %w", err)
			}

		case "game_over":
			fmt.Println()
			fmt.Println("═══════════════════════════════════")
			fmt.Println("          GAME OVER")
			fmt.Println("═══════════════════════════════════")
			fmt.Println(msg.Result)
			fmt.Println("═══════════════════════════════════")
			return nil
		}
	}
}

func (c *Client) renderEvent(ev *EventView) {
	if ev == nil {
		return
	}
	// Format like the TextLogger
	phase := ev.Phase
	if phase == "" {
		phase = "          "
	}
	for len(phase) < 22 {
		phase += " "
	}
	fmt.Printf("T%-2d %s| %s\n", ev.Turn, phase, ev.Details)
}

func (c *Client) renderState(sv *StateView) {
	if sv == nil {
		return
	}

	fmt.Println()
	fmt.Println("╔══════════════════════════════════════════════════════╗")
	fmt.Printf("║  Turn %-3d %-14s %s\n", sv.Turn, sv.Stage, sv.Phase)
	fmt.Printf("║  Vitality %s %d/%d\n", vitalityBar(sv.Vitality, sv.MaxVitality), sv.Vitality, sv.MaxVitality)
	if sv.Dream != nil {
		fmt.Printf("║  Dream: %s (fulfilled at %d challenges)\n", sv.Dream.Name, sv.Dream.Power)
	}
	fmt.Printf("║  Deck: %d  Discard: %d  Aging: %d\n", sv.DeckCount, sv.DiscardCount, sv.AgingCount)
	fmt.Printf("║  Completed: %d  Failed: %d  Played: %d\n",
		sv.Stats.Completed, sv.Stats.Failed, sv.Stats.Played)

	if sv.Challenge != nil {
		fmt.Printf("║  Challenge: %s (power %d), committed %d\n",
			sv.Challenge.Name, sv.Challenge.Power, sv.CommittedPower)
	}
	if len(sv.Insurances) > 0 {
		fmt.Printf("║  Policies: ")
		for _, cv := range sv.Insurances {
			fmt.Printf("[%s %d/%d] ", cv.Name, cv.Power, cv.Premium)
		}
		fmt.Println()
	}
	if len(sv.Market) > 0 {
		fmt.Printf("║  Market:   ")
		for _, cv := range sv.Market {
			fmt.Printf("[%s %s %d/%d] ", cv.Name, cv.Duration, cv.Power, cv.Premium)
		}
		fmt.Println()
	}
	fmt.Println("╚══════════════════════════════════════════════════════╝")

	// Show hand
	if len(sv.Hand) > 0 {
		fmt.Printf("\nHand: ")
		for i, cv := range sv.Hand {
			marker := ""
			if cv.Selected {
				marker = "*"
			}
			fmt.Printf("[%d] %s(%d)%s  ", i+1, cv.Name, cv.Power, marker)
		}
		fmt.Println()
	}
}

func vitalityBar(v, max int) string {
	const width = 20
	if max <= 0 {
		return ""
	}
	filled := v * width / max
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

func (c *Client) renderActions(actions []ActionView) {
	fmt.Println("\nActions:")
	for _, a := range actions {
		fmt.Printf("  %d) %s\n", a.Index+1, a.Desc)
	}
}

func (c *Client) readChoice(reader *bufio.Reader, count int) int {
	for {
		fmt.Print("> ")
		line, _ := reader.ReadString('\n')
		line = strings.TrimSpace(line)
		n, err := strconv.Atoi(line)
		if err != nil || n < 1 || n > count {
			fmt.Printf("Enter a number between 1 and %d\n", count)
			continue
		}
		return n - 1 // convert to 0-indexed
	}
}
