package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"lifedeck/internal/mcp"
)

func main() {
	cards := flag.String("cards", "", "path to card catalog YAML (default: embedded set)")
	flag.Parse()

	mcp.SetCardsFile(*cards)

	s := server.NewMCPServer("lifedeck", "1.0.0")
	mcp.RegisterTools(s)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
