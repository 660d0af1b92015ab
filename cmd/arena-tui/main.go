package main

import (
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/playmatatu/ballbattle/internal/arena"
	"github.com/playmatatu/ballbattle/internal/config"
	"github.com/playmatatu/ballbattle/internal/tui"
)

func main() {
	cfg := config.Load()

	// Match events log to stderr, which would scribble over the screen.
	log.SetOutput(io.Discard)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	if err := tui.Run(cfg.Arena(), arena.WithRand(rng)); err != nil {
		fmt.Fprintf(os.Stderr, "arena-tui: %v\n", err)
		os.Exit(1)
	}
}
