package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spektr-org/bizlens/insights"
)

// ============================================================================
// BIZLENS CLI — Business-review analytics over a Yelp-style dataset
// ============================================================================

const version = "0.3.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCommand().ExecuteContext(ctx)
	switch {
	case err == nil:
	case errors.Is(err, insights.ErrNoData):
		// Not a failure: the view ran and found nothing.
		fmt.Fprintln(os.Stderr, "No data:", err)
	default:
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
