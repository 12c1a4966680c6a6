// cmd/lineage/main.go
//
// Entry point for the lineage CLI. Every command works on a vault: a
// directory of markdown notes named with dot-separated hierarchy tokens
// ("Week.Tuesday" is a child of "Week"). The vault defaults to the current
// directory and can be overridden with --vault or LINEAGE_VAULT.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/kingrea/lineage/internal/tui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := newRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, tui.ErrCanceled) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}
