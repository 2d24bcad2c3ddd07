// Command cardforge converts Anki deck exports to CSV and enhances each
// card with AI-generated example sentences.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rshade/cardforge/internal/cli"
	"github.com/rshade/cardforge/pkg/version"
)

func main() {
	os.Exit(run())
}

// run executes the root command and maps the result to an exit code.
// Interrupts cancel the context so in-flight batches drain cleanly.
func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCmd(version.GetVersion())
	if err := root.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}
