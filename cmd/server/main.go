package main // Entry point package

import (
	"context"   // root context for the command tree
	"os"        // exit codes and signals
	"os/signal" // graceful shutdown on SIGINT/SIGTERM
	"syscall"   // SIGTERM

	"github.com/iliyamo/todo-api/internal/command" // cobra command tree
)

func main() { os.Exit(run()) }

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := command.RootCommand().ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}
