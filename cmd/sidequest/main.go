package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/sidequest/internal/cli"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cli.RootCmd(version).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "sidequest: %v\n", err)
		return 1
	}
	return 0
}
