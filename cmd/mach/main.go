package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/footprint-tools/mach/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	// After the first signal the default handling returns, so a second
	// one stops a handler that does not watch ctx.
	context.AfterFunc(ctx, stop)

	code := cli.Main(ctx, os.Args[1:], cli.Env{})
	stop()
	os.Exit(code)
}
