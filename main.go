package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/oakwood-commons/tv/cmd"
	"github.com/oakwood-commons/tv/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	exitCode := 0
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		exitCode = 1
	}
	stop()

	logger.Sync()
	_ = logger.Close()
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
