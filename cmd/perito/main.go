package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/joseph-ayodele/perito/internal/common"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, common.UserMessage(err))
		stop()
		os.Exit(1)
	}
}
