package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/arcanaland/wretched/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cmd.RootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, cmd.Describe(err))
		stop()
		os.Exit(1)
	}
}
