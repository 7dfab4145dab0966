package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bronystylecrazy/decorice/cmd"
	"github.com/bronystylecrazy/decorice/example/registry"
	"github.com/bronystylecrazy/decorice/manifest"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root, err := cmd.New(registry.Register(manifest.NewRegistry()))
	if err == nil {
		err = root.Start(ctx)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
