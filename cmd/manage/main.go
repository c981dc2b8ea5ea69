// Package main provides the manage binary: database readiness checks and
// account administration for the recipe server.
//
// Usage:
//
//	manage wait-for-db
//	manage create-superuser --email admin@example.com --password secret
//	manage seed
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
