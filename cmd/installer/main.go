// Package main starts the Lodestar setup wizard.
//
// This process hosts the browser-facing installation flow and exits once the
// operator shuts it down; the installed system runs as its own process.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	installercmd "github.com/louisbranch/lodestar/internal/cmd/installer"
	"github.com/louisbranch/lodestar/internal/platform/config"
)

func main() {
	cfg, err := installercmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	log.SetPrefix("[INSTALLER] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := installercmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
