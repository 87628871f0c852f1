package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/pingsweep/internal/runner"
)

func main() {
	options := runner.ParseOptions()
	sweepRunner, err := runner.NewRunner(options)
	if err != nil {
		gologger.Fatal().Msgf("Could not create runner: %s\n", err)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup close handler
	go func() {
		<-c
		fmt.Println("\r- Ctrl+C pressed in Terminal, Exiting...")
		cancel()
	}()

	err = sweepRunner.Run(ctx)
	if errors.Is(err, runner.ErrNoValidSubnets) {
		gologger.Fatal().Msgf("No valid subnets to process. Exiting.\n")
	}
	if err != nil {
		gologger.Fatal().Msgf("Could not run pingsweep: %s\n", err)
	}
}
