package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	interrors "github.com/jzx17/gomonitor/internal/errors"
	"github.com/jzx17/gomonitor/pkg/demo"
	"github.com/jzx17/gomonitor/pkg/launcher"
	"github.com/jzx17/gomonitor/pkg/worker"
)

func main() {
	registry := demo.NewRegistry()

	name := flag.String("demo", demo.DefaultDemo, "demo to run: "+strings.Join(registry.Names(), ", "))
	workers := flag.Int("workers", launcher.DefaultWorkerCount, "number of workers in the threads demo")
	hold := flag.Duration("hold", worker.DefaultHoldDuration, "how long each worker holds the monitor")
	policy := flag.String("policy", interrors.ContinueOnErrorStrategy.String(), "interruption policy: ContinueOnError or FailFast")
	flag.Parse()

	strategy, err := interrors.ParseStrategy(*policy)
	if err != nil {
		log.Fatalf("Invalid policy: %v", err)
	}

	// Ctrl-C interrupts the workers
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	threads := launcher.DefaultConfig()
	threads.WorkerCount = *workers
	threads.HoldDuration = *hold
	threads.Policy = strategy
	threads.Logger = log.New(os.Stderr, "rtdemo: ", log.LstdFlags)

	env := &demo.Env{
		Output:  os.Stdout,
		Threads: threads,
	}

	start := time.Now()
	if err := registry.Run(ctx, *name, env); err != nil {
		stop()
		log.Fatalf("Demo %s failed: %v", *name, err)
	}

	fmt.Fprintf(os.Stderr, "demo %s finished in %v\n", *name, time.Since(start).Round(time.Millisecond))
}
