/*
Package worker provides the worker that contends for a shared monitor.

# Overview

A Worker is created with an ordinal, a name and a pointer to the shared
monitor.Monitor. When run it:
  - waits for the monitor
  - runs its Task while holding it (by default a HoldTask, which prints an
    ownership line and sleeps for HoldDuration)
  - releases the monitor and finishes

# Lifecycle

	Created -> Started -> Waiting -> Holding -> Released -> Finished

Waiting -> Holding is exclusive: the monitor admits one holder at a time.
An interruption while Waiting goes straight to Finished; an interruption
while Holding still releases the monitor.

# Interruption

Start derives a cancelable context for the worker; Interrupt cancels it.
Every interruption passes through the configured error handler. With the
ContinueOnError handler the interruption is swallowed and Join returns nil.
That policy only suits a demo. Use the FailFast handler when the caller
needs to know.

# Usage

	m := monitor.New()
	w := worker.NewWorker(0, m, &worker.Config{
		HoldDuration: time.Second,
	})

	if err := w.Start(ctx); err != nil {
		log.Fatal(err)
	}
	if err := w.Join(); err != nil {
		log.Printf("worker failed: %v", err)
	}

	stats := w.Stats()
	fmt.Printf("%s waited %v, held %v\n", stats.Name, stats.WaitTime, stats.HoldTime)

# Testing

All timing goes through types.Clock, so tests drive the hold duration with
a quartz mock clock instead of sleeping.
*/
package worker
