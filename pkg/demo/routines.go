package demo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jzx17/gomonitor/pkg/launcher"
	"github.com/jzx17/gomonitor/pkg/types"
)

func printSomething(ctx context.Context, env *Env) error {
	return env.Console().Println("Printing something")
}

func sleepALittle(ctx context.Context, env *Env) error {
	if err := types.SleepContext(ctx, env.clock(ctx), SleepDuration); err != nil {
		return types.NewDemoError(Sleep, fmt.Errorf("%w: %w", types.ErrInterrupted, err))
	}
	return env.Console().Println("Slept enough")
}

func spawnThreads(ctx context.Context, env *Env) error {
	if err := env.Console().Println("---- Spawn Threads"); err != nil {
		return err
	}

	config := launcher.DefaultConfig()
	config.Clock = nil
	if env.Threads != nil {
		c := *env.Threads
		config = &c
	}
	if config.Output == nil {
		config.Output = env.Output
	}
	if config.Clock == nil {
		config.Clock = env.clock(ctx)
	}

	l, err := launcher.New(config)
	if err != nil {
		return err
	}
	_, err = l.Run(ctx)
	return err
}

// loadClass stands in for a lookup that is expected to fail
func loadClass(name string) error {
	return fmt.Errorf("%w: %s", types.ErrClassNotFound, name)
}

func throwChecked(ctx context.Context, env *Env) error {
	err := loadClass("Missing")
	if errors.Is(err, types.ErrClassNotFound) {
		return env.Console().Println("Caught")
	}
	return err
}

func throwUnchecked(ctx context.Context, env *Env) error {
	return types.NewDemoError(Unchecked, types.ErrApplication)
}
