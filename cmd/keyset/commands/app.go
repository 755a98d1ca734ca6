package commands

import (
	"context"
	"fmt"

	"github.com/ncobase/keyset/config"
	"github.com/ncobase/keyset/data/memory"
	"github.com/ncobase/keyset/data/mongodb"
	"github.com/ncobase/keyset/log"
	"github.com/ncobase/keyset/observes"
	"github.com/ncobase/keyset/server"
	"github.com/ncobase/keyset/version"
)

// app holds what a command needs to serve pages.
type app struct {
	conf    *config.Config
	src     server.Source
	cleanup []func()
}

func newApp(ctx context.Context, flags *globalFlags) (*app, error) {
	conf, err := config.LoadConfig(flags.conf)
	if err != nil {
		return nil, err
	}

	a := &app{conf: conf}

	logCleanup, err := log.Init(conf.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}
	log.SetVersion(version.Version)
	a.cleanup = append(a.cleanup, logCleanup)

	shutdown, err := observes.NewTracer(ctx, conf.Observes.Tracer)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.cleanup = append(a.cleanup, func() {
		if err := shutdown(context.Background()); err != nil {
			log.Warnf(context.Background(), "failed to shutdown tracer: %v", err)
		}
	})

	if flags.memory != "" {
		store, err := memory.Open(flags.memory)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to load %s: %w", flags.memory, err)
		}
		log.Debugf(ctx, "serving collections %v from %s", store.Names(), flags.memory)
		a.src = store
		return a, nil
	}

	manager, err := mongodb.NewManager(ctx, conf.Data.MongoDB)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	a.src = manager
	a.cleanup = append(a.cleanup, func() {
		if err := manager.Close(context.Background()); err != nil {
			log.Errorf(context.Background(), "failed to close mongodb: %v", err)
		}
	})
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		a.cleanup[i]()
	}
	a.cleanup = nil
}
