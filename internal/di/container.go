package di

import (
	"context"

	"github.com/samber/do/v2"
	"github.com/samber/oops"

	"github.com/TheStevenMiller/Discord-Bot/internal/modules/archive"
	"github.com/TheStevenMiller/Discord-Bot/internal/modules/checker"
	"github.com/TheStevenMiller/Discord-Bot/internal/modules/discord"
	stateRepo "github.com/TheStevenMiller/Discord-Bot/internal/modules/state/repository"
	"github.com/TheStevenMiller/Discord-Bot/internal/modules/storage"
	"github.com/TheStevenMiller/Discord-Bot/internal/shared/config"
)

// Setup initializes the dependency injection container
func Setup() (do.Injector, error) {
	injector := do.New()

	// Register Config
	do.Provide(injector, func(i do.Injector) (*config.Config, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, oops.With("context", "failed to load config").Wrap(err)
		}
		return cfg, nil
	})

	// Register Discord Client
	do.Provide(injector, func(i do.Injector) (*discord.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return discord.NewClient(cfg), nil
	})

	// Register Object Store
	do.Provide(injector, func(i do.Injector) (storage.ObjectStore, error) {
		cfg := do.MustInvoke[*config.Config](i)
		store, err := storage.NewGCS(context.Background(), cfg)
		if err != nil {
			return nil, oops.With("bucket", cfg.GCSBucketName, "context", "failed to initialize object store").Wrap(err)
		}
		return store, nil
	})

	// Register Checkpoint Repository
	do.Provide(injector, func(i do.Injector) (stateRepo.Repository, error) {
		store := do.MustInvoke[storage.ObjectStore](i)
		return stateRepo.NewObjectStorage(store), nil
	})

	// Register Formatter
	do.Provide(injector, func(i do.Injector) (*archive.Formatter, error) {
		cfg := do.MustInvoke[*config.Config](i)
		location, err := cfg.Location()
		if err != nil {
			return nil, err
		}
		return archive.NewFormatter(location), nil
	})

	// Register Feed Publisher
	do.Provide(injector, func(i do.Injector) (*archive.FeedPublisher, error) {
		cfg := do.MustInvoke[*config.Config](i)
		store := do.MustInvoke[storage.ObjectStore](i)
		location, err := cfg.Location()
		if err != nil {
			return nil, err
		}
		return archive.NewFeedPublisher(store, cfg.GCSBucketName, location), nil
	})

	// Register Checker Service
	do.Provide(injector, func(i do.Injector) (*checker.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		location, err := cfg.Location()
		if err != nil {
			return nil, err
		}
		return checker.New(
			cfg,
			do.MustInvoke[*discord.Client](i),
			do.MustInvoke[storage.ObjectStore](i),
			do.MustInvoke[stateRepo.Repository](i),
			do.MustInvoke[*archive.Formatter](i),
			do.MustInvoke[*archive.FeedPublisher](i),
			location,
		), nil
	})

	return injector, nil
}

// Shutdown gracefully releases all held resources
func Shutdown(injector do.Injector) error {
	// Close the Discord client if it exists
	if client, err := do.Invoke[*discord.Client](injector); err == nil && client != nil {
		client.Close()
	}

	// Close the object store if it exists
	if store, err := do.Invoke[storage.ObjectStore](injector); err == nil && store != nil {
		if err := store.Close(); err != nil {
			return err
		}
	}

	return nil
}
