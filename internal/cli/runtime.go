package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/seanrobertwright/Odin-OpenSpec/internal/app"
	"github.com/seanrobertwright/Odin-OpenSpec/internal/config"
	"github.com/seanrobertwright/Odin-OpenSpec/internal/crypto"
	logpkg "github.com/seanrobertwright/Odin-OpenSpec/internal/log"
	"github.com/seanrobertwright/Odin-OpenSpec/internal/storage"
)

// runtimeEnv holds the per-invocation wiring: config, the open store and the
// services over it.
type runtimeEnv struct {
	cfg      config.Config
	logger   *slog.Logger
	store    *storage.Store
	profiles *app.ProfileService
	states   *app.StateService
	transfer *app.TransferService
}

// withEnv loads config, opens the store, runs fn, and tears everything down.
// Every command goes through here so failures map to exit codes uniformly.
func withEnv(ctx context.Context, deps commandDeps, fn func(ctx context.Context, env *runtimeEnv) error) error {
	cfg, err := config.Load(config.LoadOptions{
		ConfigPath: deps.globals.ConfigPath,
		DataDir:    deps.globals.DataDir,
	})
	if err != nil {
		return mapCommandError(err)
	}

	logger, closer, err := logpkg.Setup(cfg.Logging)
	if err != nil {
		return mapCommandError(err)
	}
	defer closeQuietly(closer)

	store, err := storage.Open(cfg.DatabasePath())
	if err != nil {
		return mapCommandError(err)
	}
	defer func() { _ = store.Close() }()

	keyring := crypto.NewKeyring(cfg.Storage.Dir)
	env := &runtimeEnv{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		profiles: app.NewProfileService(store, logger),
		states:   app.NewStateService(store, logger),
		transfer: app.NewTransferService(store, keyring, logger),
	}

	return mapCommandError(fn(ctx, env))
}

func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
