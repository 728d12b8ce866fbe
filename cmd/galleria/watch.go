package main

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/veligo/galleria/config"
	"github.com/veligo/galleria/fallback"
	"github.com/veligo/galleria/gallery"
	"github.com/veligo/galleria/intake"
	"github.com/veligo/galleria/optimize"
	"github.com/veligo/galleria/preview"
	"github.com/veligo/galleria/storage"
	"github.com/veligo/galleria/upload"
	"github.com/veligo/galleria/watch"
)

func newWatchCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Ingest images dropped into the configured folder",
		Long: `Watches the configured drop folder and runs every dropped image through
the full pipeline: validation, optimization, and upload to the configured
image store. The committed locator set is logged after every change.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			store, closeStore, err := buildStorage(cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			var previews preview.Registry

			resolver := fallback.Resolver{
				ShowDefaultBackground: cfg.Gallery.ShowDefaultBackgroundEnabled(),
			}

			if cfg.Watch.Owner == "" {
				slog.Warn("no watch.owner configured, images will be inlined as data URIs instead of stored")
			}

			g := gallery.New[uuid.UUID]()
			coordinator := upload.New(
				g,
				&previews,
				optimize.New(nil, optimize.Options{
					MaxWidth:  cfg.Optimizer.MaxWidth,
					MaxHeight: cfg.Optimizer.MaxHeight,
					Quality:   cfg.Optimizer.Quality,
					Format:    cfg.Optimizer.Format,
					MaxBytes:  cfg.Optimizer.MaxBytes,
				}),
				store,
				upload.WithOwner[uuid.UUID](cfg.Watch.Owner),
				upload.WithOnChange[uuid.UUID](func(locators []gallery.Locator) {
					var primary gallery.Locator
					if len(locators) > 0 {
						primary = locators[0]
					}
					slog.Info("gallery changed",
						"images", len(locators),
						"primary", resolver.Resolve(primary),
					)
				}),
			)

			w, err := watch.New(cfg.Watch.Dir, time.Duration(cfg.Watch.Debounce))
			if err != nil {
				return err
			}
			if err := w.Start(); err != nil {
				return err
			}
			defer w.Stop()

			ctx := cmd.Context()

			for {
				select {
				case <-ctx.Done():
					return nil

				case f, ok := <-w.Files():
					if !ok {
						return nil
					}

					entries, err := intake.Admit(&previews, g, cfg.Gallery.MaxImages, uuid.New, f)
					if err != nil {
						if errors.Is(err, intake.ErrTooManyImages) || errors.Is(err, intake.ErrNoImages) {
							slog.Warn("rejected dropped file", "file", f.Name, "err", err)
							continue
						}
						return err
					}

					if err := coordinator.Process(ctx, entries...); err != nil {
						return err
					}
				}
			}
		},
	}
}

func buildStorage(cfg *config.Config) (storage.Storage, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Storage.Backend {
	case "", "fs":
		store, err := storage.NewFilesystemStorage(cfg.Storage.BaseDir)
		if err != nil {
			return nil, nil, err
		}
		return store, noop, nil

	case "memory":
		return &storage.MemoryStorage{}, noop, nil

	case "sqlite":
		store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil

	default:
		return nil, nil, fmt.Errorf("storage backend %q is not supported", cfg.Storage.Backend)
	}
}
