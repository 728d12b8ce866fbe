package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/veligo/galleria/config"
	"github.com/veligo/galleria/optimize"
)

func newOptimizeCmd(configPath *string) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "optimize <files...>",
		Short: "Validate and optimize image files",
		Long: `Optimizes the given image files to fit the configured dimension and
byte budgets and writes the results to the output directory.

Files that fail validation or encoding are reported and skipped; they never
abort the remaining batch.`,
		Example: `  # Optimize two images into ./optimized
  galleria optimize --out optimized photo1.jpg photo2.png`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(out, 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}

			opt := optimize.New(nil, optimize.Options{
				MaxWidth:  cfg.Optimizer.MaxWidth,
				MaxHeight: cfg.Optimizer.MaxHeight,
				Quality:   cfg.Optimizer.Quality,
				Format:    cfg.Optimizer.Format,
				MaxBytes:  cfg.Optimizer.MaxBytes,
			})

			for _, arg := range args {
				data, err := os.ReadFile(arg)
				if err != nil {
					slog.Error("read file", "file", arg, "err", err)
					continue
				}

				if err := optimize.Validate(filepath.Base(arg), data); err != nil {
					slog.Error("invalid image", "file", arg, "err", err)
					continue
				}

				result, err := opt.Optimize(cmd.Context(), data)
				if err != nil {
					slog.Error("optimize image", "file", arg, "err", err)
					continue
				}

				target := filepath.Join(out, outputName(arg, result.MIME))
				if err := os.WriteFile(target, result.Data, 0o644); err != nil {
					slog.Error("write output", "file", target, "err", err)
					continue
				}

				slog.Info("optimized image",
					"file", arg,
					"out", target,
					"before", len(data),
					"after", len(result.Data),
					"dimensions", fmt.Sprintf("%dx%d", result.Dimensions[0], result.Dimensions[1]),
					"retried", result.Retried,
				)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "optimized", "output directory")

	return cmd
}

func outputName(path, mime string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	base = base[:len(base)-len(ext)]

	switch mime {
	case "image/png":
		return base + ".png"
	case "image/gif":
		return base + ".gif"
	default:
		return base + ".jpg"
	}
}
