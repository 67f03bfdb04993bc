package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ramonehamilton/meta-collector/internal/app"
	"github.com/ramonehamilton/meta-collector/internal/console"
	"github.com/ramonehamilton/meta-collector/internal/logging"
)

// runSession loads the meta of the chosen format and browses it
// interactively until the user quits.
func runSession(ctx context.Context, flags *globalFlags, formatArg string) error {
	env, err := openEnvironment(flags)
	if err != nil {
		return err
	}
	defer env.Close()

	f, err := env.resolveFormat(formatArg)
	if err != nil {
		return err
	}

	// The session owns stdout; logs go to the log file until it ends.
	if env.cfg.App.LogFile != "" {
		closer, err := logging.ToFile(env.cfg.App.LogFile)
		if err != nil {
			return err
		}
		defer closer.Close()
	}

	fmt.Printf("Loading the %s meta...\n", f)
	loader, snapshot, err := env.snapshot(ctx, f)
	if err != nil {
		return err
	}
	if warnings := len(snapshot.Corpus.Warnings()); warnings > 0 {
		fmt.Printf("%d decklist problems were logged to %s\n", warnings, env.cfg.App.LogFile)
	}

	action, _ := env.cfg.GetSelectAction()
	exportFormat, _ := env.cfg.GetExportFormat()
	duplicates, _ := env.cfg.GetDuplicatePolicy()

	renderer := console.NewRenderer(os.Stdout, console.RendererOptions{
		Title:      f.String(),
		ShowImages: env.cfg.Session.ShowImages,
	})
	runner := app.NewRunner(loader, env.store, renderer, snapshot, app.RunnerConfig{
		Format:          f,
		PageSize:        env.cfg.Session.PageSize,
		DefaultAction:   action,
		ExportFormat:    exportFormat,
		ExportDir:       env.cfg.Export.Dir,
		CollectionFile:  env.cfg.Collection.File,
		WatchCollection: env.cfg.Collection.Watch,
		Duplicates:      duplicates,
		OpenCharts:      true,
	})

	return runner.Run(ctx, console.ReadKeys(ctx, os.Stdin))
}
