package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/ramonehamilton/meta-collector/internal/charts"
	"github.com/ramonehamilton/meta-collector/internal/collection"
	"github.com/ramonehamilton/meta-collector/internal/console"
	"github.com/ramonehamilton/meta-collector/internal/export"
	"github.com/ramonehamilton/meta-collector/internal/format"
	"github.com/ramonehamilton/meta-collector/internal/logging"
	"github.com/ramonehamilton/meta-collector/internal/session"
	"github.com/ramonehamilton/meta-collector/internal/wishlist"
)

// RunnerConfig configures a Runner.
type RunnerConfig struct {
	Format        format.Format
	PageSize      int
	DefaultAction session.Action

	// ExportFormat and ExportDir decide where the export key writes.
	ExportFormat export.Format
	ExportDir    string

	// CollectionFile, when set, is imported again whenever it changes if
	// WatchCollection is true.
	CollectionFile  string
	WatchCollection bool
	Duplicates      collection.DuplicatePolicy

	// OpenCharts opens the statistics chart in a browser after writing it.
	OpenCharts bool
}

// Runner owns the session state. Every input, refresh result and
// collection change is applied on the goroutine running Run, one at a time
// and to completion, before the next frame is rendered.
type Runner struct {
	config   RunnerConfig
	loader   *Loader
	store    *collection.Store
	renderer *console.Renderer

	snapshot *Snapshot
	state    session.State

	results       chan refreshed
	cancelRefresh context.CancelFunc

	log *logrus.Entry
}

type refreshed struct {
	token    uint64
	snapshot *Snapshot
	err      error
}

// NewRunner creates a runner browsing snapshot.
func NewRunner(loader *Loader, store *collection.Store, renderer *console.Renderer, snapshot *Snapshot, config RunnerConfig) *Runner {
	state := session.New(snapshot.Data(), session.Options{
		Height:        config.PageSize,
		DefaultAction: config.DefaultAction,
	})

	return &Runner{
		config:   config,
		loader:   loader,
		store:    store,
		renderer: renderer,
		snapshot: snapshot,
		state:    state,
		results:  make(chan refreshed),
		log:      logging.Log.WithField("component", "session"),
	}
}

// State returns the current session state.
func (r *Runner) State() session.State { return r.state }

// Snapshot returns the snapshot being browsed.
func (r *Runner) Snapshot() *Snapshot { return r.snapshot }

// Run processes keys until the user quits, keys is closed or ctx is done.
func (r *Runner) Run(ctx context.Context, keys <-chan []console.Key) error {
	ctx, stop := context.WithCancel(ctx)
	defer stop()
	defer r.stopRefresh()

	var changed <-chan struct{}
	if r.config.WatchCollection && r.config.CollectionFile != "" {
		watcher, err := collection.Watch(r.config.CollectionFile)
		if err != nil {
			r.log.WithError(err).Warn("collection file is not watched")
		} else {
			defer watcher.Close()
			changed = watcher.Changed()
		}
	}

	r.render()
	for !r.state.Quitting() {
		select {
		case <-ctx.Done():
			return nil

		case line, ok := <-keys:
			if !ok {
				return nil
			}
			for _, key := range line {
				cmd := console.Translate(key, r.state.View())
				if cmd.Kind == session.CmdNone {
					continue
				}
				r.Apply(ctx, cmd)
				if r.state.Quitting() {
					break
				}
			}

		case res := <-r.results:
			r.applyRefresh(res)

		case <-changed:
			r.reloadCollectionFile(ctx)
		}

		r.render()
	}
	return nil
}

// Apply runs one command through the session and performs its effect.
func (r *Runner) Apply(ctx context.Context, cmd session.Command) {
	var effect session.Effect
	r.state, effect = session.Apply(r.state, cmd)
	r.perform(ctx, effect)
}

func (r *Runner) perform(ctx context.Context, effect session.Effect) {
	switch effect.Kind {
	case session.EffectQuit, session.EffectCancelRefresh:
		r.stopRefresh()

	case session.EffectAddCopy:
		qty, err := r.store.Add(ctx, effect.Target.Name, "")
		if err != nil {
			r.fail("add failed", err)
			return
		}
		r.reloadStore(ctx, fmt.Sprintf("added %s, own %d", effect.Target.Name, qty))

	case session.EffectRemoveCopy:
		qty, removed, err := r.store.Remove(ctx, effect.Target.Name, "")
		if err != nil {
			r.fail("remove failed", err)
			return
		}
		if !removed {
			r.state = r.state.WithStatus(fmt.Sprintf("no copies of %s to remove", effect.Target.Name))
			return
		}
		r.reloadStore(ctx, fmt.Sprintf("removed %s, own %d", effect.Target.Name, qty))

	case session.EffectShowCard:
		r.log.WithField("card", effect.Target.Name).Debug("showing card")

	case session.EffectRenderStats:
		r.writeStatsChart()

	case session.EffectExport:
		r.export(effect.Rows)

	case session.EffectStartRefresh:
		r.startRefresh(ctx, effect.Token)
	}
}

func (r *Runner) startRefresh(ctx context.Context, token uint64) {
	r.stopRefresh()

	refreshCtx, cancel := context.WithCancel(ctx)
	r.cancelRefresh = cancel
	owned := r.snapshot.Collection

	go func() {
		snapshot, err := r.loader.Refresh(refreshCtx, r.config.Format, owned)
		select {
		case r.results <- refreshed{token: token, snapshot: snapshot, err: err}:
		case <-ctx.Done():
		}
	}()
}

func (r *Runner) stopRefresh() {
	if r.cancelRefresh != nil {
		r.cancelRefresh()
		r.cancelRefresh = nil
	}
}

func (r *Runner) applyRefresh(res refreshed) {
	accepted := res.token == r.state.PendingToken()

	r.state = session.ApplyRefresh(r.state, session.RefreshResult{
		Token: res.token,
		Data:  dataOf(res.snapshot),
		Err:   res.err,
	})

	if !accepted {
		r.log.WithField("token", res.token).Debug("ignoring stale refresh")
		return
	}
	r.stopRefresh()

	if res.err != nil {
		r.log.WithError(res.err).Warn("refresh failed")
		return
	}

	// The collection may have changed while the fetch was running.
	r.snapshot = res.snapshot.WithCollection(r.snapshot.Collection)
	r.state = session.Reseed(r.state, r.snapshot.Data())
}

func dataOf(s *Snapshot) session.Data {
	if s == nil {
		return session.Data{}
	}
	return s.Data()
}

// reloadStore reads the stored collection and reseeds the session.
func (r *Runner) reloadStore(ctx context.Context, status string) {
	owned, err := r.store.Load(ctx, r.config.Duplicates)
	if err != nil {
		r.fail("reload failed", err)
		return
	}
	r.swapCollection(owned, status)
}

func (r *Runner) reloadCollectionFile(ctx context.Context) {
	entries, err := collection.LoadFile(r.config.CollectionFile)
	if err != nil {
		r.fail("collection reload failed", err)
		return
	}

	owned, err := r.store.Import(ctx, entries, r.config.Duplicates)
	if err != nil {
		r.fail("collection reload failed", err)
		return
	}
	logWarnings(r.log.WithField("source", "collection"), owned.Warnings())
	r.swapCollection(owned, "collection reloaded")
}

func (r *Runner) swapCollection(owned *collection.Collection, status string) {
	r.snapshot = r.snapshot.WithCollection(owned)
	r.state = session.Reseed(r.state, r.snapshot.Data()).WithStatus(status)
}

func (r *Runner) export(rows []wishlist.Row) {
	builder := export.NewExportBuilder().
		WithFormat(r.config.ExportFormat).
		WithTimestampedFilename(r.config.ExportDir, "wishlist_"+r.config.Format.String()).
		WithPrettyJSON(true).
		WithOverwrite(true)

	if err := builder.Export(wishlist.Export(rows)); err != nil {
		r.fail("export failed", err)
		return
	}
	r.log.WithField("file", builder.FilePath()).Info("wishlist exported")
	r.state = r.state.WithStatus(fmt.Sprintf("exported %d cards to %s", len(rows), builder.FilePath()))
}

func (r *Runner) writeStatsChart() {
	if r.config.ExportDir == "" {
		return
	}

	path := filepath.Join(r.config.ExportDir, "stats_"+r.config.Format.String()+".html")
	config := charts.DefaultChartConfig()
	config.Title = "Collection progress"
	config.Subtitle = r.config.Format.String()

	if err := charts.WriteStatsPage(path, r.snapshot.Stats, config); err != nil {
		r.log.WithError(err).Warn("failed to write stats chart")
		return
	}
	if r.config.OpenCharts {
		if err := charts.OpenInBrowser(path); err != nil {
			r.log.WithError(err).Warn("failed to open stats chart")
		}
	}
	r.state = r.state.WithStatus("chart written to " + path)
}

func (r *Runner) fail(what string, err error) {
	r.log.WithError(err).Warn(what)
	r.state = r.state.WithStatus(what + ": " + err.Error())
}

func (r *Runner) render() {
	if !r.state.Dirty() {
		return
	}
	r.renderer.Render(r.state.View())
	r.state = r.state.Clean()
}
