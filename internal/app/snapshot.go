package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ramonehamilton/meta-collector/internal/cards"
	"github.com/ramonehamilton/meta-collector/internal/collection"
	"github.com/ramonehamilton/meta-collector/internal/format"
	"github.com/ramonehamilton/meta-collector/internal/logging"
	"github.com/ramonehamilton/meta-collector/internal/meta"
	"github.com/ramonehamilton/meta-collector/internal/metrics"
	"github.com/ramonehamilton/meta-collector/internal/playability"
	"github.com/ramonehamilton/meta-collector/internal/session"
	"github.com/ramonehamilton/meta-collector/internal/wishlist"
)

// Snapshot is an immutable bundle of everything the session shows. A
// change of collection or meta data produces a new Snapshot.
type Snapshot struct {
	Corpus     *meta.Corpus
	Scores     *playability.Scores
	Collection *collection.Collection

	Catalog  []wishlist.Row
	Wishlist []wishlist.Row
	Stats    []wishlist.Progress

	opts wishlist.Options
}

// NewSnapshot derives the rows of a snapshot.
func NewSnapshot(corpus *meta.Corpus, scores *playability.Scores, owned *collection.Collection, opts wishlist.Options) *Snapshot {
	catalog := wishlist.Catalog(owned, corpus, scores, opts)
	return &Snapshot{
		Corpus:     corpus,
		Scores:     scores,
		Collection: owned,
		Catalog:    catalog,
		Wishlist:   wishlist.Build(owned, corpus, scores, opts),
		Stats:      wishlist.Stats(catalog),
		opts:       opts,
	}
}

// WithCollection returns a snapshot over the same meta data and owned.
func (s *Snapshot) WithCollection(owned *collection.Collection) *Snapshot {
	return NewSnapshot(s.Corpus, s.Scores, owned, s.opts)
}

// Cards returns the card catalog of the snapshot.
func (s *Snapshot) Cards() *cards.Catalog {
	return s.Corpus.Catalog()
}

// Data returns the rows a session browses.
func (s *Snapshot) Data() session.Data {
	return session.Data{Catalog: s.Catalog, Wishlist: s.Wishlist, Stats: s.Stats}
}

// LoaderConfig configures a Loader.
type LoaderConfig struct {
	CopyCap int
	Options wishlist.Options

	// Metrics, when set, records the duration of successful loads.
	Metrics *metrics.FetchMetrics
}

// DefaultLoaderConfig returns default configuration.
func DefaultLoaderConfig() LoaderConfig {
	return LoaderConfig{
		CopyCap: playability.DefaultCopyCap,
		Options: wishlist.DefaultOptions(),
	}
}

// Loader fetches meta data and computes snapshots from it.
type Loader struct {
	provider Provider
	config   LoaderConfig
}

// NewLoader creates a loader.
func NewLoader(provider Provider, config LoaderConfig) *Loader {
	return &Loader{provider: provider, config: config}
}

// Load fetches the corpus and catalog of f and scores them against owned.
// Any failure returns no snapshot.
func (l *Loader) Load(ctx context.Context, f format.Format, owned *collection.Collection) (*Snapshot, error) {
	return l.load(ctx, l.provider, f, owned)
}

// Refresh is Load without cached pages, when the provider supports it.
func (l *Loader) Refresh(ctx context.Context, f format.Format, owned *collection.Collection) (*Snapshot, error) {
	provider := l.provider
	if r, ok := provider.(Refresher); ok {
		provider = r.Fresh()
	}
	return l.load(ctx, provider, f, owned)
}

func (l *Loader) load(ctx context.Context, provider Provider, f format.Format, owned *collection.Collection) (*Snapshot, error) {
	log := logging.Log.WithField("format", f)
	start := time.Now()

	raw, err := provider.FetchMetaCorpus(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch meta corpus: %w", err)
	}

	catalog, err := provider.FetchCatalog(ctx, f, meta.Names(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch card catalog: %w", err)
	}

	corpus, err := meta.Ingest(f, catalog, raw)
	if err != nil {
		return nil, err
	}
	logWarnings(log.WithField("source", "corpus"), corpus.Warnings())

	scores, err := playability.Compute(corpus, l.config.CopyCap)
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	l.config.Metrics.RecordLoad(elapsed)
	log.WithFields(logrus.Fields{
		"decks":    corpus.Len(),
		"cards":    scores.Len(),
		"duration": elapsed.Round(time.Millisecond),
	}).Info("meta loaded")

	return NewSnapshot(corpus, scores, owned, l.config.Options), nil
}
