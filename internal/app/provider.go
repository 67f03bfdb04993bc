// Package app wires the providers, engines and the session together: it
// loads snapshots and runs the interactive event loop.
package app

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/ramonehamilton/meta-collector/internal/cards"
	"github.com/ramonehamilton/meta-collector/internal/errs"
	"github.com/ramonehamilton/meta-collector/internal/fetch"
	"github.com/ramonehamilton/meta-collector/internal/format"
	"github.com/ramonehamilton/meta-collector/internal/logging"
	"github.com/ramonehamilton/meta-collector/internal/meta"
	"github.com/ramonehamilton/meta-collector/internal/scryfall"
)

// Provider supplies the meta corpus and the card catalog of a format.
// Failures are DataFetchErrors and never come with partial data.
type Provider interface {
	FetchMetaCorpus(ctx context.Context, f format.Format) ([]meta.RawDeck, error)
	FetchCatalog(ctx context.Context, f format.Format, names []string) (*cards.Catalog, error)
}

// Refresher is implemented by providers that can bypass their cache.
type Refresher interface {
	Fresh() Provider
}

// WebProvider scrapes decklists from the meta sources and resolves cards
// through Scryfall.
type WebProvider struct {
	fetcher  *fetch.Client
	meta     *meta.Service
	scryfall *scryfall.Client
}

// NewWebProvider creates a provider whose clients share fetcher.
func NewWebProvider(fetcher *fetch.Client, metaConfig *meta.ServiceConfig, scryfallURL string) (*WebProvider, error) {
	service, err := meta.NewService(fetcher, metaConfig)
	if err != nil {
		return nil, err
	}
	return &WebProvider{
		fetcher:  fetcher,
		meta:     service,
		scryfall: scryfall.NewClient(fetcher, scryfallURL),
	}, nil
}

// Fresh returns a provider that skips cached pages and refreshes them.
func (p *WebProvider) Fresh() Provider {
	fetcher := p.fetcher.Fresh()
	return &WebProvider{
		fetcher:  fetcher,
		meta:     p.meta.WithFetcher(fetcher),
		scryfall: p.scryfall.WithFetcher(fetcher),
	}
}

// FetchMetaCorpus fetches the raw decks of every meta source.
func (p *WebProvider) FetchMetaCorpus(ctx context.Context, f format.Format) ([]meta.RawDeck, error) {
	return p.meta.FetchMetaCorpus(ctx, f)
}

// FetchCatalog resolves names through Scryfall. Names Scryfall does not
// know are left out of the catalog; ingestion reports them.
func (p *WebProvider) FetchCatalog(ctx context.Context, f format.Format, names []string) (*cards.Catalog, error) {
	found, notFound, err := p.scryfall.GetCardsByNames(ctx, names)
	if err != nil {
		return nil, errs.DataFetch("scryfall", err)
	}

	log := logging.Log.WithFields(logrus.Fields{"format": f, "source": "scryfall"})
	if len(notFound) > 0 {
		log.WithField("names", notFound).Debug("cards not found")
	}

	catalog, warnings := cards.NewCatalog(found)
	logWarnings(log, warnings)
	log.WithField("cards", catalog.Len()).Debug("catalog fetched")
	return catalog, nil
}

func logWarnings(log *logrus.Entry, warnings []errs.ValidationWarning) {
	for _, w := range warnings {
		log.WithField("kind", w.Kind).Warn(w.String())
	}
}
