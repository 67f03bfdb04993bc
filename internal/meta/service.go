package meta

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ramonehamilton/meta-collector/internal/errs"
	"github.com/ramonehamilton/meta-collector/internal/fetch"
	"github.com/ramonehamilton/meta-collector/internal/format"
)

// DeckSource fetches raw decks for a format.
type DeckSource interface {
	FetchDecks(ctx context.Context, f format.Format) ([]RawDeck, error)
}

// Service aggregates decks from every configured source.
type Service struct {
	config  *ServiceConfig
	sources map[string]DeckSource
	order   []string
}

// ServiceConfig configures the meta service.
type ServiceConfig struct {
	// Sources lists the enabled sources by name.
	Sources        []string
	GoldfishConfig *GoldfishConfig
	Top8Config     *Top8Config
}

// DefaultServiceConfig enables both sources.
func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		Sources:        []string{SourceGoldfish, SourceTop8},
		GoldfishConfig: DefaultGoldfishConfig(),
		Top8Config:     DefaultTop8Config(),
	}
}

// NewService creates a meta service whose clients share fetcher.
func NewService(fetcher *fetch.Client, config *ServiceConfig) (*Service, error) {
	if config == nil {
		config = DefaultServiceConfig()
	}

	s := &Service{config: config, sources: make(map[string]DeckSource)}
	for _, name := range config.Sources {
		switch name {
		case SourceGoldfish:
			s.sources[name] = NewGoldfishClient(fetcher, config.GoldfishConfig)
		case SourceTop8:
			s.sources[name] = NewTop8Client(fetcher, config.Top8Config)
		default:
			return nil, errs.Configuration("meta source", name, fmt.Sprintf("expected %s or %s", SourceGoldfish, SourceTop8))
		}
		s.order = append(s.order, name)
	}

	if len(s.order) == 0 {
		return nil, errs.Configuration("meta sources", "", "at least one source is required")
	}
	return s, nil
}

// NewServiceWithSources builds a service from explicit sources, fetched in
// the given name order.
func NewServiceWithSources(order []string, sources map[string]DeckSource) *Service {
	return &Service{sources: sources, order: order}
}

// WithFetcher returns a service with the same configuration on another
// transport.
func (s *Service) WithFetcher(fetcher *fetch.Client) *Service {
	if s.config == nil {
		return s
	}
	fresh, err := NewService(fetcher, s.config)
	if err != nil {
		// The configuration was accepted once already.
		return s
	}
	return fresh
}

// FetchMetaCorpus fetches every source concurrently. If any source fails
// the whole fetch fails with a DataFetchError; partial results are never
// returned. Decks are ordered by source, then as published.
func (s *Service) FetchMetaCorpus(ctx context.Context, f format.Format) ([]RawDeck, error) {
	results := make([][]RawDeck, len(s.order))

	g, ctx := errgroup.WithContext(ctx)
	for i, name := range s.order {
		source := s.sources[name]
		g.Go(func() error {
			decks, err := source.FetchDecks(ctx, f)
			if err != nil {
				return errs.DataFetch(name, err)
			}
			results[i] = decks
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []RawDeck
	for _, decks := range results {
		all = append(all, decks...)
	}
	return all, nil
}
