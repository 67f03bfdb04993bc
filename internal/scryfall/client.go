// Package scryfall resolves card names to card attributes through the
// Scryfall API.
package scryfall

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"

	"github.com/ramonehamilton/meta-collector/internal/cards"
	"github.com/ramonehamilton/meta-collector/internal/fetch"
)

// DefaultBaseURL is the public Scryfall API.
const DefaultBaseURL = "https://api.scryfall.com"

// Client is a Scryfall API client. Rate limiting, retries and caching are
// handled by the underlying fetch.Client.
type Client struct {
	fetcher *fetch.Client
	baseURL string
}

// NewClient creates a Scryfall client. An empty baseURL uses DefaultBaseURL.
func NewClient(fetcher *fetch.Client, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{fetcher: fetcher, baseURL: baseURL}
}

// WithFetcher returns a client using another transport, e.g. fetch.Client.Fresh.
func (c *Client) WithFetcher(fetcher *fetch.Client) *Client {
	return &Client{fetcher: fetcher, baseURL: c.baseURL}
}

// GetCardByName looks up a card by exact name, falling back to Scryfall's
// fuzzy name matching.
func (c *Client) GetCardByName(ctx context.Context, name string) (cards.Info, error) {
	for _, mode := range []string{"exact", "fuzzy"} {
		u := fmt.Sprintf("%s/cards/named?%s=%s", c.baseURL, mode, url.QueryEscape(name))

		body, err := c.fetcher.Get(ctx, u)
		var statusErr *fetch.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			continue
		}
		if err != nil {
			return cards.Info{}, fmt.Errorf("failed to get card %s: %w", name, err)
		}

		if !gjson.ValidBytes(body) {
			return cards.Info{}, fmt.Errorf("failed to parse JSON response for %s", name)
		}
		return parseCard(gjson.ParseBytes(body)), nil
	}

	return cards.Info{}, &NotFoundError{Name: name}
}

// NotFoundError reports a name Scryfall does not know.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("card not found: %s", e.Name)
}
