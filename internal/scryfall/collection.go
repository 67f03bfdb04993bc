package scryfall

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/ramonehamilton/meta-collector/internal/cards"
)

// MaxBatchSize is the maximum number of identifiers per /cards/collection request.
const MaxBatchSize = 75

// CardIdentifier represents a card identifier for the /cards/collection endpoint.
type CardIdentifier struct {
	ID              string `json:"id,omitempty"`
	Name            string `json:"name,omitempty"`
	Set             string `json:"set,omitempty"`
	CollectorNumber string `json:"collector_number,omitempty"`
}

// CollectionRequest is the request body for /cards/collection.
type CollectionRequest struct {
	Identifiers []CardIdentifier `json:"identifiers"`
}

// GetCardsByNames fetches cards by name, batching requests of MaxBatchSize.
// Names Scryfall does not know are returned in notFound.
func (c *Client) GetCardsByNames(ctx context.Context, names []string) (found []cards.Info, notFound []string, err error) {
	for i := 0; i < len(names); i += MaxBatchSize {
		end := min(i+MaxBatchSize, len(names))

		identifiers := make([]CardIdentifier, 0, end-i)
		for _, name := range names[i:end] {
			identifiers = append(identifiers, CardIdentifier{Name: cards.FrontFace(name)})
		}

		batch, missing, err := c.fetchBatch(ctx, identifiers)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to fetch batch %d-%d: %w", i, end, err)
		}
		found = append(found, batch...)
		notFound = append(notFound, missing...)
	}

	return found, notFound, nil
}

func (c *Client) fetchBatch(ctx context.Context, identifiers []CardIdentifier) ([]cards.Info, []string, error) {
	body, err := json.Marshal(CollectionRequest{Identifiers: identifiers})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.fetcher.Post(ctx, c.baseURL+"/cards/collection", "application/json", body)
	if err != nil {
		return nil, nil, err
	}
	if !gjson.ValidBytes(resp) {
		return nil, nil, fmt.Errorf("failed to parse Scryfall response")
	}

	parsed := gjson.ParseBytes(resp)
	if parsed.Get("object").String() == "error" {
		return nil, nil, fmt.Errorf("scryfall error: %s", parsed.Get("details").String())
	}

	var infos []cards.Info
	parsed.Get("data").ForEach(func(_, card gjson.Result) bool {
		infos = append(infos, parseCard(card))
		return true
	})

	var notFound []string
	parsed.Get("not_found.#.name").ForEach(func(_, name gjson.Result) bool {
		notFound = append(notFound, name.String())
		return true
	})

	return infos, notFound, nil
}
