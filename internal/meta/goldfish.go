package meta

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/ramonehamilton/meta-collector/internal/deckimport"
	"github.com/ramonehamilton/meta-collector/internal/fetch"
	"github.com/ramonehamilton/meta-collector/internal/format"
	"github.com/ramonehamilton/meta-collector/internal/logging"
)

// SourceGoldfish names MTGGoldfish in decks and errors.
const SourceGoldfish = "mtggoldfish"

// GoldfishClient fetches archetype decklists from MTGGoldfish.
type GoldfishClient struct {
	fetcher *fetch.Client
	baseURL string
	decks   int
}

// GoldfishConfig configures the Goldfish client.
type GoldfishConfig struct {
	// BaseURL is the MTGGoldfish base URL.
	BaseURL string

	// Decks is how many archetypes, by meta share, are fetched.
	Decks int
}

// DefaultGoldfishConfig returns default configuration.
func DefaultGoldfishConfig() *GoldfishConfig {
	return &GoldfishConfig{
		BaseURL: "https://www.mtggoldfish.com",
		Decks:   30,
	}
}

// Archetype is one tile of the metagame page.
type Archetype struct {
	Name      string
	Path      string
	MetaShare float64
}

// NewGoldfishClient creates a new MTGGoldfish client.
func NewGoldfishClient(fetcher *fetch.Client, config *GoldfishConfig) *GoldfishClient {
	if config == nil {
		config = DefaultGoldfishConfig()
	}
	return &GoldfishClient{
		fetcher: fetcher,
		baseURL: strings.TrimSuffix(config.BaseURL, "/"),
		decks:   config.Decks,
	}
}

// FetchDecks returns the representative decklist of the top archetypes.
// Weights are meta shares relative to the most played archetype, so the
// top archetype weighs 1.
func (c *GoldfishClient) FetchDecks(ctx context.Context, f format.Format) ([]RawDeck, error) {
	archetypes, err := c.FetchArchetypes(ctx, f)
	if err != nil {
		return nil, err
	}
	if c.decks > 0 && len(archetypes) > c.decks {
		archetypes = archetypes[:c.decks]
	}

	var top float64
	for _, a := range archetypes {
		top = max(top, a.MetaShare)
	}

	decks := make([]RawDeck, 0, len(archetypes))
	for _, a := range archetypes {
		if a.MetaShare <= 0 {
			logging.Log.WithField("archetype", a.Name).Debug("skipping archetype without meta share")
			continue
		}

		list, err := c.fetchDecklist(ctx, a.Path)
		if err != nil {
			return nil, fmt.Errorf("archetype %s: %w", a.Name, err)
		}

		decks = append(decks, RawDeck{
			Name:   a.Name,
			Source: SourceGoldfish,
			Weight: a.MetaShare / top,
			Cards:  list,
		})
	}

	logging.Log.WithFields(logrus.Fields{"format": f, "decks": len(decks)}).Info("fetched goldfish archetypes")
	return decks, nil
}

// FetchArchetypes parses the full metagame page of f, ordered as listed.
func (c *GoldfishClient) FetchArchetypes(ctx context.Context, f format.Format) ([]Archetype, error) {
	body, err := c.fetcher.Get(ctx, fmt.Sprintf("%s/metagame/%s/full", c.baseURL, url.PathEscape(f.GoldfishSlug())))
	if err != nil {
		return nil, err
	}
	return parseMetagamePage(body)
}

var shareRegex = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)

// parseMetagamePage reads archetype tiles:
//
//	<div class="archetype-tile">
//	  <div class="archetype-tile-title"><a href="/archetype/pauper-affinity">Affinity</a></div>
//	  <div class="archetype-tile-statistic metagame-percentage">
//	    <div class="archetype-tile-statistic-value">12.3%</div>
//	  </div>
//	</div>
func parseMetagamePage(body []byte) ([]Archetype, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse metagame page: %w", err)
	}

	var archetypes []Archetype
	doc.Find(".archetype-tile").Each(func(_ int, tile *goquery.Selection) {
		link := tile.Find(".archetype-tile-title a").First()
		name := strings.TrimSpace(link.Text())
		path, _ := link.Attr("href")
		if name == "" || path == "" {
			return
		}

		stat := tile.Find(".metagame-percentage .archetype-tile-statistic-value").First()
		if stat.Length() == 0 {
			stat = tile.Find(".archetype-tile-statistic-value").First()
		}
		m := shareRegex.FindStringSubmatch(stat.Text())
		if m == nil {
			return
		}
		share, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return
		}

		archetypes = append(archetypes, Archetype{Name: name, Path: path, MetaShare: share})
	})

	if len(archetypes) == 0 {
		return nil, fmt.Errorf("no archetypes found on metagame page")
	}
	return archetypes, nil
}

func (c *GoldfishClient) fetchDecklist(ctx context.Context, path string) ([]RawCard, error) {
	u := path
	if strings.HasPrefix(path, "/") {
		u = c.baseURL + path
	}

	body, err := c.fetcher.Get(ctx, u)
	if err != nil {
		return nil, err
	}
	return parseArchetypePage(body)
}

// parseArchetypePage reads the decklist of an archetype page. The page
// embeds the list as text in the deck input field; the deck table is used
// when the field is missing.
func parseArchetypePage(body []byte) ([]RawCard, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse archetype page: %w", err)
	}

	if text, ok := doc.Find("input#deck_input_deck").Attr("value"); ok && strings.TrimSpace(text) != "" {
		result, err := deckimport.NewParser(nil).Parse(text)
		if err != nil {
			return nil, fmt.Errorf("failed to parse embedded decklist: %w", err)
		}
		return rawCards(result.Deck), nil
	}

	var list []RawCard
	doc.Find("table.deck-view-deck-table tr").Each(func(_ int, row *goquery.Selection) {
		qty, err := strconv.Atoi(strings.TrimSpace(row.Find(".deck-col-qty").Text()))
		if err != nil {
			return
		}
		name := strings.TrimSpace(row.Find(".deck-col-card a").First().Text())
		if name == "" {
			return
		}
		list = append(list, RawCard{Name: name, Quantity: qty})
	})

	if len(list) == 0 {
		return nil, fmt.Errorf("no decklist found on archetype page")
	}
	return list, nil
}

func rawCards(deck *deckimport.ParsedDeck) []RawCard {
	all := deck.Cards()
	list := make([]RawCard, 0, len(all))
	for _, c := range all {
		list = append(list, RawCard{Name: c.Name, Quantity: c.Quantity})
	}
	return list
}
