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

// SourceTop8 names MTGTop8 in decks and errors.
const SourceTop8 = "mtgtop8"

// Top8Client fetches tournament top 8 decklists from MTGTop8.
type Top8Client struct {
	fetcher *fetch.Client
	baseURL string
	events  int
}

// Top8Config configures the MTGTop8 client.
type Top8Config struct {
	// BaseURL is the MTGTop8 base URL.
	BaseURL string

	// Events is how many recent events are fetched.
	Events int
}

// DefaultTop8Config returns default configuration.
func DefaultTop8Config() *Top8Config {
	return &Top8Config{
		BaseURL: "https://www.mtgtop8.com",
		Events:  5,
	}
}

// Event is a tournament listed on a format page.
type Event struct {
	ID   string
	Name string
}

// TopDeck is a placed deck of an event.
type TopDeck struct {
	ID        string
	Name      string
	Placement string // "1", "2", "3-4", "5-8", ...
}

// NewTop8Client creates a new MTGTop8 client.
func NewTop8Client(fetcher *fetch.Client, config *Top8Config) *Top8Client {
	if config == nil {
		config = DefaultTop8Config()
	}
	return &Top8Client{
		fetcher: fetcher,
		baseURL: strings.TrimSuffix(config.BaseURL, "/"),
		events:  config.Events,
	}
}

// PlacementWeight maps a placement label to a deck weight: winners count
// most and weight falls off with placement.
func PlacementWeight(placement string) float64 {
	best := placement
	if i := strings.IndexByte(placement, '-'); i >= 0 {
		best = placement[:i]
	}
	rank, err := strconv.Atoi(strings.TrimSpace(best))
	if err != nil || rank < 1 {
		return 0.2
	}
	switch {
	case rank == 1:
		return 1.0
	case rank == 2:
		return 0.8
	case rank <= 4:
		return 0.6
	case rank <= 8:
		return 0.4
	default:
		return 0.2
	}
}

// FetchDecks returns the placed decks of the most recent events of f.
func (c *Top8Client) FetchDecks(ctx context.Context, f format.Format) ([]RawDeck, error) {
	events, err := c.FetchEvents(ctx, f)
	if err != nil {
		return nil, err
	}
	if c.events > 0 && len(events) > c.events {
		events = events[:c.events]
	}

	var decks []RawDeck
	for _, ev := range events {
		top, err := c.FetchEventDecks(ctx, f, ev.ID)
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", ev.Name, err)
		}

		for _, td := range top {
			list, err := c.fetchDecklist(ctx, td.ID)
			if err != nil {
				return nil, fmt.Errorf("deck %s: %w", td.Name, err)
			}
			decks = append(decks, RawDeck{
				Name:   fmt.Sprintf("%s (%s, %s)", td.Name, ev.Name, td.Placement),
				Source: SourceTop8,
				Weight: PlacementWeight(td.Placement),
				Cards:  list,
			})
		}
	}

	logging.Log.WithFields(logrus.Fields{"format": f, "events": len(events), "decks": len(decks)}).Info("fetched mtgtop8 events")
	return decks, nil
}

// FetchEvents lists the recent events on the format page of f.
func (c *Top8Client) FetchEvents(ctx context.Context, f format.Format) ([]Event, error) {
	body, err := c.fetcher.Get(ctx, fmt.Sprintf("%s/format?f=%s", c.baseURL, url.QueryEscape(f.Top8Code())))
	if err != nil {
		return nil, err
	}
	return parseFormatPage(body)
}

// FetchEventDecks lists the placed decks of one event.
func (c *Top8Client) FetchEventDecks(ctx context.Context, f format.Format, eventID string) ([]TopDeck, error) {
	u := fmt.Sprintf("%s/event?e=%s&f=%s", c.baseURL, url.QueryEscape(eventID), url.QueryEscape(f.Top8Code()))
	body, err := c.fetcher.Get(ctx, u)
	if err != nil {
		return nil, err
	}
	return parseEventPage(body)
}

func (c *Top8Client) fetchDecklist(ctx context.Context, deckID string) ([]RawCard, error) {
	body, err := c.fetcher.Get(ctx, fmt.Sprintf("%s/mtgo?d=%s", c.baseURL, url.QueryEscape(deckID)))
	if err != nil {
		return nil, err
	}

	result, err := deckimport.NewParser(nil).Parse(string(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse decklist: %w", err)
	}
	return rawCards(result.Deck), nil
}

func queryParam(href, key string) string {
	if i := strings.IndexByte(href, '?'); i >= 0 {
		href = href[i+1:]
	}
	values, err := url.ParseQuery(href)
	if err != nil {
		return ""
	}
	return values.Get(key)
}

// parseFormatPage collects event links ("event?e=123&f=PAU") in page order.
func parseFormatPage(body []byte) ([]Event, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse format page: %w", err)
	}

	seen := make(map[string]bool)
	var events []Event
	doc.Find(`a[href*="e="]`).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if !strings.Contains(href, "event") || queryParam(href, "d") != "" {
			return
		}
		id := queryParam(href, "e")
		name := strings.TrimSpace(a.Text())
		if id == "" || name == "" || seen[id] {
			return
		}
		seen[id] = true
		events = append(events, Event{ID: id, Name: name})
	})

	if len(events) == 0 {
		return nil, fmt.Errorf("no events found on format page")
	}
	return events, nil
}

var placementRegex = regexp.MustCompile(`^\d+(-\d+)?$`)

// parseEventPage reads deck rows. Each row holds a placement cell and a
// link to the deck ("?e=123&d=456&f=PAU").
func parseEventPage(body []byte) ([]TopDeck, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse event page: %w", err)
	}

	seen := make(map[string]bool)
	var decks []TopDeck
	doc.Find(`a[href*="d="]`).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		id := queryParam(href, "d")
		name := strings.TrimSpace(a.Text())
		if id == "" || name == "" || seen[id] {
			return
		}

		placement := ""
		a.ParentsFiltered("div").EachWithBreak(func(_ int, row *goquery.Selection) bool {
			row.Find("div").EachWithBreak(func(_ int, cell *goquery.Selection) bool {
				text := strings.TrimSpace(cell.Text())
				if placementRegex.MatchString(text) {
					placement = text
					return false
				}
				return true
			})
			return placement == ""
		})
		if placement == "" {
			return
		}

		seen[id] = true
		decks = append(decks, TopDeck{ID: id, Name: name, Placement: placement})
	})

	if len(decks) == 0 {
		return nil, fmt.Errorf("no decks found on event page")
	}
	return decks, nil
}
