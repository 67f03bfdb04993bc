package scryfall

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ramonehamilton/meta-collector/internal/fetch"
)

func testFetcher() *fetch.Client {
	return fetch.NewClient(&fetch.Config{
		UserAgent:      "test",
		RequestTimeout: 5 * time.Second,
		RateLimit:      time.Millisecond,
		RetryMax:       0,
		RetryWaitMin:   time.Millisecond,
		RetryWaitMax:   time.Millisecond,
	}, nil)
}

const boltJSON = `{
	"object": "card",
	"id": "77c6fa74-5543-42ac-9ead-0e890b188e99",
	"name": "Lightning Bolt",
	"mana_cost": "{R}",
	"type_line": "Instant",
	"colors": ["R"],
	"set": "2xm",
	"image_uris": {"normal": "https://cards.scryfall.io/normal/bolt.jpg"},
	"legalities": {"pauper": "legal", "standard": "not_legal", "vintage": "legal"}
}`

const delverJSON = `{
	"object": "card",
	"id": "not-a-uuid",
	"name": "Delver of Secrets // Insectile Aberration",
	"type_line": "Creature — Human Wizard // Creature — Human Insect",
	"set": "mid",
	"card_faces": [
		{"name": "Delver of Secrets", "mana_cost": "{U}", "colors": ["U"], "image_uris": {"normal": "https://cards.scryfall.io/normal/delver.jpg"}},
		{"name": "Insectile Aberration", "mana_cost": "", "colors": ["U"]}
	],
	"legalities": {"pauper": "legal"}
}`

func TestClient_GetCardsByNames(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST method, got %s", r.Method)
		}
		if r.URL.Path != "/cards/collection" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var req CollectionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
		}
		for _, id := range req.Identifiers {
			if strings.Contains(id.Name, "/") {
				t.Errorf("expected front face names, got %q", id.Name)
			}
		}

		fmt.Fprintf(w, `{"object":"list","not_found":[{"name":"Nonexistent Card"}],"data":[%s,%s]}`, boltJSON, delverJSON)
	}))
	defer server.Close()

	client := NewClient(testFetcher(), server.URL)
	infos, notFound, err := client.GetCardsByNames(context.Background(),
		[]string{"Lightning Bolt", "Delver of Secrets // Insectile Aberration", "Nonexistent Card"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(infos) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(infos))
	}
	if len(notFound) != 1 || notFound[0] != "Nonexistent Card" {
		t.Errorf("unexpected not found list: %v", notFound)
	}

	bolt := infos[0]
	if bolt.Identity != "lightning bolt" || bolt.ManaCost != "{R}" || bolt.ImageURI == "" {
		t.Errorf("unexpected bolt: %+v", bolt)
	}
	if bolt.ScryfallID.String() != "77c6fa74-5543-42ac-9ead-0e890b188e99" {
		t.Errorf("unexpected id %s", bolt.ScryfallID)
	}
	if !bolt.LegalIn("pauper") || bolt.LegalIn("standard") {
		t.Errorf("unexpected legalities: %v", bolt.Legalities)
	}

	delver := infos[1]
	if delver.Identity != "delver of secrets" {
		t.Errorf("expected front face identity, got %q", delver.Identity)
	}
	if delver.ManaCost != "{U}" || len(delver.Colors) != 1 || delver.ImageURI != "https://cards.scryfall.io/normal/delver.jpg" {
		t.Errorf("expected front face fields, got %+v", delver)
	}
	if !delver.HasType("Creature") {
		t.Errorf("expected creature type, got %v", delver.Types)
	}
}

func TestClient_GetCardsByNamesBatches(t *testing.T) {
	var batches []int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req CollectionRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		batches = append(batches, len(req.Identifiers))
		_, _ = w.Write([]byte(`{"object":"list","not_found":[],"data":[]}`))
	}))
	defer server.Close()

	names := make([]string, MaxBatchSize+5)
	for i := range names {
		names[i] = fmt.Sprintf("Card %d", i)
	}

	_, _, err := NewClient(testFetcher(), server.URL).GetCardsByNames(context.Background(), names)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batches) != 2 || batches[0] != MaxBatchSize || batches[1] != 5 {
		t.Errorf("unexpected batches: %v", batches)
	}
}

func TestClient_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer server.Close()

	_, _, err := NewClient(testFetcher(), server.URL).GetCardsByNames(context.Background(), []string{"Shock"})
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestClient_GetCardByName(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cards/named" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		switch {
		case r.URL.Query().Get("exact") != "":
			http.NotFound(w, r)
		case r.URL.Query().Get("fuzzy") == "lightnin bolt":
			_, _ = w.Write([]byte(boltJSON))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := NewClient(testFetcher(), server.URL)

	info, err := client.GetCardByName(context.Background(), "lightnin bolt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Name != "Lightning Bolt" {
		t.Errorf("expected fuzzy fallback to resolve, got %q", info.Name)
	}

	_, err = client.GetCardByName(context.Background(), "no such card")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}
