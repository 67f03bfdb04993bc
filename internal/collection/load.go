package collection

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/ramonehamilton/meta-collector/internal/deckimport"
)

// LoadFile reads collection entries from path. The format follows the
// extension: .json, .yaml/.yml, anything else is read as a decklist.
func LoadFile(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read collection file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ParseJSON(data)
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return ParseText(string(data))
	}
}

// ParseJSON reads an object keyed by card name. A value is either the list
// of owned set codes, one per copy, or a plain quantity:
//
//	{"Lightning Bolt": ["M10", "2ED"], "Counterspell": 4}
func ParseJSON(data []byte) ([]Entry, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid collection JSON")
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, fmt.Errorf("collection JSON must be an object keyed by card name")
	}

	var entries []Entry
	var parseErr error
	doc.ForEach(func(key, value gjson.Result) bool {
		entry := Entry{Name: strings.TrimSpace(key.String())}
		switch {
		case value.IsArray():
			for _, set := range value.Array() {
				entry.SetCodes = append(entry.SetCodes, set.String())
			}
			entry.Quantity = len(entry.SetCodes)
		case value.Type == gjson.Number:
			entry.Quantity = int(value.Int())
		default:
			parseErr = fmt.Errorf("card %q: expected set list or quantity, got %s", entry.Name, value.Raw)
			return false
		}
		entries = append(entries, entry)
		return true
	})

	if parseErr != nil {
		return nil, parseErr
	}
	return entries, nil
}

// ParseYAML reads a mapping of card name to quantity or set code list:
//
//	Lightning Bolt: 4
//	Counterspell: [MMQ, 7ED]
func ParseYAML(data []byte) ([]Entry, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid collection YAML: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("collection YAML must be a mapping of card name to quantity")
	}

	entries := make([]Entry, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		entry := Entry{Name: strings.TrimSpace(key.Value)}

		switch value.Kind {
		case yaml.ScalarNode:
			qty, err := strconv.Atoi(value.Value)
			if err != nil {
				return nil, fmt.Errorf("card %q (line %d): invalid quantity %q", entry.Name, value.Line, value.Value)
			}
			entry.Quantity = qty
		case yaml.SequenceNode:
			for _, set := range value.Content {
				entry.SetCodes = append(entry.SetCodes, set.Value)
			}
			entry.Quantity = len(entry.SetCodes)
		default:
			return nil, fmt.Errorf("card %q (line %d): expected quantity or set list", entry.Name, value.Line)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// ParseText reads a decklist ("4 Lightning Bolt (M10)"). Sideboard lines
// count as owned copies too.
func ParseText(text string) ([]Entry, error) {
	result, err := deckimport.NewParser(nil).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("invalid collection list: %w", err)
	}

	all := result.Deck.Cards()
	entries := make([]Entry, 0, len(all))
	for _, c := range all {
		entry := Entry{Name: c.Name, Quantity: c.Quantity}
		if c.SetCode != "" {
			for range c.Quantity {
				entry.SetCodes = append(entry.SetCodes, c.SetCode)
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
