// Package format enumerates the play formats the collector can analyze.
package format

import (
	"strings"

	"github.com/ramonehamilton/meta-collector/internal/errs"
	"github.com/ramonehamilton/meta-collector/internal/fuzzy"
)

// Format is a named ruleset that decides which cards are legal.
type Format string

// Supported formats.
const (
	Standard Format = "standard"
	Pioneer  Format = "pioneer"
	Modern   Format = "modern"
	Legacy   Format = "legacy"
	Vintage  Format = "vintage"
	Pauper   Format = "pauper"
)

// Default is used when no format is given on the command line.
const Default = Pauper

// All lists the supported formats in display order.
var All = []Format{Standard, Pioneer, Modern, Legacy, Vintage, Pauper}

// MTGTop8 format codes used in archive query strings.
var top8Codes = map[Format]string{
	Standard: "ST",
	Pioneer:  "PI",
	Modern:   "MO",
	Legacy:   "LE",
	Vintage:  "VI",
	Pauper:   "PAU",
}

func (f Format) String() string { return string(f) }

// Valid reports whether f is one of All.
func (f Format) Valid() bool {
	_, ok := top8Codes[f]
	return ok
}

// GoldfishSlug is the path segment MTGGoldfish uses for the format.
func (f Format) GoldfishSlug() string { return string(f) }

// Top8Code is the MTGTop8 "f" query parameter for the format.
func (f Format) Top8Code() string { return top8Codes[f] }

// LegalityKey is the key of the format in Scryfall legalities objects.
func (f Format) LegalityKey() string { return string(f) }

// Names returns the supported format names.
func Names() []string {
	names := make([]string, len(All))
	for i, f := range All {
		names[i] = f.String()
	}
	return names
}

// Parse resolves a user supplied format name. An empty argument yields
// Default. Exact names and unambiguous prefixes win; otherwise the closest
// fuzzy match above the default threshold is used.
func Parse(arg string) (Format, error) {
	arg = strings.ToLower(strings.TrimSpace(arg))
	if arg == "" {
		return Default, nil
	}

	if f := Format(arg); f.Valid() {
		return f, nil
	}

	var prefixed []Format
	for _, f := range All {
		if strings.HasPrefix(string(f), arg) {
			prefixed = append(prefixed, f)
		}
	}
	if len(prefixed) == 1 {
		return prefixed[0], nil
	}
	if len(prefixed) > 1 {
		return "", errs.Configuration("format", arg, "ambiguous, could be "+joinFormats(prefixed))
	}

	if match, ok := fuzzy.Best(arg, Names(), fuzzy.DefaultOptions()); ok {
		return All[match.Index], nil
	}

	return "", errs.Configuration("format", arg, "supported formats are "+strings.Join(Names(), ", "))
}

func joinFormats(formats []Format) string {
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = f.String()
	}
	return strings.Join(names, " or ")
}
