// Package normalize turns raw read-instance field values into the canonical
// forms stored in the reading log. Every function here is total: input that
// cannot be recognized falls back to an empty value instead of an error.
package normalize

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"readlog/pkg/models"
)

const (
	FormatAudiobook = "Audiobook"
	FormatEbook     = "Ebook"
	FormatBook      = "Book"
)

var monthCodes = map[string]string{
	"january":   "Jan",
	"february":  "Feb",
	"march":     "Mar",
	"april":     "Apr",
	"may":       "May",
	"june":      "Jun",
	"july":      "Jul",
	"august":    "Aug",
	"september": "Sep",
	"october":   "Oct",
	"november":  "Nov",
	"december":  "Dec",
}

var monthNames = func() map[string]string {
	m := make(map[string]string, len(monthCodes))
	for name, code := range monthCodes {
		m[code] = cases.Title(language.English).String(name)
	}
	return m
}()

// Month maps a full month name to its three-letter code.
func Month(s string) string {
	return monthCodes[strings.ToLower(strings.TrimSpace(s))]
}

// MonthName is the reverse of Month: "Jan" -> "January".
func MonthName(code string) string {
	return monthNames[code]
}

func Format(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "audiobook":
		return FormatAudiobook
	case "kindle":
		return FormatEbook
	case "print book", "book":
		return FormatBook
	default:
		return ""
	}
}

// Unsure reports whether the read date is uncertain. Only the literal "0" or
// "false" mean certain; anything else, empty included, counts as unsure.
func Unsure(s string) bool {
	return s != "0" && s != "false"
}

// Context strips quote characters and treats the bare answer "no" as no
// context at all.
func Context(s string) string {
	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, `"`, "")
	if s == "no" {
		return ""
	}
	return s
}

// Title title-cases every word. Titles and authors go through this before
// any lookup, so "dune" and "DUNE" land on the same book.
func Title(s string) string {
	// a Caser keeps state between calls and must not be shared
	return cases.Title(language.English).String(strings.TrimSpace(s))
}

func Year(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Fields normalizes a full set of parsed values into a ReadInstance without
// an id.
func Fields(f models.ParsedFields) models.ReadInstance {
	return models.ReadInstance{
		Title:        Title(f.Title),
		Author:       Title(f.Author),
		ReadYear:     Year(f.ReadYear),
		ReadMonth:    Month(f.ReadMonth),
		UnsureOfDate: Unsure(f.UnsureOfDate),
		Format:       Format(f.Format),
		Context:      Context(f.Context),
	}
}
