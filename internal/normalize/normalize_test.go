package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"readlog/pkg/models"
)

func TestMonth_AllNamesCaseInsensitive(t *testing.T) {
	names := []string{
		"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December",
	}
	seen := make(map[string]bool)
	for _, name := range names {
		code := Month(name)
		assert.Len(t, code, 3, name)
		assert.Equal(t, code, Month(strings.ToUpper(name)))
		assert.Equal(t, code, Month(strings.ToLower(name)))
		assert.False(t, seen[code], "code %s produced twice", code)
		seen[code] = true
		assert.Equal(t, name, MonthName(code))
	}
	assert.Len(t, seen, 12)
}

func TestMonth_Unrecognized(t *testing.T) {
	for _, in := range []string{"", "jan", "Smarch", "13"} {
		assert.Equal(t, "", Month(in), "input %q", in)
	}
	assert.Equal(t, "", MonthName(""))
	assert.Equal(t, "", MonthName("Foo"))
}

func TestFormat(t *testing.T) {
	cases := map[string]string{
		"audiobook":  FormatAudiobook,
		"AudioBook":  FormatAudiobook,
		"kindle":     FormatEbook,
		"Kindle":     FormatEbook,
		"print book": FormatBook,
		"Print Book": FormatBook,
		"book":       FormatBook,
		"BOOK":       FormatBook,
		"":           "",
		"scroll":     "",
		"ebook":      "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Format(in), "input %q", in)
	}
}

func TestUnsure_FailsOpen(t *testing.T) {
	assert.False(t, Unsure("0"))
	assert.False(t, Unsure("false"))

	for _, in := range []string{"1", "yes", "", "no", "False", "maybe"} {
		assert.True(t, Unsure(in), "input %q", in)
	}
}

func TestContext(t *testing.T) {
	assert.Equal(t, "", Context("no"))
	assert.Equal(t, "", Context(""))
	assert.Equal(t, "its great", Context(`it's "great"`))
	assert.Equal(t, "No", Context("No"))
	assert.Equal(t, "", Context(`"no"`))

	once := Context(`book club's "pick"`)
	assert.Equal(t, once, Context(once))
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Dune", Title("dune"))
	assert.Equal(t, "Frank Herbert", Title("  FRANK herbert "))
	assert.Equal(t, "The Left Hand Of Darkness", Title("the left hand of darkness"))
}

func TestYear(t *testing.T) {
	assert.Equal(t, 2023, Year("2023"))
	assert.Equal(t, 2023, Year(" 2023 "))
	assert.Equal(t, 0, Year(""))
	assert.Equal(t, 0, Year("last year"))
	assert.Equal(t, 0, Year("-5"))
}

func TestFields(t *testing.T) {
	got := Fields(models.ParsedFields{
		Title:        "dune",
		Author:       "frank herbert",
		ReadYear:     "2023",
		ReadMonth:    "january",
		UnsureOfDate: "0",
		Format:       "audiobook",
		Context:      "no",
	})

	assert.Equal(t, models.ReadInstance{
		Title:        "Dune",
		Author:       "Frank Herbert",
		ReadYear:     2023,
		ReadMonth:    "Jan",
		UnsureOfDate: false,
		Format:       FormatAudiobook,
		Context:      "",
	}, got)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "dune messiah", Key("Dune: Messiah!"))
	assert.Equal(t, "dune messiah", Key("  dune   messiah "))
	assert.Equal(t, "catch22", Key("Catch-22"))
	assert.Equal(t, "enders game", Key("Ender's Game"))
	assert.Equal(t, "", Key("?!"))
}
