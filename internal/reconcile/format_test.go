package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"readlog/internal/normalize"
)

var formatDomain = []string{
	"",
	normalize.FormatAudiobook,
	normalize.FormatEbook,
	normalize.FormatBook,
	FormatBookAudio,
	FormatEbookAudio,
	FormatBookEbook,
	FormatBookEbookAudio,
}

func TestMergeFormat_Pairs(t *testing.T) {
	cases := []struct {
		current, added, want string
	}{
		{normalize.FormatBook, normalize.FormatAudiobook, FormatBookAudio},
		{normalize.FormatAudiobook, normalize.FormatEbook, FormatEbookAudio},
		{normalize.FormatEbook, normalize.FormatBook, FormatBookEbook},
		{FormatBookEbook, normalize.FormatAudiobook, FormatBookEbookAudio},
		{FormatBookAudio, normalize.FormatEbook, FormatBookEbookAudio},
		{FormatEbookAudio, normalize.FormatBook, FormatBookEbookAudio},
		{FormatBookAudio, normalize.FormatBook, FormatBookAudio},
		{FormatBookEbookAudio, normalize.FormatBook, FormatBookEbookAudio},
		{normalize.FormatBook, "", normalize.FormatBook},
		{"", normalize.FormatBook, ""},
		{"Scroll", normalize.FormatBook, "Scroll"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, MergeFormat(tc.current, tc.added), "%q + %q", tc.current, tc.added)
	}
}

func TestMergeFormat_CommutativeOnSingles(t *testing.T) {
	singles := []string{normalize.FormatAudiobook, normalize.FormatEbook, normalize.FormatBook}
	for _, a := range singles {
		for _, b := range singles {
			assert.Equal(t, MergeFormat(a, b), MergeFormat(b, a), "%q / %q", a, b)
		}
	}
}

func TestMergeFormat_CommutativeWhereMerged(t *testing.T) {
	for _, a := range formatDomain {
		for _, b := range formatDomain {
			ab, ba := MergeFormat(a, b), MergeFormat(b, a)
			if ab != a || ba != b {
				assert.Equal(t, ab, ba, "%q / %q", a, b)
			}
		}
	}
}

func TestMergeFormat_Idempotent(t *testing.T) {
	for _, f := range formatDomain {
		assert.Equal(t, f, MergeFormat(f, f))
	}
}
