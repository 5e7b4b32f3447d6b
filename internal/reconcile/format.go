package reconcile

import "readlog/internal/normalize"

const (
	FormatBookAudio      = "Book/Audio"
	FormatEbookAudio     = "Ebook/Audio"
	FormatBookEbook      = "Book/Ebook"
	FormatBookEbookAudio = "Book/Ebook/Audio"
)

type formatPair struct{ a, b string }

// formatMerges lists every combination that changes the overall format.
// Each pair appears in both orders so the merge is commutative.
var formatMerges = map[formatPair]string{
	{normalize.FormatBook, normalize.FormatAudiobook}:  FormatBookAudio,
	{normalize.FormatAudiobook, normalize.FormatBook}:  FormatBookAudio,
	{normalize.FormatEbook, normalize.FormatAudiobook}: FormatEbookAudio,
	{normalize.FormatAudiobook, normalize.FormatEbook}: FormatEbookAudio,
	{normalize.FormatBook, normalize.FormatEbook}:      FormatBookEbook,
	{normalize.FormatEbook, normalize.FormatBook}:      FormatBookEbook,

	{FormatBookEbook, normalize.FormatAudiobook}: FormatBookEbookAudio,
	{normalize.FormatAudiobook, FormatBookEbook}: FormatBookEbookAudio,
	{FormatBookAudio, normalize.FormatEbook}:     FormatBookEbookAudio,
	{normalize.FormatEbook, FormatBookAudio}:     FormatBookEbookAudio,
	{FormatEbookAudio, normalize.FormatBook}:     FormatBookEbookAudio,
	{normalize.FormatBook, FormatEbookAudio}:     FormatBookEbookAudio,
}

// MergeFormat folds a newly read format into a book's overall format.
// Combinations not listed above, including same-format and empty inputs,
// leave current untouched. There is no inverse: a merged tag never shrinks.
func MergeFormat(current, added string) string {
	if merged, ok := formatMerges[formatPair{current, added}]; ok {
		return merged
	}
	return current
}
