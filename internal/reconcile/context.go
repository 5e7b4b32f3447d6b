package reconcile

import (
	"strings"

	"readlog/internal/normalize"
)

// ContextSeparator joins the context notes of successive reads. It is also
// the anchor TruncateContext cuts at, so it must not occur in ordinary notes.
const ContextSeparator = " -- "

// AppendContext adds a note to a book's overall context. The separator is
// written even when old is empty, so a book whose first read had no note
// reads " -- loved it" after a second read.
func AppendContext(old, added string) string {
	return normalize.Context(old) + ContextSeparator + added
}

// TruncateContext undoes exactly one AppendContext by dropping everything
// from the last separator onward.
func TruncateContext(overall string) string {
	if i := strings.LastIndex(overall, ContextSeparator); i != -1 {
		return overall[:i]
	}
	return overall
}
