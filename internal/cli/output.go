package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"readlog/pkg/models"
)

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("json: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// readDate renders a stored month code and year the way a person says it.
func readDate(month string, year int) string {
	var parts []string
	if month != "" {
		parts = append(parts, month)
	}
	if year != 0 {
		parts = append(parts, fmt.Sprint(year))
	}
	if len(parts) == 0 {
		return "an unknown date"
	}
	return strings.Join(parts, " ")
}

func printBook(w io.Writer, b models.Book) {
	fmt.Fprintf(w, "%s by %s\n", b.Title, b.Author)
	fmt.Fprintf(w, "  read %d time(s), last in %s\n", b.TimesRead, readDate(b.LastReadMonth, b.LastReadYear))
	if b.OverallFormat != "" {
		fmt.Fprintf(w, "  format: %s\n", b.OverallFormat)
	}
	if b.OverallContext != "" {
		fmt.Fprintf(w, "  notes: %s\n", b.OverallContext)
	}
}

func printReadInstance(w io.Writer, ri models.ReadInstance) {
	fmt.Fprintf(w, "#%d %s by %s, %s", ri.ID, ri.Title, ri.Author, readDate(ri.ReadMonth, ri.ReadYear))
	if ri.UnsureOfDate {
		fmt.Fprint(w, " (date unsure)")
	}
	if ri.Format != "" {
		fmt.Fprintf(w, " [%s]", ri.Format)
	}
	fmt.Fprintln(w)
}
