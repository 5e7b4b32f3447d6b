package transfer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"readlog/internal/normalize"
	"readlog/internal/storage"
	"readlog/pkg/models"
)

const (
	ReadInstancesFile = "read_instances.csv"
	BooksFile         = "books.csv"
	YAMLFile          = "readlog.yaml"
)

var bookHeader = []string{
	"id", "title", "author", "first_read_year", "first_read_month", "unsure_of_date",
	"last_read_year", "last_read_month", "times_read", "overall_format", "overall_context",
}

// Snapshot is the YAML export document.
type Snapshot struct {
	ReadInstances []models.ReadInstance `yaml:"read_instances"`
	Books         []models.Book         `yaml:"books"`
}

// spokenFormat is the inverse of normalize.Format, so exported rows import
// back to the same stored value.
func spokenFormat(f string) string {
	switch f {
	case normalize.FormatAudiobook:
		return "audiobook"
	case normalize.FormatEbook:
		return "kindle"
	case normalize.FormatBook:
		return "print book"
	default:
		return ""
	}
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func yearString(y int) string {
	if y == 0 {
		return ""
	}
	return strconv.Itoa(y)
}

// WriteReadInstancesCSV writes the log oldest first in the import format.
func WriteReadInstancesCSV(w io.Writer, items []models.ReadInstance) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ReadInstanceHeader); err != nil {
		return err
	}
	for _, ri := range items {
		if err := cw.Write([]string{
			ri.Title,
			ri.Author,
			yearString(ri.ReadYear),
			normalize.MonthName(ri.ReadMonth),
			boolFlag(ri.UnsureOfDate),
			spokenFormat(ri.Format),
			ri.Context,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteBooksCSV(w io.Writer, books []models.Book) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(bookHeader); err != nil {
		return err
	}
	for _, b := range books {
		if err := cw.Write([]string{
			strconv.FormatInt(b.ID, 10),
			b.Title,
			b.Author,
			strconv.Itoa(b.FirstReadYear),
			b.FirstReadMonth,
			boolFlag(b.UnsureOfDate),
			strconv.Itoa(b.LastReadYear),
			b.LastReadMonth,
			strconv.Itoa(b.TimesRead),
			b.OverallFormat,
			b.OverallContext,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteYAML(w io.Writer, snap Snapshot) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// Export writes the store into dir as "csv" (two files) or "yaml" (one
// file) and returns the paths written.
func Export(ctx context.Context, store *storage.Store, dir, format string) ([]string, error) {
	reads, err := store.AllReadInstances(ctx)
	if err != nil {
		return nil, err
	}
	books, err := store.AllBooks(ctx)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	switch format {
	case "csv":
		riPath := filepath.Join(dir, ReadInstancesFile)
		if err := writeFile(riPath, func(w io.Writer) error { return WriteReadInstancesCSV(w, reads) }); err != nil {
			return nil, err
		}
		bPath := filepath.Join(dir, BooksFile)
		if err := writeFile(bPath, func(w io.Writer) error { return WriteBooksCSV(w, books) }); err != nil {
			return nil, err
		}
		return []string{riPath, bPath}, nil
	case "yaml":
		p := filepath.Join(dir, YAMLFile)
		if err := writeFile(p, func(w io.Writer) error {
			return WriteYAML(w, Snapshot{ReadInstances: reads, Books: books})
		}); err != nil {
			return nil, err
		}
		return []string{p}, nil
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
