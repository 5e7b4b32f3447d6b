package models

// Book is the per (title, author) summary derived from every ReadInstance
// sharing that pair. It exists only while TimesRead >= 1.
type Book struct {
	ID             int64  `json:"id" yaml:"id"`
	Title          string `json:"title" yaml:"title"`
	Author         string `json:"author" yaml:"author"`
	FirstReadYear  int    `json:"first_read_year" yaml:"first_read_year"`
	FirstReadMonth string `json:"first_read_month" yaml:"first_read_month"`
	UnsureOfDate   bool   `json:"unsure_of_date" yaml:"unsure_of_date"`
	LastReadYear   int    `json:"last_read_year" yaml:"last_read_year"`
	LastReadMonth  string `json:"last_read_month" yaml:"last_read_month"`
	TimesRead      int    `json:"times_read" yaml:"times_read"`
	OverallFormat  string `json:"overall_format" yaml:"overall_format"`
	OverallContext string `json:"overall_context" yaml:"overall_context"`
}

// Retraction describes what removing the most recent read instance did.
// Book is nil when the summary row was removed along with its last event.
type Retraction struct {
	ReadInstanceID int64  `json:"read_instance_id"`
	Title          string `json:"title"`
	Author         string `json:"author"`
	BookRemoved    bool   `json:"book_removed"`
	Book           *Book  `json:"book,omitempty"`
}
