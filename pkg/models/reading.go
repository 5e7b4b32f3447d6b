package models

// ReadInstance is one logged reading event. Rows are never edited, only
// appended or removed; id order stands in for recency.
type ReadInstance struct {
	ID           int64  `json:"id" yaml:"id"`
	Title        string `json:"title" yaml:"title"`
	Author       string `json:"author" yaml:"author"`
	ReadYear     int    `json:"read_year" yaml:"read_year"`
	ReadMonth    string `json:"read_month" yaml:"read_month"`
	UnsureOfDate bool   `json:"unsure_of_date" yaml:"unsure_of_date"`
	Format       string `json:"format" yaml:"format"`
	Context      string `json:"context" yaml:"context"`
}

// ParsedFields carries the raw values for one read instance as the caller
// extracted them from its request. Nothing here is normalized yet.
type ParsedFields struct {
	Title        string `json:"title" yaml:"title"`
	Author       string `json:"author" yaml:"author"`
	ReadYear     string `json:"read_year" yaml:"read_year"`
	ReadMonth    string `json:"read_month" yaml:"read_month"`
	UnsureOfDate string `json:"unsure_of_date" yaml:"unsure_of_date"`
	Format       string `json:"format" yaml:"format"`
	Context      string `json:"context" yaml:"context"`
}

type ReadDate struct {
	Year  int    `json:"year"`
	Month string `json:"month"`
}
