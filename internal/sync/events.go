package sync

import (
	"time"

	"readlog/pkg/models"
)

const (
	EventBookUpdate  = "book.update"
	EventBookRetract = "book.retract"
	EventBookDelete  = "book.delete"
)

// BookEvent is pushed to every sync client after a book changes.
type BookEvent struct {
	Type           string    `json:"type"`
	ReadInstanceID int64     `json:"read_instance_id,omitempty"`
	BookID         int64     `json:"book_id,omitempty"`
	Title          string    `json:"title"`
	Author         string    `json:"author"`
	TimesRead      int       `json:"times_read,omitempty"`
	OverallFormat  string    `json:"overall_format,omitempty"`
	At             time.Time `json:"at"`
}

func UpdateEvent(b models.Book) BookEvent {
	return BookEvent{
		Type:          EventBookUpdate,
		BookID:        b.ID,
		Title:         b.Title,
		Author:        b.Author,
		TimesRead:     b.TimesRead,
		OverallFormat: b.OverallFormat,
		At:            time.Now().UTC(),
	}
}

// RetractEvent describes a deleted read instance: book.delete when its
// book went with it, book.retract otherwise.
func RetractEvent(r models.Retraction) BookEvent {
	ev := BookEvent{
		Type:           EventBookDelete,
		ReadInstanceID: r.ReadInstanceID,
		Title:          r.Title,
		Author:         r.Author,
		At:             time.Now().UTC(),
	}
	if r.Book != nil {
		ev.Type = EventBookRetract
		ev.BookID = r.Book.ID
		ev.TimesRead = r.Book.TimesRead
		ev.OverallFormat = r.Book.OverallFormat
	}
	return ev
}
