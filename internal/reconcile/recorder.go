package reconcile

import "readlog/internal/apperr"

// Recorder observes reconciler outcomes, e.g. for metrics.
type Recorder interface {
	Appended(bookCreated bool)
	Retracted(bookRemoved bool)
	Failed(op string, code apperr.Code)
}

type nopRecorder struct{}

func (nopRecorder) Appended(bool) {}

func (nopRecorder) Retracted(bool) {}

func (nopRecorder) Failed(string, apperr.Code) {}
