// Package metrics exposes reconciler outcomes as prometheus counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"readlog/internal/apperr"
	"readlog/internal/reconcile"
)

type Recorder struct {
	appended  *prometheus.CounterVec
	retracted *prometheus.CounterVec
	failed    *prometheus.CounterVec
}

var _ reconcile.Recorder = (*Recorder)(nil)

// NewRecorder registers the reading-log counters on reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		appended: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "readlog_read_instances_appended_total",
			Help: "Read instances appended, by whether a new book was created.",
		}, []string{"book_created"}),
		retracted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "readlog_read_instances_deleted_total",
			Help: "Most-recent read instances deleted, by whether the book was removed.",
		}, []string{"book_removed"}),
		failed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "readlog_reconcile_failures_total",
			Help: "Failed reconciler operations by operation and error code.",
		}, []string{"op", "code"}),
	}
}

func (r *Recorder) Appended(bookCreated bool) {
	r.appended.WithLabelValues(boolLabel(bookCreated)).Inc()
}

func (r *Recorder) Retracted(bookRemoved bool) {
	r.retracted.WithLabelValues(boolLabel(bookRemoved)).Inc()
}

func (r *Recorder) Failed(op string, code apperr.Code) {
	r.failed.WithLabelValues(op, string(code)).Inc()
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
