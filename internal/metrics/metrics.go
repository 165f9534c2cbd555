// Package metrics exports sanitization outcomes as Prometheus counters.
package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/njchilds90/markupguard"
)

const namespace = "markupguard"

// Recorder implements markupguard.Recorder on top of Prometheus counters.
type Recorder struct {
	items        *prometheus.CounterVec
	removedTags  prometheus.Counter
	removedAttrs prometheus.Counter
}

// New creates a Recorder and registers its collectors with reg.
func New(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_total",
			Help:      "Markup items processed, by mode and outcome.",
		}, []string{"mode", "outcome"}),
		removedTags: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "removed_elements_total",
			Help:      "Forbidden elements removed with their subtree.",
		}),
		removedAttrs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "removed_attributes_total",
			Help:      "Forbidden attributes removed.",
		}),
	}
	for _, c := range []prometheus.Collector{r.items, r.removedTags, r.removedAttrs} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Record implements markupguard.Recorder.
func (r *Recorder) Record(o markupguard.Observation) {
	mode := "strict"
	if !o.Strict {
		mode = "permissive"
	}
	r.items.WithLabelValues(mode, Outcome(o.Err)).Inc()
	r.removedTags.Add(float64(o.Report.RemovedTags))
	r.removedAttrs.Add(float64(o.Report.RemovedAttrs))
}

// Outcome returns the label value for err: "ok", or the lower-cased
// error code.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	code := markupguard.CodeOf(err)
	if code == "" {
		code = markupguard.CodeInternal
	}
	return strings.ToLower(string(code))
}
