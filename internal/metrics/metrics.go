// Package metrics records dispatch activity. The core never depends on a
// concrete sink: callers wire a Recorder, and the default is a no-op.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder receives dispatch lifecycle events.
type Recorder interface {
	// Registration is called once per successfully attached implementation.
	Registration(dispatcher, name string)
	// Resolution is called once per Call with outcome "matched",
	// "no_match" or "not_bound".
	Resolution(dispatcher, name, outcome string)
}

// NopRecorder discards all events.
type NopRecorder struct{}

func (NopRecorder) Registration(string, string)       {}
func (NopRecorder) Resolution(string, string, string) {}

// PromRecorder exports dispatch counters to a prometheus registerer.
type PromRecorder struct {
	registrations *prometheus.CounterVec
	resolutions   *prometheus.CounterVec
}

// NewPromRecorder registers the dispatch counters with reg and returns the
// recorder. Registering twice with the same registerer fails, as usual with
// prometheus collectors.
func NewPromRecorder(reg prometheus.Registerer) (*PromRecorder, error) {
	r := &PromRecorder{
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_registrations_total",
			Help: "Implementations registered, by dispatcher and bound name.",
		}, []string{"dispatcher", "name"}),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_resolutions_total",
			Help: "Resolution attempts, by dispatcher, name and outcome.",
		}, []string{"dispatcher", "name", "outcome"}),
	}
	if err := reg.Register(r.registrations); err != nil {
		return nil, err
	}
	if err := reg.Register(r.resolutions); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *PromRecorder) Registration(dispatcher, name string) {
	r.registrations.WithLabelValues(dispatcher, name).Inc()
}

func (r *PromRecorder) Resolution(dispatcher, name, outcome string) {
	r.resolutions.WithLabelValues(dispatcher, name, outcome).Inc()
}
