package telemetry

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics counts applied intents into a private Prometheus registry. It
// wraps another Repository so the event log and the counters see the same
// stream.
type Metrics struct {
	next     Repository
	registry *prometheus.Registry

	intents *prometheus.CounterVec
	cleared prometheus.Counter

	observeOnce sync.Once
}

func NewMetrics(next Repository) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		next:     next,
		registry: reg,
		intents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "todo",
			Name:      "intents_total",
			Help:      "Applied intents by event type.",
		}, []string{"event"}),
		cleared: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "todo",
			Name:      "cleared_tasks_total",
			Help:      "Tasks removed by clear-completed.",
		}),
	}
}

// ObserveTasks registers the todo_tasks{state} gauges, sampled through tasks
// on every scrape. Only the first call has an effect. tasks must be safe to
// call from the scrape goroutine.
func (m *Metrics) ObserveTasks(tasks func() (total, active int)) {
	m.observeOnce.Do(func() {
		factory := promauto.With(m.registry)
		for _, state := range []string{"active", "completed"} {
			factory.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace:   "todo",
				Name:        "tasks",
				Help:        "Tasks currently in the list.",
				ConstLabels: prometheus.Labels{"state": state},
			}, func() float64 {
				total, active := tasks()
				if state == "active" {
					return float64(active)
				}
				return float64(total - active)
			})
		}
	})
}

func (m *Metrics) RecordEvent(eventType EventType, metadata EventMetadata) error {
	m.intents.WithLabelValues(string(eventType)).Inc()
	if eventType == EventCompletedCleared {
		if n, ok := metadata["removed"].(int); ok && n > 0 {
			m.cleared.Add(float64(n))
		}
	}
	if m.next == nil {
		return nil
	}
	return m.next.RecordEvent(eventType, metadata)
}

func (m *Metrics) GetEvents(since time.Time, eventTypes []EventType) ([]Event, error) {
	if m.next == nil {
		return nil, nil
	}
	return m.next.GetEvents(since, eventTypes)
}

func (m *Metrics) Clear() error {
	if m.next == nil {
		return nil
	}
	return m.next.Clear()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
