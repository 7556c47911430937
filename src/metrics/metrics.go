//Package metrics exports grid generation statistics to Prometheus
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lifegrid/src/universe"
)

const namespace = "lifegrid"

//Collector implements universe.Recorder
type Collector struct {
	generations *prometheus.CounterVec
	changes     *prometheus.CounterVec
	liveCells   *prometheus.GaugeVec
	duration    *prometheus.HistogramVec
}

//NewCollector creates the metrics and registers them on reg
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Generations computed, by engine.",
		}, []string{"engine"}),
		changes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cell_changes_total",
			Help:      "Cells whose state differed from the previous generation.",
		}, []string{"engine"}),
		liveCells: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_cells",
			Help:      "Living cells in the last committed generation.",
		}, []string{"engine"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Time to compute and commit one generation.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"engine"}),
	}
	for _, col := range []prometheus.Collector{c.generations, c.changes, c.liveCells, c.duration} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

//ObserveGeneration records one committed generation
func (c *Collector) ObserveGeneration(engine string, st universe.GenerationStats) {
	c.generations.WithLabelValues(engine).Inc()
	c.changes.WithLabelValues(engine).Add(float64(st.Changes))
	c.liveCells.WithLabelValues(engine).Set(float64(st.LiveCells))
	c.duration.WithLabelValues(engine).Observe(st.Duration.Seconds())
}

//Handler serves the metrics gathered by g
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
