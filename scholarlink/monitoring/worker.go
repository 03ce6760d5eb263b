package monitoring

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PairsScored = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pairs_scored",
		Help: "Total candidate pairs scored",
	}, []string{"linking_type"})

	ComparatorFaults = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "comparator_faults",
		Help: "Total pairs skipped due to comparator errors",
	}, []string{"linking_type"})

	LinksEmitted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "links_emitted",
		Help: "Total links written to the store",
	}, []string{"linking_type"})

	SimilarityCellsCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "similarity_cells_completed",
		Help: "Total similarity cells completed",
	})

	SimilarityCellErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "similarity_cell_errors",
		Help: "Total similarity cells that failed",
	})
)

func ExposeWorkerMetrics(port int) {
	registry := prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		PairsScored,
		ComparatorFaults,
		LinksEmitted,
		SimilarityCellsCompleted,
		SimilarityCellErrors,
	)

	slog.Info("exposing worker metrics", "port", port)

	go func() {
		handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

		if err := http.ListenAndServe(fmt.Sprintf(":%d", port), handler); err != nil {
			log.Fatalf("error starting metrics server: %v", err)
		}
	}()
}
