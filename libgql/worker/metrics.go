package worker

import (
	"github.com/2x3systems/gqlrules/gql"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// cyclesTotal counts completed cycles by result type
	cyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gql_cycles_total",
		Help: "Completed rule generation cycles by result type",
	}, []string{"result_type"})

	candidatesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gql_candidates_total",
		Help: "Candidate graphs synthesized",
	})

	representativesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gql_representatives_total",
		Help: "Distinct candidate graphs written (seed excluded)",
	})

	patternsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gql_patterns_canonicalized_total",
		Help: "Pattern files replaced by their canonical labeling",
	})

	// cycleDuration tracks wall time per cycle
	cycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gql_cycle_duration_seconds",
		Help:    "Rule generation cycle duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10), // 1ms to ~4min
	})

	// errorsTotal counts worker failures by kind
	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gql_worker_errors_total",
		Help: "Worker failures by kind",
	}, []string{"kind"})
)

// errorKind names the failure class of err for metric labels.
func errorKind(err error) string {
	switch {
	case errors.Is(err, gql.ErrTransport):
		return "transport"
	case errors.Is(err, gql.ErrProtocol):
		return "protocol"
	case errors.Is(err, gql.ErrParse):
		return "parse"
	case errors.Is(err, gql.ErrFile):
		return "file"
	case errors.Is(err, gql.ErrCapacityExceeded):
		return "capacity"
	}
	return "other"
}

// DumpMetrics writes the default registry in text exposition format to pathname.
func DumpMetrics(pathname string) error {
	if err := prometheus.WriteToTextfile(pathname, prometheus.DefaultGatherer); err != nil {
		return errors.Wrapf(gql.ErrFile, "dump metrics: %v", err)
	}
	return nil
}
