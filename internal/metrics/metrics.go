package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "chainswap"

// Service owns the prometheus registry and the collectors of the signing pipeline.
// All recording methods are safe on a nil *Service.
type Service struct {
	registry *prometheus.Registry

	rpcCalls        *prometheus.CounterVec
	rpcRetries      *prometheus.CounterVec
	rpcLatency      *prometheus.HistogramVec
	submitOutcomes  *prometheus.CounterVec
	swaps           *prometheus.CounterVec
	keyCacheLookups *prometheus.CounterVec
}

func New() *Service {
	s := &Service{
		registry: prometheus.NewRegistry(),
		rpcCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "calls_total",
			Help:      "RPC calls by network, method and outcome kind.",
		}, []string{"network", "method", "kind"}),
		rpcRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "retries_total",
			Help:      "Flat retries after transient RPC errors.",
		}, []string{"network", "method"}),
		rpcLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "call_duration_seconds",
			Help:      "RPC call latency including retries.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"network", "method"}),
		submitOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "submit",
			Name:      "outcomes_total",
			Help:      "Submitted transactions by final state.",
		}, []string{"kind", "state", "idempotent"}),
		swaps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "swap",
			Name:      "records_total",
			Help:      "Swap records appended by status.",
		}, []string{"network", "status"}),
		keyCacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "keys",
			Name:      "cache_lookups_total",
			Help:      "Key cache lookups by result.",
		}, []string{"result"}),
	}

	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		s.rpcCalls,
		s.rpcRetries,
		s.rpcLatency,
		s.submitOutcomes,
		s.swaps,
		s.keyCacheLookups,
	)

	return s
}

func (s *Service) Registry() *prometheus.Registry {
	return s.registry
}

func (s *Service) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

func (s *Service) RPCCall(network, method, kind string, took time.Duration) {
	if s == nil {
		return
	}
	s.rpcCalls.WithLabelValues(network, method, kind).Inc()
	s.rpcLatency.WithLabelValues(network, method).Observe(took.Seconds())
}

func (s *Service) RPCRetry(network, method string) {
	if s == nil {
		return
	}
	s.rpcRetries.WithLabelValues(network, method).Inc()
}

func (s *Service) SubmitOutcome(kind, state string, idempotent bool) {
	if s == nil {
		return
	}
	idem := "false"
	if idempotent {
		idem = "true"
	}
	s.submitOutcomes.WithLabelValues(kind, state, idem).Inc()
}

func (s *Service) SwapRecorded(network, status string) {
	if s == nil {
		return
	}
	s.swaps.WithLabelValues(network, status).Inc()
}

func (s *Service) KeyCache(hit bool) {
	if s == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	s.keyCacheLookups.WithLabelValues(result).Inc()
}
