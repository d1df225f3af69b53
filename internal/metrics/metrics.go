package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "xrpgenie"

// Metrics holds the wallet counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	rpcRequests     *prometheus.CounterVec
	submissions     *prometheus.CounterVec
	relayPolls      *prometheus.CounterVec
	signingRequests *prometheus.CounterVec
}

// New registers the wallet counters on reg
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		rpcRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_requests_total",
			Help:      "Ledger RPC requests by method and outcome.",
		}, []string{"method", "outcome"}),
		submissions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Transaction submissions by final result code.",
		}, []string{"result"}),
		relayPolls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relay_polls_total",
			Help:      "Signing request status polls by observed status.",
		}, []string{"status"}),
		signingRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signing_requests_total",
			Help:      "Signing requests created on the relay by transaction type.",
		}, []string{"type"}),
	}
}

// ObserveRPC counts one ledger request. outcome is "ok" or an error token.
func (m *Metrics) ObserveRPC(method, outcome string) {
	if m == nil {
		return
	}
	m.rpcRequests.WithLabelValues(method, outcome).Inc()
}

// ObserveSubmission counts one finished submission
func (m *Metrics) ObserveSubmission(result string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(result).Inc()
}

// ObserveRelayPoll counts one status poll. status is the request status or "error".
func (m *Metrics) ObserveRelayPoll(status string) {
	if m == nil {
		return
	}
	m.relayPolls.WithLabelValues(status).Inc()
}

// ObserveSigningRequest counts one created signing request
func (m *Metrics) ObserveSigningRequest(txType string) {
	if m == nil {
		return
	}
	m.signingRequests.WithLabelValues(txType).Inc()
}
