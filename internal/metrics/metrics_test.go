package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRPC("account_info", "ok")
	m.ObserveRPC("account_info", "ok")
	m.ObserveRPC("account_info", "actNotFound")
	m.ObserveSubmission("tesSUCCESS")
	m.ObserveRelayPoll("PENDING")
	m.ObserveSigningRequest("Payment")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.rpcRequests.WithLabelValues("account_info", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rpcRequests.WithLabelValues("account_info", "actNotFound")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.submissions.WithLabelValues("tesSUCCESS")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.relayPolls.WithLabelValues("PENDING")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.signingRequests.WithLabelValues("Payment")))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRPC("fee", "ok")
		m.ObserveSubmission("tesSUCCESS")
		m.ObserveRelayPoll("SIGNED")
		m.ObserveSigningRequest("SignIn")
	})
}
