package prom

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useRegistry points registration at a fresh registry and resets the
// package state when the test ends.
func useRegistry(t *testing.T) *prometheus.Registry {
	t.Helper()
	reg := prometheus.NewRegistry()
	prevReg, prevEnabled, prevNamespace := prometheus.DefaultRegisterer, MetricSystemEnabled, namespace
	prometheus.DefaultRegisterer = reg
	t.Cleanup(func() {
		prometheus.DefaultRegisterer = prevReg
		MetricSystemEnabled = prevEnabled
		namespace = prevNamespace
	})
	return reg
}

// gathered returns metric values by family name for single-series families.
func gathered(t *testing.T, reg *prometheus.Registry) map[string]float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	out := make(map[string]float64, len(families))
	for _, mf := range families {
		m := mf.GetMetric()
		if len(m) != 1 {
			continue
		}
		switch {
		case m[0].GetCounter() != nil:
			out[mf.GetName()] = m[0].GetCounter().GetValue()
		case m[0].GetGauge() != nil:
			out[mf.GetName()] = m[0].GetGauge().GetValue()
		case m[0].GetHistogram() != nil:
			out[mf.GetName()] = float64(m[0].GetHistogram().GetSampleCount())
		}
	}
	return out
}

func TestCreate_RegistersServiceMetrics(t *testing.T) {
	reg := useRegistry(t)

	require.NoError(t, Create("host-1", "test", "freight"))

	AddInvitationsIssued(3)
	IncInvitationTransition("opened")
	AddInvitationDeliveryDuration(1.5, "email")
	SetDeliveryQueuePending("invitation-delivery", 4)
	IncAccessDenied("revoked")
	IncResponseRecorded("submitted")
	IncResponseRecorded("submitted")

	got := gathered(t, reg)
	assert.Equal(t, 3.0, got["freight_invitation_issued_total"])
	assert.Equal(t, 1.0, got["freight_invitation_transitions_total"])
	assert.Equal(t, 1.0, got["freight_invitation_delivery_duration_seconds"])
	assert.Equal(t, 4.0, got["freight_invitation_delivery_queue_pending"])
	assert.Equal(t, 1.0, got["freight_access_denied_total"])
	assert.Equal(t, 2.0, got["freight_response_recorded_total"])
}

func TestCreate_SecondCallReportsDuplicate(t *testing.T) {
	useRegistry(t)

	require.NoError(t, Create("host-1", "test", "freight"))
	assert.Error(t, Create("host-1", "test", "freight"))
}

func TestCreateMetric_UnknownType(t *testing.T) {
	useRegistry(t)

	err := CreateMetric("summary", SystemInvitations, "latency")
	assert.EqualError(t, err, "metric type summary is not defined")
}

func TestHelpers_NoopWhenDisabled(t *testing.T) {
	reg := useRegistry(t)
	MetricSystemEnabled = false

	AddInvitationsIssued(5)
	IncAccessDenied("expired")

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Empty(t, families)
}
