package session

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/DoyleJ11/ti-helper/internal/observability"
)

func contains(s, sub string) bool { return strings.Contains(s, sub) }

func counterValue(t *testing.T, m *observability.Metrics, region string) float64 {
	t.Helper()
	return testutil.ToFloat64(m.StaleUpdates.WithLabelValues(region))
}
