package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New("usdinr")
	require.NoError(t, m.Register(reg))

	m.ObserveOperation("update", ResultOK, time.Millisecond)
	m.ObserveOperation("update", ResultOK, time.Millisecond)
	m.ObserveOperation("update", "unauthorized", time.Microsecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("update", ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("update", "unauthorized")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.OperationDuration))

	// 重复注册应失败
	assert.Error(t, m.Register(reg))
}

func TestNewSanitizesServiceName(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New("pricebook-usdinr.v1")
	require.NoError(t, m.Register(reg))

	m.AuditDroppedTotal.Inc()
	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "pricebook_pricebook_usdinr_v1_audit_dropped_total")
}
