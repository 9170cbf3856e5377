package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRegisterCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	RegisterCollectors(reg)

	Logins.WithLabelValues("success").Inc()
	OrdersPlaced.Inc()
	require.Equal(t, 1.0, testutil.ToFloat64(OrdersPlaced))

	n, err := testutil.GatherAndCount(reg, "storefront_logins_total", "storefront_orders_placed_total")
	require.NoError(t, err)
	require.Equal(t, 2, n)

	require.Panics(t, func() { RegisterCollectors(reg) })
}
