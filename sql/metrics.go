package sql

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/meshnetd/go-meshminer/metrics"
)

const namespace = "database"

var connWaitLatency = metrics.NewSimpleHistogram(
	"connection_wait_seconds",
	namespace,
	"how long the caller spent waiting for a free connection",
	prometheus.ExponentialBuckets(0.00001, 10, 8),
)
