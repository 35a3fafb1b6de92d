package miner

import "github.com/meshnetd/go-meshminer/metrics"

const namespace = "miner"

var (
	rigsRegistered = metrics.NewCounter(
		"rigs_registered",
		namespace,
		"number of registered rigs",
		nil,
	).WithLabelValues()

	proofsAccepted = metrics.NewCounter(
		"proofs_accepted",
		namespace,
		"number of accepted work proofs",
		nil,
	).WithLabelValues()

	proofsRejected = metrics.NewCounter(
		"proofs_rejected",
		namespace,
		"number of rejected work proofs",
		[]string{"reason"},
	)

	rewardsIssued = metrics.NewCounter(
		"rewards_issued_total",
		namespace,
		"sum of issued reward amounts",
		nil,
	).WithLabelValues()
)
