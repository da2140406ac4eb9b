// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"github.com/ava-labs/avalanchego/utils/metric"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ava-labs/hypercounter/executor"
)

var _ executor.Metrics = (*metrics)(nil)

type metrics struct {
	txsExecuted        prometheus.Counter
	txsFailed          prometheus.Counter
	invocations        prometheus.Counter
	stateChanges       prometheus.Counter
	executorBlocked    prometheus.Counter
	executorExecutable prometheus.Counter
	executeBatch       metric.Averager
}

func newMetrics(r prometheus.Registerer) (*metrics, error) {
	executeBatch, err := metric.NewAverager(
		"runtime_execute_batch",
		"time spent executing a batch of transactions",
		r,
	)
	if err != nil {
		return nil, err
	}
	m := &metrics{
		txsExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "runtime",
			Name:      "txs_executed",
			Help:      "number of transactions executed",
		}),
		txsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "runtime",
			Name:      "txs_failed",
			Help:      "number of transactions that failed and were rolled back",
		}),
		invocations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "runtime",
			Name:      "invocations",
			Help:      "number of program invocations (including cross-program)",
		}),
		stateChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "runtime",
			Name:      "state_changes",
			Help:      "number of state keys written",
		}),
		executorBlocked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "runtime",
			Name:      "executor_blocked",
			Help:      "transactions that waited on a conflicting transaction",
		}),
		executorExecutable: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "runtime",
			Name:      "executor_executable",
			Help:      "transactions that could run immediately",
		}),
		executeBatch: executeBatch,
	}
	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.txsExecuted),
		r.Register(m.txsFailed),
		r.Register(m.invocations),
		r.Register(m.stateChanges),
		r.Register(m.executorBlocked),
		r.Register(m.executorExecutable),
	)
	return m, errs.Err
}

func (m *metrics) RecordBlocked() {
	m.executorBlocked.Inc()
}

func (m *metrics) RecordExecutable() {
	m.executorExecutable.Inc()
}
