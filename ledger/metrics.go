// Copyright 2026 The Clubledger Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type stateMetrics struct {
	blockNum       prometheus.Gauge
	actionSeq      prometheus.Gauge
	actionsTotal   *prometheus.CounterVec
	rejectedTotal  *prometheus.CounterVec
	applyLatency   prometheus.Histogram
	halted         prometheus.Gauge
	replayedTotal  prometheus.Counter
	issuedCurrency prometheus.Gauge
}

func (m *stateMetrics) init(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	m.blockNum = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "clubledger_ledger_block",
		Help: "current ledger block number",
	})
	m.actionSeq = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "clubledger_ledger_action_seq",
		Help: "sequence of the last committed action",
	})
	m.actionsTotal = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clubledger_ledger_actions_total",
			Help: "committed actions by type",
		},
		[]string{"type"},
	)
	m.rejectedTotal = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clubledger_ledger_rejected_total",
			Help: "actions rejected with a domain error by type and kind",
		},
		[]string{"type", "kind"},
	)
	m.applyLatency = promautoFactory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "clubledger_ledger_apply_seconds",
			Help:    "time to apply and persist one action",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 15), // 100us to ~1.6s
		},
	)
	m.halted = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "clubledger_ledger_halted",
		Help: "whether the ledger stopped after an invariant violation (0 or 1)",
	})
	m.replayedTotal = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "clubledger_ledger_replayed_actions_total",
		Help: "actions applied from the action log at start-up",
	})
	m.issuedCurrency = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "clubledger_ledger_issued",
		Help: "total currency endowed into accounts",
	})
}
