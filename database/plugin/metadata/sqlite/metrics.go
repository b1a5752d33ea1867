// Copyright 2025 Blink Labs Software
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
package sqlite

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const sqliteMetricNamePrefix = "clubledger_metadata_"

type metadataMetrics struct {
	maintenanceRuns   *prometheus.CounterVec
	maintenanceErrors *prometheus.CounterVec
	projectionRows    prometheus.Counter
	rebuilds          prometheus.Counter
}

func (d *MetadataStoreSqlite) registerMetadataMetrics() {
	factory := promauto.With(d.promRegistry)
	d.metrics = &metadataMetrics{
		maintenanceRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: sqliteMetricNamePrefix + "maintenance_runs_total",
				Help: "Completed maintenance jobs by job name",
			},
			[]string{"job"},
		),
		maintenanceErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: sqliteMetricNamePrefix + "maintenance_errors_total",
				Help: "Failed maintenance jobs by job name",
			},
			[]string{"job"},
		),
		projectionRows: factory.NewCounter(
			prometheus.CounterOpts{
				Name: sqliteMetricNamePrefix + "projection_rows_total",
				Help: "Projection rows written or deleted",
			},
		),
		rebuilds: factory.NewCounter(
			prometheus.CounterOpts{
				Name: sqliteMetricNamePrefix + "rebuilds_total",
				Help: "Full projection rebuilds",
			},
		),
	}
}
