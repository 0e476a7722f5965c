// Copyright (C) 2026 Capi AI (dev@capiai.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package classifier

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	classificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "capi",
		Subsystem: "classifier",
		Name:      "classifications_total",
		Help:      "Classifications by path (reasoner, fallback, cache) and intent.",
	}, []string{"path", "intent"})

	reasonerFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "capi",
		Subsystem: "classifier",
		Name:      "reasoner_failures_total",
		Help:      "Reasoner calls that failed or returned unusable output.",
	})

	classificationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "capi",
		Subsystem: "classifier",
		Name:      "duration_seconds",
		Help:      "End-to-end classification latency.",
		Buckets:   []float64{0.001, 0.005, 0.025, 0.1, 0.5, 1, 2.5, 5, 10},
	})
)
