// Copyright (C) 2026 Capi AI (dev@capiai.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "capi",
		Subsystem: "decision_cache",
		Name:      "hits_total",
		Help:      "Decision cache lookups that returned a stored result.",
	})

	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "capi",
		Subsystem: "decision_cache",
		Name:      "misses_total",
		Help:      "Decision cache lookups that fell through to classification.",
	})
)
