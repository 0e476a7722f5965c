// Copyright (C) 2026 Capi AI (dev@capiai.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package conversation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	contextsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "capi",
		Subsystem: "conversation",
		Name:      "contexts_created_total",
		Help:      "Sessions created in the conversation store.",
	})

	contextsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "capi",
		Subsystem: "conversation",
		Name:      "contexts_expired_total",
		Help:      "Sessions removed by the TTL sweep.",
	})

	sweepsRun = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "capi",
		Subsystem: "conversation",
		Name:      "sweeps_total",
		Help:      "Expiry sweep passes executed.",
	})

	activeContexts = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "capi",
		Subsystem: "conversation",
		Name:      "contexts_active",
		Help:      "Sessions alive after the most recent sweep.",
	})
)
