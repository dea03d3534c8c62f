//                           _       _
// __      _____  __ ___   ___  __ _| |_ ___
// \ \ /\ / / _ \/ _` \ \ / / |/ _` | __/ _ \
//  \ V  V /  __/ (_| |\ V /| | (_| | ||  __/
//   \_/\_/ \___|\__,_| \_/ |_|\__,_|\__\___|
//
//  Copyright © 2016 - 2026 Weaviate B.V. All rights reserved.
//
//  CONTACT: hello@weaviate.io
//

package monitoring

import "github.com/prometheus/client_golang/prometheus"

// NoopPrometheusRegistry accepts every collector and exposes none of them.
// It backs the metrics when no listen address is configured.
type NoopPrometheusRegistry struct{}

func NewNoopRegistry() *NoopPrometheusRegistry {
	return &NoopPrometheusRegistry{}
}

func (n *NoopPrometheusRegistry) Register(prometheus.Collector) error {
	return nil
}

func (n *NoopPrometheusRegistry) MustRegister(...prometheus.Collector) {
}

func (n *NoopPrometheusRegistry) Unregister(prometheus.Collector) bool {
	return true
}
