/*
Package observability turns engine lifecycle hooks into Prometheus metrics.

Metrics registers its collectors on a prometheus.Registerer and exposes a
domain.Hooks value to pass to the configuration and flow engines. Several
observers can share the same engines through Combine.
*/
package observability
