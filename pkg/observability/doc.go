/*
Package observability turns coordinator lifecycle events into Prometheus metrics
and structured log lines.

Metrics and LogHooks both produce domain.LifecycleHooks; Combine merges several
of them so the coordinator only ever sees one set of callbacks.
*/
package observability
