/*
Package observability turns run lifecycle events into logs and Prometheus metrics.

Metrics are registered on their own registry, exported to a node_exporter
textfile after a run, or served over HTTP while a run is in progress.
*/
package observability
