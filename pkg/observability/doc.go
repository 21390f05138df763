/*
Package observability turns solve lifecycle events into Prometheus metrics and log lines.

Metrics live on their own registry so tests and multiple servers in one process never
collide on the global default registry.
*/
package observability
