/*
Package observability binds engine lifecycle hooks to logging and Prometheus metrics.

Metrics live in a private registry so several engines can run in one process.
Batch schedulers collect them through a node-exporter textfile written at the
end of a run (see Metrics.WriteTextfile).
*/
package observability
