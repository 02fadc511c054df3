/*
Package observability turns editor lifecycle hooks into Prometheus metrics
and structured log lines.

Both helpers return a domain.LifecycleHooks value; chain them with
LifecycleHooks.Merge and pass the result to easel.WithLifecycleHooks.
*/
package observability
