/*
Package metrics provides Prometheus-based metrics collection for planning
and execution.

# Overview

The package registers its collectors through promauto against a caller
supplied registry (or the default one). Metrics are grouped under a
namespace and carry per-process labels so multiple concurrent process
runs can be told apart.

# Core types

  - Collector: holds the Counter, Histogram, and Gauge vectors for
    planning passes, action execution, process outcomes, and blackboard
    growth.
*/
package metrics
