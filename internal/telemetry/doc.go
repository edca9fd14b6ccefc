// Package telemetry wraps OpenTelemetry SDK initialization, providing a
// central TracerProvider and MeterProvider setup for goapflow. When
// telemetry is disabled, noop implementations are used and no external
// service is contacted.
package telemetry
