/*
Package server manages one HTTP server's lifecycle: non-blocking start,
graceful shutdown within a timeout, and SIGINT/SIGTERM handling. The
binary uses it to expose the metrics and health endpoints.
*/
package server
