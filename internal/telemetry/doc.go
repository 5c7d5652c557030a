// Package telemetry provides OpenTelemetry initialization for edge functions.
//
// The package configures OTLP HTTP export for traces, logs and metrics. Trace
// sampling follows the same environment policy as error monitoring so both
// backends see a consistent share of requests.
package telemetry
