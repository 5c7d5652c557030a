// Package monitor decides when edge function code talks to the error and
// performance monitoring backend.
//
// A Policy is computed once from the environment at process start: sampling
// rates, release, initial tags and the event filter. A Monitor pairs that
// policy with an injected Client and exposes the helpers handler code calls
// while serving a request. Helpers apply per-call policy (breadcrumb
// verbosity, default fingerprints, metric tagging) and never let a
// telemetry failure reach the caller.
package monitor
