// Package tracing tags remote evaluation requests with a trace ID that is
// echoed in the response, carried on the request context and attached to
// request logs.
package tracing
