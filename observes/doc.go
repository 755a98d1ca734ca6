// Package observes sets up OpenTelemetry tracing for the keyset binary.
package observes
